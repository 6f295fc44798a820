package cmd

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"strconv"
	"strings"

	"github.com/nibzard/todo-go/internal/config"
	"github.com/nibzard/todo-go/internal/coordinator"
	"github.com/nibzard/todo-go/internal/navigation"
	"github.com/nibzard/todo-go/internal/task"
)

// session runs the coordinators synchronously for one CLI command.
type session struct {
	app  *app
	list *coordinator.List
	nav  *navigation.Navigator
	stop func()
}

func (c *cli) openSession(ctx context.Context, cfg *config.Config) (*session, error) {
	a, err := openApp(ctx, cfg, c.cliLogger(cfg))
	if err != nil {
		return nil, err
	}
	list := a.list(coordinator.NewInline(ctx))
	nav := navigation.New(navigation.Splash())
	return &session{app: a, list: list, nav: nav, stop: nav.Attach(list, list.Editor())}, nil
}

func (s *session) Close() error {
	s.stop()
	return s.app.Close()
}

// dispatch enters the list route with a, the same way the editor screen
// returns to the list, and reports the resulting notification.
func (s *session) dispatch(a task.Action) (string, error) {
	s.nav.ToList(a)
	sb := s.list.Snackbar.Get()
	s.list.DismissSnackbar()
	if sb.Failed {
		return "", errors.New(sb.Message)
	}
	return sb.Message, nil
}

// lookup loads id into the edit buffer.
func (s *session) lookup(ctx context.Context, id int) (task.Task, error) {
	t, err := s.app.repo.Get(ctx, id)
	if err != nil {
		return task.Task{}, fmt.Errorf("task %d: %w", id, err)
	}
	s.list.Editor().LoadFromTask(t)
	return t, nil
}

// lsCommand lists the tasks the list screen would show.
func (c *cli) lsCommand(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("todo ls", flag.ContinueOnError)
	fs.SetOutput(c.errOut)
	sortFlag := fs.String("sort", "", "Sort filter (high, low, medium, none); defaults to the saved filter")
	query := fs.String("q", "", "Only show tasks whose title or description contains this text")
	verbose := fs.Bool("v", false, "Show descriptions")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	s, err := c.openSession(ctx, cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	s.list.Start()
	if *sortFlag != "" {
		p, err := task.ParsePriority(*sortFlag)
		if err != nil {
			return err
		}
		s.list.SetSortFilter(p)
	}
	if *query != "" {
		s.list.SetSearchBarState(task.SearchOpened)
		if err := s.list.Search(*query); err != nil {
			return err
		}
	}

	v := s.list.Visible()
	switch v.Status {
	case coordinator.StatusError:
		return fmt.Errorf("loading tasks: %w", v.Err)
	case coordinator.StatusEmpty:
		fmt.Fprintln(c.out, "No tasks found.")
		return nil
	}
	for _, t := range v.Tasks {
		printTask(c.out, t, *verbose)
	}
	return nil
}

func (c *cli) addCommand(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("todo add", flag.ContinueOnError)
	fs.SetOutput(c.errOut)
	desc := fs.String("d", "", "Description")
	priority := fs.String("p", string(task.PriorityLow), "Priority (high, medium, low, none)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	p, err := task.ParsePriority(*priority)
	if err != nil {
		return err
	}

	s, err := c.openSession(ctx, cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	editor := s.list.Editor()
	editor.LoadFromTask(task.Task{
		ID:          task.NewID,
		Title:       strings.Join(fs.Args(), " "),
		Description: *desc,
		Priority:    p,
	})
	if err := editor.Validate(); err != nil {
		return err
	}
	msg, err := s.dispatch(task.ActionAdd)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.out, msg)
	return nil
}

func (c *cli) editCommand(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("todo edit", flag.ContinueOnError)
	fs.SetOutput(c.errOut)
	title := fs.String("t", "", "New title")
	desc := fs.String("d", "", "New description")
	priority := fs.String("p", "", "New priority (high, medium, low, none)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("edit takes exactly one task id")
	}
	id, err := parseID(fs.Arg(0))
	if err != nil {
		return err
	}

	s, err := c.openSession(ctx, cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	if _, err := s.lookup(ctx, id); err != nil {
		return err
	}
	editor := s.list.Editor()
	var flagErr error
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "t":
			editor.UpdateTitle(*title)
		case "d":
			editor.UpdateDescription(*desc)
		case "p":
			p, err := task.ParsePriority(*priority)
			if err != nil {
				flagErr = err
				return
			}
			editor.UpdatePriority(p)
		}
	})
	if flagErr != nil {
		return flagErr
	}
	if err := editor.Validate(); err != nil {
		return err
	}
	msg, err := s.dispatch(task.ActionUpdate)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.out, msg)
	return nil
}

func (c *cli) rmCommand(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("todo rm", flag.ContinueOnError)
	fs.SetOutput(c.errOut)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return fmt.Errorf("rm needs at least one task id")
	}
	ids := make([]int, 0, fs.NArg())
	for _, arg := range fs.Args() {
		id, err := parseID(arg)
		if err != nil {
			return err
		}
		ids = append(ids, id)
	}

	s, err := c.openSession(ctx, cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	for _, id := range ids {
		if _, err := s.lookup(ctx, id); err != nil {
			return err
		}
		msg, err := s.dispatch(task.ActionDelete)
		if err != nil {
			return err
		}
		fmt.Fprintln(c.out, msg)
	}
	return nil
}

func (c *cli) clearCommand(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("todo clear", flag.ContinueOnError)
	fs.SetOutput(c.errOut)
	yes := fs.Bool("y", false, "Do not ask for confirmation")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if !*yes {
		fmt.Fprint(c.out, "Remove all tasks? [y/N] ")
		line, _ := bufio.NewReader(c.in).ReadString('\n')
		if answer := strings.ToLower(strings.TrimSpace(line)); answer != "y" && answer != "yes" {
			fmt.Fprintln(c.out, "Aborted.")
			return nil
		}
	}

	s, err := c.openSession(ctx, cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	msg, err := s.dispatch(task.ActionDeleteAll)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.out, msg)
	return nil
}

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || id < 0 {
		return 0, fmt.Errorf("invalid task id %q", s)
	}
	return id, nil
}
