package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nibzard/todo-go/internal/config"
	"github.com/nibzard/todo-go/internal/store"
	"github.com/nibzard/todo-go/internal/worker"
)

type check struct {
	name   string
	run    func(ctx context.Context) (string, error)
	detail string
}

// doctorCommand checks the config, the store and the log directory.
func (c *cli) doctorCommand(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("todo doctor", flag.ContinueOnError)
	fs.SetOutput(c.errOut)
	if err := fs.Parse(args); err != nil {
		return err
	}

	fmt.Fprintln(c.out, "Todo Doctor")
	fmt.Fprintln(c.out, "===========")
	fmt.Fprintln(c.out)

	fmt.Fprintln(c.out, "Config files:")
	if len(c.cws.Files) == 0 {
		fmt.Fprintln(c.out, "  (none, using defaults)")
	}
	for _, f := range c.cws.Files {
		fmt.Fprintf(c.out, "  %s\n", f)
	}
	fmt.Fprintln(c.out)

	checks := []*check{
		{name: "store", run: func(ctx context.Context) (string, error) { return c.checkStore(ctx, cfg) }},
		{name: "log directory", run: func(context.Context) (string, error) { return checkLogDir(cfg.LogDir) }},
	}
	if cfg.Store.Driver == store.DriverFile {
		checks = append(checks, &check{name: "document", run: func(context.Context) (string, error) {
			return checkDocument(cfg.Store.Path)
		}})
	}

	pool := worker.New(ctx, len(checks), 0)
	for _, ch := range checks {
		ch := ch
		pool.Submit(ch.name, func(ctx context.Context) error {
			detail, err := ch.run(ctx)
			ch.detail = detail
			return err
		})
	}
	pool.Wait()

	failed := map[string]error{}
	for _, r := range pool.Results() {
		if r.Err != nil {
			failed[r.Name] = r.Err
		}
	}

	allOK := true
	for _, ch := range checks {
		fmt.Fprintf(c.out, "%s: %s\n", capitalize(ch.name), ch.detail)
		if err := failed[ch.name]; err != nil {
			fmt.Fprintf(c.out, "  ❌ Error: %v\n", err)
			allOK = false
		} else {
			fmt.Fprintln(c.out, "  ✅ OK")
		}
		fmt.Fprintln(c.out)
	}

	if allOK {
		fmt.Fprintln(c.out, "✅ All checks passed!")
		return nil
	}
	fmt.Fprintln(c.out, "⚠️  Some checks failed. todo may not function correctly.")
	return fmt.Errorf("doctor checks failed")
}

func (c *cli) checkStore(ctx context.Context, cfg *config.Config) (string, error) {
	detail := cfg.Store.Driver
	switch cfg.Store.Driver {
	case store.DriverMySQL:
		detail += " (dsn configured)"
	case store.DriverMemory:
	default:
		detail += " " + cfg.Store.Path
	}

	a, err := openApp(ctx, cfg, c.cliLogger(cfg))
	if err != nil {
		return detail, err
	}
	defer a.Close()

	all, err := a.repo.All(ctx)
	if err != nil {
		return detail, err
	}
	sort, err := a.repo.SortState(ctx)
	if err != nil {
		return detail, err
	}
	return fmt.Sprintf("%s, %d tasks, sort %s", detail, len(all), sort), nil
}

func checkLogDir(dir string) (string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return dir + " (will be created by the TUI)", nil
		}
		return dir, err
	}
	if !info.IsDir() {
		return dir, fmt.Errorf("path is not a directory")
	}
	probe, err := os.CreateTemp(dir, ".doctor-*")
	if err != nil {
		return dir, fmt.Errorf("not writable: %w", err)
	}
	name := probe.Name()
	probe.Close()
	os.Remove(name)
	return dir, nil
}

func checkDocument(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return path + " (not created yet)", nil
		}
		return path, err
	}
	if errs := store.ValidateDocument(data); len(errs) > 0 {
		return path, errors.Join(errs...)
	}
	return filepath.Clean(path), nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
