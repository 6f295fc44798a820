// Package cmd implements the CLI command structure for todo.
package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/nibzard/todo-go/internal/config"
	"github.com/nibzard/todo-go/internal/coordinator"
	"github.com/nibzard/todo-go/internal/logging"
	"github.com/nibzard/todo-go/internal/navigation"
	"github.com/nibzard/todo-go/internal/repository"
	"github.com/nibzard/todo-go/internal/store"
	"github.com/nibzard/todo-go/internal/ui"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Run executes the todo CLI.
func Run(ctx context.Context, args []string) error {
	c := &cli{in: os.Stdin, out: os.Stdout, errOut: os.Stderr}
	return c.run(ctx, args)
}

// cli carries the standard streams so commands can be driven from tests.
type cli struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer
	cws    *config.ConfigWithSources
}

func (c *cli) run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("todo", flag.ContinueOnError)
	fs.SetOutput(c.errOut)
	fs.Usage = func() {
		c.printUsage(fs, c.errOut)
	}
	help := fs.Bool("help", false, "Show help")
	fs.BoolVar(help, "h", false, "Show help")
	showVersion := fs.Bool("version", false, "Show version")
	fs.BoolVar(showVersion, "v", false, "Show version")

	cws, err := config.LoadWithSources(fs, args)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	c.cws = cws
	cfg := cws.Config
	if *help {
		c.printUsage(fs, c.out)
		return nil
	}
	if *showVersion {
		return c.versionCommand()
	}

	// No args or a leading flag means the TUI.
	subcommand := "tui"
	remainingArgs := fs.Args()
	if len(remainingArgs) > 0 && !strings.HasPrefix(remainingArgs[0], "-") {
		subcommand = remainingArgs[0]
		remainingArgs = remainingArgs[1:]
	}

	switch subcommand {
	case "tui":
		return c.tuiCommand(ctx, cfg, remainingArgs)
	case "ls", "list":
		return c.lsCommand(ctx, cfg, remainingArgs)
	case "add":
		return c.addCommand(ctx, cfg, remainingArgs)
	case "edit":
		return c.editCommand(ctx, cfg, remainingArgs)
	case "rm", "delete":
		return c.rmCommand(ctx, cfg, remainingArgs)
	case "clear":
		return c.clearCommand(ctx, cfg, remainingArgs)
	case "export":
		return c.exportCommand(ctx, cfg, remainingArgs)
	case "doctor":
		return c.doctorCommand(ctx, cfg, remainingArgs)
	case "config":
		return c.configCommand(remainingArgs)
	case "tail":
		return c.tailCommand(ctx, cfg, remainingArgs)
	case "version":
		return c.versionCommand()
	case "help":
		c.printUsage(fs, c.out)
		return nil
	default:
		fmt.Fprintf(c.errOut, "Unknown command: %s\n", subcommand)
		c.printUsage(fs, c.errOut)
		return fmt.Errorf("unknown command: %s", subcommand)
	}
}

// tuiCommand launches the terminal UI. Logs go to a per-run file because
// the UI owns the terminal.
func (c *cli) tuiCommand(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("todo tui", flag.ContinueOnError)
	fs.SetOutput(c.errOut)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	runLog, err := logging.NewRunLogger(cfg.LogDir, logOptions(cfg))
	if err != nil {
		return fmt.Errorf("creating run logger: %w", err)
	}
	defer runLog.Close()
	logger := runLog.Logger()
	logger.Info("starting", "version", Version, "store", cfg.Store.Driver, "config", c.cws.ConfigFile())

	a, err := openApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	queue := coordinator.NewQueue(ctx, cfg.Workers)
	defer queue.Close()

	err = ui.RunTUI(ctx, ui.Deps{
		List:        a.list(queue),
		Navigator:   navigation.New(navigation.Splash()),
		Apply:       queue.C(),
		SplashDelay: cfg.SplashDelay(),
		Logger:      runLog.Sub("ui"),
	})
	if err != nil {
		logger.Error("tui exited", "err", err)
	}
	return err
}

func (c *cli) versionCommand() error {
	fmt.Fprintf(c.out, "todo version %s\n", Version)
	return nil
}

// printUsage prints the usage message.
func (c *cli) printUsage(fs *flag.FlagSet, w io.Writer) {
	fmt.Fprintln(w, "Todo - A terminal to-do list")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  todo [options] [command] [command options]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  tui                   Launch the terminal UI (default command)")
	fmt.Fprintln(w, "  ls [-sort P] [-q Q]   List tasks")
	fmt.Fprintln(w, "  add [-p P] [-d D] TITLE")
	fmt.Fprintln(w, "                        Add a task")
	fmt.Fprintln(w, "  edit [-t T] [-d D] [-p P] ID")
	fmt.Fprintln(w, "                        Update a task")
	fmt.Fprintln(w, "  rm ID...              Delete tasks")
	fmt.Fprintln(w, "  clear [-y]            Delete every task")
	fmt.Fprintln(w, "  export [-format F] [-o FILE]")
	fmt.Fprintln(w, "                        Export tasks as json, csv or pdf")
	fmt.Fprintln(w, "  doctor                Check config, store and log directory")
	fmt.Fprintln(w, "  config [-example]     Show resolved config and where each value came from")
	fmt.Fprintln(w, "  tail [-n N] [-f]      Tail the latest TUI log file")
	fmt.Fprintln(w, "  version               Show version information")
	fmt.Fprintln(w, "  help                  Show this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Priorities: high, medium, low, none")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Global Options:")
	fs.SetOutput(w)
	fs.PrintDefaults()
	fs.SetOutput(c.errOut)
}

// app is an open store with its repository.
type app struct {
	cfg    *config.Config
	logger *log.Logger
	repo   *repository.Repository
}

func openApp(ctx context.Context, cfg *config.Config, logger *log.Logger) (*app, error) {
	s, err := store.Open(ctx, store.Options{
		Driver: cfg.Store.Driver,
		Path:   cfg.Store.Path,
		DSN:    cfg.Store.DSN,
	})
	if err != nil {
		return nil, fmt.Errorf("opening %s store: %w", cfg.Store.Driver, err)
	}
	logger.Debug("store opened", "driver", cfg.Store.Driver, "path", cfg.Store.Path)
	return &app{
		cfg:    cfg,
		logger: logger,
		repo:   repository.New(s, logger.WithPrefix("repo"), cfg.QueryTimeout()),
	}, nil
}

// list wires the coordinators onto sched.
func (a *app) list(sched coordinator.Scheduler) *coordinator.List {
	editor := coordinator.NewEditor(a.repo, sched, a.logger.WithPrefix("editor"))
	undo := coordinator.NewUndo(a.cfg.UndoWindow(), sched, nil)
	return coordinator.NewList(a.repo, editor, undo, sched, a.logger.WithPrefix("list"))
}

func (a *app) Close() error {
	return a.repo.Close()
}

func logOptions(cfg *config.Config) logging.Options {
	return logging.Options{
		Level:      cfg.LogLevel,
		Format:     cfg.LogFormat,
		Timestamps: cfg.LogTimestamps,
		Caller:     cfg.LogCaller,
	}
}

// cliLogger logs to stderr. Unless a level was configured explicitly only
// warnings and errors are shown.
func (c *cli) cliLogger(cfg *config.Config) *log.Logger {
	opts := logOptions(cfg)
	opts.Prefix = "todo"
	if c.cws == nil || c.cws.Sources["log_level"] == config.SourceDefault {
		opts.Level = "warn"
	}
	return logging.New(c.errOut, opts)
}
