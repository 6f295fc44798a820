package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/nibzard/todo-go/internal/config"
	"github.com/nibzard/todo-go/internal/logging"
)

// configCommand prints the resolved config with the source of each value.
func (c *cli) configCommand(args []string) error {
	fs := flag.NewFlagSet("todo config", flag.ContinueOnError)
	fs.SetOutput(c.errOut)
	example := fs.Bool("example", false, "Print an example config file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *example {
		fmt.Fprint(c.out, config.ExampleConfig())
		return nil
	}

	fmt.Fprintln(c.out, "Config files:")
	if len(c.cws.Files) == 0 {
		fmt.Fprintln(c.out, "  (none)")
	}
	for _, f := range c.cws.Files {
		fmt.Fprintf(c.out, "  %s\n", f)
	}
	fmt.Fprintln(c.out)
	for _, f := range c.cws.Fields() {
		fmt.Fprintf(c.out, "%-22s = %-30q (%s)\n", f.Key, f.Value, f.Source)
	}
	return nil
}

// tailCommand tails the latest TUI log file.
func (c *cli) tailCommand(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("todo tail", flag.ContinueOnError)
	fs.SetOutput(c.errOut)
	follow := fs.Bool("f", false, "Follow the log (like tail -f)")
	fs.BoolVar(follow, "follow", false, "Follow the log (like tail -f)")
	n := fs.Int("n", 0, "Number of lines to show (0 = all)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	logPath, err := logging.FindLatestLog(cfg.LogDir)
	if err != nil {
		return fmt.Errorf("finding latest log: %w", err)
	}
	if logPath == "" {
		fmt.Fprintln(c.out, "No log files found.")
		return nil
	}

	fmt.Fprintf(c.out, "Tailing: %s\n", logPath)
	if *follow {
		fmt.Fprintln(c.out, "(Ctrl+C to stop)")
	}
	fmt.Fprintln(c.out)
	return logging.TailLog(ctx, c.out, logPath, *n, *follow)
}
