package cmd

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"

	"github.com/nibzard/todo-go/internal/config"
	"github.com/nibzard/todo-go/internal/export"
)

// exportCommand writes every task as json, csv or pdf.
func (c *cli) exportCommand(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("todo export", flag.ContinueOnError)
	fs.SetOutput(c.errOut)
	format := fs.String("format", "", "Output format ("+strings.Join(export.Formats(), ", ")+"); defaults to the -o extension or json")
	output := fs.String("o", "", "Output file (default stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	f := *format
	if f == "" {
		f = strings.TrimPrefix(strings.ToLower(filepath.Ext(*output)), ".")
	}
	if f == "" {
		f = "json"
	}

	a, err := openApp(ctx, cfg, c.cliLogger(cfg))
	if err != nil {
		return err
	}
	defer a.Close()

	var buf bytes.Buffer
	if err := export.New(a.repo).Write(ctx, f, &buf); err != nil {
		return err
	}
	if *output == "" {
		_, err := buf.WriteTo(c.out)
		return err
	}
	if err := atomic.WriteFile(*output, &buf); err != nil {
		return fmt.Errorf("writing %s: %w", *output, err)
	}
	fmt.Fprintf(c.out, "Exported tasks to %s\n", *output)
	return nil
}
