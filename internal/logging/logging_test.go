package logging

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestNewRunLogger(t *testing.T) {
	t.Run("creates nested dir and log file", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "logs", "nested")

		rl, err := NewRunLogger(dir, Options{Level: "debug", Format: "logfmt"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		defer rl.Close()

		if rl.RunID == "" || rl.Session == "" {
			t.Fatalf("RunID %q Session %q", rl.RunID, rl.Session)
		}
		if filepath.Dir(rl.LogPath) != dir || !strings.HasSuffix(rl.LogPath, ".log") {
			t.Fatalf("LogPath = %s", rl.LogPath)
		}

		rl.Sub("repo").Info("opened", "driver", "sqlite")
		data, err := os.ReadFile(rl.LogPath)
		if err != nil {
			t.Fatalf("read log: %v", err)
		}
		got := string(data)
		for _, want := range []string{"session=" + rl.Session, "driver=sqlite", "repo"} {
			if !strings.Contains(got, want) {
				t.Errorf("log %q missing %q", got, want)
			}
		}
	})

	t.Run("empty dir returns error", func(t *testing.T) {
		if _, err := NewRunLogger("", Options{}); err == nil {
			t.Fatal("expected error for empty dir")
		}
	})

	t.Run("close is nil safe", func(t *testing.T) {
		var rl *RunLogger
		if err := rl.Close(); err != nil {
			t.Fatalf("Close on nil: %v", err)
		}
	})
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]log.Level{
		"debug":   log.DebugLevel,
		"INFO":    log.InfoLevel,
		"warning": log.WarnLevel,
		"error":   log.ErrorLevel,
		"bogus":   log.InfoLevel,
	}
	for in, want := range tests {
		if got := ParseLogLevel(in); got != want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestParseLogFormatter(t *testing.T) {
	tests := map[string]log.Formatter{
		"json":   log.JSONFormatter,
		"logfmt": log.LogfmtFormatter,
		"text":   log.TextFormatter,
		"":       log.TextFormatter,
	}
	for in, want := range tests {
		if got := ParseLogFormatter(in); got != want {
			t.Errorf("ParseLogFormatter(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestFindLatestLog(t *testing.T) {
	t.Run("finds newest log", func(t *testing.T) {
		dir := t.TempDir()
		old := time.Now().Add(-time.Hour)
		for i, name := range []string{"20240101-120000-100.log", "20240101-120001-101.log", "notes.txt"} {
			path := filepath.Join(dir, name)
			if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
				t.Fatal(err)
			}
			mt := old.Add(time.Duration(i) * time.Minute)
			if err := os.Chtimes(path, mt, mt); err != nil {
				t.Fatal(err)
			}
		}
		if err := os.Mkdir(filepath.Join(dir, "sub.log"), 0755); err != nil {
			t.Fatal(err)
		}

		latest, err := FindLatestLog(dir)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if filepath.Base(latest) != "20240101-120001-101.log" {
			t.Fatalf("latest = %s", latest)
		}

		runs, err := FindLogRuns(dir)
		if err != nil || len(runs) != 2 {
			t.Fatalf("FindLogRuns = %v, %v", runs, err)
		}
	})

	t.Run("missing dir is empty", func(t *testing.T) {
		latest, err := FindLatestLog(filepath.Join(t.TempDir(), "missing"))
		if err != nil || latest != "" {
			t.Fatalf("FindLatestLog = %q, %v", latest, err)
		}
	})
}

func TestTailLog(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "run.log")
	if err := os.WriteFile(logFile, []byte("line1\nline2\nline3\nline4\nline5\n"), 0644); err != nil {
		t.Fatal(err)
	}

	t.Run("whole file", func(t *testing.T) {
		var buf bytes.Buffer
		if err := TailLog(context.Background(), &buf, logFile, 0, false); err != nil {
			t.Fatalf("TailLog: %v", err)
		}
		if buf.String() != "line1\nline2\nline3\nline4\nline5\n" {
			t.Fatalf("got %q", buf.String())
		}
	})

	t.Run("last n lines", func(t *testing.T) {
		var buf bytes.Buffer
		if err := TailLog(context.Background(), &buf, logFile, 2, false); err != nil {
			t.Fatalf("TailLog: %v", err)
		}
		if buf.String() != "line4\nline5\n" {
			t.Fatalf("got %q", buf.String())
		}
	})

	t.Run("missing file", func(t *testing.T) {
		var buf bytes.Buffer
		if err := TailLog(context.Background(), &buf, filepath.Join(t.TempDir(), "nope.log"), 0, false); err == nil {
			t.Fatal("expected error for missing file")
		}
	})

	t.Run("follow stops with context", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
		defer cancel()

		var buf bytes.Buffer
		if err := TailLog(ctx, &buf, logFile, 1, true); err != nil {
			t.Fatalf("TailLog follow: %v", err)
		}
		if buf.String() != "line5\n" {
			t.Fatalf("got %q", buf.String())
		}
	})
}
