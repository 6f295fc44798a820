package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// loadFromEnv overrides config from TODO_* environment variables.
func loadFromEnv(cfg *Config, sources map[string]ConfigSource) error {
	str := func(env, field string, target *string) {
		if v := os.Getenv(env); v != "" {
			*target = v
			sources[field] = SourceEnv
		}
	}
	integer := func(env, field string, target *int) error {
		v := os.Getenv(env)
		if v == "" {
			return nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s: invalid integer %q", env, v)
		}
		*target = n
		sources[field] = SourceEnv
		return nil
	}
	boolean := func(env, field string, target *bool) {
		if v := os.Getenv(env); v != "" {
			*target = boolFromString(v)
			sources[field] = SourceEnv
		}
	}

	str("TODO_STORE", "store.driver", &cfg.Store.Driver)
	str("TODO_DB", "store.path", &cfg.Store.Path)
	str("TODO_DSN", "store.dsn", &cfg.Store.DSN)
	str("TODO_LOG_DIR", "log_dir", &cfg.LogDir)
	str("TODO_LOG_LEVEL", "log_level", &cfg.LogLevel)
	str("TODO_LOG_FORMAT", "log_format", &cfg.LogFormat)
	boolean("TODO_LOG_TIMESTAMPS", "log_timestamps", &cfg.LogTimestamps)
	boolean("TODO_LOG_CALLER", "log_caller", &cfg.LogCaller)

	for _, e := range []struct {
		env, field string
		target     *int
	}{
		{"TODO_UNDO_WINDOW", "undo_window_seconds", &cfg.UndoWindowSeconds},
		{"TODO_SPLASH_DELAY", "splash_delay_ms", &cfg.SplashDelayMS},
		{"TODO_QUERY_TIMEOUT", "query_timeout_seconds", &cfg.QueryTimeoutSeconds},
		{"TODO_WORKERS", "workers", &cfg.Workers},
	} {
		if err := integer(e.env, e.field, e.target); err != nil {
			return err
		}
	}
	return nil
}

// boolFromString parses common truthy values; anything else is false.
func boolFromString(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
