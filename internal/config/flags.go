package config

import "flag"

// flagFields maps flag names to the config fields they set.
var flagFields = map[string]string{
	"store":          "store.driver",
	"db":             "store.path",
	"dsn":            "store.dsn",
	"log-dir":        "log_dir",
	"log-level":      "log_level",
	"log-format":     "log_format",
	"log-timestamps": "log_timestamps",
	"log-caller":     "log_caller",
	"undo-window":    "undo_window_seconds",
	"splash-delay":   "splash_delay_ms",
}

// parseFlags binds the config flags onto fs, parses args and records which
// fields the flags set. Flag defaults are the values loaded so far, so an
// unset flag leaves the lower layers in place.
func parseFlags(cfg *Config, fs *flag.FlagSet, args []string, sources map[string]ConfigSource) error {
	if fs == nil {
		fs = flag.NewFlagSet("todo", flag.ContinueOnError)
	}

	fs.StringVar(&cfg.Store.Driver, "store", cfg.Store.Driver, "Task store driver (sqlite, mysql, file, memory)")
	fs.StringVar(&cfg.Store.Path, "db", cfg.Store.Path, "Database or document path")
	fs.StringVar(&cfg.Store.DSN, "dsn", cfg.Store.DSN, "MySQL data source name")
	fs.StringVar(&cfg.LogDir, "log-dir", cfg.LogDir, "Log directory")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format (text, json, logfmt)")
	fs.BoolVar(&cfg.LogTimestamps, "log-timestamps", cfg.LogTimestamps, "Show timestamps in logs")
	fs.BoolVar(&cfg.LogCaller, "log-caller", cfg.LogCaller, "Show caller location in logs")
	fs.IntVar(&cfg.UndoWindowSeconds, "undo-window", cfg.UndoWindowSeconds, "Seconds a deleted task can be restored")
	fs.IntVar(&cfg.SplashDelayMS, "splash-delay", cfg.SplashDelayMS, "Splash screen duration in milliseconds (0 skips it)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	fs.Visit(func(f *flag.Flag) {
		if field, ok := flagFields[f.Name]; ok {
			sources[field] = SourceFlag
		}
	})
	return nil
}
