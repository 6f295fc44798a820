package config

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Load loads configuration from defaults, config files, environment and the
// flags in args. Flags are registered on fs, which the caller may have
// populated with its own command flags beforehand.
func Load(fs *flag.FlagSet, args []string) (*Config, error) {
	cws, err := LoadWithSources(fs, args)
	if err != nil {
		return nil, err
	}
	return cws.Config, nil
}

// LoadWithSources loads configuration and tracks the source of each value.
func LoadWithSources(fs *flag.FlagSet, args []string) (*ConfigWithSources, error) {
	cfg := &Config{}
	setDefaults(cfg)
	cws := &ConfigWithSources{Config: cfg, Sources: make(map[string]ConfigSource)}
	for _, field := range configFields() {
		cws.Sources[field] = SourceDefault
	}

	if path := findUserConfigFile(); path != "" {
		if err := loadConfigFile(cfg, path, cws.Sources, SourceUserFile); err != nil {
			return nil, fmt.Errorf("loading user config file %s: %w", path, err)
		}
		cws.Files = append(cws.Files, path)
	}
	if path := findProjectConfigFile(); path != "" {
		if err := loadConfigFile(cfg, path, cws.Sources, SourceProjFile); err != nil {
			return nil, fmt.Errorf("loading project config file %s: %w", path, err)
		}
		cws.Files = append(cws.Files, path)
	}

	if err := loadFromEnv(cfg, cws.Sources); err != nil {
		return nil, err
	}

	if err := parseFlags(cfg, fs, args, cws.Sources); err != nil {
		return nil, fmt.Errorf("parsing flags: %w", err)
	}

	if err := finalizeConfig(cfg, cws.Sources); err != nil {
		return nil, fmt.Errorf("finalizing config: %w", err)
	}
	return cws, nil
}

// loadConfigFile decodes a TOML file over cfg and marks the keys it defines.
func loadConfigFile(cfg *Config, path string, sources map[string]ConfigSource, source ConfigSource) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	for _, field := range configFields() {
		if md.IsDefined(strings.Split(field, ".")...) {
			sources[field] = source
		}
	}
	return nil
}

// finalizeConfig computes derived values and validates the result.
func finalizeConfig(cfg *Config, sources map[string]ConfigSource) error {
	cfg.Store.Driver = strings.ToLower(strings.TrimSpace(cfg.Store.Driver))
	if cfg.Store.Driver == "sqlite3" {
		cfg.Store.Driver = "sqlite"
	}
	if !validDriver(cfg.Store.Driver) {
		return fmt.Errorf("store.driver %q must be one of %s", cfg.Store.Driver, strings.Join(Drivers, ", "))
	}
	if cfg.Store.Driver == "file" && sources["store.path"] == SourceDefault {
		cfg.Store.Path = DefaultDocumentPath
	}
	if cfg.Store.Driver == "mysql" && strings.TrimSpace(cfg.Store.DSN) == "" {
		return fmt.Errorf("store.dsn is required for the mysql driver")
	}

	if cfg.ProjectRoot == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("getting working directory: %w", err)
		}
		cfg.ProjectRoot = wd
	}

	cfg.LogDir = absPath(cfg.ProjectRoot, expandPath(cfg.LogDir))
	if cfg.Store.Path != ":memory:" {
		cfg.Store.Path = absPath(cfg.ProjectRoot, expandPath(cfg.Store.Path))
	}

	switch {
	case cfg.UndoWindowSeconds < 1:
		return fmt.Errorf("undo_window_seconds must be at least 1, got %d", cfg.UndoWindowSeconds)
	case cfg.SplashDelayMS < 0:
		return fmt.Errorf("splash_delay_ms must not be negative, got %d", cfg.SplashDelayMS)
	case cfg.QueryTimeoutSeconds < 1:
		return fmt.Errorf("query_timeout_seconds must be at least 1, got %d", cfg.QueryTimeoutSeconds)
	case cfg.Workers < 1:
		return fmt.Errorf("workers must be at least 1, got %d", cfg.Workers)
	}
	return nil
}

func validDriver(d string) bool {
	for _, known := range Drivers {
		if d == known {
			return true
		}
	}
	return false
}

func absPath(root, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, p)
}

// ConfigFile returns the most specific config file that was read.
func (cws *ConfigWithSources) ConfigFile() string {
	if len(cws.Files) == 0 {
		return ""
	}
	return cws.Files[len(cws.Files)-1]
}
