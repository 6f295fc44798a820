package config

import (
	"strconv"
	"strings"
	"time"
)

// ConfigSource represents where a configuration value came from.
type ConfigSource string

const (
	SourceDefault  ConfigSource = "default"
	SourceUserFile ConfigSource = "user file"
	SourceProjFile ConfigSource = "project file"
	SourceEnv      ConfigSource = "environment"
	SourceFlag     ConfigSource = "flag"
)

// ConfigWithSources holds configuration along with the source of each field
// and the config files that were read.
type ConfigWithSources struct {
	Config  *Config
	Sources map[string]ConfigSource
	Files   []string
}

// Default values.
const (
	DefaultDriver              = "sqlite"
	DefaultDBPath              = "~/.todo/todo.db"
	DefaultDocumentPath        = "~/.todo/todo.json"
	DefaultLogDir              = "~/.todo/logs"
	DefaultLogLevel            = "info"
	DefaultLogFormat           = "text"
	DefaultUndoWindowSeconds   = 4
	DefaultSplashDelayMS       = 1000
	DefaultQueryTimeoutSeconds = 5
	DefaultWorkers             = 4
)

// Drivers lists the accepted store.driver values.
var Drivers = []string{"sqlite", "mysql", "file", "memory"}

// StoreConfig selects the task store backend.
type StoreConfig struct {
	Driver string `toml:"driver"`
	// Path is the sqlite database or JSON document path.
	Path string `toml:"path"`
	// DSN is the mysql data source name.
	DSN string `toml:"dsn"`
}

// Config holds the full configuration for todo.
type Config struct {
	Store StoreConfig `toml:"store"`

	// Logging
	LogDir        string `toml:"log_dir"`
	LogLevel      string `toml:"log_level"`
	LogFormat     string `toml:"log_format"`
	LogTimestamps bool   `toml:"log_timestamps"`
	LogCaller     bool   `toml:"log_caller"`

	// Behaviour
	UndoWindowSeconds   int `toml:"undo_window_seconds"`
	SplashDelayMS       int `toml:"splash_delay_ms"`
	QueryTimeoutSeconds int `toml:"query_timeout_seconds"`
	Workers             int `toml:"workers"`

	// Computed at load time
	ProjectRoot string `toml:"-"`
}

func (c *Config) UndoWindow() time.Duration {
	return time.Duration(c.UndoWindowSeconds) * time.Second
}

func (c *Config) SplashDelay() time.Duration {
	return time.Duration(c.SplashDelayMS) * time.Millisecond
}

func (c *Config) QueryTimeout() time.Duration {
	return time.Duration(c.QueryTimeoutSeconds) * time.Second
}

// configFields returns the configurable field names used for source tracking.
func configFields() []string {
	return []string{
		"store.driver",
		"store.path",
		"store.dsn",
		"log_dir",
		"log_level",
		"log_format",
		"log_timestamps",
		"log_caller",
		"undo_window_seconds",
		"splash_delay_ms",
		"query_timeout_seconds",
		"workers",
	}
}

// setDefaults applies default values to the config.
func setDefaults(cfg *Config) {
	cfg.Store = StoreConfig{Driver: DefaultDriver, Path: DefaultDBPath}
	cfg.LogDir = DefaultLogDir
	cfg.LogLevel = DefaultLogLevel
	cfg.LogFormat = DefaultLogFormat
	cfg.LogTimestamps = true
	cfg.LogCaller = false
	cfg.UndoWindowSeconds = DefaultUndoWindowSeconds
	cfg.SplashDelayMS = DefaultSplashDelayMS
	cfg.QueryTimeoutSeconds = DefaultQueryTimeoutSeconds
	cfg.Workers = DefaultWorkers
}

// Field is one resolved configuration value and where it came from.
type Field struct {
	Key    string
	Value  string
	Source ConfigSource
}

// Fields returns every configurable value in a stable order.
func (cws *ConfigWithSources) Fields() []Field {
	cfg := cws.Config
	fields := make([]Field, 0, len(configFields()))
	for _, key := range configFields() {
		var value string
		switch key {
		case "store.driver":
			value = cfg.Store.Driver
		case "store.path":
			value = cfg.Store.Path
		case "store.dsn":
			value = redactDSN(cfg.Store.DSN)
		case "log_dir":
			value = cfg.LogDir
		case "log_level":
			value = cfg.LogLevel
		case "log_format":
			value = cfg.LogFormat
		case "log_timestamps":
			value = strconv.FormatBool(cfg.LogTimestamps)
		case "log_caller":
			value = strconv.FormatBool(cfg.LogCaller)
		case "undo_window_seconds":
			value = strconv.Itoa(cfg.UndoWindowSeconds)
		case "splash_delay_ms":
			value = strconv.Itoa(cfg.SplashDelayMS)
		case "query_timeout_seconds":
			value = strconv.Itoa(cfg.QueryTimeoutSeconds)
		case "workers":
			value = strconv.Itoa(cfg.Workers)
		}
		fields = append(fields, Field{Key: key, Value: value, Source: cws.Sources[key]})
	}
	return fields
}

// redactDSN hides the password of a user:pass@... data source name.
func redactDSN(dsn string) string {
	at := strings.LastIndex(dsn, "@")
	if at < 0 {
		return dsn
	}
	creds := dsn[:at]
	colon := strings.Index(creds, ":")
	if colon < 0 {
		return dsn
	}
	return creds[:colon+1] + "****" + dsn[at:]
}
