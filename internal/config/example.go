package config

// ExampleConfig returns an example configuration showing all available options.
func ExampleConfig() string {
	return `# todo configuration file
# Values can be overridden by TODO_* environment variables or CLI flags

[store]
# Backend: sqlite, mysql, file or memory
driver = "sqlite"

# SQLite database path, or the JSON document path for the file driver
# (supports ~ expansion and %VAR% on Windows)
path = "~/.todo/todo.db"

# MySQL data source name, required for driver = "mysql"
# dsn = "todo:secret@tcp(127.0.0.1:3306)/todo"

# Log directory; every run writes its own log file here
log_dir = "~/.todo/logs"

# Log level: debug, info, warn, error
log_level = "info"

# Log format: text, json, logfmt
log_format = "text"

log_timestamps = true
log_caller = false

# Seconds a deleted task can be restored with UNDO
undo_window_seconds = 4

# Splash screen duration in milliseconds (0 skips it)
splash_delay_ms = 1000

# Timeout for a single store call
query_timeout_seconds = 5

# Background workers for store I/O in the terminal UI
workers = 4
`
}
