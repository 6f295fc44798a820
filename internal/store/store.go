// Package store persists tasks.
//
// All backends implement Store. The default backend is SQLite; a MySQL
// dialect shares its queries, and the file and memory backends keep the
// table in process.
package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/nibzard/todo-go/internal/task"
)

// Store is the persisted task table.
type Store interface {
	// Insert stores t and returns its id. A positive t.ID is kept as is,
	// otherwise the store assigns the next id.
	Insert(ctx context.Context, t task.Task) (int, error)

	// Update overwrites the task with t.ID. Unknown ids are a no-op.
	Update(ctx context.Context, t task.Task) error

	// DeleteByID removes the task with id. Unknown ids are a no-op.
	DeleteByID(ctx context.Context, id int) error

	// DeleteAll clears the table.
	DeleteAll(ctx context.Context) error

	// GetAll returns every task ordered by id ascending.
	GetAll(ctx context.Context) ([]task.Task, error)

	// GetByID returns the task with id or task.ErrNotFound.
	GetByID(ctx context.Context, id int) (task.Task, error)

	// GetByPriorityAsc returns tasks ordered LOW, MEDIUM, HIGH, NONE, then id.
	GetByPriorityAsc(ctx context.Context) ([]task.Task, error)

	// GetByPriorityDesc returns tasks ordered HIGH, MEDIUM, LOW, NONE, then id.
	GetByPriorityDesc(ctx context.Context) ([]task.Task, error)

	// Search returns tasks whose title or description contains query,
	// case-insensitively, ordered by id.
	Search(ctx context.Context, query string) ([]task.Task, error)

	// ReadSortState returns the persisted sort filter (NONE if unset).
	ReadSortState(ctx context.Context) (task.Priority, error)

	// PersistSortState saves the sort filter.
	PersistSortState(ctx context.Context, p task.Priority) error

	// Close releases the backend.
	Close() error
}

// Supported drivers.
const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
	DriverFile   = "file"
	DriverMemory = "memory"
)

// Options selects and configures a backend.
type Options struct {
	Driver string
	// Path is the database or document path for sqlite and file.
	Path string
	// DSN is the data source name for mysql.
	DSN string
}

// Drivers returns the supported driver names.
func Drivers() []string {
	return []string{DriverSQLite, DriverMySQL, DriverFile, DriverMemory}
}

// Open opens the backend selected by opts.Driver.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Driver)) {
	case DriverSQLite, "sqlite3", "":
		return OpenSQLite(ctx, opts.Path)
	case DriverMySQL:
		return OpenMySQL(ctx, opts.DSN)
	case DriverFile, "json":
		return OpenFile(opts.Path)
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q (expected %s)", opts.Driver, strings.Join(Drivers(), "|"))
	}
}
