// Package repository is the context-aware facade the coordinators use to
// reach the task store.
package repository

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/nibzard/todo-go/internal/store"
	"github.com/nibzard/todo-go/internal/task"
)

// DefaultTimeout bounds a single store call.
const DefaultTimeout = 5 * time.Second

// Error reports a failed store operation.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying store error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports every failure except a missing record as task.ErrStoreUnavailable.
func (e *Error) Is(target error) bool {
	return target == task.ErrStoreUnavailable && !errors.Is(e.Err, task.ErrNotFound)
}

// Repository wraps a Store with timeouts, logging and error classification.
type Repository struct {
	store   store.Store
	timeout time.Duration
	logger  *log.Logger
}

// New creates a repository over s. A nil logger discards output and a
// non-positive timeout uses DefaultTimeout.
func New(s store.Store, logger *log.Logger, timeout time.Duration) *Repository {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Repository{store: s, timeout: timeout, logger: logger}
}

func call[T any](ctx context.Context, r *Repository, op string, fn func(context.Context) (T, error)) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	start := time.Now()
	v, err := fn(ctx)
	elapsed := time.Since(start)
	if err != nil {
		var zero T
		if errors.Is(err, task.ErrNotFound) {
			r.logger.Debug("not found", "op", op, "elapsed", elapsed)
		} else {
			r.logger.Warn("store call failed", "op", op, "elapsed", elapsed, "err", err)
		}
		return zero, &Error{Op: op, Err: err}
	}
	r.logger.Debug("store call", "op", op, "elapsed", elapsed)
	return v, nil
}

func exec(ctx context.Context, r *Repository, op string, fn func(context.Context) error) error {
	_, err := call(ctx, r, op, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

// All returns every task ordered by id.
func (r *Repository) All(ctx context.Context) ([]task.Task, error) {
	return call(ctx, r, "get all tasks", r.store.GetAll)
}

// Get returns the task with id.
func (r *Repository) Get(ctx context.Context, id int) (task.Task, error) {
	return call(ctx, r, "get task", func(ctx context.Context) (task.Task, error) {
		return r.store.GetByID(ctx, id)
	})
}

// ByPriorityAsc returns tasks LOW first.
func (r *Repository) ByPriorityAsc(ctx context.Context) ([]task.Task, error) {
	return call(ctx, r, "sort by low priority", r.store.GetByPriorityAsc)
}

// ByPriorityDesc returns tasks HIGH first.
func (r *Repository) ByPriorityDesc(ctx context.Context) ([]task.Task, error) {
	return call(ctx, r, "sort by high priority", r.store.GetByPriorityDesc)
}

// Search returns tasks matching query. An empty query is rejected without
// touching the store.
func (r *Repository) Search(ctx context.Context, query string) ([]task.Task, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, task.ErrEmptyQuery
	}
	return call(ctx, r, "search", func(ctx context.Context) ([]task.Task, error) {
		return r.store.Search(ctx, query)
	})
}

// Add inserts t and returns its id.
func (r *Repository) Add(ctx context.Context, t task.Task) (int, error) {
	return call(ctx, r, "add task", func(ctx context.Context) (int, error) {
		return r.store.Insert(ctx, t)
	})
}

// Update overwrites the stored task with t.ID.
func (r *Repository) Update(ctx context.Context, t task.Task) error {
	return exec(ctx, r, "update task", func(ctx context.Context) error {
		return r.store.Update(ctx, t)
	})
}

// Delete removes the task with id.
func (r *Repository) Delete(ctx context.Context, id int) error {
	return exec(ctx, r, "delete task", func(ctx context.Context) error {
		return r.store.DeleteByID(ctx, id)
	})
}

// DeleteAll clears the table.
func (r *Repository) DeleteAll(ctx context.Context) error {
	return exec(ctx, r, "delete all tasks", r.store.DeleteAll)
}

// SortState returns the saved sort filter.
func (r *Repository) SortState(ctx context.Context) (task.Priority, error) {
	return call(ctx, r, "read sort state", r.store.ReadSortState)
}

// SaveSortState persists the sort filter.
func (r *Repository) SaveSortState(ctx context.Context, p task.Priority) error {
	return exec(ctx, r, "persist sort state", func(ctx context.Context) error {
		return r.store.PersistSortState(ctx, p)
	})
}

// Close closes the underlying store.
func (r *Repository) Close() error {
	return r.store.Close()
}
