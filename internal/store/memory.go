package store

import (
	"context"
	"sync"

	"github.com/nibzard/todo-go/internal/task"
)

// Memory is an in-process Store. It is safe for concurrent use.
type Memory struct {
	mu sync.RWMutex
	tb *table
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{tb: newTable()}
}

func (m *Memory) Insert(ctx context.Context, t task.Task) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tb.insert(t)
}

func (m *Memory) Update(ctx context.Context, t task.Task) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tb.update(t)
	return nil
}

func (m *Memory) DeleteByID(ctx context.Context, id int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tb.remove(id)
	return nil
}

func (m *Memory) DeleteAll(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tb.clear()
	return nil
}

func (m *Memory) GetAll(ctx context.Context) ([]task.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.tb.all(), nil
}

func (m *Memory) GetByID(ctx context.Context, id int) (task.Task, error) {
	if err := ctx.Err(); err != nil {
		return task.Task{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.tb.get(id)
}

func (m *Memory) GetByPriorityAsc(ctx context.Context) ([]task.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.tb.byRank(task.Priority.AscRank), nil
}

func (m *Memory) GetByPriorityDesc(ctx context.Context) ([]task.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.tb.byRank(task.Priority.DescRank), nil
}

func (m *Memory) Search(ctx context.Context, query string) ([]task.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.tb.search(query), nil
}

func (m *Memory) ReadSortState(ctx context.Context) (task.Priority, error) {
	if err := ctx.Err(); err != nil {
		return task.PriorityNone, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.tb.sortState(), nil
}

func (m *Memory) PersistSortState(ctx context.Context, p task.Priority) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tb.Sort = p.String()
	return nil
}

// Close is a no-op.
func (m *Memory) Close() error {
	return nil
}
