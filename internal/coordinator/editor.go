package coordinator

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/nibzard/todo-go/internal/repository"
	"github.com/nibzard/todo-go/internal/state"
	"github.com/nibzard/todo-go/internal/task"
)

// EditBuffer is the task being created or edited.
type EditBuffer struct {
	ID          int
	Title       string
	Description string
	Priority    task.Priority
}

// DefaultBuffer is the create-mode buffer.
func DefaultBuffer() EditBuffer {
	return EditBuffer{ID: task.NewID, Priority: task.PriorityLow}
}

// Task assembles a task from the buffer. A nil existingID yields task.NewID.
func (b EditBuffer) Task(existingID *int) task.Task {
	id := task.NewID
	if existingID != nil {
		id = *existingID
	}
	return task.Task{ID: id, Title: b.Title, Description: b.Description, Priority: b.Priority}
}

// Editor owns the edit buffer.
type Editor struct {
	repo   *repository.Repository
	sched  Scheduler
	logger *log.Logger

	mu  sync.Mutex
	gen uint64

	// Fields publishes the buffer after every change.
	Fields *state.Observable[EditBuffer]
}

// NewEditor creates an Editor in create mode.
func NewEditor(repo *repository.Repository, sched Scheduler, logger *log.Logger) *Editor {
	return &Editor{
		repo:   repo,
		sched:  sched,
		logger: orDiscard(logger),
		Fields: state.NewObservable(DefaultBuffer()),
	}
}

func orDiscard(l *log.Logger) *log.Logger {
	if l == nil {
		return log.New(io.Discard)
	}
	return l
}

func (e *Editor) nextGen() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.gen++
	return e.gen
}

func (e *Editor) current(gen uint64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.gen == gen
}

// LoadSelectedTask fills the buffer for id. task.NewID resets to create-mode
// defaults at once; any other id is fetched off the UI context, and a
// missing task or failed fetch also falls back to the defaults.
func (e *Editor) LoadSelectedTask(id int) {
	gen := e.nextGen()
	if id == task.NewID {
		e.Fields.Set(DefaultBuffer())
		return
	}

	e.sched.Go("load task", func(ctx context.Context) func() {
		t, err := e.repo.Get(ctx, id)
		return func() {
			if !e.current(gen) {
				return
			}
			if err != nil {
				e.logger.Warn("falling back to new task", "id", id, "err", err)
				e.Fields.Set(DefaultBuffer())
				return
			}
			e.Fields.Set(EditBuffer{ID: t.ID, Title: t.Title, Description: t.Description, Priority: t.Priority})
		}
	})
}

// LoadFromTask fills the buffer from t without a store call.
func (e *Editor) LoadFromTask(t task.Task) {
	e.nextGen()
	e.Fields.Set(EditBuffer{ID: t.ID, Title: t.Title, Description: t.Description, Priority: t.Priority})
}

func (e *Editor) UpdateTitle(s string) {
	e.Fields.Update(func(b EditBuffer) EditBuffer { b.Title = s; return b })
}

func (e *Editor) UpdateDescription(s string) {
	e.Fields.Update(func(b EditBuffer) EditBuffer { b.Description = s; return b })
}

func (e *Editor) UpdatePriority(p task.Priority) {
	e.Fields.Update(func(b EditBuffer) EditBuffer { b.Priority = p; return b })
}

// ValidateFields reports whether title and description are both non-blank.
func (e *Editor) ValidateFields() bool {
	return e.Validate() == nil
}

// Validate returns task.ErrValidationFailed naming the blank fields.
func (e *Editor) Validate() error {
	b := e.Fields.Get()
	var missing []string
	if task.IsBlank(b.Title) {
		missing = append(missing, "title")
	}
	if task.IsBlank(b.Description) {
		missing = append(missing, "description")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", task.ErrValidationFailed, strings.Join(missing, ", "))
	}
	return nil
}

// BuildTask assembles the buffered task with existingID, or task.NewID if nil.
func (e *Editor) BuildTask(existingID *int) task.Task {
	return e.Fields.Get().Task(existingID)
}

// Buffer returns a copy of the buffer.
func (e *Editor) Buffer() EditBuffer {
	return e.Fields.Get()
}
