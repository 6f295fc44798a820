package coordinator

import (
	"sync"
	"time"

	"github.com/nibzard/todo-go/internal/task"
)

// DefaultUndoWindow is how long a deleted task can be restored.
const DefaultUndoWindow = 4 * time.Second

// AfterFunc starts a timer that calls f after d. The returned stop function
// cancels it.
type AfterFunc func(d time.Duration, f func()) (stop func() bool)

func timeAfterFunc(d time.Duration, f func()) func() bool {
	return time.AfterFunc(d, f).Stop
}

// Undo holds the snapshot of the most recently deleted task while the undo
// prompt is live.
type Undo struct {
	mu       sync.Mutex
	window   time.Duration
	after    AfterFunc
	sched    Scheduler
	snapshot *task.Task
	gen      uint64
	stop     func() bool
	onExpire func(task.Task)
}

// NewUndo creates an idle tracker. Expiries are delivered through sched.
// A nil after uses time.AfterFunc.
func NewUndo(window time.Duration, sched Scheduler, after AfterFunc) *Undo {
	if window <= 0 {
		window = DefaultUndoWindow
	}
	if after == nil {
		after = timeAfterFunc
	}
	return &Undo{window: window, after: after, sched: sched}
}

// OnExpire registers fn to run on the UI context when an armed snapshot
// times out.
func (u *Undo) OnExpire(fn func(task.Task)) {
	u.mu.Lock()
	u.onExpire = fn
	u.mu.Unlock()
}

// Window returns the undo window.
func (u *Undo) Window() time.Duration {
	return u.window
}

// Arm stores t as the restorable snapshot and restarts the timer.
func (u *Undo) Arm(t task.Task) {
	u.mu.Lock()
	defer u.mu.Unlock()

	u.disarmLocked()
	u.snapshot = &t
	gen := u.gen
	u.stop = u.after(u.window, func() {
		u.sched.Post(func() { u.expire(gen) })
	})
}

// Armed reports whether a snapshot is restorable.
func (u *Undo) Armed() bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.snapshot != nil
}

// Peek returns the armed snapshot without consuming it.
func (u *Undo) Peek() (task.Task, bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.snapshot == nil {
		return task.Task{}, false
	}
	return *u.snapshot, true
}

// Take returns the snapshot once and disarms.
func (u *Undo) Take() (task.Task, bool) {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.snapshot == nil {
		return task.Task{}, false
	}
	t := *u.snapshot
	u.disarmLocked()
	return t, true
}

// Discard drops the snapshot; the delete becomes final.
func (u *Undo) Discard() {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.disarmLocked()
}

func (u *Undo) disarmLocked() {
	if u.stop != nil {
		u.stop()
		u.stop = nil
	}
	u.snapshot = nil
	u.gen++
}

func (u *Undo) expire(gen uint64) {
	u.mu.Lock()
	if gen != u.gen || u.snapshot == nil {
		u.mu.Unlock()
		return
	}
	t := *u.snapshot
	u.snapshot = nil
	u.stop = nil
	u.gen++
	fn := u.onExpire
	u.mu.Unlock()

	if fn != nil {
		fn(t)
	}
}
