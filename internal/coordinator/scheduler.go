package coordinator

import (
	"context"

	"github.com/nibzard/todo-go/internal/worker"
)

// Scheduler sequences work onto the UI context.
//
// Go runs work off the UI context; the closure it returns (if any) is then
// run on the UI context. Serial is like Go but runs jobs one at a time in
// submission order. Post queues fn onto the UI context directly.
type Scheduler interface {
	Go(name string, work func(ctx context.Context) func())
	Serial(name string, work func(ctx context.Context) func())
	Post(fn func())
}

// Inline runs everything synchronously on the caller goroutine. It is used
// by the CLI and by tests.
type Inline struct {
	ctx context.Context
}

// NewInline returns an Inline scheduler whose work sees ctx.
func NewInline(ctx context.Context) *Inline {
	return &Inline{ctx: ctx}
}

// Go runs work and its apply closure before returning.
func (s *Inline) Go(_ string, work func(ctx context.Context) func()) {
	if apply := work(s.ctx); apply != nil {
		apply()
	}
}

// Serial is Go; inline jobs are already ordered.
func (s *Inline) Serial(name string, work func(ctx context.Context) func()) {
	s.Go(name, work)
}

// Post runs fn immediately.
func (s *Inline) Post(fn func()) {
	fn()
}

// Queue runs work on a worker pool and hands the apply closures to a
// channel that the UI loop drains one at a time. Serial jobs go through a
// single-worker lane fed by a FIFO channel.
type Queue struct {
	pool   *worker.Pool
	lane   *worker.Pool
	serial chan func(ctx context.Context) func()
	ch     chan func()
}

// NewQueue creates a Queue with at most workers concurrent jobs.
func NewQueue(ctx context.Context, workers int) *Queue {
	pool := worker.New(ctx, workers, 64)
	q := &Queue{
		pool:   pool,
		lane:   worker.New(pool.Context(), 1, 1),
		serial: make(chan func(ctx context.Context) func(), 64),
		ch:     make(chan func(), 256),
	}
	q.lane.Submit("serial lane", q.drainSerial)
	return q
}

func (q *Queue) drainSerial(ctx context.Context) error {
	for {
		select {
		case work := <-q.serial:
			if apply := work(ctx); apply != nil {
				q.Post(apply)
			}
		case <-ctx.Done():
			return nil
		}
	}
}

// Go submits work to the pool; concurrent jobs may finish in any order.
func (q *Queue) Go(name string, work func(ctx context.Context) func()) {
	q.pool.Submit(name, func(ctx context.Context) error {
		if apply := work(ctx); apply != nil {
			q.Post(apply)
		}
		return ctx.Err()
	})
}

// Serial queues work behind every earlier Serial job.
func (q *Queue) Serial(_ string, work func(ctx context.Context) func()) {
	select {
	case q.serial <- work:
	case <-q.pool.Context().Done():
	}
}

// Post must not be called from the UI goroutine once the buffer is full.
func (q *Queue) Post(fn func()) {
	select {
	case q.ch <- fn:
	case <-q.pool.Context().Done():
	}
}

// C is the channel of closures to run on the UI context.
func (q *Queue) C() <-chan func() {
	return q.ch
}

// Pool exposes the underlying worker pool.
func (q *Queue) Pool() *worker.Pool {
	return q.pool
}

// Close cancels pending work and waits for running jobs.
func (q *Queue) Close() {
	q.pool.Cancel()
	q.lane.Wait()
	q.pool.Wait()
}
