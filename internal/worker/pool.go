// Package worker runs background jobs with bounded concurrency.
package worker

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Result is the outcome of one job.
type Result struct {
	Name     string
	Err      error
	Duration time.Duration
}

// Pool runs submitted jobs on goroutines, at most maxWorkers at a time.
type Pool struct {
	maxWorkers int
	semaphore  chan struct{}
	wg         sync.WaitGroup
	mu         sync.Mutex
	results    []Result
	keep       int
	ctx        context.Context
	cancel     context.CancelFunc
}

// New creates a pool bound to ctx. maxWorkers <= 0 means unbounded.
// keep caps the number of retained results; 0 keeps all of them.
func New(ctx context.Context, maxWorkers, keep int) *Pool {
	ctx, cancel := context.WithCancel(ctx)
	if maxWorkers < 0 {
		maxWorkers = 0
	}
	return &Pool{
		maxWorkers: maxWorkers,
		semaphore:  make(chan struct{}, maxWorkers),
		keep:       keep,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Context returns the pool context. It is cancelled by Cancel and Wait.
func (p *Pool) Context() context.Context {
	return p.ctx
}

// Submit schedules fn and returns immediately. It reports false when the
// pool is already cancelled and fn will not run.
func (p *Pool) Submit(name string, fn func(ctx context.Context) error) bool {
	if p.ctx.Err() != nil {
		return false
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()

		if p.maxWorkers > 0 {
			select {
			case p.semaphore <- struct{}{}:
				defer func() { <-p.semaphore }()
			case <-p.ctx.Done():
				p.record(Result{Name: name, Err: p.ctx.Err()})
				return
			}
		}

		start := time.Now()
		err := fn(p.ctx)
		p.record(Result{Name: name, Err: err, Duration: time.Since(start)})
	}()
	return true
}

func (p *Pool) record(r Result) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.results = append(p.results, r)
	if p.keep > 0 && len(p.results) > p.keep {
		p.results = append(p.results[:0], p.results[len(p.results)-p.keep:]...)
	}
}

// Wait blocks until every submitted job finished, cancels the pool and
// returns the errors of failed jobs.
func (p *Pool) Wait() []error {
	p.wg.Wait()
	p.cancel()

	p.mu.Lock()
	defer p.mu.Unlock()

	var errs []error
	for _, r := range p.results {
		if r.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", r.Name, r.Err))
		}
	}
	return errs
}

// Results returns a snapshot of the retained results.
func (p *Pool) Results() []Result {
	p.mu.Lock()
	defer p.mu.Unlock()

	results := make([]Result, len(p.results))
	copy(results, p.results)
	return results
}

// Cancel stops pending jobs. Running jobs see their context cancelled.
func (p *Pool) Cancel() {
	p.cancel()
}
