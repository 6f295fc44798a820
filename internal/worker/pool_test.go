package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestPoolBoundsConcurrency(t *testing.T) {
	p := New(context.Background(), 2, 0)

	var running, peak int32
	for i := 0; i < 8; i++ {
		p.Submit("job", func(ctx context.Context) error {
			n := atomic.AddInt32(&running, 1)
			for {
				old := atomic.LoadInt32(&peak)
				if n <= old || atomic.CompareAndSwapInt32(&peak, old, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			atomic.AddInt32(&running, -1)
			return nil
		})
	}
	if errs := p.Wait(); len(errs) != 0 {
		t.Fatalf("Wait errs = %v", errs)
	}
	if peak > 2 {
		t.Fatalf("peak concurrency = %d, want <= 2", peak)
	}
	if got := len(p.Results()); got != 8 {
		t.Fatalf("results = %d, want 8", got)
	}
}

func TestPoolCollectsErrors(t *testing.T) {
	p := New(context.Background(), 0, 0)
	boom := errors.New("boom")

	p.Submit("ok", func(context.Context) error { return nil })
	p.Submit("bad", func(context.Context) error { return boom })

	errs := p.Wait()
	if len(errs) != 1 || !errors.Is(errs[0], boom) {
		t.Fatalf("Wait errs = %v, want [bad: boom]", errs)
	}
	if errs[0].Error() != "bad: boom" {
		t.Fatalf("error = %q", errs[0])
	}
}

func TestPoolCancel(t *testing.T) {
	p := New(context.Background(), 1, 0)
	p.Cancel()

	if p.Submit("late", func(context.Context) error { return nil }) {
		t.Fatalf("Submit after Cancel reported true")
	}
	if p.Context().Err() == nil {
		t.Fatalf("pool context not cancelled")
	}
}

func TestPoolKeepsRecentResults(t *testing.T) {
	p := New(context.Background(), 1, 3)
	for i := 0; i < 5; i++ {
		p.Submit("job", func(context.Context) error { return nil })
	}
	p.Wait()
	if got := len(p.Results()); got != 3 {
		t.Fatalf("results = %d, want 3", got)
	}
}
