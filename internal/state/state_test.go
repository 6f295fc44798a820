package state

import (
	"errors"
	"testing"
)

func TestRequestStateConstructors(t *testing.T) {
	idle := NewIdle[[]int]()
	if idle.Kind != Idle || idle.IsSuccess() {
		t.Errorf("idle: got %+v", idle)
	}

	ok := NewSuccess([]int{1, 2})
	if !ok.IsSuccess() || len(ok.Data) != 2 {
		t.Errorf("success: got %+v", ok)
	}

	boom := errors.New("boom")
	failed := NewError(boom, ok.Data)
	if failed.Kind != Error || !errors.Is(failed.Err, boom) {
		t.Errorf("error: got %+v", failed)
	}
	if len(failed.Data) != 2 {
		t.Errorf("error state should retain previous data, got %v", failed.Data)
	}

	loading := NewLoading(ok.Data)
	if loading.Kind != Loading || len(loading.Data) != 2 {
		t.Errorf("loading: got %+v", loading)
	}
}

func TestObservable(t *testing.T) {
	t.Run("get returns initial value", func(t *testing.T) {
		o := NewObservable("a")
		if got := o.Get(); got != "a" {
			t.Errorf("Get() = %q, want a", got)
		}
	})

	t.Run("set notifies subscribers", func(t *testing.T) {
		o := NewObservable(0)
		var seen []int
		o.Subscribe(func(v int) { seen = append(seen, v) })

		o.Set(1)
		o.Set(2)

		if len(seen) != 2 || seen[0] != 1 || seen[1] != 2 {
			t.Errorf("seen = %v, want [1 2]", seen)
		}
	})

	t.Run("cancel stops notifications", func(t *testing.T) {
		o := NewObservable(0)
		calls := 0
		cancel := o.Subscribe(func(int) { calls++ })
		o.Set(1)
		cancel()
		o.Set(2)

		if calls != 1 {
			t.Errorf("calls = %d, want 1", calls)
		}
	})

	t.Run("update applies function", func(t *testing.T) {
		o := NewObservable(2)
		o.Update(func(v int) int { return v * 10 })
		if got := o.Get(); got != 20 {
			t.Errorf("Get() = %d, want 20", got)
		}
	})

	t.Run("subscriber may read value", func(t *testing.T) {
		o := NewObservable("x")
		var read string
		o.Subscribe(func(string) { read = o.Get() })
		o.Set("y")
		if read != "y" {
			t.Errorf("read = %q, want y", read)
		}
	})
}
