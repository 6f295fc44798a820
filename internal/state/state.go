// Package state provides the observable value holders the coordinators
// publish to the presentation layer.
package state

import (
	"fmt"
	"sync"
)

// Kind tags the status of an asynchronous fetch.
type Kind int

const (
	Idle Kind = iota
	Loading
	Success
	Error
)

func (k Kind) String() string {
	switch k {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Success:
		return "success"
	case Error:
		return "error"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// RequestState is the result wrapper of an asynchronous fetch.
// On Error, Data still holds the last successful value.
type RequestState[T any] struct {
	Kind Kind
	Data T
	Err  error
}

// NewIdle returns an Idle state.
func NewIdle[T any]() RequestState[T] {
	return RequestState[T]{Kind: Idle}
}

// NewLoading returns a Loading state that keeps the previous data.
func NewLoading[T any](prev T) RequestState[T] {
	return RequestState[T]{Kind: Loading, Data: prev}
}

// NewSuccess returns a Success state carrying data.
func NewSuccess[T any](data T) RequestState[T] {
	return RequestState[T]{Kind: Success, Data: data}
}

// NewError returns an Error state that retains prev.
func NewError[T any](err error, prev T) RequestState[T] {
	return RequestState[T]{Kind: Error, Data: prev, Err: err}
}

// IsSuccess reports whether the fetch completed successfully.
func (r RequestState[T]) IsSuccess() bool {
	return r.Kind == Success
}

// Observable holds a value and notifies subscribers on every Set.
type Observable[T any] struct {
	mu     sync.RWMutex
	value  T
	nextID int
	subs   map[int]func(T)
}

// NewObservable creates an Observable holding initial.
func NewObservable[T any](initial T) *Observable[T] {
	return &Observable[T]{value: initial, subs: make(map[int]func(T))}
}

// Get returns the current value.
func (o *Observable[T]) Get() T {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.value
}

// Set stores v and notifies subscribers. Subscribers run outside the lock
// and their order is unspecified.
func (o *Observable[T]) Set(v T) {
	o.mu.Lock()
	o.value = v
	subs := make([]func(T), 0, len(o.subs))
	for _, fn := range o.subs {
		subs = append(subs, fn)
	}
	o.mu.Unlock()

	for _, fn := range subs {
		fn(v)
	}
}

// Update applies fn to the current value and stores the result.
func (o *Observable[T]) Update(fn func(T) T) {
	o.Set(fn(o.Get()))
}

// Subscribe registers fn for future changes and returns a cancel function.
func (o *Observable[T]) Subscribe(fn func(T)) (cancel func()) {
	o.mu.Lock()
	id := o.nextID
	o.nextID++
	o.subs[id] = fn
	o.mu.Unlock()

	return func() {
		o.mu.Lock()
		delete(o.subs, id)
		o.mu.Unlock()
	}
}
