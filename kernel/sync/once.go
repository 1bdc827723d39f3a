// Package sync provides synchronization primitives that are safe to use from
// both interrupt handlers and the cooperative scheduler. None of them block.
package sync

import (
	"coopos/kernel"
	"sync/atomic"
)

const (
	onceUninit uint32 = iota
	onceInitializing
	onceReady
)

var (
	errOnceAlreadyInit  = &kernel.Error{Module: "sync", Message: "once cell already initialized"}
	errOnceUninit       = &kernel.Error{Module: "sync", Message: "once cell uninitialized"}
	errOnceInitializing = &kernel.Error{Module: "sync", Message: "once cell initialization in progress"}
)

// OnceCell holds a value that is written exactly once and can afterwards be
// read concurrently without locking. Readers never wait for an in-flight
// initialization; they get an error instead.
type OnceCell[T any] struct {
	state atomic.Uint32
	value T
}

// TryInitOnce stores the value returned by fn. Only the first call runs fn;
// every other call returns an error without invoking it.
func (c *OnceCell[T]) TryInitOnce(fn func() T) *kernel.Error {
	if !c.state.CompareAndSwap(onceUninit, onceInitializing) {
		return errOnceAlreadyInit
	}

	c.value = fn()
	c.state.Store(onceReady)
	return nil
}

// TryGet returns the stored value or an error if the cell has not been
// initialized yet.
func (c *OnceCell[T]) TryGet() (T, *kernel.Error) {
	switch c.state.Load() {
	case onceReady:
		return c.value, nil
	case onceInitializing:
		var zero T
		return zero, errOnceInitializing
	default:
		var zero T
		return zero, errOnceUninit
	}
}

// IsInitialized returns true if the cell holds a value.
func (c *OnceCell[T]) IsInitialized() bool {
	return c.state.Load() == onceReady
}
