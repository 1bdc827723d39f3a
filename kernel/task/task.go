// Package task implements cooperative multitasking for the kernel. Tasks wrap
// asynchronous computations (Futures) that are advanced by an executor until
// they report completion. A computation that cannot make progress registers
// the Waker supplied through its Context with whatever it is waiting on and
// returns Pending; invoking that Waker schedules the task to be polled again.
package task

import (
	"strconv"
	"sync/atomic"
)

// Status is returned by Future.Poll.
type Status uint8

const (
	// Pending indicates that the computation cannot make progress until
	// its waker is invoked.
	Pending Status = iota

	// Ready indicates that the computation has completed.
	Ready
)

// Context is passed to Future.Poll and carries the waker of the task being
// polled.
type Context struct {
	waker *Waker
}

// NewContext returns a Context that hands out w.
func NewContext(w *Waker) *Context {
	return &Context{waker: w}
}

// Waker returns the waker that reschedules the task being polled. Futures
// that suspend must register it before returning Pending.
func (cx *Context) Waker() *Waker {
	return cx.waker
}

// Future is an asynchronous computation that can be advanced incrementally.
// Poll must not block; it either completes (Ready) or arranges for the
// context waker to be invoked once progress is possible (Pending).
type Future interface {
	Poll(cx *Context) Status
}

// FutureFunc adapts a function into a Future.
type FutureFunc func(cx *Context) Status

// Poll calls f(cx).
func (f FutureFunc) Poll(cx *Context) Status {
	return f(cx)
}

// ID uniquely identifies a Task for the lifetime of the kernel.
type ID uint64

// lastID holds the most recently allocated task ID.
var lastID atomic.Uint64

// nextID returns a new, strictly increasing task ID. The first ID is 1.
func nextID() ID {
	return ID(lastID.Add(1))
}

// Task couples a Future with a unique ID. Tasks are ordered and compared by
// their IDs.
type Task struct {
	id     ID
	future Future
}

// New wraps f into a Task with a freshly allocated ID.
func New(f Future) *Task {
	return &Task{
		id:     nextID(),
		future: f,
	}
}

// NewFunc is a shorthand for New(FutureFunc(fn)).
func NewFunc(fn func(cx *Context) Status) *Task {
	return New(FutureFunc(fn))
}

// ID returns the task ID.
func (t *Task) ID() ID {
	return t.id
}

// Equal returns true if both tasks carry the same ID.
func (t *Task) Equal(other *Task) bool {
	return t.id == other.id
}

// Less returns true if t was created before other.
func (t *Task) Less(other *Task) bool {
	return t.id < other.id
}

// String implements fmt.Stringer.
func (t *Task) String() string {
	return "Task{id: " + strconv.FormatUint(uint64(t.id), 10) + "}"
}

func (t *Task) poll(cx *Context) Status {
	return t.future.Poll(cx)
}
