package task

import (
	"coopos/kernel"
	"coopos/kernel/queue"
)

var (
	errWakeQueueFull = &kernel.Error{Module: "task", Message: "ready queue full; cannot record wakeup"}

	noopWaker = &Waker{}
)

// Waker reschedules a single task by pushing its ID to the executor's ready
// queue. A Waker may be retained by whatever the task is waiting on and
// invoked from any context, including interrupt handlers, for as long as the
// holder keeps a reference to it.
type Waker struct {
	id    ID
	queue *queue.Bounded[ID]
}

// newWaker returns a waker for the task with the given ID.
func newWaker(id ID, readyQueue *queue.Bounded[ID]) *Waker {
	return &Waker{id: id, queue: readyQueue}
}

// NoopWaker returns a waker whose Wake method does nothing. It is used by
// executors that poll tasks in a loop regardless of wakeups.
func NoopWaker() *Waker {
	return noopWaker
}

// TaskID returns the ID of the task that this waker reschedules.
func (w *Waker) TaskID() ID {
	return w.id
}

// Wake pushes the task ID to the ready queue. Each call enqueues the ID once;
// waking a task that is already queued results in a harmless extra poll.
//
// A wakeup that cannot be recorded would leave the task suspended forever,
// so Wake panics if the ready queue is full.
func (w *Waker) Wake() {
	if w.queue == nil {
		return
	}

	if !w.queue.Push(w.id) {
		panic(errWakeQueueFull)
	}
}
