package task

// SimpleExecutor polls its tasks in a round-robin fashion until they
// complete. It ignores wakeups, never halts the CPU and does not depend on
// interrupts, which makes it usable during early boot before the interrupt
// subsystem is online.
type SimpleExecutor struct {
	queue []*Task
}

// NewSimpleExecutor returns an executor with no tasks.
func NewSimpleExecutor() *SimpleExecutor {
	return &SimpleExecutor{}
}

// Spawn appends t to the executor's queue.
func (e *SimpleExecutor) Spawn(t *Task) {
	e.queue = append(e.queue, t)
}

// Len returns the number of tasks that have not completed yet.
func (e *SimpleExecutor) Len() int {
	return len(e.queue)
}

// Run polls every queued task until all of them have completed.
func (e *SimpleExecutor) Run() {
	cx := NewContext(NoopWaker())
	for len(e.queue) != 0 {
		t := e.queue[0]
		e.queue[0] = nil
		e.queue = e.queue[1:]

		if t.poll(cx) == Pending {
			e.queue = append(e.queue, t)
		}
	}
}

// BlockOn spins on f until it completes.
func BlockOn(f Future) {
	cx := NewContext(NoopWaker())
	for f.Poll(cx) == Pending {
	}
}
