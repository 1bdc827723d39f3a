package task

import (
	"coopos/kernel"
	"coopos/kernel/cpu"
	"coopos/kernel/queue"
	"slices"
)

// DefaultQueueCapacity is the ready queue capacity used when no explicit
// capacity is requested.
const DefaultQueueCapacity = 100

var (
	errDuplicateTask  = &kernel.Error{Module: "task", Message: "task with same ID already in tasks"}
	errQueueFull      = &kernel.Error{Module: "task", Message: "ready queue full"}
	errQueueEmpty     = &kernel.Error{Module: "task", Message: "ready queue empty"}
	errBadCapacity    = &kernel.Error{Module: "task", Message: "ready queue capacity must be positive"}
	errExecutorNilCPU = &kernel.Error{Module: "task", Message: "executor requires a CPU"}
)

// CPU provides the interrupt flag operations that the executor needs to put
// the processor to sleep without missing a wakeup.
type CPU interface {
	// DisableInterrupts clears the interrupt flag.
	DisableInterrupts()

	// EnableInterrupts sets the interrupt flag.
	EnableInterrupts()

	// EnableInterruptsAndHalt sets the interrupt flag and waits for the
	// next interrupt. An interrupt that became pending while interrupts
	// were disabled must terminate the wait.
	EnableInterruptsAndHalt()
}

// Option customizes Executor construction.
type Option func(*Executor)

// WithCapacity sets the capacity of the ready queue. The capacity bounds the
// number of outstanding wakeups and must be sized for the expected number of
// concurrently runnable tasks.
func WithCapacity(capacity int) Option {
	return func(e *Executor) {
		e.capacity = capacity
	}
}

// WithCPU overrides the processor used by the idle protocol.
func WithCPU(c CPU) Option {
	return func(e *Executor) {
		e.cpu = c
	}
}

// Executor runs tasks on the current processor. Tasks become runnable when
// they are spawned and whenever their waker is invoked; when no task is
// runnable the executor halts the CPU until an interrupt arrives.
//
// The task table and waker cache are only accessed by the goroutine that
// drives the executor. The ready queue is shared with wakers that may run in
// interrupt context.
type Executor struct {
	tasks      map[ID]*Task
	readyQueue *queue.Bounded[ID]
	wakers     map[ID]*Waker
	cpu        CPU
	capacity   int

	// afterIdleCheckFn is invoked by sleepIfIdle between the empty check
	// and the halt. Tests use it to inject interrupts.
	afterIdleCheckFn func()
}

// NewExecutor creates an executor with an empty task table. Unless
// overridden, the ready queue holds DefaultQueueCapacity entries and the idle
// protocol drives the local CPU.
func NewExecutor(opts ...Option) *Executor {
	e := &Executor{
		tasks:    make(map[ID]*Task),
		wakers:   make(map[ID]*Waker),
		cpu:      cpu.Local{},
		capacity: DefaultQueueCapacity,
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.cpu == nil {
		panic(errExecutorNilCPU)
	}

	if e.capacity <= 0 {
		panic(errBadCapacity)
	}

	var err *kernel.Error
	if e.readyQueue, err = queue.NewBounded[ID](e.capacity); err != nil {
		panic(err)
	}

	return e
}

// Spawn hands t to the executor and marks it as runnable. Spawning a task
// whose ID is already known to the executor or spawning while the ready
// queue is full is a programming error and causes a kernel panic.
func (e *Executor) Spawn(t *Task) {
	if _, exists := e.tasks[t.id]; exists {
		panic(errDuplicateTask)
	}

	if !e.readyQueue.Push(t.id) {
		panic(errQueueFull)
	}
	e.tasks[t.id] = t
}

// Run polls runnable tasks forever, halting the CPU whenever there is no
// work left. Run never returns.
func (e *Executor) Run() {
	for {
		e.runReadyTasks()
		e.sleepIfIdle()
	}
}

// RunFirstTaskInQueue pops a single task ID from the ready queue and polls
// the corresponding task once. It is meant for driving initialization tasks
// to their first suspension point before Run takes over. Calling it with an
// empty ready queue causes a kernel panic.
func (e *Executor) RunFirstTaskInQueue() {
	id, ok := e.readyQueue.Pop()
	if !ok {
		panic(errQueueEmpty)
	}

	e.runTask(id)
}

// Len returns the number of tasks that have not completed yet.
func (e *Executor) Len() int {
	return len(e.tasks)
}

// TaskIDs returns the IDs of all live tasks in ascending order.
func (e *Executor) TaskIDs() []ID {
	ids := make([]ID, 0, len(e.tasks))
	for id := range e.tasks {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// QueueLen returns the number of entries in the ready queue.
func (e *Executor) QueueLen() int {
	return e.readyQueue.Len()
}

// runReadyTasks polls tasks until the ready queue is drained. Tasks woken
// while draining are polled in the same pass.
func (e *Executor) runReadyTasks() {
	for {
		id, ok := e.readyQueue.Pop()
		if !ok {
			return
		}

		e.runTask(id)
	}
}

// runTask polls the task with the given ID once. IDs of tasks that have
// already completed are ignored; they show up when a waker fires after its
// task finished or when a task was woken more than once.
func (e *Executor) runTask(id ID) {
	t, ok := e.tasks[id]
	if !ok {
		return
	}

	w, ok := e.wakers[id]
	if !ok {
		w = newWaker(id, e.readyQueue)
		e.wakers[id] = w
	}

	if t.poll(NewContext(w)) == Ready {
		delete(e.tasks, id)
		delete(e.wakers, id)
	}
}

// sleepIfIdle halts the CPU if the ready queue is empty. Interrupts are
// disabled while the queue is inspected; if it is empty, re-enabling them
// and halting happens in one step so a wakeup delivered by an interrupt
// after the check still terminates the halt.
func (e *Executor) sleepIfIdle() {
	e.cpu.DisableInterrupts()
	if !e.readyQueue.IsEmpty() {
		e.cpu.EnableInterrupts()
		return
	}

	if e.afterIdleCheckFn != nil {
		e.afterIdleCheckFn()
	}
	e.cpu.EnableInterruptsAndHalt()
}
