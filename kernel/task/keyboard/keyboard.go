// Package keyboard bridges keyboard interrupts into the cooperative task
// world. The interrupt handler pushes scancodes into a process-wide bounded
// queue and wakes the task waiting for input; tasks consume the queue through
// a ScancodeStream.
package keyboard

import (
	"coopos/device/keyboard"
	"coopos/kernel"
	"coopos/kernel/kfmt"
	"coopos/kernel/queue"
	ksync "coopos/kernel/sync"
	"coopos/kernel/task"
)

// scancodeQueueCapacity is the number of scancodes buffered while no task
// consumes them.
const scancodeQueueCapacity = 100

var (
	scancodeQueue = new(ksync.OnceCell[*queue.Bounded[uint8]])
	waker         = new(ksync.AtomicWaker)

	// decoder is prepared by Init and consumed by PrintKeypresses.
	decoder *keyboard.Decoder

	// afterRegisterFn is invoked by PollNext after registering the
	// consumer's waker and before checking the queue again.
	afterRegisterFn func()

	errStreamReinit = &kernel.Error{Module: "keyboard", Message: "ScancodeStream should only be created once"}
	errQueueUninit  = &kernel.Error{Module: "keyboard", Message: "scancode queue not initialized"}
)

// AddScancode is called by the keyboard interrupt handler. It must not block
// or allocate. Scancodes that arrive before the stream exists or while the
// queue is full are reported and dropped.
func AddScancode(scancode uint8) {
	q, err := scancodeQueue.TryGet()
	if err != nil {
		kfmt.ReportErr("scancode queue uninitialized")
		return
	}

	if !q.Push(scancode) {
		kfmt.ReportErr("scancode queue full; dropping keyboard input")
		return
	}

	waker.Wake()
}

// ScancodeStream is an infinite sequence of scancodes received by the
// keyboard interrupt handler. There is a single stream per kernel and it must
// have a single consumer.
type ScancodeStream struct{}

// NewScancodeStream creates the scancode queue and returns the stream that
// drains it. Creating a second stream causes a kernel panic.
func NewScancodeStream() *ScancodeStream {
	err := scancodeQueue.TryInitOnce(func() *queue.Bounded[uint8] {
		q, err := queue.NewBounded[uint8](scancodeQueueCapacity)
		if err != nil {
			panic(err)
		}
		return q
	})

	if err != nil {
		kfmt.ReportErr("scancode stream should only be created once")
		panic(errStreamReinit)
	}

	kfmt.ReportOK("Scancode initialized")
	return &ScancodeStream{}
}

// openStream returns the kernel's scancode stream, creating it if needed.
func openStream() *ScancodeStream {
	if scancodeQueue.IsInitialized() {
		return &ScancodeStream{}
	}
	return NewScancodeStream()
}

// PollNext returns the next scancode if one is available. Otherwise it
// arranges for the task behind cx to be woken when a scancode arrives and
// returns task.Pending.
func (s *ScancodeStream) PollNext(cx *task.Context) (uint8, task.Status) {
	q, err := scancodeQueue.TryGet()
	if err != nil {
		panic(errQueueUninit)
	}

	if scancode, ok := q.Pop(); ok {
		return scancode, task.Ready
	}

	// A scancode pushed between the pop above and the registration below
	// would not wake us, so the queue is checked once more.
	waker.Register(cx.Waker())
	if afterRegisterFn != nil {
		afterRegisterFn()
	}

	if scancode, ok := q.Pop(); ok {
		waker.Take()
		return scancode, task.Ready
	}

	return 0, task.Pending
}

// Next returns a future that resolves to the next scancode in the stream.
func (s *ScancodeStream) Next() *NextScancode {
	return &NextScancode{stream: s}
}

// NextScancode is a future that completes once a scancode is available.
type NextScancode struct {
	stream   *ScancodeStream
	scancode uint8
}

// Poll implements task.Future.
func (f *NextScancode) Poll(cx *task.Context) task.Status {
	scancode, status := f.stream.PollNext(cx)
	if status == task.Ready {
		f.scancode = scancode
	}
	return status
}

// Scancode returns the scancode that the future resolved to.
func (f *NextScancode) Scancode() uint8 {
	return f.scancode
}

// Init returns a future that creates the scancode stream and the scancode
// decoder and completes without consuming any input. Running it before the
// keyboard interrupt is unmasked ensures that no scancode arrives before
// there is a queue for it.
func Init() task.Future {
	return task.FutureFunc(func(*task.Context) task.Status {
		NewScancodeStream()
		decoder = keyboard.NewDecoder()
		return task.Ready
	})
}

// PrintKeypresses returns a future that echoes every key press to the kernel
// console. It never completes.
func PrintKeypresses() task.Future {
	var (
		stream *ScancodeStream
		dec    *keyboard.Decoder
	)

	return task.FutureFunc(func(cx *task.Context) task.Status {
		if stream == nil {
			stream = openStream()
			if dec = decoder; dec == nil {
				dec = keyboard.NewDecoder()
			}
		}

		for {
			scancode, status := stream.PollNext(cx)
			if status == task.Pending {
				return task.Pending
			}

			key, ok := dec.AddByte(scancode)
			if !ok {
				continue
			}

			if key.IsRune() {
				kfmt.Printf("%c", key.Rune)
			} else {
				kfmt.Printf("%s", key.Code.String())
			}
		}
	})
}
