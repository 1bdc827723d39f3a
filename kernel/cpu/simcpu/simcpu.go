// Package simcpu simulates a single processor core with an interrupt flag and
// eight latched interrupt request lines. It lets the scheduler and the
// interrupt-fed drivers run unmodified in a hosted process: devices raise
// lines from their own goroutines and the handlers run as soon as the
// simulated core has interrupts enabled.
//
// Handlers never run concurrently with each other and never start while the
// interrupt flag is cleared. A request raised while interrupts are disabled
// stays pending, like a bit in the IRR of an 8259 PIC, until the flag is set
// again.
package simcpu

import (
	"coopos/kernel"
	"sync"
)

// NumLines is the number of interrupt request lines.
const NumLines = 8

// Line identifies an interrupt request line. Lower numbers have higher
// priority.
type Line uint8

// Handler services an interrupt. Handlers run with the core's state locked so
// they must not call back into the CPU.
type Handler func()

// Stats counts the events observed by the simulated core.
type Stats struct {
	// Halts counts the number of times the core stopped executing because
	// no interrupt was pending.
	Halts uint64

	// Interrupts counts the number of handler invocations.
	Interrupts uint64

	// Spurious counts requests for lines without a handler.
	Spurious uint64
}

// ErrPoweredOff is the panic value raised by EnableInterruptsAndHalt after the
// core has been powered off. Code driving an executor on the simulated core
// recovers it to unwind the never-returning run loop.
var ErrPoweredOff = &kernel.Error{Module: "simcpu", Message: "cpu powered off"}

// CPU is a simulated core. The zero value is not usable; use New.
type CPU struct {
	mu   sync.Mutex
	wake *sync.Cond

	interruptsEnabled bool
	poweredOff        bool

	// halted is set while the core waits for an interrupt and cleared as
	// soon as one is serviced.
	halted bool

	// irr holds pending requests and imr masked lines.
	irr, imr uint8

	handlers [NumLines]Handler

	// delivered is bumped after every serviced interrupt so a halted core
	// can tell that it has been woken.
	delivered uint64
	stats     Stats

	idleFn func()
}

// New returns a core with interrupts disabled, as after a processor reset.
func New() *CPU {
	c := &CPU{}
	c.wake = sync.NewCond(&c.mu)
	return c
}

// HandleIRQ installs h as the handler for line.
func (c *CPU) HandleIRQ(line Line, h Handler) {
	c.mu.Lock()
	c.handlers[line%NumLines] = h
	c.mu.Unlock()
}

// SetMasked masks or unmasks a line. Requests on a masked line stay pending
// until the line is unmasked.
func (c *CPU) SetMasked(line Line, masked bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	bit := uint8(1) << (line % NumLines)
	if masked {
		c.imr |= bit
		return
	}

	c.imr &^= bit
	if c.interruptsEnabled {
		c.dispatchLocked()
	}
}

// OnIdle registers fn to be invoked whenever the core is about to halt with
// no interrupt pending. fn runs without the core's lock held; if it panics,
// the panic propagates out of EnableInterruptsAndHalt.
func (c *CPU) OnIdle(fn func()) {
	c.mu.Lock()
	c.idleFn = fn
	c.mu.Unlock()
}

// Raise asserts line. If interrupts are enabled the handler runs before Raise
// returns; otherwise the request is latched.
func (c *CPU) Raise(line Line) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.irr |= uint8(1) << (line % NumLines)
	if c.interruptsEnabled {
		c.dispatchLocked()
	}
}

// DisableInterrupts clears the interrupt flag. Once it returns no handler is
// running and none will start until interrupts are enabled again.
func (c *CPU) DisableInterrupts() {
	c.mu.Lock()
	c.interruptsEnabled = false
	c.mu.Unlock()
}

// EnableInterrupts sets the interrupt flag and services any pending requests.
func (c *CPU) EnableInterrupts() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.interruptsEnabled = true
	c.dispatchLocked()
}

// EnableInterruptsAndHalt sets the interrupt flag and waits until at least
// one interrupt has been serviced. Requests that were latched while
// interrupts were disabled are serviced immediately and end the wait.
func (c *CPU) EnableInterruptsAndHalt() {
	c.mu.Lock()
	locked := true
	defer func() {
		if locked {
			c.mu.Unlock()
		}
	}()

	if c.poweredOff {
		panic(ErrPoweredOff)
	}

	c.interruptsEnabled = true
	start := c.delivered
	c.dispatchLocked()

	for c.delivered == start {
		if c.poweredOff {
			panic(ErrPoweredOff)
		}

		if idleFn := c.idleFn; idleFn != nil {
			locked = false
			c.mu.Unlock()
			idleFn()
			c.mu.Lock()
			locked = true

			if c.delivered != start || c.poweredOff {
				continue
			}
		}

		c.stats.Halts++
		c.halted = true
		c.wake.Wait()
		c.halted = false
	}
}

// PowerOff makes the current and every future halt panic with ErrPoweredOff.
func (c *CPU) PowerOff() {
	c.mu.Lock()
	c.poweredOff = true
	c.wake.Broadcast()
	c.mu.Unlock()
}

// InterruptsEnabled returns the state of the interrupt flag.
func (c *CPU) InterruptsEnabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.interruptsEnabled
}

// Halted returns true if the core is waiting for an interrupt and none has
// been serviced since the wait started.
func (c *CPU) Halted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.halted
}

// Pending returns the bitmap of latched requests.
func (c *CPU) Pending() uint8 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.irr
}

// Stats returns a snapshot of the event counters.
func (c *CPU) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// dispatchLocked services unmasked pending requests in priority order. The
// caller must hold c.mu.
func (c *CPU) dispatchLocked() {
	for c.interruptsEnabled {
		ready := c.irr &^ c.imr
		if ready == 0 {
			return
		}

		var line Line
		for ready&(1<<line) == 0 {
			line++
		}
		c.irr &^= 1 << line

		if h := c.handlers[line]; h != nil {
			c.halted = false
			c.stats.Interrupts++
			h()
		} else {
			c.stats.Spurious++
		}

		c.delivered++
		c.wake.Broadcast()
	}
}
