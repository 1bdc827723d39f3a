package simcpu

import (
	"sync"
	"testing"
	"time"
)

func TestRaiseWithInterruptsDisabledIsLatched(t *testing.T) {
	c := New()

	var calls []Line
	c.HandleIRQ(1, func() { calls = append(calls, 1) })
	c.HandleIRQ(4, func() { calls = append(calls, 4) })

	c.Raise(4)
	c.Raise(1)

	if len(calls) != 0 {
		t.Fatalf("expected no handler to run while interrupts are disabled; got %v", calls)
	}

	if exp, got := uint8(1<<1|1<<4), c.Pending(); got != exp {
		t.Fatalf("expected pending bitmap %08b; got %08b", exp, got)
	}

	c.EnableInterrupts()

	if len(calls) != 2 || calls[0] != 1 || calls[1] != 4 {
		t.Fatalf("expected lines to be serviced in priority order [1 4]; got %v", calls)
	}

	if c.Pending() != 0 {
		t.Fatalf("expected no pending requests; got %08b", c.Pending())
	}
}

func TestMaskedLine(t *testing.T) {
	c := New()
	c.EnableInterrupts()

	var count int
	c.HandleIRQ(2, func() { count++ })
	c.SetMasked(2, true)

	c.Raise(2)
	if count != 0 {
		t.Fatal("expected masked line not to be serviced")
	}

	c.SetMasked(2, false)
	if count != 1 {
		t.Fatalf("expected unmasking to service the pending request; got %d calls", count)
	}
}

func TestSpuriousInterrupt(t *testing.T) {
	c := New()
	c.EnableInterrupts()
	c.Raise(7)

	if got := c.Stats().Spurious; got != 1 {
		t.Fatalf("expected 1 spurious interrupt; got %d", got)
	}
}

func TestEnableAndHaltServicesLatchedRequest(t *testing.T) {
	c := New()

	var serviced bool
	c.HandleIRQ(1, func() { serviced = true })
	c.OnIdle(func() { t.Fatal("expected core not to go idle with a latched request") })

	c.DisableInterrupts()
	c.Raise(1)
	c.EnableInterruptsAndHalt()

	if !serviced {
		t.Fatal("expected latched request to be serviced by EnableInterruptsAndHalt")
	}

	if got := c.Stats().Halts; got != 0 {
		t.Fatalf("expected no halts; got %d", got)
	}
}

func TestHaltWaitsForInterrupt(t *testing.T) {
	c := New()

	var (
		wg       sync.WaitGroup
		serviced = make(chan struct{})
	)
	c.HandleIRQ(0, func() { close(serviced) })

	wg.Add(1)
	go func() {
		defer wg.Done()
		c.EnableInterruptsAndHalt()
	}()

	// Wait for the core to halt before raising the timer line.
	for !c.Halted() {
		time.Sleep(time.Millisecond)
	}
	c.Raise(0)

	if c.Halted() {
		t.Fatal("expected servicing an interrupt to end the halt")
	}

	wg.Wait()
	select {
	case <-serviced:
	default:
		t.Fatal("expected handler to run")
	}
}

func TestPowerOff(t *testing.T) {
	c := New()

	done := make(chan interface{})
	go func() {
		defer func() { done <- recover() }()
		c.EnableInterruptsAndHalt()
	}()

	for c.Stats().Halts == 0 {
		time.Sleep(time.Millisecond)
	}
	c.PowerOff()

	if got := <-done; got != ErrPoweredOff {
		t.Fatalf("expected halt to panic with ErrPoweredOff; got %v", got)
	}

	defer func() {
		if err := recover(); err != ErrPoweredOff {
			t.Fatalf("expected ErrPoweredOff; got %v", err)
		}
	}()
	c.EnableInterruptsAndHalt()
}

func TestIdleHookPanicReleasesCore(t *testing.T) {
	c := New()
	sentinel := "idle"
	c.OnIdle(func() { panic(sentinel) })

	func() {
		defer func() {
			if err := recover(); err != sentinel {
				t.Fatalf("expected idle hook panic to propagate; got %v", err)
			}
		}()
		c.EnableInterruptsAndHalt()
	}()

	// The core lock must have been released by the unwinding halt.
	if !c.InterruptsEnabled() {
		t.Fatal("expected interrupts to be enabled after the halt")
	}
}

func TestPorts(t *testing.T) {
	p := NewPorts()

	if got := p.ReadByte(0x60); got != 0xff {
		t.Fatalf("expected unset port to read 0xff; got %#x", got)
	}

	p.Set(0x60, 0x1e)
	if got := p.ReadByte(0x60); got != 0x1e {
		t.Fatalf("expected port to read 0x1e; got %#x", got)
	}

	var eoi []uint8
	p.OnWrite(0x20, func(v uint8) { eoi = append(eoi, v) })
	p.WriteByte(0x20, 0x20)

	if len(eoi) != 1 || eoi[0] != 0x20 {
		t.Fatalf("expected write observer to see 0x20; got %v", eoi)
	}
}
