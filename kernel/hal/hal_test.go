package hal

import (
	"bytes"
	"coopos/device"
	"coopos/kernel"
	"coopos/kernel/irq"
	"coopos/kernel/kfmt"
	"io"
	"testing"
)

type mockTTY struct {
	bytes.Buffer
}

func (*mockTTY) DriverName() string {
	return "mock_tty"
}

func (*mockTTY) DriverVersion() (uint16, uint16, uint16) {
	return 1, 2, 3
}

func (*mockTTY) DriverInit(io.Writer) *kernel.Error {
	return nil
}

type mockKeyboard struct {
	sink func(uint8)
	irqs int
}

func (*mockKeyboard) DriverName() string {
	return "mock_kbd"
}

func (*mockKeyboard) DriverVersion() (uint16, uint16, uint16) {
	return 0, 0, 1
}

func (*mockKeyboard) IRQLine() uint8 {
	return uint8(irq.Keyboard)
}

func (k *mockKeyboard) SetScancodeSink(fn func(uint8)) {
	k.sink = fn
}

func (k *mockKeyboard) HandleIRQ() {
	k.irqs++
	k.sink(0x1e)
}

func (*mockKeyboard) DriverInit(w io.Writer) *kernel.Error {
	kfmt.Fprintf(w, "controller ready\n")
	return nil
}

type failingDriver struct{}

func (failingDriver) DriverName() string {
	return "broken"
}

func (failingDriver) DriverVersion() (uint16, uint16, uint16) {
	return 0, 1, 0
}

func (failingDriver) DriverInit(io.Writer) *kernel.Error {
	return &kernel.Error{Module: "broken", Message: "device not responding"}
}

func TestProbe(t *testing.T) {
	origSinkFn := scancodeSinkFn
	defer func() {
		scancodeSinkFn = origSinkFn
		devices = managedDevices{}
		kfmt.SetOutputSink(nil)
		irq.HandleIRQ(irq.Keyboard, nil)
	}()

	// Drain output buffered by other tests.
	kfmt.SetOutputSink(io.Discard)
	kfmt.SetOutputSink(nil)

	var scancodes []uint8
	scancodeSinkFn = func(b uint8) { scancodes = append(scancodes, b) }

	var (
		tty1, tty2 = &mockTTY{}, &mockTTY{}
		kbd        = &mockKeyboard{}
	)

	probe(device.DriverInfoList{
		{Probe: func() device.Driver { return nil }},
		{Probe: func() device.Driver { return tty1 }},
		{Probe: func() device.Driver { return tty2 }},
		{Probe: func() device.Driver { return failingDriver{} }},
		{Probe: func() device.Driver { return kbd }},
	})

	exp := "[hal] mock_tty(1.2.3): initialized\n" +
		"[hal] mock_tty(1.2.3): initialized\n" +
		"[hal] broken(0.1.0): init failed: device not responding\n" +
		"[hal] mock_kbd(0.0.1): controller ready\n" +
		"[hal] mock_kbd(0.0.1): initialized\n"

	if got := tty1.String(); got != exp {
		t.Fatalf("expected first TTY to receive:\n%q\ngot:\n%q", exp, got)
	}

	if tty2.Len() != 0 {
		t.Fatalf("expected second TTY to stay unused; got %q", tty2.String())
	}

	if ActiveTTY() != tty1 {
		t.Fatal("expected the first TTY to become active")
	}

	if ActiveKeyboard() != kbd {
		t.Fatal("expected the keyboard to become active")
	}

	if exp, got := 3, len(ActiveDrivers()); got != exp {
		t.Fatalf("expected %d active drivers; got %d", exp, got)
	}

	irq.Dispatch(irq.Keyboard)
	if kbd.irqs != 1 {
		t.Fatal("expected the keyboard IRQ to be routed to the driver")
	}

	if len(scancodes) != 1 || scancodes[0] != 0x1e {
		t.Fatalf("expected keyboard scancodes to reach the sink; got %v", scancodes)
	}
}
