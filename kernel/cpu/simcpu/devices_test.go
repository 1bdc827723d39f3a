package simcpu

import (
	"bytes"
	"context"
	"testing"
	"time"
)

func TestAttachUART(t *testing.T) {
	var (
		p   = NewPorts()
		out bytes.Buffer
	)
	AttachUART(p, 0x3f8, &out)

	if p.ReadByte(0x3f8+uartLineStatus)&uartTxEmpty == 0 {
		t.Fatal("expected the transmitter to be reported as empty")
	}

	p.WriteByte(0x3f8+uartLineCtrl, uartDLAB)
	p.WriteByte(0x3f8+uartData, 3)
	p.WriteByte(0x3f8+uartLineCtrl, 0x03)
	p.WriteByte(0x3f8+uartData, 'o')
	p.WriteByte(0x3f8+uartData, 'k')

	if exp, got := "ok", out.String(); got != exp {
		t.Fatalf("expected UART output %q; got %q", exp, got)
	}
}

func TestKeyboardControllerSend(t *testing.T) {
	var (
		c  = New()
		p  = NewPorts()
		kc = NewKeyboardController(c, p, 1)
	)

	var got []uint8

	if exp, got := uint8(0), p.ReadByte(kbdStatusPort); got != exp {
		t.Fatalf("expected idle controller status %d; got %d", exp, got)
	}

	c.HandleIRQ(1, func() {
		got = append(got, p.ReadByte(kbdDataPort))
		p.WriteByte(picCommandPort, picEOI)
	})
	c.EnableInterrupts()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for _, b := range []uint8{0x1e, 0x9e} {
		if err := kc.Send(ctx, b); err != nil {
			t.Fatal(err)
		}
	}

	if len(got) != 2 || got[0] != 0x1e || got[1] != 0x9e {
		t.Fatalf("expected handler to read [0x1e 0x9e]; got %v", got)
	}
}

func TestKeyboardControllerSendCanceled(t *testing.T) {
	var (
		c  = New()
		p  = NewPorts()
		kc = NewKeyboardController(c, p, 1)
	)

	// Interrupts stay disabled so the request is never acknowledged.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := kc.Send(ctx, 0x1e); err != context.Canceled {
		t.Fatalf("expected context.Canceled; got %v", err)
	}

	if c.Pending() != 1<<1 {
		t.Fatalf("expected the request to stay latched; pending = %08b", c.Pending())
	}
}
