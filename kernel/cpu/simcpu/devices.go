package simcpu

import (
	"context"
	"io"
)

const (
	uartData       = 0
	uartLineCtrl   = 3
	uartLineStatus = 5
	uartDLAB       = 1 << 7
	uartTxEmpty    = 1 << 5

	kbdDataPort    = 0x60
	kbdStatusPort  = 0x64
	picCommandPort = 0x20
	picEOI         = 0x20
)

// AttachUART makes the ports at base behave like the transmit side of an idle
// 16550 UART. Bytes written to the data register while the divisor latch is
// closed are copied to out.
func AttachUART(p *Ports, base uint16, out io.Writer) {
	var dlab bool

	p.Set(base+uartLineStatus, uartTxEmpty)
	p.OnWrite(base+uartLineCtrl, func(val uint8) {
		dlab = val&uartDLAB != 0
	})
	p.OnWrite(base+uartData, func(val uint8) {
		if !dlab {
			out.Write([]byte{val})
		}
	})
}

// KeyboardController emulates an i8042 keyboard controller wired to an
// interrupt line of the simulated core.
type KeyboardController struct {
	cpu   *CPU
	ports *Ports
	line  Line
	acks  chan struct{}
}

// NewKeyboardController attaches an idle controller to the ports. The
// controller treats an EOI written to the master PIC as the acknowledgment of
// its interrupt.
func NewKeyboardController(c *CPU, p *Ports, line Line) *KeyboardController {
	kc := &KeyboardController{
		cpu:   c,
		ports: p,
		line:  line,
		acks:  make(chan struct{}, 1),
	}

	p.Set(kbdStatusPort, 0)
	p.OnWrite(picCommandPort, func(val uint8) {
		if val != picEOI {
			return
		}

		select {
		case kc.acks <- struct{}{}:
		default:
		}
	})

	return kc
}

// Send latches scancode into the data port, raises the controller's line and
// waits until the interrupt has been acknowledged. Only one scancode is in
// flight at a time, like on real hardware where the controller holds a
// single byte.
func (kc *KeyboardController) Send(ctx context.Context, scancode uint8) error {
	kc.ports.Set(kbdDataPort, scancode)
	kc.cpu.Raise(kc.line)

	select {
	case <-kc.acks:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
