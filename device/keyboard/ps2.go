package keyboard

import (
	"coopos/device"
	"coopos/kernel"
	"coopos/kernel/cpu"
	"coopos/kernel/kfmt"
	"io"
)

const (
	dataPort   = 0x60
	statusPort = 0x64

	// statusOutputFull is set while the controller holds a byte that has
	// not been read from the data port.
	statusOutputFull = 1 << 0

	// noController is read from the status port when nothing drives the
	// bus.
	noController = 0xff

	picMasterCommandPort = 0x20
	picEOI               = 0x20

	// IRQLine is the legacy PIC line used by the keyboard controller.
	IRQLine = 1

	// maxStaleBytes bounds the number of buffered bytes discarded during
	// driver initialization.
	maxStaleBytes = 16
)

var (
	portReadByteFn  = cpu.PortReadByte
	portWriteByteFn = cpu.PortWriteByte

	errStuckController = &kernel.Error{Module: "ps2_keyboard", Message: "controller output buffer does not drain"}
)

// UsePorts replaces the functions that the driver uses to access the I/O port
// space. It must be called before hardware detection. Hosted builds use it to
// attach the driver to an emulated controller.
func UsePorts(read func(port uint16) uint8, write func(port uint16, val uint8)) {
	portReadByteFn = read
	portWriteByteFn = write
}

// Device is implemented by keyboard drivers that deliver raw scancodes.
type Device interface {
	device.Driver

	// SetScancodeSink registers the function that receives each scancode
	// read by the driver's interrupt handler.
	SetScancodeSink(func(scancode uint8))
}

// PS2 is a driver for a keyboard attached to an i8042 compatible controller.
// The controller is expected to be configured by the firmware to deliver
// scancode set 1.
type PS2 struct {
	readPort  func(port uint16) uint8
	writePort func(port uint16, val uint8)
	sink      func(uint8)
}

// NewPS2 returns a PS2 driver that uses the supplied port accessors.
func NewPS2(read func(port uint16) uint8, write func(port uint16, val uint8)) *PS2 {
	return &PS2{readPort: read, writePort: write}
}

// DriverName returns the name of this driver.
func (*PS2) DriverName() string {
	return "ps2_keyboard"
}

// DriverVersion returns the version of this driver.
func (*PS2) DriverVersion() (uint16, uint16, uint16) {
	return 0, 0, 1
}

// DriverInit discards any bytes that the controller buffered before the
// driver took over.
func (d *PS2) DriverInit(w io.Writer) *kernel.Error {
	stale := 0
	for d.readPort(statusPort)&statusOutputFull != 0 {
		if stale == maxStaleBytes {
			return errStuckController
		}
		d.readPort(dataPort)
		stale++
	}

	if stale != 0 {
		kfmt.Fprintf(w, "discarded %d stale bytes\n", stale)
	}
	return nil
}

// SetScancodeSink implements Device.
func (d *PS2) SetScancodeSink(fn func(uint8)) {
	d.sink = fn
}

// IRQLine returns the interrupt line that HandleIRQ services.
func (*PS2) IRQLine() uint8 {
	return IRQLine
}

// HandleIRQ reads the pending scancode, hands it to the registered sink and
// acknowledges the interrupt. It runs in interrupt context.
func (d *PS2) HandleIRQ() {
	scancode := d.readPort(dataPort)
	if d.sink != nil {
		d.sink(scancode)
	}
	d.writePort(picMasterCommandPort, picEOI)
}

// probeForPS2 returns a PS2 driver if a keyboard controller is present.
func probeForPS2() device.Driver {
	if portReadByteFn(statusPort) == noController {
		return nil
	}

	return NewPS2(portReadByteFn, portWriteByteFn)
}

func init() {
	device.RegisterDriver(&device.DriverInfo{
		Order: device.DetectOrderInput,
		Probe: probeForPS2,
	})
}
