package tty

import (
	"coopos/kernel"
	"coopos/kernel/cpu"
	"io"
)

// UART register offsets relative to the port base.
const (
	regData       = 0
	regIntEnable  = 1
	regFIFOCtrl   = 2
	regLineCtrl   = 3
	regModemCtrl  = 4
	regLineStatus = 5
	regScratch    = 7

	// With DLAB set, the first two registers hold the baud rate divisor.
	regDivisorLow  = 0
	regDivisorHigh = 1
)

const (
	// COM1 is the base port of the first serial controller.
	COM1 = 0x3f8

	lineCtrlDLAB = 1 << 7
	lineCtrl8N1  = 0x03

	// enable and clear both FIFOs with a 14 byte threshold
	fifoCtrlEnable = 0xc7

	// assert DTR and RTS
	modemCtrlReady = 0x03

	lineStatusTxEmpty = 1 << 5

	// divisor for 38400 baud
	baudDivisor = 3

	// scratchPattern is written to the scratch register to detect the
	// controller.
	scratchPattern = 0xae

	// maxTxSpins bounds the wait for the transmit holding register.
	maxTxSpins = 1 << 16
)

var (
	portReadByteFn  = cpu.PortReadByte
	portWriteByteFn = cpu.PortWriteByte

	errTxTimeout = &kernel.Error{Module: "serial_tty", Message: "transmitter timeout"}
)

// UsePorts replaces the functions that the serial driver uses to access the
// I/O port space. It must be called before hardware detection.
func UsePorts(read func(port uint16) uint8, write func(port uint16, val uint8)) {
	portReadByteFn = read
	portWriteByteFn = write
}

// Serial is a terminal backed by a 16550 compatible UART. Line feeds are
// translated to CR LF.
type Serial struct {
	base      uint16
	readPort  func(port uint16) uint8
	writePort func(port uint16, val uint8)
}

// NewSerial returns a terminal for the UART at the given base port.
func NewSerial(base uint16, read func(port uint16) uint8, write func(port uint16, val uint8)) *Serial {
	return &Serial{base: base, readPort: read, writePort: write}
}

// DriverName returns the name of this driver.
func (*Serial) DriverName() string {
	return "serial_tty"
}

// DriverVersion returns the version of this driver.
func (*Serial) DriverVersion() (uint16, uint16, uint16) {
	return 0, 0, 1
}

// DriverInit programs the UART for 38400 8N1 with interrupts disabled.
func (s *Serial) DriverInit(w io.Writer) *kernel.Error {
	s.writePort(s.base+regIntEnable, 0)
	s.writePort(s.base+regLineCtrl, lineCtrlDLAB)
	s.writePort(s.base+regDivisorLow, baudDivisor)
	s.writePort(s.base+regDivisorHigh, 0)
	s.writePort(s.base+regLineCtrl, lineCtrl8N1)
	s.writePort(s.base+regFIFOCtrl, fifoCtrlEnable)
	s.writePort(s.base+regModemCtrl, modemCtrlReady)
	return nil
}

// Write implements io.Writer.
func (s *Serial) Write(p []byte) (int, error) {
	for i, b := range p {
		if err := s.WriteByte(b); err != nil {
			return i, err
		}
	}
	return len(p), nil
}

// WriteByte implements io.ByteWriter.
func (s *Serial) WriteByte(b byte) error {
	if b == '\n' {
		if err := s.transmit('\r'); err != nil {
			return err
		}
	}
	return s.transmit(b)
}

func (s *Serial) transmit(b byte) error {
	for spins := 0; s.readPort(s.base+regLineStatus)&lineStatusTxEmpty == 0; spins++ {
		if spins == maxTxSpins {
			return errTxTimeout
		}
	}

	s.writePort(s.base+regData, b)
	return nil
}

// probeForSerial returns a serial terminal if a UART answers at COM1.
func probeForSerial() *Serial {
	portWriteByteFn(COM1+regScratch, scratchPattern)
	if portReadByteFn(COM1+regScratch) != scratchPattern {
		return nil
	}

	return NewSerial(COM1, portReadByteFn, portWriteByteFn)
}
