//go:build !amd64

package cpu

import "coopos/kernel"

var (
	errUnsupportedArch = &kernel.Error{Module: "cpu", Message: "privileged instructions are only implemented for amd64"}

	disableInterruptsFn       = DisableInterrupts
	enableInterruptsFn        = EnableInterrupts
	enableInterruptsAndHaltFn = EnableInterruptsAndHalt
)

// EnableInterrupts is not supported on this architecture.
func EnableInterrupts() { panic(errUnsupportedArch) }

// DisableInterrupts is not supported on this architecture.
func DisableInterrupts() { panic(errUnsupportedArch) }

// EnableInterruptsAndHalt is not supported on this architecture.
func EnableInterruptsAndHalt() { panic(errUnsupportedArch) }

// Halt is not supported on this architecture.
func Halt() { panic(errUnsupportedArch) }

// PortWriteByte is not supported on this architecture.
func PortWriteByte(port uint16, val uint8) { panic(errUnsupportedArch) }

// PortReadByte is not supported on this architecture.
func PortReadByte(port uint16) uint8 { panic(errUnsupportedArch) }

// Local drives the interrupt flag of the processor that executes the kernel.
type Local struct{}

// DisableInterrupts clears the interrupt flag.
func (Local) DisableInterrupts() { disableInterruptsFn() }

// EnableInterrupts sets the interrupt flag.
func (Local) EnableInterrupts() { enableInterruptsFn() }

// EnableInterruptsAndHalt sets the interrupt flag and waits for the next
// interrupt as a single uninterruptible step.
func (Local) EnableInterruptsAndHalt() { enableInterruptsAndHaltFn() }
