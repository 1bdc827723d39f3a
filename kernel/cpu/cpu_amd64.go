package cpu

var (
	disableInterruptsFn       = DisableInterrupts
	enableInterruptsFn        = EnableInterrupts
	enableInterruptsAndHaltFn = EnableInterruptsAndHalt
)

// EnableInterrupts enables interrupt handling.
func EnableInterrupts()

// DisableInterrupts disables interrupt handling.
func DisableInterrupts()

// EnableInterruptsAndHalt sets the interrupt flag and halts the CPU until the
// next interrupt arrives. The STI instruction delays interrupt recognition by
// one instruction so an interrupt that is already pending is serviced after
// the HLT begins and wakes the CPU instead of being lost.
func EnableInterruptsAndHalt()

// Halt stops instruction execution.
func Halt()

// PortWriteByte writes a uint8 value to the requested port.
func PortWriteByte(port uint16, val uint8)

// PortReadByte reads a uint8 value from the requested port.
func PortReadByte(port uint16) uint8

// Local drives the interrupt flag of the processor that executes the kernel.
// It satisfies the interface used by the task executor for its idle protocol.
type Local struct{}

// DisableInterrupts clears the interrupt flag.
func (Local) DisableInterrupts() { disableInterruptsFn() }

// EnableInterrupts sets the interrupt flag.
func (Local) EnableInterrupts() { enableInterruptsFn() }

// EnableInterruptsAndHalt sets the interrupt flag and waits for the next
// interrupt as a single uninterruptible step.
func (Local) EnableInterruptsAndHalt() { enableInterruptsAndHaltFn() }
