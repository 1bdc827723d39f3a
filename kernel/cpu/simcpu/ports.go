package simcpu

import "sync"

// Ports emulates the processor's I/O port space. Devices latch values into
// ports with Set and observe writes through OnWrite; drivers access the
// ports through ReadByte and WriteByte, which have the same signatures as the
// cpu package's port instructions.
type Ports struct {
	mu       sync.Mutex
	values   map[uint16]uint8
	watchers map[uint16]func(uint8)
}

// NewPorts returns an empty port space. Unset ports read as 0xff, like a
// floating bus.
func NewPorts() *Ports {
	return &Ports{
		values:   make(map[uint16]uint8),
		watchers: make(map[uint16]func(uint8)),
	}
}

// Set latches val into port on behalf of a device.
func (p *Ports) Set(port uint16, val uint8) {
	p.mu.Lock()
	p.values[port] = val
	p.mu.Unlock()
}

// OnWrite registers fn to observe driver writes to port.
func (p *Ports) OnWrite(port uint16, fn func(uint8)) {
	p.mu.Lock()
	p.watchers[port] = fn
	p.mu.Unlock()
}

// ReadByte returns the value latched into port.
func (p *Ports) ReadByte(port uint16) uint8 {
	p.mu.Lock()
	defer p.mu.Unlock()

	if val, ok := p.values[port]; ok {
		return val
	}
	return 0xff
}

// WriteByte stores val into port and notifies the port's observer.
func (p *Ports) WriteByte(port uint16, val uint8) {
	p.mu.Lock()
	p.values[port] = val
	fn := p.watchers[port]
	p.mu.Unlock()

	if fn != nil {
		fn(val)
	}
}
