package sync

import "sync/atomic"

// Waker is implemented by handles that reschedule a suspended computation.
type Waker interface {
	Wake()
}

type wakerRef struct {
	w Waker
}

// AtomicWaker is a single slot that a consumer uses to park its waker while a
// producer, possibly running in interrupt context, signals it. Registering a
// waker replaces whatever was registered before.
type AtomicWaker struct {
	slot atomic.Pointer[wakerRef]
}

// Register stores w as the waker to signal on the next call to Wake.
func (aw *AtomicWaker) Register(w Waker) {
	aw.slot.Store(&wakerRef{w: w})
}

// Wake removes the registered waker (if any) and invokes it. A registration
// is consumed by exactly one Wake or Take.
func (aw *AtomicWaker) Wake() {
	if w := aw.Take(); w != nil {
		w.Wake()
	}
}

// Take removes and returns the registered waker without invoking it.
func (aw *AtomicWaker) Take() Waker {
	if ref := aw.slot.Swap(nil); ref != nil {
		return ref.w
	}
	return nil
}
