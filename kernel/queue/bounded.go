// Package queue provides a fixed-capacity, multi-producer/multi-consumer queue
// that can be shared between interrupt handlers and the cooperative run loop
// without locks.
package queue

import (
	"coopos/kernel"
	"math"
	"sync/atomic"

	"fortio.org/safecast"
	"golang.org/x/sys/cpu"
)

var errInvalidCapacity = &kernel.Error{Module: "queue", Message: "capacity must be a positive number"}

// slot holds one queue element. The stamp field implements the slot handoff
// protocol: a producer may write to the slot when stamp equals the tail
// position and a consumer may read from it when stamp equals the head
// position plus one.
type slot[T any] struct {
	stamp atomic.Uint64
	val   T
}

// Bounded is a lock-free MPMC queue with a capacity fixed at construction
// time. Push never blocks; it reports failure when the queue is full so that
// callers running in interrupt context can decide how to handle overflow.
//
// Head and tail positions pack a slot index in their low bits and a lap
// counter in the remaining bits. A lap is the smallest power of two greater
// than the capacity, so the stamp of a full slot never equals the stamp of a
// free one, even when the queue holds a single slot.
type Bounded[T any] struct {
	_    cpu.CacheLinePad
	head atomic.Uint64
	_    cpu.CacheLinePad
	tail atomic.Uint64
	_    cpu.CacheLinePad

	capacity uint64
	oneLap   uint64
	slots    []slot[T]
}

// NewBounded returns a queue that can hold up to capacity elements.
func NewBounded[T any](capacity int) (*Bounded[T], *kernel.Error) {
	c, err := safecast.Conv[uint64](capacity)
	if err != nil || c == 0 || c > math.MaxUint32 {
		return nil, errInvalidCapacity
	}

	q := &Bounded[T]{
		capacity: c,
		oneLap:   nextPowerOfTwo(c + 1),
		slots:    make([]slot[T], capacity),
	}
	for i := range q.slots {
		q.slots[i].stamp.Store(uint64(i))
	}

	return q, nil
}

func nextPowerOfTwo(v uint64) uint64 {
	n := uint64(1)
	for n < v {
		n <<= 1
	}
	return n
}

// Cap returns the queue capacity.
func (q *Bounded[T]) Cap() int {
	return len(q.slots)
}

// advance returns the position that follows pos.
func (q *Bounded[T]) advance(pos uint64) uint64 {
	index := pos & (q.oneLap - 1)
	if index+1 < q.capacity {
		return pos + 1
	}
	return (pos &^ (q.oneLap - 1)) + q.oneLap
}

// Push appends v to the queue. It returns false if the queue is full.
func (q *Bounded[T]) Push(v T) bool {
	tail := q.tail.Load()
	for {
		s := &q.slots[tail&(q.oneLap-1)]
		stamp := s.stamp.Load()

		switch {
		case stamp == tail:
			if q.tail.CompareAndSwap(tail, q.advance(tail)) {
				s.val = v
				s.stamp.Store(tail + 1)
				return true
			}
		case stamp+q.oneLap == tail+1:
			// The slot still holds the element pushed one lap ago.
			if q.head.Load()+q.oneLap == tail {
				return false
			}
		}

		tail = q.tail.Load()
	}
}

// Pop removes the element at the front of the queue. The second return value
// is false if the queue is empty.
func (q *Bounded[T]) Pop() (T, bool) {
	var zero T

	head := q.head.Load()
	for {
		s := &q.slots[head&(q.oneLap-1)]
		stamp := s.stamp.Load()

		switch {
		case stamp == head+1:
			if q.head.CompareAndSwap(head, q.advance(head)) {
				v := s.val
				s.val = zero
				s.stamp.Store(head + q.oneLap)
				return v, true
			}
		case stamp == head:
			if q.tail.Load() == head {
				return zero, false
			}
		}

		head = q.head.Load()
	}
}

// Len returns a snapshot of the number of queued elements.
func (q *Bounded[T]) Len() int {
	for {
		tail := q.tail.Load()
		head := q.head.Load()
		if q.tail.Load() != tail {
			continue
		}

		hix := head & (q.oneLap - 1)
		tix := tail & (q.oneLap - 1)
		switch {
		case hix < tix:
			return int(tix - hix)
		case hix > tix:
			return int(q.capacity - hix + tix)
		case tail == head:
			return 0
		default:
			return len(q.slots)
		}
	}
}

// IsEmpty returns true if the queue holds no elements.
func (q *Bounded[T]) IsEmpty() bool {
	return q.Len() == 0
}

// IsFull returns true if a Push would currently fail.
func (q *Bounded[T]) IsFull() bool {
	return q.Len() == len(q.slots)
}
