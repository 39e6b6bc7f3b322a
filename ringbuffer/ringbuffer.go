// Package ringbuffer provides the fixed-capacity circular buffer shared by
// producers and consumers.
package ringbuffer

import (
	"github.com/sarchlab/pcsim/sim"
)

// HookPosInsert marks when an element is written into the buffer.
var HookPosInsert = &sim.HookPos{Name: "Buffer Insert"}

// HookPosRemove marks when a slot is read and cleared.
var HookPosRemove = &sim.HookPos{Name: "Buffer Remove"}

// A CircularBuffer is a ring of optional slots with separate in and out
// pointers. It does not check for overflow or underflow; callers guard it
// with counting semaphores.
type CircularBuffer[T any] struct {
	sim.NamedBase
	*sim.HookableBase

	slots []*T
	in    int
	out   int
}

// New creates an empty buffer with the given number of slots.
func New[T any](name string, capacity int) *CircularBuffer[T] {
	if capacity <= 0 {
		panic("buffer capacity must be positive")
	}

	return &CircularBuffer[T]{
		NamedBase:    sim.MakeNamedBase(name),
		HookableBase: sim.NewHookableBase(),
		slots:        make([]*T, capacity),
	}
}

// Insert writes the element at the in pointer and advances it.
func (b *CircularBuffer[T]) Insert(e T) {
	slot := b.in
	b.slots[slot] = &e
	b.in = (b.in + 1) % len(b.slots)

	if b.NumHooks() > 0 {
		b.InvokeHook(sim.HookCtx{
			Domain: b,
			Pos:    HookPosInsert,
			Item:   e,
			Detail: slot,
		})
	}
}

// Remove clears the slot at the out pointer, advances it, and returns the
// element the slot held. It returns nil if the slot was empty.
func (b *CircularBuffer[T]) Remove() *T {
	slot := b.out
	e := b.slots[slot]
	b.slots[slot] = nil
	b.out = (b.out + 1) % len(b.slots)

	if b.NumHooks() > 0 {
		b.InvokeHook(sim.HookCtx{
			Domain: b,
			Pos:    HookPosRemove,
			Item:   e,
			Detail: slot,
		})
	}

	return e
}

// Peek returns the element at the out pointer without removing it.
func (b *CircularBuffer[T]) Peek() *T {
	return b.slots[b.out]
}

// Snapshot returns a copy of all slots. Empty slots are nil.
func (b *CircularBuffer[T]) Snapshot() []*T {
	slots := make([]*T, len(b.slots))
	for i, e := range b.slots {
		if e != nil {
			c := *e
			slots[i] = &c
		}
	}

	return slots
}

// In returns the index of the next slot to write.
func (b *CircularBuffer[T]) In() int {
	return b.in
}

// Out returns the index of the next slot to read.
func (b *CircularBuffer[T]) Out() int {
	return b.out
}

// Capacity returns the number of slots.
func (b *CircularBuffer[T]) Capacity() int {
	return len(b.slots)
}

// Occupancy returns the number of non-empty slots.
func (b *CircularBuffer[T]) Occupancy() int {
	n := 0
	for _, e := range b.slots {
		if e != nil {
			n++
		}
	}

	return n
}

// Reset empties every slot and moves both pointers to slot 0.
func (b *CircularBuffer[T]) Reset() {
	for i := range b.slots {
		b.slots[i] = nil
	}

	b.in = 0
	b.out = 0
}
