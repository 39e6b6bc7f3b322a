// Package semaphore implements a counting semaphore with an explicit FIFO wait
// queue. It never blocks the caller; P reports whether the caller may proceed.
package semaphore

import (
	"github.com/sarchlab/pcsim/sim"
)

// Hook positions triggered by a Semaphore. The hook item is the process ID.
var (
	HookPosAcquire = &sim.HookPos{Name: "Semaphore Acquire"}
	HookPosBlock   = &sim.HookPos{Name: "Semaphore Block"}
	HookPosRelease = &sim.HookPos{Name: "Semaphore Release"}
	HookPosWake    = &sim.HookPos{Name: "Semaphore Wake"}
)

// A Semaphore holds a non-negative value and the IDs of the processes waiting
// on it, oldest first.
type Semaphore struct {
	sim.NamedBase
	*sim.HookableBase

	value int
	queue []string
}

// New creates a semaphore with the given initial value.
func New(name string, initial int) *Semaphore {
	valueMustNotBeNegative(initial)

	return &Semaphore{
		NamedBase:    sim.MakeNamedBase(name),
		HookableBase: sim.NewHookableBase(),
		value:        initial,
	}
}

func valueMustNotBeNegative(v int) {
	if v < 0 {
		panic("semaphore value must not be negative")
	}
}

// Value returns the current value.
func (s *Semaphore) Value() int {
	return s.value
}

// Queue returns the IDs of the waiting processes, oldest first.
func (s *Semaphore) Queue() []string {
	return append([]string(nil), s.queue...)
}

// P acquires the semaphore for the process. If the value is positive, it is
// decremented and P returns true. Otherwise the process is appended to the
// wait queue, unless it is already there, and P returns false.
func (s *Semaphore) P(processID string) bool {
	if s.value > 0 {
		s.value--
		s.invoke(HookPosAcquire, processID)

		return true
	}

	if !s.HasProcess(processID) {
		s.queue = append(s.queue, processID)
		s.invoke(HookPosBlock, processID)
	}

	return false
}

// V releases the semaphore. If a process is waiting, the oldest one is removed
// from the queue and returned with woke set to true; the value is unchanged.
// Otherwise the value is incremented.
func (s *Semaphore) V() (processID string, woke bool) {
	if len(s.queue) > 0 {
		processID = s.queue[0]
		s.queue = s.queue[1:]
		s.invoke(HookPosWake, processID)

		return processID, true
	}

	s.value++
	s.invoke(HookPosRelease, "")

	return "", false
}

// HasProcess checks if the process is waiting on the semaphore.
func (s *Semaphore) HasProcess(processID string) bool {
	for _, id := range s.queue {
		if id == processID {
			return true
		}
	}

	return false
}

// RemoveProcess drops the process from the wait queue without touching the
// value.
func (s *Semaphore) RemoveProcess(processID string) {
	queue := s.queue[:0]
	for _, id := range s.queue {
		if id != processID {
			queue = append(queue, id)
		}
	}

	s.queue = queue
}

// Reset sets the value and empties the wait queue.
func (s *Semaphore) Reset(initial int) {
	valueMustNotBeNegative(initial)

	s.value = initial
	s.queue = nil
}

func (s *Semaphore) invoke(pos *sim.HookPos, processID string) {
	if s.NumHooks() == 0 {
		return
	}

	s.InvokeHook(sim.HookCtx{
		Domain: s,
		Pos:    pos,
		Item:   processID,
		Detail: s.value,
	})
}
