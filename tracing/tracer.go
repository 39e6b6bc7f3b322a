// Package tracing collects what the engine does, step by step.
package tracing

import (
	"github.com/sarchlab/pcsim/engine"
)

// A Tracer receives the events of a simulation.
type Tracer interface {
	// TraceInstruction is called after every executed instruction.
	TraceInstruction(r engine.InstructionRecord)

	// TraceSemaphore is called when a process blocks or is woken. Kind is
	// either "block" or "wake".
	TraceSemaphore(kind string, e engine.SemaphoreEvent)

	// TraceConsumption is called when a consumer reads a message.
	TraceConsumption(step int, entry engine.ConsumerLog)
}

// Semaphore event kinds.
const (
	KindBlock = "block"
	KindWake  = "wake"
)
