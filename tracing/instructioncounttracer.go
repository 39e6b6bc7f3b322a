package tracing

import (
	"sync"

	"github.com/sarchlab/pcsim/engine"
)

// InstructionFilter selects the instructions a tracer is interested in.
type InstructionFilter func(r engine.InstructionRecord) bool

// InstructionCountTracer counts how many times each instruction is executed
// and how many instructions each process executed.
type InstructionCountTracer struct {
	filter InstructionFilter

	lock             sync.Mutex
	instructionNames []string
	instructionCount map[string]uint64
	processCount     map[string]uint64
	blockCount       map[string]uint64
	total            uint64
}

// NewInstructionCountTracer creates a new InstructionCountTracer. A nil filter
// accepts every instruction.
func NewInstructionCountTracer(filter InstructionFilter) *InstructionCountTracer {
	if filter == nil {
		filter = func(engine.InstructionRecord) bool { return true }
	}

	return &InstructionCountTracer{
		filter:           filter,
		instructionCount: make(map[string]uint64),
		processCount:     make(map[string]uint64),
		blockCount:       make(map[string]uint64),
	}
}

// TraceInstruction counts the instruction.
func (t *InstructionCountTracer) TraceInstruction(r engine.InstructionRecord) {
	if !t.filter(r) {
		return
	}

	t.lock.Lock()
	defer t.lock.Unlock()

	name := r.Instruction.String()
	if _, ok := t.instructionCount[name]; !ok {
		t.instructionNames = append(t.instructionNames, name)
	}

	t.instructionCount[name]++
	t.processCount[r.ProcessName]++
	t.total++
}

// TraceSemaphore counts blocking per semaphore.
func (t *InstructionCountTracer) TraceSemaphore(
	kind string,
	e engine.SemaphoreEvent,
) {
	if kind != KindBlock {
		return
	}

	t.lock.Lock()
	defer t.lock.Unlock()

	t.blockCount[e.Semaphore]++
}

// TraceConsumption does nothing.
func (t *InstructionCountTracer) TraceConsumption(int, engine.ConsumerLog) {
}

// InstructionNames returns the instructions seen, in order of first
// execution.
func (t *InstructionCountTracer) InstructionNames() []string {
	t.lock.Lock()
	defer t.lock.Unlock()

	return append([]string(nil), t.instructionNames...)
}

// InstructionCount returns how many times the instruction was executed.
func (t *InstructionCountTracer) InstructionCount(name string) uint64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.instructionCount[name]
}

// ProcessCount returns how many instructions the named process executed.
func (t *InstructionCountTracer) ProcessCount(processName string) uint64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.processCount[processName]
}

// BlockCount returns how many times processes blocked on the semaphore.
func (t *InstructionCountTracer) BlockCount(semaphore string) uint64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.blockCount[semaphore]
}

// Total returns the number of instructions counted.
func (t *InstructionCountTracer) Total() uint64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.total
}

// Counts returns a copy of the per-instruction counters.
func (t *InstructionCountTracer) Counts() map[string]uint64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	counts := make(map[string]uint64, len(t.instructionCount))
	for k, v := range t.instructionCount {
		counts[k] = v
	}

	return counts
}

// Reset clears all counters.
func (t *InstructionCountTracer) Reset() {
	t.lock.Lock()
	defer t.lock.Unlock()

	t.instructionNames = nil
	t.instructionCount = make(map[string]uint64)
	t.processCount = make(map[string]uint64)
	t.blockCount = make(map[string]uint64)
	t.total = 0
}
