package tracing

import (
	"sync"

	"github.com/tebeka/atexit"

	"github.com/sarchlab/pcsim/datarecording"
	"github.com/sarchlab/pcsim/engine"
)

// Tables written by the DBTracer.
const (
	InstructionTable    = "instructions"
	SemaphoreEventTable = "semaphore_events"
	ConsumerLogTable    = "consumer_log"
)

// InstructionEntry is a row of the instructions table.
type InstructionEntry struct {
	Step        int
	ProcessID   string
	ProcessName string
	ProcessType string
	StepIndex   int
	Instruction string
	Outcome     string
}

// SemaphoreEventEntry is a row of the semaphore_events table.
type SemaphoreEventEntry struct {
	Step        int
	Kind        string
	ProcessID   string
	ProcessName string
	Semaphore   string
}

// ConsumerLogEntry is a row of the consumer_log table.
type ConsumerLogEntry struct {
	Step           int
	ConsumerID     string
	ConsumerName   string
	MessageID      string
	MessageContent string
	ProducerID     string
	ProducerName   string
	Timestamp      int64
}

// DBTracer is a tracer that stores every executed instruction, every
// semaphore event, and every consumed message into a DataRecorder.
type DBTracer struct {
	mu      sync.Mutex
	backend datarecording.DataRecorder
}

// NewDBTracer creates the tables and returns the tracer.
func NewDBTracer(dataRecorder datarecording.DataRecorder) *DBTracer {
	dataRecorder.CreateTable(InstructionTable, InstructionEntry{})
	dataRecorder.CreateTable(SemaphoreEventTable, SemaphoreEventEntry{})
	dataRecorder.CreateTable(ConsumerLogTable, ConsumerLogEntry{})

	t := &DBTracer{
		backend: dataRecorder,
	}

	atexit.Register(func() {
		t.Terminate()
	})

	return t
}

// TraceInstruction records an executed instruction.
func (t *DBTracer) TraceInstruction(r engine.InstructionRecord) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.backend.InsertData(InstructionTable, InstructionEntry{
		Step:        r.Step,
		ProcessID:   r.ProcessID,
		ProcessName: r.ProcessName,
		ProcessType: r.ProcessType.String(),
		StepIndex:   r.StepIndex,
		Instruction: r.Instruction.String(),
		Outcome:     r.Outcome.String(),
	})
}

// TraceSemaphore records a block or a wake.
func (t *DBTracer) TraceSemaphore(kind string, e engine.SemaphoreEvent) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.backend.InsertData(SemaphoreEventTable, SemaphoreEventEntry{
		Step:        e.Step,
		Kind:        kind,
		ProcessID:   e.ProcessID,
		ProcessName: e.ProcessName,
		Semaphore:   e.Semaphore,
	})
}

// TraceConsumption records a consumed message.
func (t *DBTracer) TraceConsumption(step int, entry engine.ConsumerLog) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.backend.InsertData(ConsumerLogTable, ConsumerLogEntry{
		Step:           step,
		ConsumerID:     entry.ConsumerID,
		ConsumerName:   entry.ConsumerName,
		MessageID:      entry.MessageID,
		MessageContent: entry.MessageContent,
		ProducerID:     entry.ProducerID,
		ProducerName:   entry.ProducerName,
		Timestamp:      entry.Timestamp,
	})
}

// Terminate flushes the buffered records.
func (t *DBTracer) Terminate() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.backend.Flush()
}
