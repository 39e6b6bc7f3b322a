// Package process defines the producer and consumer processes that run in the
// simulation.
package process

import (
	"errors"
	"fmt"

	"github.com/sarchlab/pcsim/sim"
)

// ErrInvalidOperation is returned when an operation is not allowed for the
// process type.
var ErrInvalidOperation = errors.New("invalid operation")

// Type is either Producer or Consumer.
type Type int

// Process types.
const (
	Producer Type = iota
	Consumer
)

func (t Type) String() string {
	switch t {
	case Producer:
		return "producer"
	case Consumer:
		return "consumer"
	default:
		return "unknown"
	}
}

// ParseType converts "producer" or "consumer" into a Type.
func ParseType(s string) (Type, error) {
	switch s {
	case "producer":
		return Producer, nil
	case "consumer":
		return Consumer, nil
	default:
		return 0, fmt.Errorf("unknown process type %q", s)
	}
}

// Status is the lifecycle state of a process.
type Status int

// Process statuses.
const (
	Waiting Status = iota
	Running
	Blocked
	Finished
)

func (s Status) String() string {
	switch s {
	case Waiting:
		return "waiting"
	case Running:
		return "running"
	case Blocked:
		return "blocked"
	case Finished:
		return "finished"
	default:
		return "unknown"
	}
}

// A Message is created by a producer and travels through the buffer to a
// consumer.
type Message struct {
	ID           string `json:"id"`
	Content      string `json:"content"`
	ProducerID   string `json:"producer_id"`
	ProducerName string `json:"producer_name"`
}

// A Process is a producer or a consumer that executes a fixed program, one
// instruction at a time.
type Process struct {
	ID          string
	Type        Type
	Name        string
	Message     string
	Status      Status
	CurrentStep int
	Steps       []Instruction
}

// New creates a waiting process positioned at its first instruction.
func New(id string, t Type, name, message string) *Process {
	return &Process{
		ID:      id,
		Type:    t,
		Name:    name,
		Message: message,
		Status:  Waiting,
		Steps:   Program(t),
	}
}

// CurrentInstruction returns the instruction the process executes next.
func (p *Process) CurrentInstruction() Instruction {
	return p.Steps[p.CurrentStep]
}

// NextStep moves to the next instruction. It returns false if the process is
// already at its last instruction.
func (p *Process) NextStep() bool {
	if p.CurrentStep < len(p.Steps)-1 {
		p.CurrentStep++
		return true
	}

	return false
}

// SetNextStep forces the instruction pointer. Out-of-range indices are
// ignored.
func (p *Process) SetNextStep(index int) {
	if index >= 0 && index < len(p.Steps) {
		p.CurrentStep = index
	}
}

// ResetSteps moves the instruction pointer back to the first instruction.
func (p *Process) ResetSteps() {
	p.CurrentStep = 0
}

// StepTexts returns the display text of every instruction.
func (p *Process) StepTexts() []string {
	texts := make([]string, len(p.Steps))
	for i, s := range p.Steps {
		texts[i] = s.String()
	}

	return texts
}

// CreateMessage builds the message the producer writes into the buffer.
func (p *Process) CreateMessage(idGen sim.IDGenerator) (Message, error) {
	if p.Type != Producer {
		return Message{}, fmt.Errorf(
			"%w: %s is a %s and cannot create messages",
			ErrInvalidOperation, p.Name, p.Type)
	}

	content := p.Message
	if content == "" {
		content = "Message from " + p.Name
	}

	return Message{
		ID:           idGen.Generate(),
		Content:      content,
		ProducerID:   p.ID,
		ProducerName: p.Name,
	}, nil
}

// Clone returns a deep copy of the process.
func (p *Process) Clone() *Process {
	c := *p
	c.Steps = append([]Instruction(nil), p.Steps...)

	return &c
}
