// Package engine runs the producer-consumer simulation. An Engine executes one
// instruction of one process per step and hands out snapshots of its state.
//
// Scheduling is cooperative: the scheduled process keeps running across steps
// until it blocks on a semaphore or finishes its program. The next process is
// then taken from the ready queue of woken processes, or, if the queue is
// empty, found by scanning the roster forward from the current position.
package engine

import (
	"time"

	"github.com/sarchlab/pcsim/process"
	"github.com/sarchlab/pcsim/ringbuffer"
	"github.com/sarchlab/pcsim/semaphore"
	"github.com/sarchlab/pcsim/sim"
)

// Semaphore names.
const (
	MutexP  = "mutexP"
	MutexC  = "mutexC"
	NrFull  = "nrfull"
	NrEmpty = "nrempty"
)

// DefaultBufferSize is the number of buffer slots used when not configured.
const DefaultBufferSize = 4

type blockInfo struct {
	semaphore  string
	resumeStep int
}

// An Engine owns the buffer, the four semaphores, and every process. The
// semaphores, the blocked map, and the ready queue only hold process IDs that
// refer to the process table.
type Engine struct {
	sim.NamedBase
	*sim.HookableBase

	bufferSize int
	idGen      sim.IDGenerator
	clock      func() time.Time

	buffer  *ringbuffer.CircularBuffer[process.Message]
	mutexP  *semaphore.Semaphore
	mutexC  *semaphore.Semaphore
	nrFull  *semaphore.Semaphore
	nrEmpty *semaphore.Semaphore

	processes    map[string]*process.Process
	roster       []string
	currentIndex int
	blocked      map[string]blockInfo
	readyQueue   []string
	pending      map[string]process.Message

	consumerLogs []ConsumerLog
	step         int
	history      []Snapshot
	running      bool
}

// An Option configures an Engine.
type Option func(e *Engine)

// WithBufferSize sets the number of buffer slots.
func WithBufferSize(n int) Option {
	return func(e *Engine) {
		e.bufferSize = n
	}
}

// WithIDGenerator sets the generator for process and message IDs.
func WithIDGenerator(g sim.IDGenerator) Option {
	return func(e *Engine) {
		e.idGen = g
	}
}

// WithClock sets the clock used to timestamp consumer logs.
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) {
		e.clock = clock
	}
}

// New creates an engine with an empty roster.
func New(opts ...Option) *Engine {
	e := &Engine{
		NamedBase:    sim.MakeNamedBase("Engine"),
		HookableBase: sim.NewHookableBase(),
		bufferSize:   DefaultBufferSize,
		idGen:        sim.NewSequentialIDGenerator(),
		clock:        time.Now,
		processes:    make(map[string]*process.Process),
		blocked:      make(map[string]blockInfo),
		pending:      make(map[string]process.Message),
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.bufferSize <= 0 {
		panic("buffer size must be positive")
	}

	e.buffer = ringbuffer.New[process.Message]("Buffer", e.bufferSize)
	e.mutexP = semaphore.New(MutexP, 1)
	e.mutexC = semaphore.New(MutexC, 1)
	e.nrFull = semaphore.New(NrFull, 0)
	e.nrEmpty = semaphore.New(NrEmpty, e.bufferSize)

	e.saveState()

	return e
}

// BufferSize returns the number of buffer slots.
func (e *Engine) BufferSize() int {
	return e.bufferSize
}

// Buffer returns the buffer so that observers can attach hooks to it.
func (e *Engine) Buffer() *ringbuffer.CircularBuffer[process.Message] {
	return e.buffer
}

// Semaphores returns mutexP, mutexC, nrfull, and nrempty, in that order.
func (e *Engine) Semaphores() []*semaphore.Semaphore {
	return []*semaphore.Semaphore{e.mutexP, e.mutexC, e.nrFull, e.nrEmpty}
}

// IsRunning returns true between Start and the step that finds no process
// able to make progress.
func (e *Engine) IsRunning() bool {
	return e.running
}

// StepCount returns the number of steps executed since the last reset.
func (e *Engine) StepCount() int {
	return e.step
}

// NumProcesses returns the size of the roster.
func (e *Engine) NumProcesses() int {
	return len(e.roster)
}

// Process returns a copy of the process with the given ID.
func (e *Engine) Process(id string) (*process.Process, bool) {
	p, ok := e.processes[id]
	if !ok {
		return nil, false
	}

	return p.Clone(), true
}

// Processes returns copies of the processes in roster order.
func (e *Engine) Processes() []*process.Process {
	ps := make([]*process.Process, 0, len(e.roster))
	for _, id := range e.roster {
		ps = append(ps, e.processes[id].Clone())
	}

	return ps
}

// AddProcess appends a new waiting process to the roster and returns its ID.
// The message is only used by producers.
func (e *Engine) AddProcess(t process.Type, name, message string) string {
	id := e.idGen.Generate()
	p := process.New(id, t, name, message)

	e.processes[id] = p
	e.roster = append(e.roster, id)

	return id
}

// RemoveProcess deletes the process from the roster and from every
// semaphore queue, the blocked map, and the ready queue. It returns false if
// no process has the ID.
func (e *Engine) RemoveProcess(id string) bool {
	index := e.indexOf(id)
	if index < 0 {
		return false
	}

	e.roster = append(e.roster[:index], e.roster[index+1:]...)
	delete(e.processes, id)
	delete(e.blocked, id)
	delete(e.pending, id)
	e.readyQueue = removeID(e.readyQueue, id)

	for _, s := range e.Semaphores() {
		s.RemoveProcess(id)
	}

	if index <= e.currentIndex && e.currentIndex > 0 {
		e.currentIndex--
	} else if e.currentIndex >= len(e.roster) && len(e.roster) > 0 {
		e.currentIndex = len(e.roster) - 1
	}

	return true
}

// RemoveAllProcesses empties the roster and resets the simulation.
func (e *Engine) RemoveAllProcesses() {
	e.processes = make(map[string]*process.Process)
	e.roster = nil
	e.currentIndex = 0

	e.Reset()
}

// Start marks the simulation as running and schedules the current process.
func (e *Engine) Start() {
	e.running = true
	e.pruneBlocked()

	if len(e.roster) == 0 {
		return
	}

	if e.currentInRange() && e.isSchedulable(e.roster[e.currentIndex]) {
		p := e.currentProcess()
		p.Status = process.Running
		e.readyQueue = removeID(e.readyQueue, p.ID)

		return
	}

	e.moveToNextProcess()
}

// pruneBlocked drops block tracking for processes that no semaphore queue
// holds any more.
func (e *Engine) pruneBlocked() {
	for id := range e.blocked {
		if !e.inAnyQueue(id) {
			delete(e.blocked, id)
		}
	}
}

// Reset restores the buffer and the semaphores to their initial values,
// clears logs and history, and moves every process back to its first
// instruction. The roster is kept.
func (e *Engine) Reset() {
	e.buffer.Reset()
	e.mutexP.Reset(1)
	e.mutexC.Reset(1)
	e.nrFull.Reset(0)
	e.nrEmpty.Reset(e.bufferSize)

	e.currentIndex = 0
	e.consumerLogs = nil
	e.step = 0
	e.history = nil
	e.running = false
	e.blocked = make(map[string]blockInfo)
	e.pending = make(map[string]process.Message)
	e.readyQueue = nil

	for _, id := range e.roster {
		p := e.processes[id]
		p.ResetSteps()
		p.Status = process.Waiting
	}

	e.saveState()
}

func (e *Engine) indexOf(id string) int {
	for i, pid := range e.roster {
		if pid == id {
			return i
		}
	}

	return -1
}

func (e *Engine) currentInRange() bool {
	return e.currentIndex >= 0 && e.currentIndex < len(e.roster)
}

func (e *Engine) currentProcess() *process.Process {
	return e.processes[e.roster[e.currentIndex]]
}

func (e *Engine) inAnyQueue(id string) bool {
	for _, s := range e.Semaphores() {
		if s.HasProcess(id) {
			return true
		}
	}

	return false
}

func (e *Engine) isSchedulable(id string) bool {
	if e.processes[id].Status == process.Finished {
		return false
	}

	if _, ok := e.blocked[id]; ok {
		return false
	}

	return !e.inAnyQueue(id)
}

func removeID(ids []string, id string) []string {
	out := ids[:0]
	for _, x := range ids {
		if x != id {
			out = append(out, x)
		}
	}

	return out
}
