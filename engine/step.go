package engine

import (
	"log"

	"github.com/sarchlab/pcsim/process"
	"github.com/sarchlab/pcsim/semaphore"
	"github.com/sarchlab/pcsim/sim"
)

// Hook positions triggered by the engine.
var (
	// HookPosInstruction triggers after an instruction is executed. The item
	// is an InstructionRecord.
	HookPosInstruction = &sim.HookPos{Name: "Instruction"}

	// HookPosBlocked triggers when a process blocks on a semaphore. The item
	// is a SemaphoreEvent.
	HookPosBlocked = &sim.HookPos{Name: "Blocked"}

	// HookPosWoken triggers when a V operation wakes a process. The item is a
	// SemaphoreEvent.
	HookPosWoken = &sim.HookPos{Name: "Woken"}

	// HookPosConsumed triggers when a consumer reads a message. The item is a
	// ConsumerLog and the detail is the step number.
	HookPosConsumed = &sim.HookPos{Name: "Consumed"}

	// HookPosScheduled triggers when the scheduler switches to a process. The
	// item is the process ID.
	HookPosScheduled = &sim.HookPos{Name: "Scheduled"}

	// HookPosStopped triggers when the simulation stops because no process
	// can make progress. The item is the step number.
	HookPosStopped = &sim.HookPos{Name: "Stopped"}
)

// Outcome tells what happened to a process after an instruction.
type Outcome int

// Instruction outcomes.
const (
	Continued Outcome = iota
	BlockedOn
	Completed
)

func (o Outcome) String() string {
	switch o {
	case Continued:
		return "continued"
	case BlockedOn:
		return "blocked"
	case Completed:
		return "finished"
	default:
		return "unknown"
	}
}

// An InstructionRecord describes one executed instruction.
type InstructionRecord struct {
	Step        int
	ProcessID   string
	ProcessName string
	ProcessType process.Type
	StepIndex   int
	Instruction process.Instruction
	Outcome     Outcome
}

// A SemaphoreEvent describes a process blocking on or waking from a
// semaphore.
type SemaphoreEvent struct {
	Step        int
	ProcessID   string
	ProcessName string
	Semaphore   string
}

// Step executes one instruction of the scheduled process and returns the
// resulting snapshot. It returns nil if the simulation is not running or the
// roster is empty.
func (e *Engine) Step() *Snapshot {
	if !e.running || len(e.roster) == 0 {
		return nil
	}

	if !e.currentInRange() || !e.isSchedulable(e.roster[e.currentIndex]) {
		e.moveToNextProcess()

		if !e.currentInRange() || !e.isSchedulable(e.roster[e.currentIndex]) {
			e.stopIfInactive()
			return e.saveState()
		}
	}

	p := e.currentProcess()
	p.Status = process.Running
	e.readyQueue = removeID(e.readyQueue, p.ID)

	stepIndex := p.CurrentStep
	instruction := p.CurrentInstruction()

	outcome := Continued
	if e.execute(p) {
		p.Status = process.Blocked
		outcome = BlockedOn
	} else if !p.NextStep() {
		p.Status = process.Finished
		outcome = Completed
	}

	e.invoke(HookPosInstruction, InstructionRecord{
		Step:        e.step + 1,
		ProcessID:   p.ID,
		ProcessName: p.Name,
		ProcessType: p.Type,
		StepIndex:   stepIndex,
		Instruction: instruction,
		Outcome:     outcome,
	}, nil)

	if outcome != Continued {
		e.moveToNextProcess()
	}

	e.step++

	e.stopIfInactive()

	return e.saveState()
}

// execute runs the current instruction of the process. It returns true if the
// process blocked.
func (e *Engine) execute(p *process.Process) bool {
	switch p.CurrentInstruction() {
	case process.CreateMessage:
		e.pending[p.ID] = e.createMessage(p)
	case process.AcquireMutexP:
		return e.acquire(p, e.mutexP)
	case process.AcquireNrEmpty:
		return e.acquire(p, e.nrEmpty)
	case process.WriteBuffer:
		msg, ok := e.pending[p.ID]
		if !ok {
			msg = e.createMessage(p)
		}

		delete(e.pending, p.ID)
		e.buffer.Insert(msg)
	case process.AdvanceIn:
		// The buffer advances in when inserting.
	case process.ReleaseNrFull:
		e.release(e.nrFull)
	case process.ReleaseMutexP:
		e.release(e.mutexP)
	case process.AcquireMutexC:
		return e.acquire(p, e.mutexC)
	case process.AcquireNrFull:
		return e.acquire(p, e.nrFull)
	case process.ReadBuffer:
		e.readBuffer(p)
	case process.AdvanceOut:
		e.buffer.Remove()
	case process.ReleaseNrEmpty:
		e.release(e.nrEmpty)
	case process.ReleaseMutexC:
		e.release(e.mutexC)
	default:
		log.Panicf("unknown instruction %d", p.CurrentInstruction())
	}

	return false
}

func (e *Engine) createMessage(p *process.Process) process.Message {
	msg, err := p.CreateMessage(e.idGen)
	if err != nil {
		log.Panic(err)
	}

	return msg
}

func (e *Engine) acquire(p *process.Process, s *semaphore.Semaphore) bool {
	if s.P(p.ID) {
		return false
	}

	e.blocked[p.ID] = blockInfo{
		semaphore:  s.Name(),
		resumeStep: p.CurrentStep + 1,
	}

	e.invoke(HookPosBlocked, SemaphoreEvent{
		Step:        e.step + 1,
		ProcessID:   p.ID,
		ProcessName: p.Name,
		Semaphore:   s.Name(),
	}, nil)

	return true
}

func (e *Engine) release(s *semaphore.Semaphore) {
	id, woke := s.V()
	if woke {
		e.wake(id, s.Name())
	}
}

// wake moves a process released by a semaphore to the ready queue. The
// process resumes at the instruction after the P operation it blocked on.
func (e *Engine) wake(id, semaphoreName string) {
	p, ok := e.processes[id]
	if !ok {
		return
	}

	resumeStep := p.CurrentStep + 1
	if info, ok := e.blocked[id]; ok {
		resumeStep = info.resumeStep
		delete(e.blocked, id)
	}

	p.Status = process.Waiting
	p.SetNextStep(resumeStep)

	if !containsID(e.readyQueue, id) {
		e.readyQueue = append(e.readyQueue, id)
	}

	e.invoke(HookPosWoken, SemaphoreEvent{
		Step:        e.step + 1,
		ProcessID:   p.ID,
		ProcessName: p.Name,
		Semaphore:   semaphoreName,
	}, nil)
}

func (e *Engine) readBuffer(p *process.Process) {
	msg := e.buffer.Peek()
	if msg == nil {
		return
	}

	entry := ConsumerLog{
		ConsumerID:     p.ID,
		ConsumerName:   p.Name,
		MessageID:      msg.ID,
		MessageContent: msg.Content,
		ProducerID:     msg.ProducerID,
		ProducerName:   msg.ProducerName,
		Timestamp:      e.clock().UnixMilli(),
	}
	e.consumerLogs = append(e.consumerLogs, entry)

	e.invoke(HookPosConsumed, entry, e.step+1)
}

// moveToNextProcess hands the processor to the head of the ready queue or,
// if no process is ready, to the next schedulable process in roster order.
// The current index is left unchanged if no process can run.
func (e *Engine) moveToNextProcess() {
	if e.currentInRange() && e.currentProcess().Status == process.Running {
		e.currentProcess().Status = process.Waiting
	}

	for len(e.readyQueue) > 0 {
		id := e.readyQueue[0]
		e.readyQueue = e.readyQueue[1:]

		if index := e.indexOf(id); index >= 0 && e.isSchedulable(id) {
			e.schedule(index)
			return
		}
	}

	n := len(e.roster)
	if n == 0 {
		e.running = false
		return
	}

	next := (e.currentIndex + 1) % n
	for attempts := 0; attempts < n; attempts++ {
		if e.isSchedulable(e.roster[next]) {
			e.schedule(next)
			return
		}

		next = (next + 1) % n
	}
}

func (e *Engine) schedule(index int) {
	e.currentIndex = index

	p := e.currentProcess()
	p.Status = process.Running

	e.invoke(HookPosScheduled, p.ID, nil)
}

// stopIfInactive stops the simulation if no process is running and none is
// waiting in the ready queue.
func (e *Engine) stopIfInactive() {
	if len(e.roster) == 0 || len(e.readyQueue) > 0 {
		return
	}

	for _, id := range e.roster {
		if !e.isInactive(id) {
			return
		}
	}

	if e.running {
		e.running = false
		e.invoke(HookPosStopped, e.step, nil)
	}
}

func (e *Engine) isInactive(id string) bool {
	p := e.processes[id]
	if p.Status == process.Finished || p.Status == process.Waiting {
		return true
	}

	if _, ok := e.blocked[id]; ok {
		return true
	}

	return e.inAnyQueue(id)
}

func (e *Engine) invoke(pos *sim.HookPos, item, detail interface{}) {
	if e.NumHooks() == 0 {
		return
	}

	e.InvokeHook(sim.HookCtx{
		Domain: e,
		Pos:    pos,
		Item:   item,
		Detail: detail,
	})
}

func containsID(ids []string, id string) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}

	return false
}
