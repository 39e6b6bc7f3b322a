package engine

import (
	"github.com/sarchlab/pcsim/process"
	"github.com/sarchlab/pcsim/semaphore"
)

// A ConsumerLog records one message read by a consumer.
type ConsumerLog struct {
	ConsumerID     string `json:"consumer_id"`
	ConsumerName   string `json:"consumer_name"`
	MessageID      string `json:"message_id"`
	MessageContent string `json:"message_content"`
	ProducerID     string `json:"producer_id"`
	ProducerName   string `json:"producer_name"`
	Timestamp      int64  `json:"timestamp"`
}

// A ProcessView is the read-only state of a process inside a snapshot.
type ProcessView struct {
	ID          string         `json:"id"`
	Type        process.Type   `json:"type"`
	Name        string         `json:"name"`
	Message     string         `json:"message,omitempty"`
	Status      process.Status `json:"status"`
	CurrentStep int            `json:"current_step"`
	Steps       []string       `json:"steps"`
	WaitReason  string         `json:"wait_reason,omitempty"`
}

// A Snapshot is a copy of the whole simulation state at one point in time.
// Nothing in a snapshot is shared with the engine.
type Snapshot struct {
	Buffer []*process.Message `json:"buffer"`
	In     int                `json:"in"`
	Out    int                `json:"out"`

	MutexP  int `json:"mutex_p"`
	MutexC  int `json:"mutex_c"`
	NrFull  int `json:"nrfull"`
	NrEmpty int `json:"nrempty"`

	MutexPQueue  []ProcessView `json:"mutex_p_queue"`
	MutexCQueue  []ProcessView `json:"mutex_c_queue"`
	NrFullQueue  []ProcessView `json:"nrfull_queue"`
	NrEmptyQueue []ProcessView `json:"nrempty_queue"`

	Processes           []ProcessView `json:"processes"`
	CurrentProcessIndex int           `json:"current_process_index"`
	ConsumerLogs        []ConsumerLog `json:"consumer_logs"`
	Step                int           `json:"step"`
	IsRunning           bool          `json:"is_running"`
}

// CurrentState returns a snapshot of the current state without changing it.
func (e *Engine) CurrentState() Snapshot {
	processes := make([]ProcessView, 0, len(e.roster))
	for _, id := range e.roster {
		v := e.view(e.processes[id])
		if v.Status == process.Blocked {
			if info, ok := e.blocked[id]; ok {
				v.WaitReason = info.semaphore
			}
		}

		processes = append(processes, v)
	}

	return Snapshot{
		Buffer:              e.buffer.Snapshot(),
		In:                  e.buffer.In(),
		Out:                 e.buffer.Out(),
		MutexP:              e.mutexP.Value(),
		MutexC:              e.mutexC.Value(),
		NrFull:              e.nrFull.Value(),
		NrEmpty:             e.nrEmpty.Value(),
		MutexPQueue:         e.queueView(e.mutexP),
		MutexCQueue:         e.queueView(e.mutexC),
		NrFullQueue:         e.queueView(e.nrFull),
		NrEmptyQueue:        e.queueView(e.nrEmpty),
		Processes:           processes,
		CurrentProcessIndex: e.currentIndex,
		ConsumerLogs:        append([]ConsumerLog{}, e.consumerLogs...),
		Step:                e.step,
		IsRunning:           e.running,
	}
}

// History returns every snapshot taken since the last reset, oldest first.
func (e *Engine) History() []Snapshot {
	return append([]Snapshot(nil), e.history...)
}

func (e *Engine) saveState() *Snapshot {
	s := e.CurrentState()
	e.history = append(e.history, s)

	return &s
}

func (e *Engine) view(p *process.Process) ProcessView {
	return ProcessView{
		ID:          p.ID,
		Type:        p.Type,
		Name:        p.Name,
		Message:     p.Message,
		Status:      p.Status,
		CurrentStep: p.CurrentStep,
		Steps:       p.StepTexts(),
	}
}

func (e *Engine) queueView(s *semaphore.Semaphore) []ProcessView {
	ids := s.Queue()

	views := make([]ProcessView, 0, len(ids))
	for _, id := range ids {
		v := e.view(e.processes[id])
		v.Status = process.Blocked
		v.WaitReason = s.Name()
		views = append(views, v)
	}

	return views
}
