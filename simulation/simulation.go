// Package simulation wires the engine, the recorders, the tracers, and the
// monitor into one runnable simulation.
package simulation

import (
	"log"

	"github.com/sarchlab/pcsim/datarecording"
	"github.com/sarchlab/pcsim/engine"
	"github.com/sarchlab/pcsim/monitoring"
	"github.com/sarchlab/pcsim/tracing"
)

// A Simulation owns an engine and everything that observes it.
type Simulation struct {
	id         string
	outputPath string

	engine *engine.Engine

	dataRecorder datarecording.DataRecorder
	execRecorder *datarecording.ExecRecorder
	dbTracer     *tracing.DBTracer
	counter      *tracing.InstructionCountTracer
	monitor      *monitoring.Monitor
}

// ID returns the unique ID of the simulation.
func (s *Simulation) ID() string {
	return s.id
}

// GetEngine returns the engine used in the simulation.
func (s *Simulation) GetEngine() *engine.Engine {
	return s.engine
}

// GetDataRecorder returns the data recorder used in the simulation. It is nil
// when recording is disabled.
func (s *Simulation) GetDataRecorder() datarecording.DataRecorder {
	return s.dataRecorder
}

// OutputPath returns the database path without the ".sqlite3" suffix.
func (s *Simulation) OutputPath() string {
	return s.outputPath
}

// GetMonitor returns the monitor used in the simulation. It is nil when
// monitoring is disabled.
func (s *Simulation) GetMonitor() *monitoring.Monitor {
	return s.monitor
}

// GetInstructionCounter returns the tracer that counts executed
// instructions.
func (s *Simulation) GetInstructionCounter() *tracing.InstructionCountTracer {
	return s.counter
}

// GetDBTracer returns the tracer that writes into the data recorder.
func (s *Simulation) GetDBTracer() *tracing.DBTracer {
	return s.dbTracer
}

// RunToEnd starts the engine and steps it until it stops or until maxSteps
// steps have been executed. A non-positive maxSteps means no limit. The
// onStep callback, if not nil, receives every snapshot. It returns the
// number of steps executed.
func (s *Simulation) RunToEnd(
	maxSteps int,
	onStep func(*engine.Snapshot),
) int {
	s.lock()
	s.engine.Start()
	s.unlock()

	var bar *monitoring.ProgressBar
	if s.monitor != nil && maxSteps > 0 {
		bar = s.monitor.CreateProgressBar("Run", uint64(maxSteps))
		defer s.monitor.CompleteProgressBar(bar)
	}

	executed := 0
	for maxSteps <= 0 || executed < maxSteps {
		s.lock()
		snapshot := s.engine.Step()
		s.unlock()

		if snapshot == nil {
			break
		}

		executed++

		if bar != nil {
			bar.IncrementFinished(1)
		}

		if onStep != nil {
			onStep(snapshot)
		}

		if !snapshot.IsRunning {
			break
		}
	}

	return executed
}

func (s *Simulation) lock() {
	if s.monitor != nil {
		s.monitor.Lock()
	}
}

func (s *Simulation) unlock() {
	if s.monitor != nil {
		s.monitor.Unlock()
	}
}

// Terminate flushes the recorders and stops the monitor.
func (s *Simulation) Terminate() {
	if s.monitor != nil {
		s.monitor.StopServer()
	}

	if s.dataRecorder == nil {
		return
	}

	s.execRecorder.End()
	s.dbTracer.Terminate()

	err := s.dataRecorder.Close()
	if err != nil {
		log.Printf("failed to close data recorder: %v", err)
	}
}
