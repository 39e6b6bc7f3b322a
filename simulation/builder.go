package simulation

import (
	"github.com/rs/xid"

	"github.com/sarchlab/pcsim/datarecording"
	"github.com/sarchlab/pcsim/engine"
	"github.com/sarchlab/pcsim/monitoring"
	"github.com/sarchlab/pcsim/sim"
	"github.com/sarchlab/pcsim/tracing"
)

// Builder can be used to build a simulation.
type Builder struct {
	bufferSize     int
	monitorOn      bool
	monitorPort    int
	openBrowser    bool
	recordingOn    bool
	outputFileName string
	sequentialIDs  bool
}

// MakeBuilder creates a new builder.
func MakeBuilder() Builder {
	return Builder{
		bufferSize:  engine.DefaultBufferSize,
		monitorOn:   true,
		recordingOn: true,
	}
}

// WithBufferSize sets the capacity of the shared buffer.
func (b Builder) WithBufferSize(n int) Builder {
	b.bufferSize = n
	return b
}

// WithoutMonitoring sets the simulation to not use monitoring.
func (b Builder) WithoutMonitoring() Builder {
	b.monitorOn = false
	return b
}

// WithMonitorPort sets the port number for the monitoring server.
func (b Builder) WithMonitorPort(port int) Builder {
	b.monitorPort = port
	return b
}

// WithBrowser opens the monitoring page in the default browser.
func (b Builder) WithBrowser() Builder {
	b.openBrowser = true
	return b
}

// WithoutRecording disables the SQLite trace.
func (b Builder) WithoutRecording() Builder {
	b.recordingOn = false
	return b
}

// WithOutputFileName sets the custom output file name for the data recorder.
func (b Builder) WithOutputFileName(filename string) Builder {
	b.outputFileName = filename
	return b
}

// WithSequentialIDs makes process and message IDs "1", "2", ... instead of
// globally unique IDs.
func (b Builder) WithSequentialIDs() Builder {
	b.sequentialIDs = true
	return b
}

func (b Builder) parametersMustBeValid() {
	if b.bufferSize <= 0 {
		panic("buffer size must be positive")
	}

	if !b.monitorOn && (b.monitorPort != 0 || b.openBrowser) {
		panic("monitor options cannot be set when monitoring is disabled")
	}

	if !b.recordingOn && b.outputFileName != "" {
		panic("output file cannot be set when recording is disabled")
	}
}

// Build builds the simulation.
func (b Builder) Build() *Simulation {
	b.parametersMustBeValid()

	s := &Simulation{}

	s.id = xid.New().String()

	var idGen sim.IDGenerator = sim.NewXIDGenerator()
	if b.sequentialIDs {
		idGen = sim.NewSequentialIDGenerator()
	}

	s.engine = engine.New(
		engine.WithBufferSize(b.bufferSize),
		engine.WithIDGenerator(idGen),
	)

	s.counter = tracing.NewInstructionCountTracer(nil)
	tracing.CollectTrace(s.engine, s.counter)

	if b.recordingOn {
		b.buildRecording(s)
	}

	if b.monitorOn {
		b.buildMonitor(s)
	}

	return s
}

func (b Builder) buildRecording(s *Simulation) {
	s.outputPath = b.outputFileName
	if s.outputPath == "" {
		s.outputPath = "pcsim_sim_" + s.id
	}

	s.dataRecorder = datarecording.New(s.outputPath)

	s.execRecorder = datarecording.NewExecRecorder(s.dataRecorder)
	s.execRecorder.Start()

	s.dbTracer = tracing.NewDBTracer(s.dataRecorder)
	tracing.CollectTrace(s.engine, s.dbTracer)
}

func (b Builder) buildMonitor(s *Simulation) {
	s.monitor = monitoring.NewMonitor()
	if b.monitorPort > 0 {
		s.monitor.WithPortNumber(b.monitorPort)
	}

	if b.openBrowser {
		s.monitor.WithBrowser()
	}

	s.monitor.RegisterEngine(s.engine)
	s.monitor.RegisterInstructionCounter(s.counter)
	s.monitor.StartServer()
}
