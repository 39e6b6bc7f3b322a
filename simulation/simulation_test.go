package simulation_test

import (
	"context"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/pcsim/datarecording"
	"github.com/sarchlab/pcsim/engine"
	"github.com/sarchlab/pcsim/process"
	"github.com/sarchlab/pcsim/simulation"
	"github.com/sarchlab/pcsim/tracing"
)

var _ = Describe("Builder", func() {
	It("should panic on a non-positive buffer size", func() {
		Expect(func() {
			simulation.MakeBuilder().
				WithoutMonitoring().
				WithoutRecording().
				WithBufferSize(0).
				Build()
		}).To(Panic())
	})

	It("should panic if a port is set without monitoring", func() {
		Expect(func() {
			simulation.MakeBuilder().
				WithoutMonitoring().
				WithMonitorPort(8080).
				Build()
		}).To(Panic())
	})

	It("should panic if an output file is set without recording", func() {
		Expect(func() {
			simulation.MakeBuilder().
				WithoutMonitoring().
				WithoutRecording().
				WithOutputFileName("out").
				Build()
		}).To(Panic())
	})

	It("should build a bare simulation", func() {
		s := simulation.MakeBuilder().
			WithoutMonitoring().
			WithoutRecording().
			WithBufferSize(2).
			Build()
		defer s.Terminate()

		Expect(s.ID()).ToNot(BeEmpty())
		Expect(s.GetEngine().BufferSize()).To(Equal(2))
		Expect(s.GetDataRecorder()).To(BeNil())
		Expect(s.GetMonitor()).To(BeNil())
		Expect(s.GetInstructionCounter()).ToNot(BeNil())
	})

	It("should start and stop the monitor", func() {
		s := simulation.MakeBuilder().
			WithoutRecording().
			Build()

		Expect(s.GetMonitor()).ToNot(BeNil())

		s.Terminate()
	})
})

var _ = Describe("Simulation", func() {
	var (
		s          *simulation.Simulation
		outputPath string
	)

	BeforeEach(func() {
		outputPath = filepath.Join(GinkgoT().TempDir(), "run")

		s = simulation.MakeBuilder().
			WithoutMonitoring().
			WithSequentialIDs().
			WithOutputFileName(outputPath).
			Build()
	})

	It("should use the output file name", func() {
		Expect(s.OutputPath()).To(Equal(outputPath))

		s.Terminate()
	})

	It("should do nothing with an empty roster", func() {
		steps := s.RunToEnd(0, nil)

		Expect(steps).To(Equal(0))

		s.Terminate()
	})

	It("should run a producer and a consumer to the end", func() {
		e := s.GetEngine()
		e.AddProcess(process.Producer, "P1", "hello")
		e.AddProcess(process.Consumer, "C1", "")

		var last *engine.Snapshot
		steps := s.RunToEnd(0, func(snapshot *engine.Snapshot) {
			last = snapshot
		})

		Expect(steps).To(Equal(13))
		Expect(last.IsRunning).To(BeFalse())
		Expect(last.ConsumerLogs).To(HaveLen(1))
		Expect(last.ConsumerLogs[0].MessageContent).To(Equal("hello"))
		Expect(s.GetInstructionCounter().Total()).To(Equal(uint64(13)))

		s.Terminate()

		reader, err := datarecording.NewReader(outputPath + ".sqlite3")
		Expect(err).ToNot(HaveOccurred())
		defer reader.Close()

		reader.MapTable(tracing.InstructionTable, tracing.InstructionEntry{})
		reader.MapTable(tracing.ConsumerLogTable, tracing.ConsumerLogEntry{})
		reader.MapTable(datarecording.ExecInfoTable, datarecording.ExecInfo{})

		_, total, err := reader.Query(context.Background(),
			tracing.InstructionTable, datarecording.QueryParams{})
		Expect(err).ToNot(HaveOccurred())
		Expect(total).To(Equal(13))

		logs, _, err := reader.Query(context.Background(),
			tracing.ConsumerLogTable, datarecording.QueryParams{})
		Expect(err).ToNot(HaveOccurred())
		Expect(logs).To(HaveLen(1))
		Expect(logs[0].(*tracing.ConsumerLogEntry).ConsumerName).
			To(Equal("C1"))

		_, total, err = reader.Query(context.Background(),
			datarecording.ExecInfoTable, datarecording.QueryParams{})
		Expect(err).ToNot(HaveOccurred())
		Expect(total).To(Equal(4))
	})

	It("should stop after the step limit", func() {
		s.GetEngine().InitializeExample()

		steps := s.RunToEnd(5, nil)

		Expect(steps).To(Equal(5))
		Expect(s.GetEngine().IsRunning()).To(BeTrue())
		Expect(s.GetEngine().StepCount()).To(Equal(5))

		s.Terminate()
	})

	It("should run the example to completion", func() {
		s.GetEngine().InitializeExample()

		s.RunToEnd(0, nil)

		state := s.GetEngine().CurrentState()
		Expect(state.IsRunning).To(BeFalse())
		Expect(state.ConsumerLogs).To(HaveLen(12))
		for _, p := range state.Processes {
			Expect(p.Status).To(Equal(process.Finished))
		}

		s.Terminate()
	})
})
