package tracing

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/pcsim/engine"
	"github.com/sarchlab/pcsim/process"
)

var _ = Describe("InstructionCountTracer", func() {
	var (
		e      *engine.Engine
		tracer *InstructionCountTracer
	)

	BeforeEach(func() {
		e = engine.New(engine.WithBufferSize(1))
		tracer = NewInstructionCountTracer(nil)
		CollectTrace(e, tracer)
	})

	It("should count instructions of a simulation", func() {
		e.AddProcess(process.Producer, "P1", "")
		e.AddProcess(process.Producer, "P2", "")
		e.Start()

		for e.IsRunning() {
			e.Step()
		}

		Expect(tracer.Total()).To(Equal(uint64(10)))
		Expect(tracer.ProcessCount("P1")).To(Equal(uint64(7)))
		Expect(tracer.ProcessCount("P2")).To(Equal(uint64(3)))
		Expect(tracer.InstructionCount("P(nrempty)")).To(Equal(uint64(2)))
		Expect(tracer.BlockCount(engine.NrEmpty)).To(Equal(uint64(1)))
		Expect(tracer.InstructionNames()).To(HaveLen(7))
		Expect(tracer.InstructionNames()[0]).To(Equal("create a new message M"))
		Expect(tracer.Counts()).To(HaveKeyWithValue("V(mutexP)", uint64(1)))
	})

	It("should apply the filter", func() {
		tracer = NewInstructionCountTracer(func(r engine.InstructionRecord) bool {
			return r.ProcessType == process.Consumer
		})
		e = engine.New()
		CollectTrace(e, tracer)

		e.AddProcess(process.Producer, "P1", "")
		e.AddProcess(process.Consumer, "C1", "")
		e.Start()

		for e.IsRunning() {
			e.Step()
		}

		Expect(tracer.Total()).To(Equal(uint64(6)))
		Expect(tracer.ProcessCount("P1")).To(BeZero())
	})

	It("should reset", func() {
		e.AddProcess(process.Producer, "P1", "")
		e.Start()
		e.Step()

		tracer.Reset()

		Expect(tracer.Total()).To(BeZero())
		Expect(tracer.InstructionNames()).To(BeEmpty())
	})

	It("should not attach the same tracer twice", func() {
		Expect(func() { CollectTrace(e, tracer) }).To(Panic())
	})
})
