package process

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/pcsim/sim"
)

var _ = Describe("Process", func() {
	var idGen sim.IDGenerator

	BeforeEach(func() {
		idGen = sim.NewSequentialIDGenerator()
	})

	It("should carry the producer program", func() {
		p := New("1", Producer, "P1", "hello")

		Expect(p.Status).To(Equal(Waiting))
		Expect(p.CurrentStep).To(Equal(0))
		Expect(p.StepTexts()).To(Equal([]string{
			"create a new message M",
			"P(mutexP)",
			"P(nrempty)",
			"buffer[in] <- M",
			"in <- (in + 1) mod N",
			"V(nrfull)",
			"V(mutexP)",
		}))
	})

	It("should carry the consumer program", func() {
		p := New("1", Consumer, "C1", "")

		Expect(p.StepTexts()).To(Equal([]string{
			"P(mutexC)",
			"P(nrfull)",
			"m <- buffer[out]",
			"out <- (out + 1) mod N",
			"V(nrempty)",
			"V(mutexC)",
		}))
	})

	It("should not wrap around after the last instruction", func() {
		p := New("1", Consumer, "C1", "")

		for i := 0; i < 5; i++ {
			Expect(p.NextStep()).To(BeTrue())
		}

		Expect(p.NextStep()).To(BeFalse())
		Expect(p.CurrentStep).To(Equal(5))
		Expect(p.CurrentInstruction()).To(Equal(ReleaseMutexC))
	})

	It("should ignore out-of-range step indices", func() {
		p := New("1", Producer, "P1", "")

		p.SetNextStep(3)
		Expect(p.CurrentStep).To(Equal(3))

		p.SetNextStep(7)
		Expect(p.CurrentStep).To(Equal(3))

		p.SetNextStep(-1)
		Expect(p.CurrentStep).To(Equal(3))

		p.ResetSteps()
		Expect(p.CurrentStep).To(Equal(0))
	})

	It("should not share programs between processes", func() {
		p1 := New("1", Producer, "P1", "")
		p2 := New("2", Producer, "P2", "")

		p1.Steps[0] = ReleaseMutexC

		Expect(p2.Steps[0]).To(Equal(CreateMessage))
	})

	It("should create messages for producers", func() {
		p := New("7", Producer, "P1", "hello")

		msg, err := p.CreateMessage(idGen)

		Expect(err).NotTo(HaveOccurred())
		Expect(msg).To(Equal(Message{
			ID:           "1",
			Content:      "hello",
			ProducerID:   "7",
			ProducerName: "P1",
		}))
	})

	It("should use a default message content", func() {
		p := New("7", Producer, "P1", "")

		msg, err := p.CreateMessage(idGen)

		Expect(err).NotTo(HaveOccurred())
		Expect(msg.Content).To(Equal("Message from P1"))
	})

	It("should refuse to create messages for consumers", func() {
		p := New("7", Consumer, "C1", "")

		_, err := p.CreateMessage(idGen)

		Expect(errors.Is(err, ErrInvalidOperation)).To(BeTrue())
	})

	It("should parse types", func() {
		t, err := ParseType("consumer")
		Expect(err).NotTo(HaveOccurred())
		Expect(t).To(Equal(Consumer))

		_, err = ParseType("reader")
		Expect(err).To(HaveOccurred())
	})
})
