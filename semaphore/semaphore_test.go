package semaphore

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/pcsim/sim"
)

var _ = Describe("Semaphore", func() {
	var (
		mockCtrl *gomock.Controller
		s        *Semaphore
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		s = New("nrfull", 1)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should acquire while the value is positive", func() {
		Expect(s.P("1")).To(BeTrue())
		Expect(s.Value()).To(Equal(0))
		Expect(s.Queue()).To(BeEmpty())
	})

	It("should queue when the value is zero", func() {
		s.P("1")

		Expect(s.P("2")).To(BeFalse())
		Expect(s.Value()).To(Equal(0))
		Expect(s.HasProcess("2")).To(BeTrue())
		Expect(s.HasProcess("1")).To(BeFalse())
	})

	It("should not queue the same process twice", func() {
		s.P("1")

		Expect(s.P("2")).To(BeFalse())
		Expect(s.P("2")).To(BeFalse())

		Expect(s.Queue()).To(Equal([]string{"2"}))
	})

	It("should wake waiters in FIFO order", func() {
		s.P("1")
		s.P("A")
		s.P("B")

		id, woke := s.V()
		Expect(woke).To(BeTrue())
		Expect(id).To(Equal("A"))
		Expect(s.Value()).To(Equal(0))

		id, woke = s.V()
		Expect(woke).To(BeTrue())
		Expect(id).To(Equal("B"))

		_, woke = s.V()
		Expect(woke).To(BeFalse())
		Expect(s.Value()).To(Equal(1))
	})

	It("should remove a process without changing the value", func() {
		s.P("1")
		s.P("A")
		s.P("B")

		s.RemoveProcess("A")

		Expect(s.Queue()).To(Equal([]string{"B"}))
		Expect(s.Value()).To(Equal(0))
	})

	It("should reset", func() {
		s.P("1")
		s.P("A")

		s.Reset(3)

		Expect(s.Value()).To(Equal(3))
		Expect(s.Queue()).To(BeEmpty())
	})

	It("should reject negative values", func() {
		Expect(func() { New("x", -1) }).To(Panic())
		Expect(func() { s.Reset(-1) }).To(Panic())
	})

	It("should invoke hooks", func() {
		hook := NewMockHook(mockCtrl)
		s.AcceptHook(hook)

		gomock.InOrder(
			hook.EXPECT().Func(sim.HookCtx{
				Domain: s, Pos: HookPosAcquire, Item: "1", Detail: 0,
			}),
			hook.EXPECT().Func(sim.HookCtx{
				Domain: s, Pos: HookPosBlock, Item: "2", Detail: 0,
			}),
			hook.EXPECT().Func(sim.HookCtx{
				Domain: s, Pos: HookPosWake, Item: "2", Detail: 0,
			}),
			hook.EXPECT().Func(sim.HookCtx{
				Domain: s, Pos: HookPosRelease, Item: "", Detail: 1,
			}),
		)

		s.P("1")
		s.P("2")
		s.V()
		s.V()
	})
})
