package sim

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("IDGenerator", func() {
	It("should generate sequential ids", func() {
		g := NewSequentialIDGenerator()

		Expect(g.Generate()).To(Equal("1"))
		Expect(g.Generate()).To(Equal("2"))
		Expect(g.Generate()).To(Equal("3"))
	})

	It("should keep generators independent", func() {
		g1 := NewSequentialIDGenerator()
		g2 := NewSequentialIDGenerator()

		Expect(g1.Generate()).To(Equal("1"))
		Expect(g2.Generate()).To(Equal("1"))
		Expect(g1.Generate()).To(Equal("2"))
	})

	It("should generate unique xids", func() {
		g := NewXIDGenerator()

		Expect(g.Generate()).NotTo(Equal(g.Generate()))
	})
})
