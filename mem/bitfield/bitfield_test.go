package bitfield

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Bitfield", func() {
	It("should build masks", func() {
		Expect(Mask(0)).To(Equal(uint64(0)))
		Expect(Mask(3)).To(Equal(uint64(0x7)))
		Expect(Mask(64)).To(Equal(^uint64(0)))
	})

	It("should extract bits", func() {
		Expect(Bits(0xABCD, 7, 4)).To(Equal(uint64(0xC)))
		Expect(Bits(0xABCD, 15, 0)).To(Equal(uint64(0xABCD)))
		Expect(Bits(^uint64(0), 63, 0)).To(Equal(^uint64(0)))
		Expect(Bit(0x4, 2)).To(Equal(uint64(1)))
		Expect(Bit(0x4, 1)).To(Equal(uint64(0)))
	})

	It("should insert bits", func() {
		Expect(InsertBits(0xFFFF, 7, 4, 0x0)).To(Equal(uint64(0xFF0F)))
		Expect(InsertBits(0x0, 2, 1, 0x3)).To(Equal(uint64(0x6)))
	})

	It("should drop field bits that do not fit", func() {
		Expect(InsertBits(0x0, 1, 0, 0xF)).To(Equal(uint64(0x3)))
	})

	It("should panic on invalid ranges", func() {
		Expect(func() { Bits(0, 2, 3) }).To(Panic())
		Expect(func() { Bits(0, 64, 0) }).To(Panic())
		Expect(func() { InsertBits(0, 0, -1, 0) }).To(Panic())
	})

	It("should compute floor log2", func() {
		Expect(FloorLog2(1)).To(Equal(0))
		Expect(FloorLog2(64)).To(Equal(6))
		Expect(FloorLog2(65)).To(Equal(6))
		Expect(func() { FloorLog2(0) }).To(Panic())
	})

	It("should tell powers of two", func() {
		Expect(IsPowerOf2(0)).To(BeFalse())
		Expect(IsPowerOf2(1)).To(BeTrue())
		Expect(IsPowerOf2(48)).To(BeFalse())
		Expect(IsPowerOf2(1 << 40)).To(BeTrue())
	})
})
