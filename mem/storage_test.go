package mem_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/skewcache/mem"
)

var _ = Describe("Storage", func() {
	It("should read and write in single unit", func() {
		storage := mem.NewStorage(4096)
		Expect(storage.Write(0, []byte{1, 2, 3, 4})).To(Succeed())

		res, err := storage.Read(0, 2)
		Expect(err).NotTo(HaveOccurred())
		Expect(res).To(Equal([]byte{1, 2}))

		res, _ = storage.Read(1, 2)
		Expect(res).To(Equal([]byte{2, 3}))
	})

	It("should read and write across units", func() {
		storage := mem.NewStorage(8192)
		Expect(storage.Write(4094, []byte{1, 2, 3, 4})).To(Succeed())

		res, err := storage.Read(4094, 4)
		Expect(err).NotTo(HaveOccurred())
		Expect(res).To(Equal([]byte{1, 2, 3, 4}))
	})

	It("should read zeros from untouched units", func() {
		storage := mem.NewStorageWithUnitSize(256, 64)

		res, err := storage.Read(64, 4)
		Expect(err).NotTo(HaveOccurred())
		Expect(res).To(Equal([]byte{0, 0, 0, 0}))
	})

	It("should clear data", func() {
		storage := mem.NewStorageWithUnitSize(256, 64)
		Expect(storage.Write(60, []byte{1, 2, 3, 4, 5, 6})).To(Succeed())
		Expect(storage.Clear(62, 2)).To(Succeed())

		res, _ := storage.Read(60, 6)
		Expect(res).To(Equal([]byte{1, 2, 0, 0, 5, 6}))
	})

	It("should return error if accessing over the capacity", func() {
		storage := mem.NewStorage(4096)

		err := storage.Write(4096, []byte{1})
		Expect(err).To(MatchError(mem.ErrOutOfCapacity))

		_, err = storage.Read(4095, 2)
		Expect(err).To(MatchError(mem.ErrOutOfCapacity))
	})
})
