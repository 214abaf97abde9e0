package hooking

import (
	"bytes"
	"log"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"
)

var _ = Describe("HookableBase", func() {
	var (
		mockCtrl *gomock.Controller
		hook     *MockHook
		base     *HookableBase
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		hook = NewMockHook(mockCtrl)
		base = &HookableBase{}
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should invoke registered hooks", func() {
		pos := &HookPos{Name: "Pos"}
		ctx := HookCtx{Pos: pos, Item: 1}

		base.AcceptHook(hook)
		hook.EXPECT().Func(ctx)

		base.InvokeHook(ctx)

		Expect(base.NumHooks()).To(Equal(1))
		Expect(base.Hooks()).To(ConsistOf(hook))
	})

	It("should panic on duplicated hooks", func() {
		base.AcceptHook(hook)

		Expect(func() { base.AcceptHook(hook) }).To(Panic())
	})

	It("should remove hooks", func() {
		base.AcceptHook(hook)
		base.RemoveHook(hook)

		base.InvokeHook(HookCtx{})

		Expect(base.NumHooks()).To(Equal(0))
	})

	It("should accept hook functions", func() {
		called := 0
		base.AcceptHook(HookFunc(func(HookCtx) { called++ }))
		base.AcceptHook(HookFunc(func(HookCtx) { called++ }))

		base.InvokeHook(HookCtx{})

		Expect(called).To(Equal(2))
	})
})

var _ = Describe("LogHookBase", func() {
	It("should write with the given logger", func() {
		buf := new(bytes.Buffer)
		h := NewLogHookBase(log.New(buf, "", 0))

		h.Printf("hello %d", 1)

		Expect(buf.String()).To(Equal("hello 1\n"))
	})

	It("should fall back to the default logger", func() {
		h := NewLogHookBase(nil)

		Expect(h.Logger).To(BeIdenticalTo(log.Default()))
	})
})
