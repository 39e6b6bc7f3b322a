package tracing

import (
	"fmt"
	"reflect"

	"github.com/sarchlab/pcsim/engine"
	"github.com/sarchlab/pcsim/sim"
)

// CollectTrace lets the tracer collect trace from a domain.
func CollectTrace(domain sim.Hookable, tracer Tracer) {
	for _, hook := range domain.Hooks() {
		hook, ok := hook.(*traceHook)
		if ok && hook.t == tracer {
			panic(fmt.Sprintf(
				"domain %s already has tracer %s",
				domain.Name(), reflect.TypeOf(tracer)))
		}
	}

	h := traceHook{t: tracer}
	domain.AcceptHook(&h)
}

// A traceHook is a hook that forwards engine events to a tracer.
type traceHook struct {
	t Tracer
}

// Func calls the tracer interfaces when the hook is triggered
func (h *traceHook) Func(ctx sim.HookCtx) {
	switch ctx.Pos {
	case engine.HookPosInstruction:
		h.t.TraceInstruction(ctx.Item.(engine.InstructionRecord))
	case engine.HookPosBlocked:
		h.t.TraceSemaphore(KindBlock, ctx.Item.(engine.SemaphoreEvent))
	case engine.HookPosWoken:
		h.t.TraceSemaphore(KindWake, ctx.Item.(engine.SemaphoreEvent))
	case engine.HookPosConsumed:
		h.t.TraceConsumption(ctx.Detail.(int), ctx.Item.(engine.ConsumerLog))
	}
}
