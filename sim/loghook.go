package sim

import (
	"log"
)

// LogHook is a hook that prints every hook invocation into a logger.
type LogHook struct {
	*log.Logger
}

// NewLogHook returns a new LogHook which will write in to the logger
func NewLogHook(logger *log.Logger) *LogHook {
	h := new(LogHook)
	h.Logger = logger
	return h
}

// Func writes the hook information into the logger
func (h *LogHook) Func(ctx HookCtx) {
	if ctx.Detail != nil {
		h.Logger.Printf("%s, %s, %v, %v",
			ctx.Domain.Name(), ctx.Pos.Name, ctx.Item, ctx.Detail)
		return
	}

	h.Logger.Printf("%s, %s, %v", ctx.Domain.Name(), ctx.Pos.Name, ctx.Item)
}
