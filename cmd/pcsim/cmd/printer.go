package cmd

import (
	"fmt"
	"io"

	"github.com/sarchlab/pcsim/engine"
	"github.com/sarchlab/pcsim/sim"
)

// stepPrinter prints one line per executed instruction and per semaphore
// event.
type stepPrinter struct {
	w io.Writer
}

func (p *stepPrinter) Func(ctx sim.HookCtx) {
	switch ctx.Pos {
	case engine.HookPosInstruction:
		r := ctx.Item.(engine.InstructionRecord)
		fmt.Fprintf(p.w, "[%4d] %-4s %-32s %s\n",
			r.Step, r.ProcessName, r.Instruction, r.Outcome)
	case engine.HookPosWoken:
		e := ctx.Item.(engine.SemaphoreEvent)
		fmt.Fprintf(p.w, "       %s woken by V(%s)\n",
			e.ProcessName, e.Semaphore)
	case engine.HookPosStopped:
		fmt.Fprintf(p.w, "       stopped after step %d\n", ctx.Item)
	}
}

func printConsumerLogs(w io.Writer, logs []engine.ConsumerLog) {
	fmt.Fprintf(w, "\n%d message(s) consumed\n", len(logs))

	for _, l := range logs {
		fmt.Fprintf(w, "  %-4s read %q from %s\n",
			l.ConsumerName, l.MessageContent, l.ProducerName)
	}
}
