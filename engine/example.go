package engine

import (
	"fmt"

	"github.com/sarchlab/pcsim/process"
)

var exampleRoster = []process.Type{
	process.Producer, process.Consumer, process.Consumer, process.Consumer,
	process.Producer, process.Producer, process.Producer, process.Producer,
	process.Producer, process.Producer, process.Producer, process.Producer,
	process.Consumer, process.Producer, process.Producer, process.Producer,
	process.Consumer, process.Consumer, process.Consumer, process.Consumer,
	process.Consumer, process.Consumer, process.Consumer, process.Consumer,
}

// InitializeExample replaces the roster with a fixed mix of 12 producers and
// 12 consumers and resets the simulation.
func (e *Engine) InitializeExample() {
	e.RemoveAllProcesses()

	producers, consumers := 0, 0
	for _, t := range exampleRoster {
		switch t {
		case process.Producer:
			producers++
			e.AddProcess(t,
				fmt.Sprintf("P%d", producers),
				fmt.Sprintf("Message %d", producers))
		case process.Consumer:
			consumers++
			e.AddProcess(t, fmt.Sprintf("C%d", consumers), "")
		}
	}

	e.Reset()
}
