// Command pcsim simulates producers and consumers that share a bounded
// buffer guarded by semaphores.
package main

import "github.com/sarchlab/pcsim/cmd/pcsim/cmd"

func main() {
	cmd.Execute()
}
