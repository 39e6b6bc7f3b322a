package cmd

import (
	"fmt"
	"log"
	"os"
	"sort"

	"github.com/sarchlab/pcsim/sim"
	"github.com/sarchlab/pcsim/simulation"
	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run a roster to the end without the web interface",
		Example: `  pcsim run --process producer:P1:hello --process consumer:C1
  pcsim run --process consumer:C1 --process producer:P1
  pcsim run --example --max-steps 200`,
		Args: cobra.NoArgs,
		RunE: runSimulation,
	}

	runCmd.Flags().StringArray(flagProcess, nil,
		"add a process, given as producer:name[:message] or consumer:name; "+
			"repeat to build the roster in order")
	runCmd.Flags().Bool(flagExample, false, "use the 24-process example roster")
	runCmd.Flags().Int(flagMaxSteps, 0, "stop after this many steps, 0 for no limit")

	return runCmd
}

func runSimulation(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()
	processes, _ := flags.GetStringArray(flagProcess)
	useExample, _ := flags.GetBool(flagExample)
	maxSteps, _ := flags.GetInt(flagMaxSteps)

	b, err := builderFromFlags(cmd)
	if err != nil {
		return err
	}

	s := b.WithoutMonitoring().Build()
	defer s.Terminate()

	err = buildRoster(s.GetEngine(), processes, useExample)
	if err != nil {
		return err
	}

	if s.GetEngine().NumProcesses() == 0 {
		return fmt.Errorf("no processes, use --%s or --%s",
			flagProcess, flagExample)
	}

	out := cmd.OutOrStdout()
	s.GetEngine().AcceptHook(&stepPrinter{w: out})
	attachLogHook(cmd, s)

	steps := s.RunToEnd(maxSteps, nil)

	state := s.GetEngine().CurrentState()
	printConsumerLogs(out, state.ConsumerLogs)

	counter := s.GetInstructionCounter()
	names := counter.InstructionNames()
	sort.Strings(names)

	fmt.Fprintf(out, "\n%d step(s), %d instruction(s)\n",
		steps, counter.Total())
	for _, name := range names {
		fmt.Fprintf(out, "  %5d  %s\n", counter.InstructionCount(name), name)
	}

	if state.IsRunning {
		fmt.Fprintf(out, "step limit reached, the simulation is still running\n")
	}

	if s.OutputPath() != "" {
		fmt.Fprintf(out, "trace written to %s.sqlite3\n", s.OutputPath())
	}

	return nil
}

func builderFromFlags(cmd *cobra.Command) (simulation.Builder, error) {
	flags := cmd.Flags()
	bufferSize, _ := flags.GetInt(flagBufferSize)
	output, _ := flags.GetString(flagOutput)
	noRecord, _ := flags.GetBool(flagNoRecord)

	if bufferSize <= 0 {
		return simulation.Builder{},
			fmt.Errorf("buffer size must be positive, got %d", bufferSize)
	}

	b := simulation.MakeBuilder().WithBufferSize(bufferSize)

	switch {
	case noRecord:
		b = b.WithoutRecording()
	case output != "":
		b = b.WithOutputFileName(output)
	}

	return b, nil
}

func attachLogHook(cmd *cobra.Command, s *simulation.Simulation) {
	verbose, _ := cmd.Flags().GetBool(flagVerbose)
	if !verbose {
		return
	}

	hook := sim.NewLogHook(log.New(os.Stderr, "", log.Lmicroseconds))
	s.GetEngine().AcceptHook(hook)
}
