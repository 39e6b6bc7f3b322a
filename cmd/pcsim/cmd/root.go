// Package cmd provides the command-line interface for pcsim.
package cmd

import (
	"errors"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/sarchlab/pcsim/engine"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

// NewRootCmd creates the base command with all the subcommands attached.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use: "pcsim",
		Short: "pcsim simulates producers and consumers that share a bounded " +
			"buffer.",
		Long: `pcsim simulates producers and consumers that share a ` +
			`circular buffer guarded by two mutexes and two counting ` +
			`semaphores. It can run a roster headless or serve it to a ` +
			`browser to be stepped interactively.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return loadConfig(cmd)
		},
	}

	rootCmd.PersistentFlags().Int(flagBufferSize, engine.DefaultBufferSize,
		"capacity of the shared buffer ["+envBufferSize+"]")
	rootCmd.PersistentFlags().String(flagOutput, "",
		"SQLite trace file name without the extension ["+envOutput+"]")
	rootCmd.PersistentFlags().Bool(flagNoRecord, false,
		"do not write a SQLite trace")
	rootCmd.PersistentFlags().Bool(flagVerbose, false,
		"log every engine event to stderr")

	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// Execute runs the root command and exits the process. Exit handlers, such as
// the trace flushers, run before the process ends.
func Execute() {
	err := NewRootCmd().Execute()
	if err != nil {
		atexit.Exit(1)
	}

	atexit.Exit(0)
}

func loadConfig(cmd *cobra.Command) error {
	err := godotenv.Load()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	return applyEnv(cmd)
}
