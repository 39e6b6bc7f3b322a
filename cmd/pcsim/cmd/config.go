package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const (
	flagBufferSize  = "buffer-size"
	flagOutput      = "output"
	flagNoRecord    = "no-record"
	flagVerbose     = "verbose"
	flagPort        = "port"
	flagOpenBrowser = "open-browser"
	flagProcess     = "process"
	flagExample     = "example"
	flagMaxSteps    = "max-steps"
)

const (
	envBufferSize  = "PCSIM_BUFFER_SIZE"
	envMonitorPort = "PCSIM_MONITOR_PORT"
	envOutput      = "PCSIM_OUTPUT"
	envOpenBrowser = "PCSIM_OPEN_BROWSER"
)

// flagEnv maps flags to the environment variables that provide their
// defaults.
var flagEnv = map[string]string{
	flagBufferSize:  envBufferSize,
	flagPort:        envMonitorPort,
	flagOutput:      envOutput,
	flagOpenBrowser: envOpenBrowser,
}

// applyEnv sets every flag that is not given on the command line from its
// environment variable.
func applyEnv(cmd *cobra.Command) error {
	var err error

	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if err != nil || f.Changed {
			return
		}

		env, ok := flagEnv[f.Name]
		if !ok {
			return
		}

		value, ok := os.LookupEnv(env)
		if !ok || strings.TrimSpace(value) == "" {
			return
		}

		setErr := cmd.Flags().Set(f.Name, strings.TrimSpace(value))
		if setErr != nil {
			err = fmt.Errorf("invalid %s: %w", env, setErr)
		}
	})

	return err
}
