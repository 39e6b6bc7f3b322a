package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the simulation to a browser and wait for Ctrl-C",
		Args:  cobra.NoArgs,
		RunE:  serve,
	}

	serveCmd.Flags().Int(flagPort, 0,
		"port of the monitoring server, random if unset ["+envMonitorPort+"]")
	serveCmd.Flags().Bool(flagOpenBrowser, false,
		"open the monitoring page in the default browser ["+envOpenBrowser+"]")
	serveCmd.Flags().Bool(flagExample, false,
		"load the 24-process example roster")

	return serveCmd
}

func serve(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()
	port, _ := flags.GetInt(flagPort)
	openBrowser, _ := flags.GetBool(flagOpenBrowser)
	useExample, _ := flags.GetBool(flagExample)

	b, err := builderFromFlags(cmd)
	if err != nil {
		return err
	}

	if port > 0 {
		b = b.WithMonitorPort(port)
	}

	if openBrowser {
		b = b.WithBrowser()
	}

	s := b.Build()
	defer s.Terminate()

	attachLogHook(cmd, s)

	if useExample {
		m := s.GetMonitor()
		m.Lock()
		s.GetEngine().InitializeExample()
		m.Unlock()
	}

	ctx, stop := signal.NotifyContext(cmd.Context(),
		os.Interrupt, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	fmt.Fprintln(cmd.ErrOrStderr(), "shutting down")

	return nil
}
