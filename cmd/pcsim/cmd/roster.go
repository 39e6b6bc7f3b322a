package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sarchlab/pcsim/engine"
	"github.com/sarchlab/pcsim/process"
)

var errEmptyName = errors.New("process name must not be empty")

type processArg struct {
	t       process.Type
	name    string
	message string
}

// parseProcessArg parses "type:name" or "type:name:message", where type is
// "producer" or "consumer". The message is ignored for consumers.
func parseProcessArg(arg string) (processArg, error) {
	typeName, rest, found := strings.Cut(arg, ":")
	if !found {
		return processArg{}, fmt.Errorf(
			"process %q: expected type:name[:message]", arg)
	}

	t, err := process.ParseType(strings.TrimSpace(typeName))
	if err != nil {
		return processArg{}, fmt.Errorf("process %q: %w", arg, err)
	}

	name, message, _ := strings.Cut(rest, ":")

	name = strings.TrimSpace(name)
	if name == "" {
		return processArg{}, fmt.Errorf("process %q: %w", arg, errEmptyName)
	}

	if t == process.Consumer {
		message = ""
	}

	return processArg{t: t, name: name, message: message}, nil
}

// buildRoster adds the processes to the engine in the order given. The
// example roster is used instead if useExample is set.
func buildRoster(e *engine.Engine, processes []string, useExample bool) error {
	if useExample {
		if len(processes) > 0 {
			return errors.New("--example cannot be combined with --process")
		}

		e.InitializeExample()

		return nil
	}

	args := make([]processArg, 0, len(processes))
	for _, p := range processes {
		a, err := parseProcessArg(p)
		if err != nil {
			return err
		}

		args = append(args, a)
	}

	for _, a := range args {
		e.AddProcess(a.t, a.name, a.message)
	}

	return nil
}
