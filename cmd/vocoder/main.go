// Command vocoder stretches, shifts and transforms audio with a phase
// vocoder. Frequency kernel source is rebuilt and swapped into the running
// pipeline every time it's saved.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/viper"
)

const (
	successExitCode = 0
	errorExitCode   = 1
)

// errInterrupted is returned when the run was stopped by user.
var errInterrupted = errors.New("interrupted")

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cmd := newCommand(viper.New())
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, errInterrupted) {
			fmt.Fprintf(os.Stderr, "vocoder: %v\n", err)
		}
		return errorExitCode
	}
	return successExitCode
}
