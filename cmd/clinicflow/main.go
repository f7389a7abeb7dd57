// Command clinicflow runs the clinic patient-flow engine: an interactive
// session on stdin plus one-shot commands over saved registry snapshots.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/roach88/clinicflow/internal/cli"
)

func main() {
	err := cli.NewRootCommand().Execute()
	if err == nil {
		return
	}

	// Command failures are already reported by the output formatter. Anything
	// else came from cobra itself: an unknown command or a bad flag.
	var exitErr *cli.ExitError
	if !errors.As(err, &exitErr) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(cli.ExitCommandError)
	}
	os.Exit(exitErr.Code)
}
