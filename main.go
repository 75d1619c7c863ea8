package main

import (
	"fmt"
	"os"

	"github.com/temirov/gmux/cmd/cli"
	"github.com/temirov/gmux/internal/ui"
)

const (
	exitErrorTemplateConstant = "%s Error: %v"
	failureExitCodeConstant   = 1
)

// main runs gmux and exits non-zero when a command fails.
func main() {
	if executionError := cli.Execute(); executionError != nil {
		fmt.Fprintln(os.Stderr, ui.ErrorStyle.Render(fmt.Sprintf(exitErrorTemplateConstant, ui.FailureSymbol, executionError)))
		os.Exit(failureExitCodeConstant)
	}
}
