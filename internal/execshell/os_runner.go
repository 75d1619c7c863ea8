package execshell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

const (
	environmentAssignmentTemplateConstant = "%s=%s"
	replacementCharacterConstant          = "\uFFFD"
	// AbnormalTerminationExitCode is reported when a process ends without an exit status.
	AbnormalTerminationExitCode = -1
)

// OSCommandRunner executes commands using the operating system facilities.
type OSCommandRunner struct{}

// NewOSCommandRunner constructs a runner backed by os/exec.
func NewOSCommandRunner() *OSCommandRunner {
	return &OSCommandRunner{}
}

// Run executes the supplied command and waits for it to finish. Output streams are decoded
// leniently: byte sequences that are not valid UTF-8 become U+FFFD.
func (runner *OSCommandRunner) Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	executable := exec.CommandContext(executionContext, string(command.Name), command.Details.Arguments...)

	if len(command.Details.WorkingDirectory) > 0 {
		executable.Dir = command.Details.WorkingDirectory
	}

	if len(command.Details.EnvironmentVariables) > 0 {
		mergedEnvironment := append([]string{}, os.Environ()...)
		for environmentKey, environmentValue := range command.Details.EnvironmentVariables {
			mergedEnvironment = append(mergedEnvironment, fmt.Sprintf(environmentAssignmentTemplateConstant, environmentKey, environmentValue))
		}
		executable.Env = mergedEnvironment
	}

	var standardOutputBuffer bytes.Buffer
	var standardErrorBuffer bytes.Buffer
	executable.Stdout = &standardOutputBuffer
	executable.Stderr = &standardErrorBuffer

	runError := executable.Run()
	if runError != nil {
		var exitError *exec.ExitError
		if !errors.As(runError, &exitError) {
			return ExecutionResult{}, runError
		}
		return ExecutionResult{
			StandardOutput: DecodeOutput(standardOutputBuffer.Bytes()),
			StandardError:  DecodeOutput(standardErrorBuffer.Bytes()),
			ExitCode:       exitError.ExitCode(),
		}, nil
	}

	return ExecutionResult{
		StandardOutput: DecodeOutput(standardOutputBuffer.Bytes()),
		StandardError:  DecodeOutput(standardErrorBuffer.Bytes()),
		ExitCode:       0,
	}, nil
}

// DecodeOutput converts raw process output to text, replacing ill-formed UTF-8 with U+FFFD.
func DecodeOutput(rawOutput []byte) string {
	decodedOutput, _, transformError := transform.Bytes(runes.ReplaceIllFormed(), rawOutput)
	if transformError != nil {
		return string(bytes.ToValidUTF8(rawOutput, []byte(replacementCharacterConstant)))
	}
	return string(decodedOutput)
}
