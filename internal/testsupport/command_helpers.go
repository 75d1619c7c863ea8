package testsupport

import (
	"context"
	"strings"
	"sync"

	"github.com/temirov/gmux/internal/execshell"
)

const argumentsKeySeparatorConstant = " "

// ScriptedResponse is the canned outcome of one git invocation.
type ScriptedResponse struct {
	Result execshell.ExecutionResult
	Error  error
}

// ScriptedGitExecutor answers CaptureGit calls from a script keyed by working directory and
// space-joined arguments. Unscripted invocations succeed with empty output. It is safe for
// concurrent use.
type ScriptedGitExecutor struct {
	Responses map[string]map[string]ScriptedResponse

	mutex            sync.Mutex
	recordedCommands []execshell.CommandDetails
}

// NewScriptedGitExecutor constructs an executor without scripted responses.
func NewScriptedGitExecutor() *ScriptedGitExecutor {
	return &ScriptedGitExecutor{Responses: map[string]map[string]ScriptedResponse{}}
}

// Script registers the response returned for arguments executed in workingDirectory.
func (executor *ScriptedGitExecutor) Script(workingDirectory string, arguments []string, response ScriptedResponse) {
	executor.mutex.Lock()
	defer executor.mutex.Unlock()
	if executor.Responses == nil {
		executor.Responses = map[string]map[string]ScriptedResponse{}
	}
	if executor.Responses[workingDirectory] == nil {
		executor.Responses[workingDirectory] = map[string]ScriptedResponse{}
	}
	executor.Responses[workingDirectory][strings.Join(arguments, argumentsKeySeparatorConstant)] = response
}

// ScriptOutput registers a successful invocation printing standardOutput.
func (executor *ScriptedGitExecutor) ScriptOutput(workingDirectory string, arguments []string, standardOutput string) {
	executor.Script(workingDirectory, arguments, ScriptedResponse{Result: execshell.ExecutionResult{StandardOutput: standardOutput}})
}

// ScriptExitCode registers an invocation that exits with exitCode.
func (executor *ScriptedGitExecutor) ScriptExitCode(workingDirectory string, arguments []string, exitCode int) {
	executor.Script(workingDirectory, arguments, ScriptedResponse{Result: execshell.ExecutionResult{ExitCode: exitCode}})
}

// CaptureGit returns the scripted response for the invocation.
func (executor *ScriptedGitExecutor) CaptureGit(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.mutex.Lock()
	defer executor.mutex.Unlock()
	executor.recordedCommands = append(executor.recordedCommands, details)

	directoryResponses := executor.Responses[details.WorkingDirectory]
	if directoryResponses == nil {
		return execshell.ExecutionResult{}, nil
	}
	response, scripted := directoryResponses[strings.Join(details.Arguments, argumentsKeySeparatorConstant)]
	if !scripted {
		return execshell.ExecutionResult{}, nil
	}
	return response.Result, response.Error
}

// RecordedCommands returns a copy of every invocation seen so far.
func (executor *ScriptedGitExecutor) RecordedCommands() []execshell.CommandDetails {
	executor.mutex.Lock()
	defer executor.mutex.Unlock()
	return append([]execshell.CommandDetails{}, executor.recordedCommands...)
}

// RecordedArguments returns the space-joined arguments executed in workingDirectory, in order.
func (executor *ScriptedGitExecutor) RecordedArguments(workingDirectory string) []string {
	executor.mutex.Lock()
	defer executor.mutex.Unlock()
	recordedArguments := make([]string, 0)
	for _, details := range executor.recordedCommands {
		if details.WorkingDirectory != workingDirectory {
			continue
		}
		recordedArguments = append(recordedArguments, strings.Join(details.Arguments, argumentsKeySeparatorConstant))
	}
	return recordedArguments
}
