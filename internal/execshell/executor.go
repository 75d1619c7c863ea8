package execshell

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

const (
	loggerNotConfiguredMessageConstant        = "shell executor logger not configured"
	commandRunnerNotConfiguredMessageConstant = "shell executor command runner not configured"
	commandFailedErrorTemplateConstant        = "%s exited with code %d"
	commandFailedWithOutputTemplateConstant   = "%s exited with code %d: %s"
	commandExecutionErrorTemplateConstant     = "%s could not be started: %v"
	logFieldCommandNameConstant               = "command_name"
	logFieldCommandArgumentsConstant          = "command_arguments"
	logFieldWorkingDirectoryConstant          = "working_directory"
	logFieldExitCodeConstant                  = "exit_code"
	logFieldStandardErrorConstant             = "standard_error"
	shellCommandFlagConstant                  = "-c"
)

// CommandName identifies an external executable.
type CommandName string

// Supported external executables.
const (
	CommandGit    CommandName = CommandName("git")
	CommandGitHub CommandName = CommandName("gh")
	CommandShell  CommandName = CommandName("sh")
)

// CommandDetails describes arguments and process context for a single invocation.
type CommandDetails struct {
	Arguments            []string
	WorkingDirectory     string
	EnvironmentVariables map[string]string
}

// ShellCommand couples an executable with its invocation details.
type ShellCommand struct {
	Name    CommandName
	Details CommandDetails
}

// ExecutionResult captures the observable outcome of a finished process.
// ExitCode is -1 when the process was terminated abnormally.
type ExecutionResult struct {
	StandardOutput string
	StandardError  string
	ExitCode       int
}

// CommandRunner spawns processes and reports their outcome.
type CommandRunner interface {
	Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error)
}

var (
	// ErrLoggerNotConfigured indicates NewShellExecutor received a nil logger.
	ErrLoggerNotConfigured = errors.New(loggerNotConfiguredMessageConstant)
	// ErrCommandRunnerNotConfigured indicates NewShellExecutor received a nil runner.
	ErrCommandRunnerNotConfigured = errors.New(commandRunnerNotConfiguredMessageConstant)
)

// CommandFailedError reports a process that finished with a non-zero exit code.
type CommandFailedError struct {
	Command ShellCommand
	Result  ExecutionResult
}

// Error describes the failed command.
func (failedError CommandFailedError) Error() string {
	trimmedStandardError := strings.TrimSpace(failedError.Result.StandardError)
	if len(trimmedStandardError) == 0 {
		return fmt.Sprintf(commandFailedErrorTemplateConstant, failedError.Command.Name, failedError.Result.ExitCode)
	}
	return fmt.Sprintf(commandFailedWithOutputTemplateConstant, failedError.Command.Name, failedError.Result.ExitCode, trimmedStandardError)
}

// CommandExecutionError reports a process that could not be spawned or observed.
type CommandExecutionError struct {
	Command ShellCommand
	Cause   error
}

// Error describes the execution failure.
func (executionError CommandExecutionError) Error() string {
	return fmt.Sprintf(commandExecutionErrorTemplateConstant, executionError.Command.Name, executionError.Cause)
}

// Unwrap exposes the underlying runner error.
func (executionError CommandExecutionError) Unwrap() error {
	return executionError.Cause
}

// ShellExecutor runs external commands through a CommandRunner and reports their lifecycle.
type ShellExecutor struct {
	logger        *zap.Logger
	runner        CommandRunner
	eventObserver CommandEventObserver
	formatter     CommandMessageFormatter
}

// NewShellExecutor constructs an executor that logs command lifecycle events through zap.
func NewShellExecutor(logger *zap.Logger, runner CommandRunner) (*ShellExecutor, error) {
	return NewShellExecutorWithObserver(logger, runner, nil)
}

// NewShellExecutorWithObserver constructs an executor that forwards lifecycle events to the observer
// instead of emitting structured log entries. A nil observer keeps structured logging.
func NewShellExecutorWithObserver(logger *zap.Logger, runner CommandRunner, observer CommandEventObserver) (*ShellExecutor, error) {
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if runner == nil {
		return nil, ErrCommandRunnerNotConfigured
	}
	return &ShellExecutor{
		logger:        logger,
		runner:        runner,
		eventObserver: observer,
		formatter:     CommandMessageFormatter{},
	}, nil
}

// Capture runs the command and returns its outcome. A non-zero exit code is reported
// through the result; an error is returned only when the process could not run.
func (executor *ShellExecutor) Capture(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	executor.reportStarted(command)

	executionResult, runError := executor.runner.Run(executionContext, command)
	if runError != nil {
		executor.reportExecutionFailure(command, runError)
		return ExecutionResult{}, CommandExecutionError{Command: command, Cause: runError}
	}

	executor.reportCaptured(command, executionResult)
	return executionResult, nil
}

// Execute runs the command and treats a non-zero exit code as CommandFailedError.
func (executor *ShellExecutor) Execute(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	executor.reportStarted(command)

	executionResult, runError := executor.runner.Run(executionContext, command)
	if runError != nil {
		executor.reportExecutionFailure(command, runError)
		return ExecutionResult{}, CommandExecutionError{Command: command, Cause: runError}
	}

	executor.reportCompleted(command, executionResult)
	if executionResult.ExitCode != 0 {
		return ExecutionResult{}, CommandFailedError{Command: command, Result: executionResult}
	}
	return executionResult, nil
}

// ExecuteGit runs git and fails on non-zero exit codes.
func (executor *ShellExecutor) ExecuteGit(executionContext context.Context, details CommandDetails) (ExecutionResult, error) {
	return executor.Execute(executionContext, ShellCommand{Name: CommandGit, Details: details})
}

// CaptureGit runs git and reports non-zero exit codes through the result.
func (executor *ShellExecutor) CaptureGit(executionContext context.Context, details CommandDetails) (ExecutionResult, error) {
	return executor.Capture(executionContext, ShellCommand{Name: CommandGit, Details: details})
}

// ExecuteGitHubCLI runs gh and fails on non-zero exit codes.
func (executor *ShellExecutor) ExecuteGitHubCLI(executionContext context.Context, details CommandDetails) (ExecutionResult, error) {
	return executor.Execute(executionContext, ShellCommand{Name: CommandGitHub, Details: details})
}

// CaptureShell runs sh and reports non-zero exit codes through the result.
func (executor *ShellExecutor) CaptureShell(executionContext context.Context, details CommandDetails) (ExecutionResult, error) {
	return executor.Capture(executionContext, ShellCommand{Name: CommandShell, Details: details})
}

// ShellLineDetails builds sh arguments that interpret commandLine in workingDirectory.
func ShellLineDetails(commandLine string, workingDirectory string) CommandDetails {
	return CommandDetails{
		Arguments:        []string{shellCommandFlagConstant, commandLine},
		WorkingDirectory: workingDirectory,
	}
}

func (executor *ShellExecutor) reportStarted(command ShellCommand) {
	if executor.eventObserver != nil {
		executor.eventObserver.CommandStarted(command)
		return
	}
	executor.logger.Debug(executor.formatter.BuildStartedMessage(command), executor.commandFields(command)...)
}

func (executor *ShellExecutor) reportCaptured(command ShellCommand, result ExecutionResult) {
	if executor.eventObserver != nil {
		executor.eventObserver.CommandCompleted(command, result)
		return
	}
	fields := append(executor.commandFields(command), zap.Int(logFieldExitCodeConstant, result.ExitCode))
	if result.ExitCode == 0 {
		executor.logger.Debug(executor.formatter.BuildSuccessMessage(command, result), fields...)
		return
	}
	executor.logger.Debug(executor.formatter.BuildFailureMessage(command, result), fields...)
}

func (executor *ShellExecutor) reportCompleted(command ShellCommand, result ExecutionResult) {
	if executor.eventObserver != nil {
		executor.eventObserver.CommandCompleted(command, result)
		return
	}
	fields := append(executor.commandFields(command), zap.Int(logFieldExitCodeConstant, result.ExitCode))
	if result.ExitCode == 0 {
		executor.logger.Debug(executor.formatter.BuildSuccessMessage(command, result), fields...)
		return
	}
	fields = append(fields, zap.String(logFieldStandardErrorConstant, strings.TrimSpace(result.StandardError)))
	executor.logger.Warn(executor.formatter.BuildFailureMessage(command, result), fields...)
}

func (executor *ShellExecutor) reportExecutionFailure(command ShellCommand, failure error) {
	if executor.eventObserver != nil {
		executor.eventObserver.CommandExecutionFailed(command, failure)
		return
	}
	fields := append(executor.commandFields(command), zap.Error(failure))
	executor.logger.Error(executor.formatter.BuildExecutionFailureMessage(command, failure), fields...)
}

func (executor *ShellExecutor) commandFields(command ShellCommand) []zap.Field {
	return []zap.Field{
		zap.String(logFieldCommandNameConstant, string(command.Name)),
		zap.Strings(logFieldCommandArgumentsConstant, command.Details.Arguments),
		zap.String(logFieldWorkingDirectoryConstant, command.Details.WorkingDirectory),
	}
}
