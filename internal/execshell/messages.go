package execshell

import (
	"fmt"
	"strings"
)

type messageStage int

const (
	messageStageStart messageStage = iota
	messageStageSuccess
	messageStageFailure
	messageStageExecutionFailure
)

const (
	genericStartTemplateConstant            = "Running %s"
	genericSuccessTemplateConstant          = "Completed %s"
	genericFailureTemplateConstant          = "%s failed with exit code %d%s"
	genericExecutionFailureTemplateConstant = "%s failed: %s"
	commandLabelTemplateConstant            = "%s%s"
	workingDirectorySuffixTemplateConstant  = " (in %s)"
	commandArgumentsJoinSeparatorConstant   = " "
	standardErrorSuffixTemplateConstant     = ": %s"
	unknownFailureMessageConstant           = "unknown error"
	emptyStringConstant                     = ""
	defaultWorkingDirectoryLabelConstant    = "current directory"
	fallbackUnknownValueLabelConstant       = "unknown"
	flagPrefixConstant                      = "-"
	lineSeparatorConstant                   = "\n"
)

const (
	gitRevParseSubcommandNameConstant     = "rev-parse"
	gitAbbrevRefFlagConstant              = "--abbrev-ref"
	gitSymbolicRefSubcommandNameConstant  = "symbolic-ref"
	gitDiffSubcommandNameConstant         = "diff"
	gitRemoteSubcommandNameConstant       = "remote"
	gitRemoteGetURLSubcommandNameConstant = "get-url"
	gitStatusSubcommandNameConstant       = "status"
	gitPushSubcommandNameConstant         = "push"
	gitLSRemoteSubcommandNameConstant     = "ls-remote"
	gitCloneSubcommandNameConstant        = "clone"
	gitHubAPISubcommandNameConstant       = "api"
	shellCommandLineArgumentIndexConstant = 1
)

const (
	gitCurrentBranchStartTemplateConstant            = "Identifying current branch in %s"
	gitCurrentBranchSuccessTemplateConstant          = "Current branch in %s is %s"
	gitCurrentBranchFailureTemplateConstant          = "Failed to identify current branch in %s (exit code %d%s)"
	gitCurrentBranchExecutionFailureTemplateConstant = "Unable to identify current branch in %s: %s"
	gitRevisionStartTemplateConstant                 = "Resolving %s in %s"
	gitRevisionSuccessTemplateConstant               = "%s in %s resolved to %s"
	gitRevisionFailureTemplateConstant               = "Failed to resolve %s in %s (exit code %d%s)"
	gitRevisionExecutionFailureTemplateConstant      = "Unable to resolve %s in %s: %s"
	gitSymbolicRefStartTemplateConstant              = "Reading %s in %s"
	gitSymbolicRefSuccessTemplateConstant            = "%s in %s points to %s"
	gitSymbolicRefFailureTemplateConstant            = "%s is not set in %s (exit code %d%s)"
	gitSymbolicRefExecutionFailureTemplateConstant   = "Unable to read %s in %s: %s"
	gitDiffStartTemplateConstant                     = "Listing files changed against %s in %s"
	gitDiffSuccessTemplateConstant                   = "Found %d changed files against %s in %s"
	gitDiffFailureTemplateConstant                   = "Failed to list files changed against %s in %s (exit code %d%s)"
	gitDiffExecutionFailureTemplateConstant          = "Unable to list files changed against %s in %s: %s"
	gitRemoteLookupStartTemplateConstant             = "Checking %s remote for %s"
	gitRemoteLookupSuccessTemplateConstant           = "%s remote for %s points to %s"
	gitRemoteLookupFailureTemplateConstant           = "Failed to read %s remote for %s (exit code %d%s)"
	gitRemoteLookupExecutionFailureTemplateConstant  = "Unable to read %s remote for %s: %s"
	gitStatusStartTemplateConstant                   = "Reviewing working tree status in %s"
	gitStatusSuccessTemplateConstant                 = "Collected working tree status for %s"
	gitStatusFailureTemplateConstant                 = "Failed to review working tree status in %s (exit code %d%s)"
	gitStatusExecutionFailureTemplateConstant        = "Unable to review working tree status in %s: %s"
	gitPushStartTemplateConstant                     = "Pushing %s to %s from %s"
	gitPushSuccessTemplateConstant                   = "Pushed %s to %s from %s"
	gitPushFailureTemplateConstant                   = "Failed to push %s to %s from %s (exit code %d%s)"
	gitPushExecutionFailureTemplateConstant          = "Unable to push %s to %s from %s: %s"
	gitLSRemoteStartTemplateConstant                 = "Looking up %s on %s from %s"
	gitLSRemoteSuccessTemplateConstant               = "Looked up %s on %s from %s"
	gitLSRemoteFailureTemplateConstant               = "Failed to look up %s on %s from %s (exit code %d%s)"
	gitLSRemoteExecutionFailureTemplateConstant      = "Unable to look up %s on %s from %s: %s"
	gitCloneStartTemplateConstant                    = "Cloning %s into %s"
	gitCloneSuccessTemplateConstant                  = "Cloned %s into %s"
	gitCloneFailureTemplateConstant                  = "Failed to clone %s into %s (exit code %d%s)"
	gitCloneExecutionFailureTemplateConstant         = "Unable to clone %s into %s: %s"
	githubAPIStartTemplateConstant                   = "Querying GitHub API endpoint %s"
	githubAPISuccessTemplateConstant                 = "Queried GitHub API endpoint %s"
	githubAPIFailureTemplateConstant                 = "Failed to query GitHub API endpoint %s (exit code %d%s)"
	githubAPIExecutionFailureTemplateConstant        = "Unable to query GitHub API endpoint %s: %s"
	shellStartTemplateConstant                       = "Running %q in %s"
	shellSuccessTemplateConstant                     = "Finished %q in %s"
	shellFailureTemplateConstant                     = "%q in %s exited with code %d%s"
	shellExecutionFailureTemplateConstant            = "Unable to run %q in %s: %s"
)

// CommandMessageFormatter produces human-readable descriptions of command lifecycle events.
type CommandMessageFormatter struct{}

// BuildStartedMessage describes a command about to run.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageStart)
}

// BuildSuccessMessage describes a command that finished with exit code zero.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command ShellCommand, result ExecutionResult) string {
	return formatter.buildMessage(command, result, nil, messageStageSuccess)
}

// BuildFailureMessage describes a command that finished with a non-zero exit code.
func (formatter CommandMessageFormatter) BuildFailureMessage(command ShellCommand, result ExecutionResult) string {
	return formatter.buildMessage(command, result, nil, messageStageFailure)
}

// BuildExecutionFailureMessage describes a command that could not run.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command ShellCommand, failure error) string {
	return formatter.buildMessage(command, ExecutionResult{}, failure, messageStageExecutionFailure)
}

func (formatter CommandMessageFormatter) buildMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	var message string
	switch command.Name {
	case CommandGit:
		message = formatter.describeGitMessage(command, result, failure, stage)
	case CommandGitHub:
		message = formatter.describeGitHubMessage(command, result, failure, stage)
	case CommandShell:
		message = formatter.describeShellMessage(command, result, failure, stage)
	}
	if len(message) > 0 {
		return message
	}
	return formatter.buildGenericMessage(command, result, failure, stage)
}

func (formatter CommandMessageFormatter) describeGitMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	arguments := command.Details.Arguments
	if len(arguments) == 0 {
		return emptyStringConstant
	}
	directory := formatter.describeWorkingDirectory(command)

	switch arguments[0] {
	case gitRevParseSubcommandNameConstant:
		return formatter.describeGitRevParseMessage(arguments, directory, result, failure, stage)
	case gitSymbolicRefSubcommandNameConstant:
		reference := formatter.ensureValue(formatter.firstNonFlagArgument(arguments[1:]))
		return formatter.selectStageMessage(stage,
			fmt.Sprintf(gitSymbolicRefStartTemplateConstant, reference, directory),
			fmt.Sprintf(gitSymbolicRefSuccessTemplateConstant, reference, directory, formatter.ensureValue(strings.TrimSpace(result.StandardOutput))),
			fmt.Sprintf(gitSymbolicRefFailureTemplateConstant, reference, directory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError)),
			fmt.Sprintf(gitSymbolicRefExecutionFailureTemplateConstant, reference, directory, formatter.describeFailure(failure)),
		)
	case gitDiffSubcommandNameConstant:
		base := formatter.ensureValue(formatter.firstNonFlagArgument(arguments[1:]))
		return formatter.selectStageMessage(stage,
			fmt.Sprintf(gitDiffStartTemplateConstant, base, directory),
			fmt.Sprintf(gitDiffSuccessTemplateConstant, formatter.countLines(result.StandardOutput), base, directory),
			fmt.Sprintf(gitDiffFailureTemplateConstant, base, directory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError)),
			fmt.Sprintf(gitDiffExecutionFailureTemplateConstant, base, directory, formatter.describeFailure(failure)),
		)
	case gitRemoteSubcommandNameConstant:
		if len(arguments) < 3 || arguments[1] != gitRemoteGetURLSubcommandNameConstant {
			return emptyStringConstant
		}
		remoteName := arguments[2]
		return formatter.selectStageMessage(stage,
			fmt.Sprintf(gitRemoteLookupStartTemplateConstant, remoteName, directory),
			fmt.Sprintf(gitRemoteLookupSuccessTemplateConstant, remoteName, directory, formatter.ensureValue(strings.TrimSpace(result.StandardOutput))),
			fmt.Sprintf(gitRemoteLookupFailureTemplateConstant, remoteName, directory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError)),
			fmt.Sprintf(gitRemoteLookupExecutionFailureTemplateConstant, remoteName, directory, formatter.describeFailure(failure)),
		)
	case gitStatusSubcommandNameConstant:
		return formatter.selectStageMessage(stage,
			fmt.Sprintf(gitStatusStartTemplateConstant, directory),
			fmt.Sprintf(gitStatusSuccessTemplateConstant, directory),
			fmt.Sprintf(gitStatusFailureTemplateConstant, directory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError)),
			fmt.Sprintf(gitStatusExecutionFailureTemplateConstant, directory, formatter.describeFailure(failure)),
		)
	case gitPushSubcommandNameConstant, gitLSRemoteSubcommandNameConstant:
		return formatter.describeGitRemoteReferenceMessage(arguments, directory, result, failure, stage)
	case gitCloneSubcommandNameConstant:
		source := formatter.ensureValue(formatter.firstNonFlagArgument(arguments[1:]))
		return formatter.selectStageMessage(stage,
			fmt.Sprintf(gitCloneStartTemplateConstant, source, directory),
			fmt.Sprintf(gitCloneSuccessTemplateConstant, source, directory),
			fmt.Sprintf(gitCloneFailureTemplateConstant, source, directory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError)),
			fmt.Sprintf(gitCloneExecutionFailureTemplateConstant, source, directory, formatter.describeFailure(failure)),
		)
	default:
		return emptyStringConstant
	}
}

func (formatter CommandMessageFormatter) describeGitRevParseMessage(arguments []string, directory string, result ExecutionResult, failure error, stage messageStage) string {
	if containsArgument(arguments, gitAbbrevRefFlagConstant) {
		return formatter.selectStageMessage(stage,
			fmt.Sprintf(gitCurrentBranchStartTemplateConstant, directory),
			fmt.Sprintf(gitCurrentBranchSuccessTemplateConstant, directory, formatter.ensureValue(strings.TrimSpace(result.StandardOutput))),
			fmt.Sprintf(gitCurrentBranchFailureTemplateConstant, directory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError)),
			fmt.Sprintf(gitCurrentBranchExecutionFailureTemplateConstant, directory, formatter.describeFailure(failure)),
		)
	}
	revision := formatter.ensureValue(formatter.firstNonFlagArgument(arguments[1:]))
	return formatter.selectStageMessage(stage,
		fmt.Sprintf(gitRevisionStartTemplateConstant, revision, directory),
		fmt.Sprintf(gitRevisionSuccessTemplateConstant, revision, directory, formatter.ensureValue(strings.TrimSpace(result.StandardOutput))),
		fmt.Sprintf(gitRevisionFailureTemplateConstant, revision, directory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError)),
		fmt.Sprintf(gitRevisionExecutionFailureTemplateConstant, revision, directory, formatter.describeFailure(failure)),
	)
}

func (formatter CommandMessageFormatter) describeGitRemoteReferenceMessage(arguments []string, directory string, result ExecutionResult, failure error, stage messageStage) string {
	positionalArguments := formatter.nonFlagArguments(arguments[1:])
	remoteName := formatter.ensureValue(formatter.argumentAtIndex(positionalArguments, 0))
	branchName := formatter.ensureValue(formatter.argumentAtIndex(positionalArguments, 1))

	if arguments[0] == gitPushSubcommandNameConstant {
		return formatter.selectStageMessage(stage,
			fmt.Sprintf(gitPushStartTemplateConstant, branchName, remoteName, directory),
			fmt.Sprintf(gitPushSuccessTemplateConstant, branchName, remoteName, directory),
			fmt.Sprintf(gitPushFailureTemplateConstant, branchName, remoteName, directory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError)),
			fmt.Sprintf(gitPushExecutionFailureTemplateConstant, branchName, remoteName, directory, formatter.describeFailure(failure)),
		)
	}
	return formatter.selectStageMessage(stage,
		fmt.Sprintf(gitLSRemoteStartTemplateConstant, branchName, remoteName, directory),
		fmt.Sprintf(gitLSRemoteSuccessTemplateConstant, branchName, remoteName, directory),
		fmt.Sprintf(gitLSRemoteFailureTemplateConstant, branchName, remoteName, directory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError)),
		fmt.Sprintf(gitLSRemoteExecutionFailureTemplateConstant, branchName, remoteName, directory, formatter.describeFailure(failure)),
	)
}

func (formatter CommandMessageFormatter) describeGitHubMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	arguments := command.Details.Arguments
	if len(arguments) == 0 || arguments[0] != gitHubAPISubcommandNameConstant {
		return emptyStringConstant
	}
	endpoint := formatter.ensureValue(formatter.firstNonFlagArgument(arguments[1:]))
	return formatter.selectStageMessage(stage,
		fmt.Sprintf(githubAPIStartTemplateConstant, endpoint),
		fmt.Sprintf(githubAPISuccessTemplateConstant, endpoint),
		fmt.Sprintf(githubAPIFailureTemplateConstant, endpoint, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError)),
		fmt.Sprintf(githubAPIExecutionFailureTemplateConstant, endpoint, formatter.describeFailure(failure)),
	)
}

func (formatter CommandMessageFormatter) describeShellMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	commandLine := formatter.argumentAtIndex(command.Details.Arguments, shellCommandLineArgumentIndexConstant)
	if len(commandLine) == 0 {
		return emptyStringConstant
	}
	directory := formatter.describeWorkingDirectory(command)
	return formatter.selectStageMessage(stage,
		fmt.Sprintf(shellStartTemplateConstant, commandLine, directory),
		fmt.Sprintf(shellSuccessTemplateConstant, commandLine, directory),
		fmt.Sprintf(shellFailureTemplateConstant, commandLine, directory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError)),
		fmt.Sprintf(shellExecutionFailureTemplateConstant, commandLine, directory, formatter.describeFailure(failure)),
	)
}

func (formatter CommandMessageFormatter) buildGenericMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	commandLabel := formatter.formatCommandLabel(command)
	return formatter.selectStageMessage(stage,
		fmt.Sprintf(genericStartTemplateConstant, commandLabel),
		fmt.Sprintf(genericSuccessTemplateConstant, commandLabel),
		fmt.Sprintf(genericFailureTemplateConstant, commandLabel, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError)),
		fmt.Sprintf(genericExecutionFailureTemplateConstant, commandLabel, formatter.describeFailure(failure)),
	)
}

func (formatter CommandMessageFormatter) selectStageMessage(stage messageStage, startMessage string, successMessage string, failureMessage string, executionFailureMessage string) string {
	switch stage {
	case messageStageStart:
		return startMessage
	case messageStageSuccess:
		return successMessage
	case messageStageFailure:
		return failureMessage
	default:
		return executionFailureMessage
	}
}

func (formatter CommandMessageFormatter) formatCommandLabel(command ShellCommand) string {
	commandParts := []string{string(command.Name)}
	if len(command.Details.Arguments) > 0 {
		commandParts = append(commandParts, strings.Join(command.Details.Arguments, commandArgumentsJoinSeparatorConstant))
	}
	commandLabel := strings.Join(commandParts, commandArgumentsJoinSeparatorConstant)
	return fmt.Sprintf(commandLabelTemplateConstant, commandLabel, formatter.formatWorkingDirectorySuffix(command))
}

func (formatter CommandMessageFormatter) formatWorkingDirectorySuffix(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(workingDirectorySuffixTemplateConstant, trimmedWorkingDirectory)
}

func (formatter CommandMessageFormatter) formatStandardErrorSuffix(standardError string) string {
	trimmedStandardError := strings.TrimSpace(standardError)
	if len(trimmedStandardError) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmedStandardError)
}

func (formatter CommandMessageFormatter) describeWorkingDirectory(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return defaultWorkingDirectoryLabelConstant
	}
	return trimmedWorkingDirectory
}

func (formatter CommandMessageFormatter) describeFailure(failure error) string {
	if failure == nil {
		return unknownFailureMessageConstant
	}
	return failure.Error()
}

func (formatter CommandMessageFormatter) ensureValue(value string) string {
	if len(strings.TrimSpace(value)) == 0 {
		return fallbackUnknownValueLabelConstant
	}
	return value
}

func (formatter CommandMessageFormatter) argumentAtIndex(arguments []string, index int) string {
	if index < 0 || index >= len(arguments) {
		return emptyStringConstant
	}
	return arguments[index]
}

func (formatter CommandMessageFormatter) firstNonFlagArgument(arguments []string) string {
	return formatter.argumentAtIndex(formatter.nonFlagArguments(arguments), 0)
}

func (formatter CommandMessageFormatter) nonFlagArguments(arguments []string) []string {
	positionalArguments := make([]string, 0, len(arguments))
	for _, argument := range arguments {
		if strings.HasPrefix(argument, flagPrefixConstant) {
			continue
		}
		positionalArguments = append(positionalArguments, argument)
	}
	return positionalArguments
}

func (formatter CommandMessageFormatter) countLines(output string) int {
	lineCount := 0
	for _, line := range strings.Split(output, lineSeparatorConstant) {
		if len(strings.TrimSpace(line)) > 0 {
			lineCount++
		}
	}
	return lineCount
}

func containsArgument(arguments []string, value string) bool {
	for _, argument := range arguments {
		if argument == value {
			return true
		}
	}
	return false
}
