package multiexec

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/gmux/internal/repos/dependencies"
	"github.com/temirov/gmux/internal/repos/shared"
	"github.com/temirov/gmux/internal/ui"
	"github.com/temirov/gmux/internal/utils"
)

const (
	shellCommandUseConstant               = "cmd [--filter REGEX] <command...>"
	shellCommandShortDescriptionConstant  = "Run a shell command in every matching directory"
	shellCommandLongDescriptionConstant   = "cmd joins its arguments into one command line and runs it with sh -c inside every immediate subdirectory of the working directory whose name matches the filter. Directories do not need to be repositories."
	shellCommandExampleConstant           = "gmux cmd --filter '^api-' make test"
	gitCommandUseConstant                 = "git [--filter REGEX] <git arguments...>"
	gitCommandShortDescriptionConstant    = "Run a git command in every matching repository"
	gitCommandLongDescriptionConstant     = "git runs git with the given arguments in every matching repository. The placeholders @default and @current are replaced with each repository's default and current branch."
	gitCommandExampleConstant             = "gmux git log --oneline @default..@current"
	statusCommandUseConstant              = "status"
	statusCommandShortDescriptionConstant = "Show branch, head commit, and working tree status of every matching repository"
	filterFlagNameConstant                = "filter"
	filterFlagShorthandConstant           = "f"
	filterFlagUsageConstant               = "Regular expression matched against repository directory names"
	commandLineSeparatorConstant          = " "
	workingDirectoryErrorTemplateConstant = "unable to resolve working directory: %w"
)

// LoggerProvider yields a zap logger instance.
type LoggerProvider func() *zap.Logger

// CommandBuilder holds the dependencies shared by the cmd, git, and status commands.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        func() CommandConfiguration
	CommandExecutor              shared.CommandExecutor
	RepositoryManager            shared.GitRepositoryManager
	Discoverer                   shared.DirectoryDiscoverer
	Clock                        shared.Clock
	WorkingDirectory             string
}

// BuildShellCommand constructs the cmd command.
func (builder *CommandBuilder) BuildShellCommand() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:     shellCommandUseConstant,
		Short:   shellCommandShortDescriptionConstant,
		Long:    shellCommandLongDescriptionConstant,
		Example: shellCommandExampleConstant,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			commandLine := strings.Join(arguments, commandLineSeparatorConstant)
			return builder.execute(command, func(executionContext context.Context, service *Service, rootDirectory string, rawFilter string) (Summary, error) {
				return service.RunShell(executionContext, rootDirectory, rawFilter, commandLine)
			})
		},
	}
	builder.bindFilterFlag(command)
	command.Flags().SetInterspersed(false)
	return command, nil
}

// BuildGitCommand constructs the git command.
func (builder *CommandBuilder) BuildGitCommand() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:     gitCommandUseConstant,
		Short:   gitCommandShortDescriptionConstant,
		Long:    gitCommandLongDescriptionConstant,
		Example: gitCommandExampleConstant,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			gitArguments := append([]string{}, arguments...)
			return builder.execute(command, func(executionContext context.Context, service *Service, rootDirectory string, rawFilter string) (Summary, error) {
				return service.RunGit(executionContext, rootDirectory, rawFilter, gitArguments)
			})
		},
	}
	builder.bindFilterFlag(command)
	command.Flags().SetInterspersed(false)
	return command, nil
}

// BuildStatusCommand constructs the status command.
func (builder *CommandBuilder) BuildStatusCommand() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   statusCommandUseConstant,
		Short: statusCommandShortDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			return builder.execute(command, func(executionContext context.Context, service *Service, rootDirectory string, rawFilter string) (Summary, error) {
				return service.Status(executionContext, rootDirectory, rawFilter)
			})
		},
	}
	builder.bindFilterFlag(command)
	return command, nil
}

type serviceInvocation func(executionContext context.Context, service *Service, rootDirectory string, rawFilter string) (Summary, error)

func (builder *CommandBuilder) bindFilterFlag(command *cobra.Command) {
	command.Flags().StringP(filterFlagNameConstant, filterFlagShorthandConstant, "", filterFlagUsageConstant)
}

func (builder *CommandBuilder) execute(command *cobra.Command, invocation serviceInvocation) error {
	rawFilter, _ := command.Flags().GetString(filterFlagNameConstant)
	configuration := builder.resolveConfiguration()

	logger := builder.resolveLogger()
	humanReadableLogging := false
	if builder.HumanReadableLoggingProvider != nil {
		humanReadableLogging = builder.HumanReadableLoggingProvider()
	}

	commandExecutor, executorError := dependencies.ResolveCommandExecutor(builder.CommandExecutor, logger, humanReadableLogging)
	if executorError != nil {
		return executorError
	}
	repositoryManager, managerError := dependencies.ResolveRepositoryManager(builder.RepositoryManager, commandExecutor, configuration.RemoteName)
	if managerError != nil {
		return managerError
	}

	rootDirectory, rootError := builder.resolveWorkingDirectory()
	if rootError != nil {
		return rootError
	}

	outputWriter := utils.NewFlushingWriter(command.OutOrStdout())
	service, serviceError := NewService(Dependencies{
		Orchestrator:      dependencies.ResolveOrchestrator(builder.Discoverer, logger),
		CommandExecutor:   commandExecutor,
		RepositoryManager: repositoryManager,
		Clock:             dependencies.ResolveClock(builder.Clock),
		Output:            outputWriter,
	})
	if serviceError != nil {
		return serviceError
	}

	summary, runError := invocation(command.Context(), service, rootDirectory, rawFilter)
	if runError != nil && summary.Succeeded == 0 && summary.Failed == 0 {
		return runError
	}
	fmt.Fprintln(outputWriter, ui.RenderSummary(summary.Succeeded, summary.Failed))
	return runError
}

func (builder *CommandBuilder) resolveWorkingDirectory() (string, error) {
	if len(strings.TrimSpace(builder.WorkingDirectory)) > 0 {
		return builder.WorkingDirectory, nil
	}
	workingDirectory, workingDirectoryError := os.Getwd()
	if workingDirectoryError != nil {
		return "", fmt.Errorf(workingDirectoryErrorTemplateConstant, workingDirectoryError)
	}
	return workingDirectory, nil
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}
	return builder.ConfigurationProvider().Sanitize()
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}
	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
