package organization

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/gmux/internal/fanout"
	"github.com/temirov/gmux/internal/githubauth"
	"github.com/temirov/gmux/internal/githubcli"
	"github.com/temirov/gmux/internal/repos/dependencies"
	"github.com/temirov/gmux/internal/repos/shared"
)

const (
	listCommandUseConstant                = "list [owner]"
	listCommandShortDescriptionConstant   = "List the GitHub repositories of a user or organization"
	cloneCommandUseConstant               = "clone [owner]"
	cloneCommandShortDescriptionConstant  = "Clone the GitHub repositories of a user or organization into the working directory"
	cloneCommandLongDescriptionConstant   = "clone lists the repositories of the owner, keeps those whose name matches the filter, and shallow-clones each one that is not already present in the working directory."
	cloneCommandExampleConstant           = "gmux clone acme --filter '^service-'"
	ownerFlagNameConstant                 = "org"
	ownerFlagUsageConstant                = "GitHub user or organization (defaults to the configured default_org)"
	filterFlagNameConstant                = "filter"
	filterFlagShorthandConstant           = "f"
	filterFlagUsageConstant               = "Regular expression matched against repository names"
	missingOwnerMessageConstant           = "owner is required; pass it as an argument, with --org, or configure github.default_org (run gmux setup)"
	workingDirectoryErrorTemplateConstant = "unable to resolve working directory: %w"
)

// ErrOwnerRequired indicates no owner was provided by argument, flag, or configuration.
var ErrOwnerRequired = errors.New(missingOwnerMessageConstant)

// LoggerProvider yields a zap logger instance.
type LoggerProvider func() *zap.Logger

// CommandBuilder assembles the list and clone commands.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        func() CommandConfiguration
	CommandExecutor              shared.CommandExecutor
	RepositoryClient             RepositoryClient
	FileSystem                   shared.FileSystem
	WorkingDirectory             string
}

// BuildListCommand constructs the list command.
func (builder *CommandBuilder) BuildListCommand() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   listCommandUseConstant,
		Short: listCommandShortDescriptionConstant,
		Args:  cobra.MaximumNArgs(1),
		RunE:  builder.runList,
	}
	command.Flags().String(ownerFlagNameConstant, "", ownerFlagUsageConstant)
	return command, nil
}

// BuildCloneCommand constructs the clone command.
func (builder *CommandBuilder) BuildCloneCommand() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:     cloneCommandUseConstant,
		Short:   cloneCommandShortDescriptionConstant,
		Long:    cloneCommandLongDescriptionConstant,
		Example: cloneCommandExampleConstant,
		Args:    cobra.MaximumNArgs(1),
		RunE:    builder.runClone,
	}
	command.Flags().String(ownerFlagNameConstant, "", ownerFlagUsageConstant)
	command.Flags().StringP(filterFlagNameConstant, filterFlagShorthandConstant, "", filterFlagUsageConstant)
	return command, nil
}

func (builder *CommandBuilder) runList(command *cobra.Command, arguments []string) error {
	configuration := builder.resolveConfiguration()
	owner, ownerError := resolveOwner(command, arguments, configuration)
	if ownerError != nil {
		return ownerError
	}

	service, serviceError := builder.buildService(command, configuration)
	if serviceError != nil {
		return serviceError
	}
	_, listError := service.List(command.Context(), owner, configuration.ListOptions())
	return listError
}

func (builder *CommandBuilder) runClone(command *cobra.Command, arguments []string) error {
	configuration := builder.resolveConfiguration()

	rawFilter, _ := command.Flags().GetString(filterFlagNameConstant)
	filter, filterError := fanout.CompileFilterPattern(rawFilter)
	if filterError != nil {
		return filterError
	}

	owner, ownerError := resolveOwner(command, arguments, configuration)
	if ownerError != nil {
		return ownerError
	}

	workingDirectory, workingDirectoryError := builder.resolveWorkingDirectory()
	if workingDirectoryError != nil {
		return workingDirectoryError
	}

	service, serviceError := builder.buildService(command, configuration)
	if serviceError != nil {
		return serviceError
	}
	_, cloneError := service.Clone(command.Context(), owner, filter, workingDirectory, configuration.ListOptions())
	return cloneError
}

func (builder *CommandBuilder) buildService(command *cobra.Command, configuration CommandConfiguration) (*Service, error) {
	client := builder.RepositoryClient
	if client == nil {
		logger := builder.resolveLogger()
		humanReadableLogging := false
		if builder.HumanReadableLoggingProvider != nil {
			humanReadableLogging = builder.HumanReadableLoggingProvider()
		}
		commandExecutor, executorError := dependencies.ResolveCommandExecutor(builder.CommandExecutor, logger, humanReadableLogging)
		if executorError != nil {
			return nil, executorError
		}
		token, _ := githubauth.ResolveToken(configuration.Token, nil)
		githubClient, clientError := githubcli.NewClient(commandExecutor, token)
		if clientError != nil {
			return nil, clientError
		}
		client = githubClient
	}
	return NewService(client, dependencies.ResolveFileSystem(builder.FileSystem), command.OutOrStdout())
}

func resolveOwner(command *cobra.Command, arguments []string, configuration CommandConfiguration) (shared.OwnerSlug, error) {
	candidate := ""
	if len(arguments) > 0 {
		candidate = arguments[0]
	}
	if len(strings.TrimSpace(candidate)) == 0 {
		candidate, _ = command.Flags().GetString(ownerFlagNameConstant)
	}
	if len(strings.TrimSpace(candidate)) == 0 {
		candidate = configuration.DefaultOwner
	}
	if len(strings.TrimSpace(candidate)) == 0 {
		return shared.OwnerSlug{}, ErrOwnerRequired
	}
	return shared.NewOwnerSlug(candidate)
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
