package pullrequest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"sync/atomic"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/gmux/internal/browser"
	"github.com/temirov/gmux/internal/fanout"
	"github.com/temirov/gmux/internal/repos/dependencies"
	"github.com/temirov/gmux/internal/repos/shared"
	"github.com/temirov/gmux/internal/ui"
	"github.com/temirov/gmux/internal/utils"
	pathutils "github.com/temirov/gmux/internal/utils/path"
)

const (
	commandUseConstant                    = "pr"
	commandShortDescriptionConstant       = "Open pull request drafts for every matching repository"
	commandLongDescriptionConstant        = "pr compares the current branch of each matching repository with its default branch, renders the pull request template with the changed files, offers to push unpublished branches, and opens a prefilled compare page in the browser."
	commandExampleConstant                = "gmux pr --title \"Bump dependencies\" --filter '^service-'"
	titleFlagNameConstant                 = "title"
	titleFlagShorthandConstant            = "t"
	titleFlagUsageConstant                = "Pull request title (prompted when omitted)"
	filterFlagNameConstant                = "filter"
	filterFlagShorthandConstant           = "f"
	filterFlagUsageConstant               = "Regular expression matched against repository directory names"
	yesFlagNameConstant                   = "yes"
	yesFlagShorthandConstant              = "y"
	yesFlagUsageConstant                  = "Push unpublished branches without asking"
	dryRunFlagNameConstant                = "dry-run"
	dryRunFlagUsageConstant               = "Print the pull request URLs without pushing or opening the browser"
	templateFlagNameConstant              = "template"
	templateFlagUsageConstant             = "Path to the pull request template"
	titlePromptConstant                   = "Enter PR title: "
	missingTitleMessageConstant           = "pull request title is required"
	templateMissingWarningConstant        = "PR template not found. Run 'gmux init' first."
	templateReadErrorTemplateConstant     = "unable to read pull request template %s: %w"
	titleReadErrorTemplateConstant        = "unable to read pull request title: %w"
	workingDirectoryErrorTemplateConstant = "unable to resolve working directory: %w"
	summaryTemplateConstant               = "Pull requests: %d opened, %d skipped, %d failed"
)

var (
	// ErrTitleRequired indicates no title was provided by flag or prompt.
	ErrTitleRequired = errors.New(missingTitleMessageConstant)
)

// LoggerProvider yields a zap logger instance.
type LoggerProvider func() *zap.Logger

// CommandBuilder assembles the pr command.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        func() CommandConfiguration
	ConfigurationDirectory       *utils.ConfigurationDirectoryResolver
	CommandExecutor              shared.CommandExecutor
	RepositoryManager            shared.GitRepositoryManager
	Discoverer                   shared.DirectoryDiscoverer
	FileSystem                   shared.FileSystem
	Prompter                     shared.ConfirmationPrompter
	LineReader                   shared.LineReader
	BrowserOpener                browser.Opener
	WorkingDirectory             string
}

// Build constructs the pr command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:     commandUseConstant,
		Short:   commandShortDescriptionConstant,
		Long:    commandLongDescriptionConstant,
		Example: commandExampleConstant,
		Args:    cobra.NoArgs,
		RunE:    builder.run,
	}

	command.Flags().StringP(titleFlagNameConstant, titleFlagShorthandConstant, "", titleFlagUsageConstant)
	command.Flags().StringP(filterFlagNameConstant, filterFlagShorthandConstant, "", filterFlagUsageConstant)
	command.Flags().BoolP(yesFlagNameConstant, yesFlagShorthandConstant, false, yesFlagUsageConstant)
	command.Flags().Bool(dryRunFlagNameConstant, false, dryRunFlagUsageConstant)
	command.Flags().String(templateFlagNameConstant, "", templateFlagUsageConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	configuration := builder.resolveConfiguration()

	filterValue, _ := command.Flags().GetString(filterFlagNameConstant)
	titleValue, _ := command.Flags().GetString(titleFlagNameConstant)
	assumeYes := configuration.AssumeYes
	if command.Flags().Changed(yesFlagNameConstant) {
		assumeYes, _ = command.Flags().GetBool(yesFlagNameConstant)
	}
	dryRun := configuration.DryRun
	if command.Flags().Changed(dryRunFlagNameConstant) {
		dryRun, _ = command.Flags().GetBool(dryRunFlagNameConstant)
	}
	templatePath := configuration.TemplatePath
	if command.Flags().Changed(templateFlagNameConstant) {
		templatePath, _ = command.Flags().GetString(templateFlagNameConstant)
	}

	if _, filterError := fanout.CompileFilterPattern(filterValue); filterError != nil {
		return filterError
	}

	templateContent, templateFound, templateError := builder.loadTemplate(templatePath)
	if templateError != nil {
		return templateError
	}
	if !templateFound {
		fmt.Fprintln(command.ErrOrStderr(), ui.WarningStyle.Render(templateMissingWarningConstant))
		return nil
	}

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
	prompter, lineReader := dependencies.ResolvePrompters(builder.Prompter, builder.LineReader, command.InOrStdin(), command.OutOrStdout(), shared.ConfirmationPolicyFromBool(assumeYes))

	title, titleError := resolveTitle(titleValue, lineReader)
	if titleError != nil {
		return titleError
	}

	workingDirectory, workingDirectoryError := builder.resolveWorkingDirectory()
	if workingDirectoryError != nil {
		return workingDirectoryError
	}

	workflow, workflowError := NewWorkflow(
		Dependencies{
			RepositoryManager: repositoryManager,
			Prompter:          prompter,
			BrowserOpener:     builder.BrowserOpener,
			Logger:            logger,
		},
		Options{Title: title, Template: templateContent, DryRun: dryRun, WebHost: configuration.WebHost},
	)
	if workflowError != nil {
		return workflowError
	}

	outputWriter := utils.NewFlushingWriter(command.OutOrStdout())
	var openedCount, skippedCount, failedCount atomic.Int64

	orchestrator := dependencies.ResolveOrchestrator(builder.Discoverer, logger)
	runError := orchestrator.ForEach(command.Context(), workingDirectory, filterValue, func(executionContext context.Context, repository fanout.RepositoryHandle) error {
		block := ui.NewRepositoryBlock()
		outcome, outcomeError := workflow.Run(executionContext, repository, block)
		switch {
		case outcome == OutcomeOpened || outcome == OutcomeDryRun:
			openedCount.Add(1)
		case outcome == OutcomeFailed || outcome == OutcomeFailedPush:
			failedCount.Add(1)
		default:
			skippedCount.Add(1)
		}
		if _, writeError := block.WriteTo(outputWriter); writeError != nil && outcomeError == nil {
			return writeError
		}
		return outcomeError
	})

	fmt.Fprintln(outputWriter, ui.MutedStyle.Render(fmt.Sprintf(summaryTemplateConstant, openedCount.Load(), skippedCount.Load(), failedCount.Load())))
	return runError
}

func (builder *CommandBuilder) loadTemplate(configuredPath string) (string, bool, error) {
	templatePath := strings.TrimSpace(configuredPath)
	if len(templatePath) == 0 {
		resolver := builder.ConfigurationDirectory
		if resolver == nil {
			resolver = utils.NewConfigurationDirectoryResolver()
		}
		defaultPath, resolveError := resolver.ResolveFile(utils.PullRequestTemplateFileName)
		if resolveError != nil {
			return "", false, resolveError
		}
		templatePath = defaultPath
	} else {
		templatePath = pathutils.NewHomeExpander().Expand(templatePath)
	}

	fileSystem := dependencies.ResolveFileSystem(builder.FileSystem)
	content, readError := fileSystem.ReadFile(templatePath)
	if readError != nil {
		if errors.Is(readError, fs.ErrNotExist) {
			return "", false, nil
		}
		return "", false, fmt.Errorf(templateReadErrorTemplateConstant, templatePath, readError)
	}
	return string(content), true, nil
}

func resolveTitle(flagValue string, lineReader shared.LineReader) (string, error) {
	title := strings.TrimSpace(flagValue)
	if len(title) > 0 {
		return title, nil
	}
	enteredTitle, readError := lineReader.ReadLine(titlePromptConstant)
	if readError != nil {
		return "", fmt.Errorf(titleReadErrorTemplateConstant, readError)
	}
	title = strings.TrimSpace(enteredTitle)
	if len(title) == 0 {
		return "", ErrTitleRequired
	}
	return title, nil
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
