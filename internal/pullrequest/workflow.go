package pullrequest

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/gmux/internal/browser"
	"github.com/temirov/gmux/internal/fanout"
	"github.com/temirov/gmux/internal/gitrepo"
	"github.com/temirov/gmux/internal/repos/shared"
	"github.com/temirov/gmux/internal/ui"
)

// Outcome classifies how the workflow finished for one repository.
type Outcome string

// Workflow outcomes.
const (
	OutcomeOpened               Outcome = Outcome("opened")
	OutcomeDryRun               Outcome = Outcome("dry-run")
	OutcomeSkippedNotRepository Outcome = Outcome("skipped-not-repository")
	OutcomeSkippedNoMetadata    Outcome = Outcome("skipped-no-metadata")
	OutcomeSkippedNoChanges     Outcome = Outcome("skipped-no-changes")
	OutcomeSkippedPushDeclined  Outcome = Outcome("skipped-push-declined")
	OutcomeSkippedPromptFailed  Outcome = Outcome("skipped-prompt-failed")
	OutcomeSkippedNoRemote      Outcome = Outcome("skipped-no-remote")
	OutcomeFailedPush           Outcome = Outcome("failed-push")
	OutcomeFailed               Outcome = Outcome("failed")
)

const (
	nonRepositoryMessageTemplateConstant       = "Skipping non-git directory %s"
	missingMetadataMessageTemplateConstant     = "Skipping %s: current branch could not be determined"
	noChangesMessageTemplateConstant           = "No changes found against %s in %s"
	pushPromptTemplateConstant                 = "%s Branch %s of %s has not been pushed to %s. Push it? [a/N/y] "
	promptFailedMessageTemplateConstant        = "Unable to read confirmation for %s: %v"
	pushDeclinedMessageTemplateConstant        = "Skipping pull request for %s"
	pushFailedMessageTemplateConstant          = "Failed to push branch %s: %s"
	pushFailedWithoutOutputTemplateConstant    = "Failed to push branch %s (exit code: %d)"
	branchPushedMessageTemplateConstant        = "Branch pushed: %s"
	branchExistsMessageTemplateConstant        = "Branch already exists on %s: %s"
	dryRunPushMessageTemplateConstant          = "Branch %s is not on %s and would be pushed"
	missingRemoteMessageTemplateConstant       = "Skipping %s: remote %s is not configured"
	unparseableRemoteMessageTemplateConstant   = "Skipping %s: %v"
	openingMessageTemplateConstant             = "%s Opening pull request draft for %s/%s"
	dryRunURLMessageTemplateConstant           = "%s Pull request draft for %s/%s: %s"
	headerDetailTemplateConstant               = "%s → %s"
	browserOpenFailedLogMessageConstant        = "Unable to open browser"
	logFieldRepositoryConstant                 = "repository"
	logFieldURLConstant                        = "url"
	repositoryManagerMissingMessageConstant    = "pull request workflow requires a repository manager"
	confirmationPrompterMissingMessageConstant = "pull request workflow requires a confirmation prompter"
)

var (
	// ErrRepositoryManagerNotConfigured indicates the workflow was constructed without a repository manager.
	ErrRepositoryManagerNotConfigured = errors.New(repositoryManagerMissingMessageConstant)
	// ErrConfirmationPrompterNotConfigured indicates the workflow was constructed without a prompter.
	ErrConfirmationPrompterNotConfigured = errors.New(confirmationPrompterMissingMessageConstant)
)

// Options holds the values shared by every repository of one run.
type Options struct {
	Title    string
	Template string
	DryRun   bool
	WebHost  string
}

// Dependencies are the collaborators of the workflow. The prompter is shared by concurrent
// repositories and must serialize itself.
type Dependencies struct {
	RepositoryManager shared.GitRepositoryManager
	Prompter          shared.ConfirmationPrompter
	BrowserOpener     browser.Opener
	Logger            *zap.Logger
}

// Workflow drafts a pull request for one repository at a time.
type Workflow struct {
	repositoryManager shared.GitRepositoryManager
	prompter          shared.ConfirmationPrompter
	browserOpener     browser.Opener
	logger            *zap.Logger
	options           Options
}

// NewWorkflow validates dependencies and constructs a workflow.
func NewWorkflow(dependencies Dependencies, options Options) (*Workflow, error) {
	if dependencies.RepositoryManager == nil {
		return nil, ErrRepositoryManagerNotConfigured
	}
	if dependencies.Prompter == nil {
		return nil, ErrConfirmationPrompterNotConfigured
	}
	browserOpener := dependencies.BrowserOpener
	if browserOpener == nil {
		browserOpener = browser.NewSystemOpener()
	}
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Workflow{
		repositoryManager: dependencies.RepositoryManager,
		prompter:          dependencies.Prompter,
		browserOpener:     browserOpener,
		logger:            logger,
		options:           options,
	}, nil
}

// Run drafts the pull request for one repository, describing each step in the block. Expected negative
// outcomes, declined or failed pushes included, are reported through the outcome with a nil error. An
// error is returned only when git could not be run.
func (workflow *Workflow) Run(executionContext context.Context, repository fanout.RepositoryHandle, block *ui.RepositoryBlock) (Outcome, error) {
	block.Separator()
	if !workflow.repositoryManager.IsRepository(repository.Path) {
		block.Header(repository.Name, repository.Path)
		block.Skip(fmt.Sprintf(nonRepositoryMessageTemplateConstant, repository.Path))
		return OutcomeSkippedNotRepository, nil
	}

	metadata, metadataResolved, metadataError := workflow.repositoryManager.ResolveMetadata(executionContext, repository.Path)
	if metadataError != nil {
		block.Header(repository.Name, repository.Path)
		return OutcomeFailed, metadataError
	}
	if !metadataResolved {
		block.Header(repository.Name, repository.Path)
		block.Skip(fmt.Sprintf(missingMetadataMessageTemplateConstant, repository.Name))
		return OutcomeSkippedNoMetadata, nil
	}
	block.Header(repository.Name, fmt.Sprintf(headerDetailTemplateConstant, metadata.CurrentBranch, metadata.DefaultBranch))

	diffFiles, diffError := workflow.repositoryManager.DiffFileNames(executionContext, repository.Path, metadata.DefaultBranch)
	if diffError != nil {
		return OutcomeFailed, diffError
	}
	if len(diffFiles) == 0 {
		block.Info(fmt.Sprintf(noChangesMessageTemplateConstant, metadata.DefaultBranch, repository.Path))
		return OutcomeSkippedNoChanges, nil
	}

	body := Render(DraftContext{
		Title:          workflow.options.Title,
		Template:       workflow.options.Template,
		RepositoryName: repository.Name,
		DiffFiles:      diffFiles,
	})

	pushOutcome, pushError := workflow.ensureBranchOnRemote(executionContext, repository, metadata, block)
	if pushError != nil {
		return OutcomeFailed, pushError
	}
	if len(pushOutcome) > 0 {
		return pushOutcome, nil
	}

	remoteName := workflow.repositoryManager.RemoteName()
	rawRemoteURL, remoteConfigured, remoteError := workflow.repositoryManager.RemoteURL(executionContext, repository.Path)
	if remoteError != nil {
		return OutcomeFailed, remoteError
	}
	if !remoteConfigured {
		block.Skip(fmt.Sprintf(missingRemoteMessageTemplateConstant, repository.Name, remoteName))
		return OutcomeSkippedNoRemote, nil
	}
	remoteURL, parseError := gitrepo.ParseRemoteURL(rawRemoteURL)
	if parseError != nil {
		block.Skip(fmt.Sprintf(unparseableRemoteMessageTemplateConstant, repository.Name, parseError))
		return OutcomeSkippedNoRemote, nil
	}

	compareURL := BuildCompareURL(remoteURL, workflow.options.WebHost, metadata.DefaultBranch, metadata.CurrentBranch, workflow.options.Title, body)
	if workflow.options.DryRun {
		block.Line(fmt.Sprintf(dryRunURLMessageTemplateConstant, ui.BrowserSymbol, remoteURL.Owner, remoteURL.Repository, compareURL))
		return OutcomeDryRun, nil
	}

	block.Line(ui.AccentStyle.Render(fmt.Sprintf(openingMessageTemplateConstant, ui.BrowserSymbol, remoteURL.Owner, remoteURL.Repository)))
	if openError := workflow.browserOpener.Open(compareURL); openError != nil {
		workflow.logger.Debug(
			browserOpenFailedLogMessageConstant,
			zap.String(logFieldRepositoryConstant, repository.Path),
			zap.String(logFieldURLConstant, compareURL),
			zap.Error(openError),
		)
	}
	return OutcomeOpened, nil
}

// ensureBranchOnRemote returns an empty outcome when the workflow may continue.
func (workflow *Workflow) ensureBranchOnRemote(executionContext context.Context, repository fanout.RepositoryHandle, metadata gitrepo.RepositoryMetadata, block *ui.RepositoryBlock) (Outcome, error) {
	remoteName := workflow.repositoryManager.RemoteName()
	branchExists, lookupError := workflow.repositoryManager.RemoteBranchExists(executionContext, repository.Path, metadata.CurrentBranch)
	if lookupError != nil {
		return OutcomeFailed, lookupError
	}
	if branchExists {
		block.Success(fmt.Sprintf(branchExistsMessageTemplateConstant, remoteName, metadata.CurrentBranch))
		return "", nil
	}
	if workflow.options.DryRun {
		block.Info(fmt.Sprintf(dryRunPushMessageTemplateConstant, metadata.CurrentBranch, remoteName))
		return "", nil
	}

	confirmation, promptError := workflow.prompter.Confirm(fmt.Sprintf(pushPromptTemplateConstant, ui.QuestionSymbol, metadata.CurrentBranch, repository.Name, remoteName))
	if promptError != nil {
		block.Failure(fmt.Sprintf(promptFailedMessageTemplateConstant, repository.Name, promptError))
		return OutcomeSkippedPromptFailed, nil
	}
	if !confirmation.Confirmed {
		block.Skip(fmt.Sprintf(pushDeclinedMessageTemplateConstant, repository.Path))
		return OutcomeSkippedPushDeclined, nil
	}

	pushResult, pushError := workflow.repositoryManager.PushBranch(executionContext, repository.Path, metadata.CurrentBranch)
	if pushError != nil {
		return OutcomeFailed, pushError
	}
	if pushResult.ExitCode != 0 {
		trimmedStandardError := strings.TrimSpace(pushResult.StandardError)
		if len(trimmedStandardError) == 0 {
			block.Failure(fmt.Sprintf(pushFailedWithoutOutputTemplateConstant, metadata.CurrentBranch, pushResult.ExitCode))
		} else {
			block.Failure(fmt.Sprintf(pushFailedMessageTemplateConstant, metadata.CurrentBranch, trimmedStandardError))
		}
		return OutcomeFailedPush, nil
	}
	block.Success(fmt.Sprintf(branchPushedMessageTemplateConstant, metadata.CurrentBranch))
	return "", nil
}
