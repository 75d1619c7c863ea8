package multiexec

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync/atomic"

	"github.com/temirov/gmux/internal/execshell"
	"github.com/temirov/gmux/internal/fanout"
	"github.com/temirov/gmux/internal/repos/shared"
	"github.com/temirov/gmux/internal/ui"
	"github.com/temirov/gmux/internal/utils"
)

const (
	defaultBranchPlaceholderConstant        = "@default"
	currentBranchPlaceholderConstant        = "@current"
	gitCommandPrefixConstant                = "git "
	argumentSeparatorConstant               = " "
	headCommitDisplayLengthConstant         = 6
	branchDetailTemplateConstant            = "%s → %s"
	missingCommitPlaceholderConstant        = "(no commits)"
	cleanWorkingTreeMessageConstant         = "Working tree clean"
	commandExecutorMissingMessageConstant   = "multiexec service requires a command executor"
	repositoryManagerMissingMessageConstant = "multiexec service requires a repository manager"
	orchestratorMissingMessageConstant      = "multiexec service requires an orchestrator"
)

var (
	// ErrCommandExecutorNotConfigured indicates the service was constructed without an executor.
	ErrCommandExecutorNotConfigured = errors.New(commandExecutorMissingMessageConstant)
	// ErrRepositoryManagerNotConfigured indicates the service was constructed without a repository manager.
	ErrRepositoryManagerNotConfigured = errors.New(repositoryManagerMissingMessageConstant)
	// ErrOrchestratorNotConfigured indicates the service was constructed without an orchestrator.
	ErrOrchestratorNotConfigured = errors.New(orchestratorMissingMessageConstant)
)

// Summary counts the repositories whose command succeeded or failed. Repositories skipped because they
// are not version-controlled are counted in neither.
type Summary struct {
	Succeeded int
	Failed    int
}

// Dependencies are the collaborators of the service.
type Dependencies struct {
	Orchestrator      *fanout.Orchestrator
	CommandExecutor   shared.CommandExecutor
	RepositoryManager shared.GitRepositoryManager
	Clock             shared.Clock
	Output            io.Writer
}

// Service runs one command across every matching repository and renders one block per repository.
type Service struct {
	orchestrator      *fanout.Orchestrator
	commandExecutor   shared.CommandExecutor
	repositoryManager shared.GitRepositoryManager
	clock             shared.Clock
	output            io.Writer
}

// NewService validates dependencies and constructs a service.
func NewService(dependencies Dependencies) (*Service, error) {
	if dependencies.Orchestrator == nil {
		return nil, ErrOrchestratorNotConfigured
	}
	if dependencies.CommandExecutor == nil {
		return nil, ErrCommandExecutorNotConfigured
	}
	if dependencies.RepositoryManager == nil {
		return nil, ErrRepositoryManagerNotConfigured
	}
	clock := dependencies.Clock
	if clock == nil {
		clock = shared.SystemClock{}
	}
	output := dependencies.Output
	if output == nil {
		output = io.Discard
	}
	output = utils.NewFlushingWriter(output)
	return &Service{
		orchestrator:      dependencies.Orchestrator,
		commandExecutor:   dependencies.CommandExecutor,
		repositoryManager: dependencies.RepositoryManager,
		clock:             clock,
		output:            output,
	}, nil
}

// reportInspectionFailure counts a repository whose branches or head could not be read as failed.
func (service *Service) reportInspectionFailure(repository fanout.RepositoryHandle, counter *summaryCounter, failure error) error {
	block := ui.NewRepositoryBlock()
	defer service.flush(block)

	counter.recordFailure()
	block.Separator()
	block.Header(repository.Name, repository.Path)
	block.Failure(failure.Error())
	return failure
}

// RunShell interprets commandLine with sh in every matching directory, version-controlled or not.
func (service *Service) RunShell(executionContext context.Context, rootDirectory string, rawFilter string, commandLine string) (Summary, error) {
	counter := &summaryCounter{}
	runError := service.orchestrator.ForEach(executionContext, rootDirectory, rawFilter, func(taskContext context.Context, repository fanout.RepositoryHandle) error {
		block := ui.NewRepositoryBlock()
		defer service.flush(block)

		block.Separator()
		block.Header(repository.Name, repository.Path)
		block.Command(commandLine)

		startedAt := service.clock.Now()
		result, executionError := service.commandExecutor.CaptureShell(taskContext, execshell.ShellLineDetails(commandLine, repository.Path))
		if executionError != nil {
			counter.recordFailure()
			block.Failure(executionError.Error())
			return executionError
		}
		block.CommandResult(result, service.clock.Now().Sub(startedAt))
		counter.record(result)
		return nil
	})
	return counter.summary(), runError
}

// RunGit runs git with arguments in every matching repository whose branches can be resolved. The
// placeholders @default and @current inside each argument are replaced with the repository's default and
// current branch.
func (service *Service) RunGit(executionContext context.Context, rootDirectory string, rawFilter string, arguments []string) (Summary, error) {
	counter := &summaryCounter{}
	runError := service.orchestrator.ForEach(executionContext, rootDirectory, rawFilter, func(taskContext context.Context, repository fanout.RepositoryHandle) error {
		metadata, metadataResolved, metadataError := service.repositoryManager.ResolveMetadata(taskContext, repository.Path)
		if metadataError != nil {
			return service.reportInspectionFailure(repository, counter, metadataError)
		}
		if !metadataResolved {
			return nil
		}

		block := ui.NewRepositoryBlock()
		defer service.flush(block)

		expandedArguments := ExpandBranchPlaceholders(arguments, metadata.DefaultBranch, metadata.CurrentBranch)
		block.Separator()
		block.Header(repository.Name, metadata.CurrentBranch)
		block.Command(gitCommandPrefixConstant + strings.Join(expandedArguments, argumentSeparatorConstant))

		startedAt := service.clock.Now()
		result, executionError := service.commandExecutor.CaptureGit(taskContext, execshell.CommandDetails{
			Arguments:        expandedArguments,
			WorkingDirectory: repository.Path,
		})
		if executionError != nil {
			counter.recordFailure()
			block.Failure(executionError.Error())
			return executionError
		}
		block.CommandResult(result, service.clock.Now().Sub(startedAt))
		counter.record(result)
		return nil
	})
	return counter.summary(), runError
}

// Status reports the current branch, abbreviated head commit, and short status of every matching repository.
func (service *Service) Status(executionContext context.Context, rootDirectory string, rawFilter string) (Summary, error) {
	counter := &summaryCounter{}
	runError := service.orchestrator.ForEach(executionContext, rootDirectory, rawFilter, func(taskContext context.Context, repository fanout.RepositoryHandle) error {
		metadata, metadataResolved, metadataError := service.repositoryManager.ResolveMetadata(taskContext, repository.Path)
		if metadataError != nil {
			return service.reportInspectionFailure(repository, counter, metadataError)
		}
		if !metadataResolved {
			return nil
		}

		headCommit, headResolved, headError := service.repositoryManager.HeadCommit(taskContext, repository.Path)
		if headError != nil {
			return service.reportInspectionFailure(repository, counter, headError)
		}
		commitLabel := missingCommitPlaceholderConstant
		if headResolved {
			commitLabel = abbreviateCommit(headCommit)
		}

		block := ui.NewRepositoryBlock()
		defer service.flush(block)

		block.Separator()
		block.Header(repository.Name, metadata.CurrentBranch+argumentSeparatorConstant+commitLabel)

		statusResult, statusError := service.repositoryManager.ShortStatus(taskContext, repository.Path)
		if statusError != nil {
			counter.recordFailure()
			block.Failure(statusError.Error())
			return statusError
		}
		if statusResult.ExitCode == 0 && len(strings.TrimSpace(statusResult.StandardOutput)) == 0 {
			block.Success(cleanWorkingTreeMessageConstant)
		} else {
			block.Output(statusResult.StandardOutput)
			block.ErrorOutput(statusResult.StandardError)
		}
		counter.record(statusResult)
		return nil
	})
	return counter.summary(), runError
}

// ExpandBranchPlaceholders returns a copy of arguments with @default and @current replaced.
func ExpandBranchPlaceholders(arguments []string, defaultBranch string, currentBranch string) []string {
	replacer := strings.NewReplacer(defaultBranchPlaceholderConstant, defaultBranch, currentBranchPlaceholderConstant, currentBranch)
	expanded := make([]string, len(arguments))
	for argumentIndex, argument := range arguments {
		expanded[argumentIndex] = replacer.Replace(argument)
	}
	return expanded
}

func abbreviateCommit(commit string) string {
	trimmed := strings.TrimSpace(commit)
	if len(trimmed) <= headCommitDisplayLengthConstant {
		return trimmed
	}
	return trimmed[:headCommitDisplayLengthConstant]
}

func (service *Service) flush(block *ui.RepositoryBlock) {
	_, _ = block.WriteTo(service.output)
}

type summaryCounter struct {
	succeeded atomic.Int64
	failed    atomic.Int64
}

func (counter *summaryCounter) record(result execshell.ExecutionResult) {
	if result.ExitCode == 0 {
		counter.succeeded.Add(1)
		return
	}
	counter.failed.Add(1)
}

func (counter *summaryCounter) recordFailure() {
	counter.failed.Add(1)
}

func (counter *summaryCounter) summary() Summary {
	return Summary{Succeeded: int(counter.succeeded.Load()), Failed: int(counter.failed.Load())}
}
