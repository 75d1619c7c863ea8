package organization

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/temirov/gmux/internal/fanout"
	"github.com/temirov/gmux/internal/githubcli"
	"github.com/temirov/gmux/internal/repos/shared"
	"github.com/temirov/gmux/internal/ui"
)

const (
	gitMetadataDirectoryNameConstant = ".git"
	listHeaderTemplateConstant       = "Found %d repositories for %s"
	listEntryTemplateConstant        = "  %s"
	privateEntryTemplateConstant     = "  %s (private)"
	cloningMessageTemplateConstant   = "Cloning %s/%s"
	clonedMessageTemplateConstant    = "Cloned %s"
	cloneFailedTemplateConstant      = "Failed to clone %s: %v"
	alreadyClonedTemplateConstant    = "Skipping %s: already cloned"
	invalidNameTemplateConstant      = "Skipping %q: %v"
	cloneSummaryTemplateConstant     = "%d cloned, %d skipped, %d failed"
	noMatchesTemplateConstant        = "No repositories of %s match %q"
	clientMissingMessageConstant     = "organization service requires a GitHub client"
	lineTemplateConstant             = "%s\n"
)

// ErrClientNotConfigured indicates the service was constructed without a GitHub client.
var ErrClientNotConfigured = errors.New(clientMissingMessageConstant)

// RepositoryClient lists and clones GitHub repositories.
type RepositoryClient interface {
	ListRepositories(executionContext context.Context, owner string, options githubcli.ListOptions) ([]githubcli.Repository, error)
	CloneRepository(executionContext context.Context, owner string, name string, directory string) error
}

// CloneSummary counts the outcome of a clone batch.
type CloneSummary struct {
	Cloned  int
	Skipped int
	Failed  int
}

// Service implements the organization listing and cloning workflows.
type Service struct {
	client     RepositoryClient
	fileSystem shared.FileSystem
	reporter   shared.Reporter
}

// NewService constructs a service writing progress to output.
func NewService(client RepositoryClient, fileSystem shared.FileSystem, output io.Writer) (*Service, error) {
	if client == nil {
		return nil, ErrClientNotConfigured
	}
	if output == nil {
		output = io.Discard
	}
	return &Service{client: client, fileSystem: fileSystem, reporter: shared.NewWriterReporter(output)}, nil
}

// List prints the repositories of owner, marking private ones.
func (service *Service) List(executionContext context.Context, owner shared.OwnerSlug, options githubcli.ListOptions) ([]githubcli.Repository, error) {
	repositories, listError := service.client.ListRepositories(executionContext, owner.String(), options)
	if listError != nil {
		return nil, listError
	}

	service.writeLine(ui.EmphasisStyle.Render(fmt.Sprintf(listHeaderTemplateConstant, len(repositories), owner.String())))
	for _, repository := range repositories {
		if repository.Private {
			service.reporter.Printf(privateEntryTemplateConstant+"\n", repository.Name)
			continue
		}
		service.reporter.Printf(listEntryTemplateConstant+"\n", repository.Name)
	}
	return repositories, nil
}

// Clone shallow-clones every repository of owner whose name matches filter into directory, one at a time.
// Repositories already present are skipped and failed clones are counted without stopping the batch.
func (service *Service) Clone(executionContext context.Context, owner shared.OwnerSlug, filter fanout.FilterPattern, directory string, options githubcli.ListOptions) (CloneSummary, error) {
	repositories, listError := service.client.ListRepositories(executionContext, owner.String(), options)
	if listError != nil {
		return CloneSummary{}, listError
	}

	summary := CloneSummary{}
	matched := 0
	for _, repository := range repositories {
		if !filter.Matches(repository.Name) {
			continue
		}
		matched++

		repositoryName, nameError := shared.NewRepositoryName(repository.Name)
		if nameError != nil {
			summary.Failed++
			service.writeLine(ui.ErrorStyle.Render(fmt.Sprintf("%s "+invalidNameTemplateConstant, ui.FailureSymbol, repository.Name, nameError)))
			continue
		}

		targetPath := filepath.Join(directory, repositoryName.String())
		if service.isCloned(targetPath) {
			summary.Skipped++
			service.writeLine(fmt.Sprintf("%s %s", ui.SkipSymbol, ui.MutedStyle.Render(fmt.Sprintf(alreadyClonedTemplateConstant, repositoryName.String()))))
			continue
		}

		service.writeLine(fmt.Sprintf("%s %s", ui.RepositorySymbol, fmt.Sprintf(cloningMessageTemplateConstant, owner.String(), repositoryName.String())))
		if cloneError := service.client.CloneRepository(executionContext, owner.String(), repositoryName.String(), directory); cloneError != nil {
			summary.Failed++
			service.writeLine(ui.ErrorStyle.Render(fmt.Sprintf("%s "+cloneFailedTemplateConstant, ui.FailureSymbol, repositoryName.String(), cloneError)))
			continue
		}
		summary.Cloned++
		service.writeLine(ui.SuccessStyle.Render(fmt.Sprintf("%s "+clonedMessageTemplateConstant, ui.SuccessSymbol, repositoryName.String())))
	}

	if matched == 0 {
		service.writeLine(ui.MutedStyle.Render(fmt.Sprintf(noMatchesTemplateConstant, owner.String(), filter.String())))
	}
	service.writeLine(ui.MutedStyle.Render(fmt.Sprintf(cloneSummaryTemplateConstant, summary.Cloned, summary.Skipped, summary.Failed)))
	return summary, nil
}

func (service *Service) isCloned(targetPath string) bool {
	if service.fileSystem == nil {
		return false
	}
	_, statError := service.fileSystem.Stat(filepath.Join(targetPath, gitMetadataDirectoryNameConstant))
	return statError == nil
}

func (service *Service) writeLine(line string) {
	service.reporter.Printf(lineTemplateConstant, line)
}
