package fanout

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/temirov/gmux/internal/repos/discovery"
	"github.com/temirov/gmux/internal/repos/shared"
)

const (
	discoveryErrorTemplateConstant           = "unable to list directories in %s: %w"
	repositoryOperationErrorTemplateConstant = "%s: %v"
	repositoriesSelectedMessageConstant      = "Repositories selected"
	logFieldRootDirectoryConstant            = "root_directory"
	logFieldFilterConstant                   = "filter"
	logFieldDiscoveredCountConstant          = "discovered"
	logFieldSelectedCountConstant            = "selected"
)

// ErrDiscovererNotConfigured indicates the orchestrator was constructed without a discoverer.
var ErrDiscovererNotConfigured = errors.New("directory discoverer not configured")

// RepositoryHandle identifies one directory processed by an operation.
type RepositoryHandle struct {
	Path string
	Name string
}

// Operation is invoked once per selected repository, concurrently with the other selected repositories.
type Operation func(executionContext context.Context, repository RepositoryHandle) error

// RepositoryOperationError reports the operation failure surfaced for a batch.
type RepositoryOperationError struct {
	Repository RepositoryHandle
	Cause      error
}

// Error describes the failing repository.
func (operationError RepositoryOperationError) Error() string {
	return fmt.Sprintf(repositoryOperationErrorTemplateConstant, operationError.Repository.Name, operationError.Cause)
}

// Unwrap exposes the operation error.
func (operationError RepositoryOperationError) Unwrap() error {
	return operationError.Cause
}

// Orchestrator runs an operation across the immediate subdirectories of a root directory.
type Orchestrator struct {
	discoverer shared.DirectoryDiscoverer
	logger     *zap.Logger
}

// NewOrchestrator constructs an orchestrator. A nil discoverer selects the filesystem discoverer and a
// nil logger disables logging.
func NewOrchestrator(discoverer shared.DirectoryDiscoverer, logger *zap.Logger) *Orchestrator {
	if discoverer == nil {
		discoverer = discovery.NewDirectoryDiscoverer()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{discoverer: discoverer, logger: logger}
}

// SelectRepositories compiles the filter and returns the matching immediate subdirectories of root.
func (orchestrator *Orchestrator) SelectRepositories(rootDirectory string, rawFilter string) ([]RepositoryHandle, error) {
	if orchestrator.discoverer == nil {
		return nil, ErrDiscovererNotConfigured
	}

	filterPattern, compileError := CompileFilterPattern(rawFilter)
	if compileError != nil {
		return nil, compileError
	}

	directories, discoveryError := orchestrator.discoverer.DiscoverDirectories(rootDirectory)
	if discoveryError != nil {
		return nil, fmt.Errorf(discoveryErrorTemplateConstant, rootDirectory, discoveryError)
	}

	repositories := make([]RepositoryHandle, 0, len(directories))
	for _, directory := range directories {
		baseName := filepath.Base(directory)
		if !filterPattern.Matches(baseName) {
			continue
		}
		repositories = append(repositories, RepositoryHandle{Path: directory, Name: baseName})
	}

	selectionFields := []zap.Field{
		zap.String(logFieldRootDirectoryConstant, rootDirectory),
		zap.Int(logFieldDiscoveredCountConstant, len(directories)),
		zap.Int(logFieldSelectedCountConstant, len(repositories)),
	}
	if !filterPattern.IsEmpty() {
		selectionFields = append(selectionFields, zap.String(logFieldFilterConstant, filterPattern.String()))
	}
	orchestrator.logger.Debug(repositoriesSelectedMessageConstant, selectionFields...)
	return repositories, nil
}

// ForEach runs the operation for every selected repository concurrently. Every launched operation runs
// to completion; the first failure observed is returned as a RepositoryOperationError once all of them
// have finished. A filter that does not compile fails before any directory is read.
func (orchestrator *Orchestrator) ForEach(executionContext context.Context, rootDirectory string, rawFilter string, operation Operation) error {
	repositories, selectionError := orchestrator.SelectRepositories(rootDirectory, rawFilter)
	if selectionError != nil {
		return selectionError
	}
	return RunConcurrently(executionContext, repositories, operation)
}

// RunConcurrently launches one goroutine per repository and waits for all of them.
func RunConcurrently(executionContext context.Context, repositories []RepositoryHandle, operation Operation) error {
	var taskGroup errgroup.Group
	for _, repository := range repositories {
		repository := repository
		taskGroup.Go(func() error {
			if operationError := operation(executionContext, repository); operationError != nil {
				return RepositoryOperationError{Repository: repository, Cause: operationError}
			}
			return nil
		})
	}
	return taskGroup.Wait()
}
