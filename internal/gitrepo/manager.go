package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/temirov/gmux/internal/execshell"
)

const (
	gitMetadataEntryNameConstant        = ".git"
	gitRevParseSubcommandConstant       = "rev-parse"
	gitAbbrevRefFlagConstant            = "--abbrev-ref"
	gitHeadReferenceConstant            = "HEAD"
	gitSymbolicRefSubcommandConstant    = "symbolic-ref"
	remoteHeadReferenceTemplateConstant = "refs/remotes/%s/HEAD"
	remoteBranchPrefixTemplateConstant  = "refs/remotes/%s/"
	gitDiffSubcommandConstant           = "diff"
	gitNameOnlyFlagConstant             = "--name-only"
	gitLSRemoteSubcommandConstant       = "ls-remote"
	gitHeadsFlagConstant                = "--heads"
	gitPushSubcommandConstant           = "push"
	gitSetUpstreamFlagConstant          = "-u"
	gitRemoteSubcommandConstant         = "remote"
	gitGetURLSubcommandConstant         = "get-url"
	gitStatusSubcommandConstant         = "status"
	gitShortFlagConstant                = "-s"
	lineSeparatorConstant               = "\n"
	carriageReturnConstant              = "\r"
	// DefaultRemoteName is the remote consulted for default branches, pushes and URLs.
	DefaultRemoteName = "origin"
)

const executorNotConfiguredMessageConstant = "git executor not configured"

// ErrGitExecutorNotConfigured indicates NewRepositoryManager received a nil executor.
var ErrGitExecutorNotConfigured = errors.New(executorNotConfiguredMessageConstant)

// GitCommandExecutor runs git and reports non-zero exit codes as data.
type GitCommandExecutor interface {
	CaptureGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// RepositoryMetadata holds the branches resolved for one repository.
type RepositoryMetadata struct {
	CurrentBranch string
	DefaultBranch string
}

// RepositoryManager answers questions about a working copy by invoking git.
// Every answer is resolved fresh; nothing is cached between calls.
type RepositoryManager struct {
	executor   GitCommandExecutor
	remoteName string
}

// NewRepositoryManager constructs a manager that consults the origin remote.
func NewRepositoryManager(executor GitCommandExecutor) (*RepositoryManager, error) {
	return NewRepositoryManagerForRemote(executor, DefaultRemoteName)
}

// NewRepositoryManagerForRemote constructs a manager that consults the named remote.
func NewRepositoryManagerForRemote(executor GitCommandExecutor, remoteName string) (*RepositoryManager, error) {
	if executor == nil {
		return nil, ErrGitExecutorNotConfigured
	}
	trimmedRemoteName := strings.TrimSpace(remoteName)
	if len(trimmedRemoteName) == 0 {
		trimmedRemoteName = DefaultRemoteName
	}
	return &RepositoryManager{executor: executor, remoteName: trimmedRemoteName}, nil
}

// RemoteName reports the remote this manager consults.
func (manager *RepositoryManager) RemoteName() string {
	return manager.remoteName
}

// IsRepository reports whether the directory carries a .git entry (directory or worktree file).
func (manager *RepositoryManager) IsRepository(repositoryPath string) bool {
	_, statError := os.Stat(filepath.Join(repositoryPath, gitMetadataEntryNameConstant))
	return statError == nil
}

// ResolveMetadata returns the current and default branch of the repository. The boolean is false
// when the directory is not a repository or its current branch cannot be determined. When the
// remote does not advertise a default branch, the current branch is used as the default.
func (manager *RepositoryManager) ResolveMetadata(executionContext context.Context, repositoryPath string) (RepositoryMetadata, bool, error) {
	if !manager.IsRepository(repositoryPath) {
		return RepositoryMetadata{}, false, nil
	}

	currentBranch, currentBranchResolved, currentBranchError := manager.CurrentBranch(executionContext, repositoryPath)
	if currentBranchError != nil {
		return RepositoryMetadata{}, false, currentBranchError
	}
	if !currentBranchResolved {
		return RepositoryMetadata{}, false, nil
	}

	defaultBranch, defaultBranchError := manager.DefaultBranch(executionContext, repositoryPath, currentBranch)
	if defaultBranchError != nil {
		return RepositoryMetadata{}, false, defaultBranchError
	}

	return RepositoryMetadata{CurrentBranch: currentBranch, DefaultBranch: defaultBranch}, true, nil
}

// CurrentBranch returns the checked-out branch name (HEAD when detached).
func (manager *RepositoryManager) CurrentBranch(executionContext context.Context, repositoryPath string) (string, bool, error) {
	executionResult, executionError := manager.executor.CaptureGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitRevParseSubcommandConstant, gitAbbrevRefFlagConstant, gitHeadReferenceConstant},
		WorkingDirectory: repositoryPath,
	})
	if executionError != nil {
		return "", false, executionError
	}
	if executionResult.ExitCode != 0 {
		return "", false, nil
	}
	currentBranch := strings.TrimSpace(executionResult.StandardOutput)
	if len(currentBranch) == 0 {
		return "", false, nil
	}
	return currentBranch, true, nil
}

// DefaultBranch resolves the remote's HEAD reference and falls back to fallbackBranch
// when the reference is missing.
func (manager *RepositoryManager) DefaultBranch(executionContext context.Context, repositoryPath string, fallbackBranch string) (string, error) {
	executionResult, executionError := manager.executor.CaptureGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitSymbolicRefSubcommandConstant, manager.remoteReference(remoteHeadReferenceTemplateConstant)},
		WorkingDirectory: repositoryPath,
	})
	if executionError != nil {
		return "", executionError
	}
	if executionResult.ExitCode != 0 {
		return fallbackBranch, nil
	}

	defaultBranch := strings.TrimPrefix(strings.TrimSpace(executionResult.StandardOutput), manager.remoteReference(remoteBranchPrefixTemplateConstant))
	if len(defaultBranch) == 0 {
		return fallbackBranch, nil
	}
	return defaultBranch, nil
}

// DiffFileNames lists paths that differ between the working tree and baseReference, in git's order.
// A failing diff yields an empty list.
func (manager *RepositoryManager) DiffFileNames(executionContext context.Context, repositoryPath string, baseReference string) ([]string, error) {
	executionResult, executionError := manager.executor.CaptureGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitDiffSubcommandConstant, gitNameOnlyFlagConstant, baseReference},
		WorkingDirectory: repositoryPath,
	})
	if executionError != nil {
		return nil, executionError
	}
	if executionResult.ExitCode != 0 {
		return []string{}, nil
	}
	return nonEmptyLines(executionResult.StandardOutput), nil
}

// RemoteBranchExists reports whether the remote advertises branchName. An unreachable remote
// counts as the branch being absent.
func (manager *RepositoryManager) RemoteBranchExists(executionContext context.Context, repositoryPath string, branchName string) (bool, error) {
	executionResult, executionError := manager.executor.CaptureGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitLSRemoteSubcommandConstant, gitHeadsFlagConstant, manager.remoteName, branchName},
		WorkingDirectory: repositoryPath,
	})
	if executionError != nil {
		return false, executionError
	}
	if executionResult.ExitCode != 0 {
		return false, nil
	}
	return len(strings.TrimSpace(executionResult.StandardOutput)) > 0, nil
}

// PushBranch pushes branchName to the remote and records it as upstream. The caller inspects
// the exit code of the returned result.
func (manager *RepositoryManager) PushBranch(executionContext context.Context, repositoryPath string, branchName string) (execshell.ExecutionResult, error) {
	return manager.executor.CaptureGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitPushSubcommandConstant, gitSetUpstreamFlagConstant, manager.remoteName, branchName},
		WorkingDirectory: repositoryPath,
	})
}

// RemoteURL returns the fetch URL of the remote. The boolean is false when the remote is not configured.
func (manager *RepositoryManager) RemoteURL(executionContext context.Context, repositoryPath string) (string, bool, error) {
	executionResult, executionError := manager.executor.CaptureGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitRemoteSubcommandConstant, gitGetURLSubcommandConstant, manager.remoteName},
		WorkingDirectory: repositoryPath,
	})
	if executionError != nil {
		return "", false, executionError
	}
	remoteURL := strings.TrimSpace(executionResult.StandardOutput)
	if executionResult.ExitCode != 0 || len(remoteURL) == 0 {
		return "", false, nil
	}
	return remoteURL, true, nil
}

// HeadCommit returns the full hash of HEAD. The boolean is false for repositories without commits.
func (manager *RepositoryManager) HeadCommit(executionContext context.Context, repositoryPath string) (string, bool, error) {
	executionResult, executionError := manager.executor.CaptureGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitRevParseSubcommandConstant, gitHeadReferenceConstant},
		WorkingDirectory: repositoryPath,
	})
	if executionError != nil {
		return "", false, executionError
	}
	headCommit := strings.TrimSpace(executionResult.StandardOutput)
	if executionResult.ExitCode != 0 || len(headCommit) == 0 {
		return "", false, nil
	}
	return headCommit, true, nil
}

// ShortStatus returns the output of git status -s.
func (manager *RepositoryManager) ShortStatus(executionContext context.Context, repositoryPath string) (execshell.ExecutionResult, error) {
	return manager.executor.CaptureGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitStatusSubcommandConstant, gitShortFlagConstant},
		WorkingDirectory: repositoryPath,
	})
}

func (manager *RepositoryManager) remoteReference(template string) string {
	return fmt.Sprintf(template, manager.remoteName)
}

func nonEmptyLines(output string) []string {
	lines := make([]string, 0)
	for _, line := range strings.Split(output, lineSeparatorConstant) {
		trimmedLine := strings.TrimSuffix(line, carriageReturnConstant)
		if len(strings.TrimSpace(trimmedLine)) == 0 {
			continue
		}
		lines = append(lines, trimmedLine)
	}
	return lines
}
