package shared

import (
	"context"
	"io/fs"
	"time"

	"github.com/temirov/gmux/internal/execshell"
	"github.com/temirov/gmux/internal/gitrepo"
)

// Clock abstracts time acquisition for deterministic testing.
type Clock interface {
	Now() time.Time
}

// SystemClock implements Clock using the system time source.
type SystemClock struct{}

// Now returns the current system time.
func (SystemClock) Now() time.Time {
	return time.Now()
}

// FileSystem exposes the filesystem operations used by the commands.
type FileSystem interface {
	Stat(path string) (fs.FileInfo, error)
	MkdirAll(path string, permissions fs.FileMode) error
	ReadFile(path string) ([]byte, error)
	WriteFile(path string, data []byte, permissions fs.FileMode) error
}

// ConfirmationResult captures the outcome of a user confirmation prompt.
type ConfirmationResult struct {
	Confirmed  bool
	ApplyToAll bool
}

// ConfirmationPrompter collects a yes/no decision from the operator.
type ConfirmationPrompter interface {
	Confirm(prompt string) (ConfirmationResult, error)
}

// LineReader collects a single free-text answer from the operator.
type LineReader interface {
	ReadLine(prompt string) (string, error)
}

// DirectoryDiscoverer enumerates candidate repository directories under a root.
type DirectoryDiscoverer interface {
	DiscoverDirectories(root string) ([]string, error)
}

// CommandExecutor runs git, GitHub CLI and shell commands.
type CommandExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
	CaptureGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
	ExecuteGitHubCLI(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
	CaptureShell(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// GitRepositoryManager exposes the repository queries and mutations used by the multi-repository commands.
type GitRepositoryManager interface {
	RemoteName() string
	IsRepository(repositoryPath string) bool
	ResolveMetadata(executionContext context.Context, repositoryPath string) (gitrepo.RepositoryMetadata, bool, error)
	DiffFileNames(executionContext context.Context, repositoryPath string, baseReference string) ([]string, error)
	RemoteBranchExists(executionContext context.Context, repositoryPath string, branchName string) (bool, error)
	PushBranch(executionContext context.Context, repositoryPath string, branchName string) (execshell.ExecutionResult, error)
	RemoteURL(executionContext context.Context, repositoryPath string) (string, bool, error)
	HeadCommit(executionContext context.Context, repositoryPath string) (string, bool, error)
	ShortStatus(executionContext context.Context, repositoryPath string) (execshell.ExecutionResult, error)
}
