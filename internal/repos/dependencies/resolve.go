package dependencies

import (
	"io"

	"go.uber.org/zap"

	"github.com/temirov/gmux/internal/execshell"
	"github.com/temirov/gmux/internal/fanout"
	"github.com/temirov/gmux/internal/gitrepo"
	"github.com/temirov/gmux/internal/repos/discovery"
	"github.com/temirov/gmux/internal/repos/filesystem"
	"github.com/temirov/gmux/internal/repos/prompt"
	"github.com/temirov/gmux/internal/repos/shared"
	"github.com/temirov/gmux/internal/ui"
)

// ResolveDirectoryDiscoverer returns the provided discoverer or a filesystem-backed default.
func ResolveDirectoryDiscoverer(existing shared.DirectoryDiscoverer) shared.DirectoryDiscoverer {
	if existing != nil {
		return existing
	}
	return discovery.NewDirectoryDiscoverer()
}

// ResolveOrchestrator constructs a fan-out orchestrator over the resolved discoverer.
func ResolveOrchestrator(existing shared.DirectoryDiscoverer, logger *zap.Logger) *fanout.Orchestrator {
	return fanout.NewOrchestrator(ResolveDirectoryDiscoverer(existing), logger)
}

// ResolveFileSystem returns the provided filesystem or an OS-backed default.
func ResolveFileSystem(existing shared.FileSystem) shared.FileSystem {
	if existing != nil {
		return existing
	}
	return filesystem.OSFileSystem{}
}

// ResolveClock returns the provided clock or the system clock.
func ResolveClock(existing shared.Clock) shared.Clock {
	if existing != nil {
		return existing
	}
	return shared.SystemClock{}
}

// ResolveCommandExecutor returns the provided executor or constructs a shell-backed default. When
// human-readable logging is enabled, command lifecycle events are rendered as console messages.
func ResolveCommandExecutor(existing shared.CommandExecutor, logger *zap.Logger, humanReadableLogging bool) (shared.CommandExecutor, error) {
	if existing != nil {
		return existing, nil
	}

	var eventObserver execshell.CommandEventObserver
	if humanReadableLogging {
		eventObserver = ui.NewConsoleCommandEventLogger(logger)
	}

	shellExecutor, creationError := execshell.NewShellExecutorWithObserver(logger, execshell.NewOSCommandRunner(), eventObserver)
	if creationError != nil {
		return nil, creationError
	}
	return shellExecutor, nil
}

// ResolveRepositoryManager returns the provided repository manager or constructs one for the named remote.
func ResolveRepositoryManager(existing shared.GitRepositoryManager, executor shared.CommandExecutor, remoteName string) (shared.GitRepositoryManager, error) {
	if existing != nil {
		return existing, nil
	}
	return gitrepo.NewRepositoryManagerForRemote(executor, remoteName)
}

// ResolvePrompters returns a serialized confirmation prompter and a line reader. Missing collaborators
// share one reader over input so answers are consumed in order.
func ResolvePrompters(existingPrompter shared.ConfirmationPrompter, existingReader shared.LineReader, input io.Reader, output io.Writer, policy shared.ConfirmationPolicy) (*prompt.SerializedConfirmationPrompter, shared.LineReader) {
	var terminalPrompter *prompt.IOConfirmationPrompter
	if existingPrompter == nil || existingReader == nil {
		terminalPrompter = prompt.NewIOConfirmationPrompter(input, output)
	}
	if existingPrompter == nil {
		existingPrompter = terminalPrompter
	}
	if existingReader == nil {
		existingReader = prompt.NewSerializedLineReader(terminalPrompter)
	}
	return prompt.NewSerializedConfirmationPrompter(existingPrompter, policy.ShouldAssumeYes()), existingReader
}
