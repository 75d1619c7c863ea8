package pullrequest_test

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/gmux/internal/execshell"
	"github.com/temirov/gmux/internal/fanout"
	"github.com/temirov/gmux/internal/gitrepo"
	"github.com/temirov/gmux/internal/pullrequest"
	"github.com/temirov/gmux/internal/repos/shared"
	"github.com/temirov/gmux/internal/ui"
)

const (
	testRepositoryPathConstant = "/work/widgets"
	testRepositoryNameConstant = "widgets"
	testRemoteURLConstant      = "https://github.com/acme/widgets.git"
	testTitleConstant          = "Fix bug"
)

type stubRepositoryManager struct {
	mutex sync.Mutex

	notRepository     bool
	metadata          gitrepo.RepositoryMetadata
	metadataAbsent    bool
	metadataError     error
	diffFiles         []string
	branchExists      bool
	pushResult        execshell.ExecutionResult
	pushError         error
	remoteURL         string
	remoteAbsent      bool
	pushedBranches    []string
	diffBaseReference string
}

func newStubRepositoryManager() *stubRepositoryManager {
	return &stubRepositoryManager{
		metadata:  gitrepo.RepositoryMetadata{CurrentBranch: "feature-x", DefaultBranch: "main"},
		diffFiles: []string{"a.txt", "b.txt"},
		remoteURL: testRemoteURLConstant,
	}
}

func (manager *stubRepositoryManager) RemoteName() string {
	return gitrepo.DefaultRemoteName
}

func (manager *stubRepositoryManager) IsRepository(string) bool {
	return !manager.notRepository
}

func (manager *stubRepositoryManager) ResolveMetadata(context.Context, string) (gitrepo.RepositoryMetadata, bool, error) {
	if manager.metadataError != nil {
		return gitrepo.RepositoryMetadata{}, false, manager.metadataError
	}
	if manager.metadataAbsent {
		return gitrepo.RepositoryMetadata{}, false, nil
	}
	return manager.metadata, true, nil
}

func (manager *stubRepositoryManager) DiffFileNames(_ context.Context, _ string, baseReference string) ([]string, error) {
	manager.diffBaseReference = baseReference
	return manager.diffFiles, nil
}

func (manager *stubRepositoryManager) RemoteBranchExists(context.Context, string, string) (bool, error) {
	return manager.branchExists, nil
}

func (manager *stubRepositoryManager) PushBranch(_ context.Context, _ string, branchName string) (execshell.ExecutionResult, error) {
	manager.mutex.Lock()
	defer manager.mutex.Unlock()
	manager.pushedBranches = append(manager.pushedBranches, branchName)
	return manager.pushResult, manager.pushError
}

func (manager *stubRepositoryManager) RemoteURL(context.Context, string) (string, bool, error) {
	if manager.remoteAbsent {
		return "", false, nil
	}
	return manager.remoteURL, true, nil
}

func (manager *stubRepositoryManager) HeadCommit(context.Context, string) (string, bool, error) {
	return "", false, nil
}

func (manager *stubRepositoryManager) ShortStatus(context.Context, string) (execshell.ExecutionResult, error) {
	return execshell.ExecutionResult{}, nil
}

type scriptedPrompter struct {
	result  shared.ConfirmationResult
	err     error
	prompts []string
}

func (prompter *scriptedPrompter) Confirm(prompt string) (shared.ConfirmationResult, error) {
	prompter.prompts = append(prompter.prompts, prompt)
	return prompter.result, prompter.err
}

type recordingOpener struct {
	openedURLs []string
	err        error
}

func (opener *recordingOpener) Open(targetURL string) error {
	opener.openedURLs = append(opener.openedURLs, targetURL)
	return opener.err
}

func TestWorkflowOutcomes(testInstance *testing.T) {
	lipgloss.SetColorProfile(termenv.Ascii)

	testCases := []struct {
		name              string
		configure         func(manager *stubRepositoryManager, prompter *scriptedPrompter, opener *recordingOpener)
		dryRun            bool
		expectedOutcome   pullrequest.Outcome
		expectError       bool
		expectedPrompts   int
		expectedPushes    []string
		expectedOpened    int
		expectedBlockText string
	}{
		{
			name: "not_a_repository",
			configure: func(manager *stubRepositoryManager, _ *scriptedPrompter, _ *recordingOpener) {
				manager.notRepository = true
			},
			expectedOutcome:   pullrequest.OutcomeSkippedNotRepository,
			expectedBlockText: "Skipping non-git directory /work/widgets",
		},
		{
			name: "metadata_absent",
			configure: func(manager *stubRepositoryManager, _ *scriptedPrompter, _ *recordingOpener) {
				manager.metadataAbsent = true
			},
			expectedOutcome:   pullrequest.OutcomeSkippedNoMetadata,
			expectedBlockText: "current branch could not be determined",
		},
		{
			name: "metadata_spawn_failure_propagates",
			configure: func(manager *stubRepositoryManager, _ *scriptedPrompter, _ *recordingOpener) {
				manager.metadataError = execshell.CommandExecutionError{Command: execshell.ShellCommand{Name: execshell.CommandGit}, Cause: errors.New("git not found")}
			},
			expectedOutcome: pullrequest.OutcomeFailed,
			expectError:     true,
		},
		{
			name: "no_changes",
			configure: func(manager *stubRepositoryManager, _ *scriptedPrompter, _ *recordingOpener) {
				manager.diffFiles = []string{}
			},
			expectedOutcome:   pullrequest.OutcomeSkippedNoChanges,
			expectedBlockText: "No changes found against main in /work/widgets",
		},
		{
			name: "branch_on_remote_opens_browser",
			configure: func(manager *stubRepositoryManager, _ *scriptedPrompter, _ *recordingOpener) {
				manager.branchExists = true
			},
			expectedOutcome:   pullrequest.OutcomeOpened,
			expectedOpened:    1,
			expectedBlockText: "Branch already exists on origin: feature-x",
		},
		{
			name: "push_confirmed",
			configure: func(_ *stubRepositoryManager, prompter *scriptedPrompter, _ *recordingOpener) {
				prompter.result = shared.ConfirmationResult{Confirmed: true}
			},
			expectedOutcome:   pullrequest.OutcomeOpened,
			expectedPrompts:   1,
			expectedPushes:    []string{"feature-x"},
			expectedOpened:    1,
			expectedBlockText: "Branch pushed: feature-x",
		},
		{
			name:              "push_declined",
			configure:         func(*stubRepositoryManager, *scriptedPrompter, *recordingOpener) {},
			expectedOutcome:   pullrequest.OutcomeSkippedPushDeclined,
			expectedPrompts:   1,
			expectedBlockText: "Skipping pull request for /work/widgets",
		},
		{
			name: "push_failure_is_not_an_error",
			configure: func(manager *stubRepositoryManager, prompter *scriptedPrompter, _ *recordingOpener) {
				prompter.result = shared.ConfirmationResult{Confirmed: true}
				manager.pushResult = execshell.ExecutionResult{ExitCode: 1, StandardError: "remote: Permission denied\n"}
			},
			expectedOutcome:   pullrequest.OutcomeFailedPush,
			expectedPrompts:   1,
			expectedPushes:    []string{"feature-x"},
			expectedBlockText: "Failed to push branch feature-x: remote: Permission denied",
		},
		{
			name: "push_spawn_failure_propagates",
			configure: func(manager *stubRepositoryManager, prompter *scriptedPrompter, _ *recordingOpener) {
				prompter.result = shared.ConfirmationResult{Confirmed: true}
				manager.pushError = errors.New("git not found")
			},
			expectedOutcome: pullrequest.OutcomeFailed,
			expectError:     true,
			expectedPrompts: 1,
			expectedPushes:  []string{"feature-x"},
		},
		{
			name: "prompt_failure_skips",
			configure: func(_ *stubRepositoryManager, prompter *scriptedPrompter, _ *recordingOpener) {
				prompter.err = errors.New("stdin closed")
			},
			expectedOutcome:   pullrequest.OutcomeSkippedPromptFailed,
			expectedPrompts:   1,
			expectedBlockText: "Unable to read confirmation for widgets: stdin closed",
		},
		{
			name: "missing_remote",
			configure: func(manager *stubRepositoryManager, _ *scriptedPrompter, _ *recordingOpener) {
				manager.branchExists = true
				manager.remoteAbsent = true
			},
			expectedOutcome:   pullrequest.OutcomeSkippedNoRemote,
			expectedBlockText: "remote origin is not configured",
		},
		{
			name: "unparseable_remote",
			configure: func(manager *stubRepositoryManager, _ *scriptedPrompter, _ *recordingOpener) {
				manager.branchExists = true
				manager.remoteURL = "widgets"
			},
			expectedOutcome: pullrequest.OutcomeSkippedNoRemote,
		},
		{
			name: "browser_failure_is_tolerated",
			configure: func(manager *stubRepositoryManager, _ *scriptedPrompter, opener *recordingOpener) {
				manager.branchExists = true
				opener.err = errors.New("no display")
			},
			expectedOutcome: pullrequest.OutcomeOpened,
			expectedOpened:  1,
		},
		{
			name:              "dry_run_prints_url_without_pushing",
			configure:         func(*stubRepositoryManager, *scriptedPrompter, *recordingOpener) {},
			dryRun:            true,
			expectedOutcome:   pullrequest.OutcomeDryRun,
			expectedBlockText: "https://github.com/acme/widgets/compare/main...feature-x?expand=1&title=Fix%20bug&body=",
		},
	}

	for _, testCase := range testCases {
		testCase := testCase
		testInstance.Run(testCase.name, func(subTest *testing.T) {
			manager := newStubRepositoryManager()
			prompter := &scriptedPrompter{}
			opener := &recordingOpener{}
			testCase.configure(manager, prompter, opener)

			workflow, creationError := pullrequest.NewWorkflow(
				pullrequest.Dependencies{RepositoryManager: manager, Prompter: prompter, BrowserOpener: opener},
				pullrequest.Options{Title: testTitleConstant, Template: pullrequest.DefaultTemplate, DryRun: testCase.dryRun},
			)
			require.NoError(subTest, creationError)

			block := ui.NewRepositoryBlock()
			outcome, runError := workflow.Run(context.Background(), fanout.RepositoryHandle{Path: testRepositoryPathConstant, Name: testRepositoryNameConstant}, block)

			require.Equal(subTest, testCase.expectedOutcome, outcome)
			if testCase.expectError {
				require.Error(subTest, runError)
			} else {
				require.NoError(subTest, runError)
			}
			require.Len(subTest, prompter.prompts, testCase.expectedPrompts)
			require.Equal(subTest, testCase.expectedPushes, manager.pushedBranches)
			require.Len(subTest, opener.openedURLs, testCase.expectedOpened)
			require.Contains(subTest, block.String(), testCase.expectedBlockText)
		})
	}
}

func TestWorkflowOpensCompareURLWithRenderedBody(testInstance *testing.T) {
	manager := newStubRepositoryManager()
	manager.branchExists = true
	opener := &recordingOpener{}

	workflow, creationError := pullrequest.NewWorkflow(
		pullrequest.Dependencies{RepositoryManager: manager, Prompter: &scriptedPrompter{}, BrowserOpener: opener},
		pullrequest.Options{Title: testTitleConstant, Template: pullrequest.DefaultTemplate},
	)
	require.NoError(testInstance, creationError)

	_, runError := workflow.Run(context.Background(), fanout.RepositoryHandle{Path: testRepositoryPathConstant, Name: testRepositoryNameConstant}, ui.NewRepositoryBlock())
	require.NoError(testInstance, runError)
	require.Equal(testInstance, "main", manager.diffBaseReference)
	require.Len(testInstance, opener.openedURLs, 1)

	openedURL, parseError := url.Parse(opener.openedURLs[0])
	require.NoError(testInstance, parseError)
	require.Equal(testInstance, "/acme/widgets/compare/main...feature-x", openedURL.Path)
	require.Equal(testInstance, testTitleConstant, openedURL.Query().Get("title"))
	require.Equal(testInstance, "# Fix bug\n\n## Changes\n- a.txt\n- b.txt\n\n## Repository\nwidgets\n", openedURL.Query().Get("body"))
}

func TestWorkflowPromptNamesBranchAndRepository(testInstance *testing.T) {
	prompter := &scriptedPrompter{}
	workflow, creationError := pullrequest.NewWorkflow(
		pullrequest.Dependencies{RepositoryManager: newStubRepositoryManager(), Prompter: prompter, BrowserOpener: &recordingOpener{}},
		pullrequest.Options{Title: testTitleConstant, Template: pullrequest.DefaultTemplate},
	)
	require.NoError(testInstance, creationError)

	_, runError := workflow.Run(context.Background(), fanout.RepositoryHandle{Path: testRepositoryPathConstant, Name: testRepositoryNameConstant}, ui.NewRepositoryBlock())
	require.NoError(testInstance, runError)
	require.Len(testInstance, prompter.prompts, 1)
	require.True(testInstance, strings.Contains(prompter.prompts[0], "feature-x"))
	require.True(testInstance, strings.Contains(prompter.prompts[0], "widgets"))
	require.True(testInstance, strings.HasSuffix(prompter.prompts[0], "[a/N/y] "))
}

func TestWorkflowLogsBrowserFailureAtDebug(testInstance *testing.T) {
	observedCore, observedLogs := observer.New(zapcore.DebugLevel)
	manager := newStubRepositoryManager()
	manager.branchExists = true

	workflow, creationError := pullrequest.NewWorkflow(
		pullrequest.Dependencies{
			RepositoryManager: manager,
			Prompter:          &scriptedPrompter{},
			BrowserOpener:     &recordingOpener{err: errors.New("no display")},
			Logger:            zap.New(observedCore),
		},
		pullrequest.Options{Title: testTitleConstant, Template: pullrequest.DefaultTemplate},
	)
	require.NoError(testInstance, creationError)

	outcome, runError := workflow.Run(context.Background(), fanout.RepositoryHandle{Path: testRepositoryPathConstant, Name: testRepositoryNameConstant}, ui.NewRepositoryBlock())
	require.NoError(testInstance, runError)
	require.Equal(testInstance, pullrequest.OutcomeOpened, outcome)
	require.Equal(testInstance, 1, observedLogs.FilterLevelExact(zapcore.DebugLevel).Len())
}

func TestNewWorkflowValidatesDependencies(testInstance *testing.T) {
	_, missingManagerError := pullrequest.NewWorkflow(pullrequest.Dependencies{Prompter: &scriptedPrompter{}}, pullrequest.Options{})
	require.ErrorIs(testInstance, missingManagerError, pullrequest.ErrRepositoryManagerNotConfigured)

	_, missingPrompterError := pullrequest.NewWorkflow(pullrequest.Dependencies{RepositoryManager: newStubRepositoryManager()}, pullrequest.Options{})
	require.ErrorIs(testInstance, missingPrompterError, pullrequest.ErrConfirmationPrompterNotConfigured)
}
