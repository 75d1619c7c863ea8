package gitrepo_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/temirov/gmux/internal/execshell"
	"github.com/temirov/gmux/internal/gitrepo"
	"github.com/temirov/gmux/internal/testsupport"
)

var (
	currentBranchArguments = []string{"rev-parse", "--abbrev-ref", "HEAD"}
	defaultBranchArguments = []string{"symbolic-ref", "refs/remotes/origin/HEAD"}
)

func createRepositoryMarker(testInstance *testing.T) string {
	repositoryPath := testInstance.TempDir()
	require.NoError(testInstance, os.Mkdir(filepath.Join(repositoryPath, ".git"), 0o755))
	return repositoryPath
}

func TestNewRepositoryManagerValidation(testInstance *testing.T) {
	manager, creationError := gitrepo.NewRepositoryManager(nil)
	require.ErrorIs(testInstance, creationError, gitrepo.ErrGitExecutorNotConfigured)
	require.Nil(testInstance, manager)
}

func TestRepositoryManagerIsRepository(testInstance *testing.T) {
	manager, creationError := gitrepo.NewRepositoryManager(testsupport.NewScriptedGitExecutor())
	require.NoError(testInstance, creationError)

	plainDirectory := testInstance.TempDir()
	require.False(testInstance, manager.IsRepository(plainDirectory))

	require.True(testInstance, manager.IsRepository(createRepositoryMarker(testInstance)))

	worktreeDirectory := testInstance.TempDir()
	require.NoError(testInstance, os.WriteFile(filepath.Join(worktreeDirectory, ".git"), []byte("gitdir: /elsewhere\n"), 0o644))
	require.True(testInstance, manager.IsRepository(worktreeDirectory))
}

func TestRepositoryManagerResolveMetadata(testInstance *testing.T) {
	spawnFailure := errors.New("git missing")

	testCases := []struct {
		name             string
		isRepository     bool
		configure        func(executor *testsupport.ScriptedGitExecutor, repositoryPath string)
		expectResolved   bool
		expectedMetadata gitrepo.RepositoryMetadata
		expectedError    error
	}{
		{
			name:           "not_a_repository",
			isRepository:   false,
			configure:      func(*testsupport.ScriptedGitExecutor, string) {},
			expectResolved: false,
		},
		{
			name:         "remote_default_branch",
			isRepository: true,
			configure: func(executor *testsupport.ScriptedGitExecutor, repositoryPath string) {
				executor.ScriptOutput(repositoryPath, currentBranchArguments, "feature-x\n")
				executor.ScriptOutput(repositoryPath, defaultBranchArguments, "refs/remotes/origin/main\n")
			},
			expectResolved:   true,
			expectedMetadata: gitrepo.RepositoryMetadata{CurrentBranch: "feature-x", DefaultBranch: "main"},
		},
		{
			name:         "missing_remote_head_falls_back_to_current",
			isRepository: true,
			configure: func(executor *testsupport.ScriptedGitExecutor, repositoryPath string) {
				executor.ScriptOutput(repositoryPath, currentBranchArguments, "feature-x\n")
				executor.ScriptExitCode(repositoryPath, defaultBranchArguments, 128)
			},
			expectResolved:   true,
			expectedMetadata: gitrepo.RepositoryMetadata{CurrentBranch: "feature-x", DefaultBranch: "feature-x"},
		},
		{
			name:         "current_branch_failure_means_absent",
			isRepository: true,
			configure: func(executor *testsupport.ScriptedGitExecutor, repositoryPath string) {
				executor.ScriptExitCode(repositoryPath, currentBranchArguments, 128)
			},
			expectResolved: false,
		},
		{
			name:         "current_branch_spawn_failure",
			isRepository: true,
			configure: func(executor *testsupport.ScriptedGitExecutor, repositoryPath string) {
				executor.Script(repositoryPath, currentBranchArguments, testsupport.ScriptedResponse{Error: spawnFailure})
			},
			expectedError: spawnFailure,
		},
		{
			name:         "default_branch_spawn_failure",
			isRepository: true,
			configure: func(executor *testsupport.ScriptedGitExecutor, repositoryPath string) {
				executor.ScriptOutput(repositoryPath, currentBranchArguments, "main\n")
				executor.Script(repositoryPath, defaultBranchArguments, testsupport.ScriptedResponse{Error: spawnFailure})
			},
			expectedError: spawnFailure,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			repositoryPath := testInstance.TempDir()
			if testCase.isRepository {
				repositoryPath = createRepositoryMarker(testInstance)
			}
			executor := testsupport.NewScriptedGitExecutor()
			testCase.configure(executor, repositoryPath)

			manager, creationError := gitrepo.NewRepositoryManager(executor)
			require.NoError(testInstance, creationError)

			metadata, resolved, resolveError := manager.ResolveMetadata(context.Background(), repositoryPath)
			if testCase.expectedError != nil {
				require.ErrorIs(testInstance, resolveError, testCase.expectedError)
				return
			}
			require.NoError(testInstance, resolveError)
			require.Equal(testInstance, testCase.expectResolved, resolved)
			require.Equal(testInstance, testCase.expectedMetadata, metadata)
			if !testCase.isRepository {
				require.Empty(testInstance, executor.RecordedCommands())
			}
		})
	}
}

func TestRepositoryManagerDiffFileNames(testInstance *testing.T) {
	diffArguments := []string{"diff", "--name-only", "main"}

	testCases := []struct {
		name          string
		response      testsupport.ScriptedResponse
		expectedFiles []string
		expectError   bool
	}{
		{
			name:          "lists_files_in_order",
			response:      testsupport.ScriptedResponse{Result: execshell.ExecutionResult{StandardOutput: "b.txt\na.txt\n\n"}},
			expectedFiles: []string{"b.txt", "a.txt"},
		},
		{
			name:          "non_zero_exit_is_empty",
			response:      testsupport.ScriptedResponse{Result: execshell.ExecutionResult{ExitCode: 128, StandardError: "fatal: bad revision"}},
			expectedFiles: []string{},
		},
		{
			name:        "spawn_failure",
			response:    testsupport.ScriptedResponse{Error: errors.New("spawn")},
			expectError: true,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			repositoryPath := createRepositoryMarker(testInstance)
			executor := testsupport.NewScriptedGitExecutor()
			executor.Script(repositoryPath, diffArguments, testCase.response)
			manager, creationError := gitrepo.NewRepositoryManager(executor)
			require.NoError(testInstance, creationError)

			files, diffError := manager.DiffFileNames(context.Background(), repositoryPath, "main")
			if testCase.expectError {
				require.Error(testInstance, diffError)
				return
			}
			require.NoError(testInstance, diffError)
			require.Equal(testInstance, testCase.expectedFiles, files)
		})
	}
}

func TestRepositoryManagerRemoteQueries(testInstance *testing.T) {
	repositoryPath := createRepositoryMarker(testInstance)
	executor := testsupport.NewScriptedGitExecutor()
	executor.ScriptOutput(repositoryPath, []string{"ls-remote", "--heads", "upstream", "feature-x"}, "abc123\trefs/heads/feature-x\n")
	executor.ScriptExitCode(repositoryPath, []string{"ls-remote", "--heads", "upstream", "offline"}, 128)
	executor.ScriptOutput(repositoryPath, []string{"remote", "get-url", "upstream"}, "git@github.com:acme/widgets.git\n")
	executor.ScriptOutput(repositoryPath, []string{"rev-parse", "HEAD"}, "0123456789abcdef\n")

	manager, creationError := gitrepo.NewRepositoryManagerForRemote(executor, "upstream")
	require.NoError(testInstance, creationError)
	require.Equal(testInstance, "upstream", manager.RemoteName())

	exists, existsError := manager.RemoteBranchExists(context.Background(), repositoryPath, "feature-x")
	require.NoError(testInstance, existsError)
	require.True(testInstance, exists)

	exists, existsError = manager.RemoteBranchExists(context.Background(), repositoryPath, "absent")
	require.NoError(testInstance, existsError)
	require.False(testInstance, exists)

	exists, existsError = manager.RemoteBranchExists(context.Background(), repositoryPath, "offline")
	require.NoError(testInstance, existsError)
	require.False(testInstance, exists)

	remoteURL, remoteConfigured, remoteError := manager.RemoteURL(context.Background(), repositoryPath)
	require.NoError(testInstance, remoteError)
	require.True(testInstance, remoteConfigured)
	require.Equal(testInstance, "git@github.com:acme/widgets.git", remoteURL)

	headCommit, headResolved, headError := manager.HeadCommit(context.Background(), repositoryPath)
	require.NoError(testInstance, headError)
	require.True(testInstance, headResolved)
	require.Equal(testInstance, "0123456789abcdef", headCommit)

	_, pushError := manager.PushBranch(context.Background(), repositoryPath, "feature-x")
	require.NoError(testInstance, pushError)
	require.Contains(testInstance, executor.RecordedArguments(repositoryPath), "push -u upstream feature-x")
}

func TestRepositoryManagerAgainstRealRepositories(testInstance *testing.T) {
	testsupport.RequireGit(testInstance)

	workspace := testInstance.TempDir()
	originPath := filepath.Join(workspace, "remotes", "acme", "widgets.git")
	clonePath := filepath.Join(workspace, "widgets")
	standalonePath := filepath.Join(workspace, "standalone")

	testsupport.InitializeBareRepository(testInstance, originPath)
	testsupport.InitializeRepository(testInstance, clonePath, "main")
	testsupport.RunGit(testInstance, clonePath, "remote", "add", "origin", originPath)
	testsupport.RunGit(testInstance, clonePath, "push", "--quiet", "-u", "origin", "main")
	testsupport.RunGit(testInstance, clonePath, "remote", "set-head", "origin", "main")
	testsupport.RunGit(testInstance, clonePath, "checkout", "--quiet", "-b", "feature-x")
	testsupport.WriteFile(testInstance, clonePath, "a.txt", "a\n")
	testsupport.WriteFile(testInstance, clonePath, "b.txt", "b\n")
	testsupport.RunGit(testInstance, clonePath, "add", "a.txt", "b.txt")

	testsupport.InitializeRepository(testInstance, standalonePath, "trunk")

	shellExecutor, executorError := execshell.NewShellExecutor(zap.NewNop(), execshell.NewOSCommandRunner())
	require.NoError(testInstance, executorError)
	manager, managerError := gitrepo.NewRepositoryManager(shellExecutor)
	require.NoError(testInstance, managerError)

	metadata, resolved, resolveError := manager.ResolveMetadata(context.Background(), clonePath)
	require.NoError(testInstance, resolveError)
	require.True(testInstance, resolved)
	require.Equal(testInstance, gitrepo.RepositoryMetadata{CurrentBranch: "feature-x", DefaultBranch: "main"}, metadata)

	firstDiff, firstDiffError := manager.DiffFileNames(context.Background(), clonePath, metadata.DefaultBranch)
	require.NoError(testInstance, firstDiffError)
	secondDiff, secondDiffError := manager.DiffFileNames(context.Background(), clonePath, metadata.DefaultBranch)
	require.NoError(testInstance, secondDiffError)
	require.Equal(testInstance, []string{"a.txt", "b.txt"}, firstDiff)
	require.Equal(testInstance, firstDiff, secondDiff)

	exists, existsError := manager.RemoteBranchExists(context.Background(), clonePath, "feature-x")
	require.NoError(testInstance, existsError)
	require.False(testInstance, exists)

	standaloneMetadata, standaloneResolved, standaloneError := manager.ResolveMetadata(context.Background(), standalonePath)
	require.NoError(testInstance, standaloneError)
	require.True(testInstance, standaloneResolved)
	require.Equal(testInstance, standaloneMetadata.CurrentBranch, standaloneMetadata.DefaultBranch)
	require.Equal(testInstance, "trunk", standaloneMetadata.DefaultBranch)

	emptyDiff, emptyDiffError := manager.DiffFileNames(context.Background(), standalonePath, standaloneMetadata.DefaultBranch)
	require.NoError(testInstance, emptyDiffError)
	require.Empty(testInstance, emptyDiff)
}
