package testsupport

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

const (
	gitExecutableNameConstant           = "git"
	fixtureAuthorNameConstant           = "gmux fixture"
	fixtureAuthorEmailConstant          = "fixture@example.com"
	fixtureFilePermissionsConstant      = 0o644
	fixtureDirectoryPermissionsConstant = 0o755
)

var fixtureConfigurationArguments = []string{
	"-c", "user.name=" + fixtureAuthorNameConstant,
	"-c", "user.email=" + fixtureAuthorEmailConstant,
	"-c", "commit.gpgsign=false",
	"-c", "init.defaultBranch=main",
}

// RequireGit skips the test when git is not installed.
func RequireGit(testInstance testing.TB) {
	testInstance.Helper()
	if _, lookupError := exec.LookPath(gitExecutableNameConstant); lookupError != nil {
		testInstance.Skip("git executable not available")
	}
}

// RunGit executes git in directory and returns its trimmed standard output, failing the test on error.
func RunGit(testInstance testing.TB, directory string, arguments ...string) string {
	testInstance.Helper()
	command := exec.Command(gitExecutableNameConstant, append(append([]string{}, fixtureConfigurationArguments...), arguments...)...)
	command.Dir = directory
	command.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0", "GIT_CONFIG_NOSYSTEM=1")
	output, runError := command.CombinedOutput()
	if runError != nil {
		testInstance.Fatalf("git %s failed in %s: %v\n%s", strings.Join(arguments, " "), directory, runError, output)
	}
	return strings.TrimSpace(string(output))
}

// InitializeRepository creates directory and initializes a repository whose first commit sits on branchName.
func InitializeRepository(testInstance testing.TB, directory string, branchName string) {
	testInstance.Helper()
	if mkdirError := os.MkdirAll(directory, fixtureDirectoryPermissionsConstant); mkdirError != nil {
		testInstance.Fatalf("unable to create %s: %v", directory, mkdirError)
	}
	RunGit(testInstance, directory, "init", "--quiet")
	RunGit(testInstance, directory, "symbolic-ref", "HEAD", "refs/heads/"+branchName)
	CommitFile(testInstance, directory, "README.md", "fixture\n", "initial commit")
}

// InitializeBareRepository creates a bare repository at directory.
func InitializeBareRepository(testInstance testing.TB, directory string) {
	testInstance.Helper()
	if mkdirError := os.MkdirAll(directory, fixtureDirectoryPermissionsConstant); mkdirError != nil {
		testInstance.Fatalf("unable to create %s: %v", directory, mkdirError)
	}
	RunGit(testInstance, directory, "init", "--quiet", "--bare")
}

// WriteFile writes content to a path relative to directory.
func WriteFile(testInstance testing.TB, directory string, relativePath string, content string) {
	testInstance.Helper()
	targetPath := filepath.Join(directory, relativePath)
	if mkdirError := os.MkdirAll(filepath.Dir(targetPath), fixtureDirectoryPermissionsConstant); mkdirError != nil {
		testInstance.Fatalf("unable to create parent of %s: %v", targetPath, mkdirError)
	}
	if writeError := os.WriteFile(targetPath, []byte(content), fixtureFilePermissionsConstant); writeError != nil {
		testInstance.Fatalf("unable to write %s: %v", targetPath, writeError)
	}
}

// CommitFile writes content and records it in a new commit.
func CommitFile(testInstance testing.TB, directory string, relativePath string, content string, message string) {
	testInstance.Helper()
	WriteFile(testInstance, directory, relativePath, content)
	RunGit(testInstance, directory, "add", relativePath)
	RunGit(testInstance, directory, "commit", "--quiet", "-m", message)
}
