package pullrequest_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/require"

	"github.com/temirov/gmux/internal/fanout"
	"github.com/temirov/gmux/internal/pullrequest"
	"github.com/temirov/gmux/internal/testsupport"
	"github.com/temirov/gmux/internal/utils"
	pathutils "github.com/temirov/gmux/internal/utils/path"
)

type commandFixture struct {
	workingDirectory       string
	configurationDirectory string
	originPath             string
}

func newCommandFixture(testInstance *testing.T) commandFixture {
	testInstance.Helper()
	testsupport.RequireGit(testInstance)

	workspace := testInstance.TempDir()
	fixture := commandFixture{
		workingDirectory:       filepath.Join(workspace, "projects"),
		configurationDirectory: filepath.Join(workspace, "config"),
		originPath:             filepath.Join(workspace, "remotes", "acme", "widgets.git"),
	}

	widgetsPath := filepath.Join(fixture.workingDirectory, "widgets")
	testsupport.InitializeBareRepository(testInstance, fixture.originPath)
	testsupport.InitializeRepository(testInstance, widgetsPath, "main")
	testsupport.RunGit(testInstance, widgetsPath, "remote", "add", "origin", fixture.originPath)
	testsupport.RunGit(testInstance, widgetsPath, "push", "--quiet", "-u", "origin", "main")
	testsupport.RunGit(testInstance, widgetsPath, "remote", "set-head", "origin", "main")
	testsupport.RunGit(testInstance, widgetsPath, "checkout", "--quiet", "-b", "feature-x")
	testsupport.CommitFile(testInstance, widgetsPath, "a.txt", "a\n", "add a")

	testsupport.InitializeRepository(testInstance, filepath.Join(fixture.workingDirectory, "gadgets"), "main")
	require.NoError(testInstance, os.MkdirAll(filepath.Join(fixture.workingDirectory, "notes"), 0o755))

	return fixture
}

func (fixture commandFixture) writeTemplate(testInstance *testing.T) {
	testInstance.Helper()
	testsupport.WriteFile(testInstance, fixture.configurationDirectory, utils.PullRequestTemplateFileName, pullrequest.DefaultTemplate)
}

func (fixture commandFixture) execute(testInstance *testing.T, builder pullrequest.CommandBuilder, input string, arguments ...string) (string, string, error) {
	testInstance.Helper()
	lipgloss.SetColorProfile(termenv.Ascii)

	builder.WorkingDirectory = fixture.workingDirectory
	builder.ConfigurationDirectory = utils.NewConfigurationDirectoryResolverWith(func(key string) (string, bool) {
		if key == utils.ConfigurationDirectoryEnvironmentVariable {
			return fixture.configurationDirectory, true
		}
		return "", false
	}, pathutils.NewHomeExpander())

	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	standardOutput := &bytes.Buffer{}
	standardError := &bytes.Buffer{}
	command.SetIn(strings.NewReader(input))
	command.SetOut(standardOutput)
	command.SetErr(standardError)
	command.SetArgs(arguments)
	command.SetContext(context.Background())

	executionError := command.Execute()
	return standardOutput.String(), standardError.String(), executionError
}

func TestPullRequestCommandPushesAndOpensDraft(testInstance *testing.T) {
	fixture := newCommandFixture(testInstance)
	fixture.writeTemplate(testInstance)
	opener := &recordingOpener{}

	output, _, executionError := fixture.execute(testInstance, pullrequest.CommandBuilder{BrowserOpener: opener}, "", "--title", "Fix bug", "--yes")
	require.NoError(testInstance, executionError)

	require.Contains(testInstance, output, "Branch pushed: feature-x")
	require.Contains(testInstance, output, "No changes found against main")
	require.Contains(testInstance, output, "Skipping non-git directory")
	require.Contains(testInstance, output, "Pull requests: 1 opened, 2 skipped, 0 failed")

	require.Len(testInstance, opener.openedURLs, 1)
	require.Contains(testInstance, opener.openedURLs[0], "/acme/widgets/compare/main...feature-x?expand=1&title=Fix%20bug&body=")
	require.Contains(testInstance, opener.openedURLs[0], "a.txt")

	remoteHeads := testsupport.RunGit(testInstance, fixture.originPath, "ls-remote", "--heads", fixture.originPath, "feature-x")
	require.NotEmpty(testInstance, remoteHeads)
}

func TestPullRequestCommandPromptsForTitleAndRespectsFilter(testInstance *testing.T) {
	fixture := newCommandFixture(testInstance)
	fixture.writeTemplate(testInstance)
	opener := &recordingOpener{}

	output, _, executionError := fixture.execute(testInstance, pullrequest.CommandBuilder{BrowserOpener: opener}, "Fix bug\n", "--filter", "^wid", "--dry-run")
	require.NoError(testInstance, executionError)

	require.Contains(testInstance, output, "Enter PR title: ")
	require.Contains(testInstance, output, "Branch feature-x is not on origin and would be pushed")
	require.Contains(testInstance, output, "compare/main...feature-x?expand=1&title=Fix%20bug")
	require.NotContains(testInstance, output, "gadgets")
	require.Contains(testInstance, output, "Pull requests: 1 opened, 0 skipped, 0 failed")
	require.Empty(testInstance, opener.openedURLs)
}

func TestPullRequestCommandRepeatsNoChangesSkipWithoutSideEffects(testInstance *testing.T) {
	fixture := newCommandFixture(testInstance)
	fixture.writeTemplate(testInstance)
	widgetsPath := filepath.Join(fixture.workingDirectory, "widgets")
	testsupport.RunGit(testInstance, widgetsPath, "checkout", "--quiet", "main")
	remoteHeadsBefore := testsupport.RunGit(testInstance, fixture.originPath, "ls-remote", "--heads", fixture.originPath)
	opener := &recordingOpener{}

	for attempt := 0; attempt < 2; attempt++ {
		output, _, executionError := fixture.execute(testInstance, pullrequest.CommandBuilder{BrowserOpener: opener}, "", "--title", "Fix bug", "--filter", "^wid")
		require.NoError(testInstance, executionError)
		require.Contains(testInstance, output, "No changes found against main")
		require.NotContains(testInstance, output, "Push it?")
		require.Contains(testInstance, output, "Pull requests: 0 opened, 1 skipped, 0 failed")
	}

	require.Empty(testInstance, opener.openedURLs)
	require.Equal(testInstance, remoteHeadsBefore, testsupport.RunGit(testInstance, fixture.originPath, "ls-remote", "--heads", fixture.originPath))
}

func TestPullRequestCommandConfigurationErrors(testInstance *testing.T) {
	testCases := []struct {
		name           string
		writeTemplate  bool
		input          string
		arguments      []string
		expectedError  error
		expectedStderr string
	}{
		{
			name:          "malformed_filter",
			writeTemplate: true,
			arguments:     []string{"--title", "Fix", "--filter", "("},
			expectedError: fanout.FilterPatternError{},
		},
		{
			name:          "missing_title",
			writeTemplate: true,
			input:         "\n",
			arguments:     []string{},
			expectedError: pullrequest.ErrTitleRequired,
		},
		{
			name:           "missing_template_warns",
			arguments:      []string{"--title", "Fix"},
			expectedStderr: "PR template not found. Run 'gmux init' first.",
		},
	}

	for _, testCase := range testCases {
		testCase := testCase
		testInstance.Run(testCase.name, func(subTest *testing.T) {
			fixture := newCommandFixture(subTest)
			if testCase.writeTemplate {
				fixture.writeTemplate(subTest)
			}
			opener := &recordingOpener{}

			_, standardError, executionError := fixture.execute(subTest, pullrequest.CommandBuilder{BrowserOpener: opener}, testCase.input, testCase.arguments...)
			switch expected := testCase.expectedError.(type) {
			case nil:
				require.NoError(subTest, executionError)
			case fanout.FilterPatternError:
				require.ErrorAs(subTest, executionError, &expected)
			default:
				require.ErrorIs(subTest, executionError, expected)
			}
			require.Contains(subTest, standardError, testCase.expectedStderr)
			require.Empty(subTest, opener.openedURLs)
		})
	}
}

func TestCommandConfigurationSanitize(testInstance *testing.T) {
	sanitized := pullrequest.CommandConfiguration{TemplatePath: "  ~/t.md ", RemoteName: " "}.Sanitize()
	require.Equal(testInstance, "~/t.md", sanitized.TemplatePath)
	require.Equal(testInstance, "origin", sanitized.RemoteName)
	require.Equal(testInstance, pullrequest.DefaultWebHost, sanitized.WebHost)
	require.Equal(testInstance, "github.example.com", pullrequest.CommandConfiguration{WebHost: " github.example.com "}.Sanitize().WebHost)

	defaults := pullrequest.DefaultConfigurationValues("pull_request")
	require.Equal(testInstance, "origin", defaults["pull_request.remote"])
	require.Equal(testInstance, false, defaults["pull_request.assume_yes"])
	require.Equal(testInstance, "github.com", defaults["pull_request.web_host"])
}
