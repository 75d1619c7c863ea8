package organization_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/require"

	"github.com/temirov/gmux/internal/fanout"
	"github.com/temirov/gmux/internal/githubcli"
	"github.com/temirov/gmux/internal/organization"
	"github.com/temirov/gmux/internal/repos/shared"
)

func TestListCommandOwnerResolution(testInstance *testing.T) {
	testCases := []struct {
		name          string
		arguments     []string
		configuration organization.CommandConfiguration
		expectedOwner string
		expectedError error
	}{
		{name: "positional_owner", arguments: []string{"acme"}, configuration: organization.CommandConfiguration{DefaultOwner: "configured"}, expectedOwner: "acme"},
		{name: "flag_owner", arguments: []string{"--org", "flagged"}, configuration: organization.CommandConfiguration{DefaultOwner: "configured"}, expectedOwner: "flagged"},
		{name: "configured_owner", arguments: []string{}, configuration: organization.CommandConfiguration{DefaultOwner: " configured "}, expectedOwner: "configured"},
		{name: "missing_owner", arguments: []string{}, expectedError: organization.ErrOwnerRequired},
		{name: "invalid_owner", arguments: []string{"acme/widgets"}, expectedError: shared.ErrInvalidValue},
	}

	for _, testCase := range testCases {
		testCase := testCase
		testInstance.Run(testCase.name, func(subTest *testing.T) {
			lipgloss.SetColorProfile(termenv.Ascii)
			client := &stubRepositoryClient{repositories: []githubcli.Repository{{Name: "widgets"}}}
			builder := organization.CommandBuilder{
				RepositoryClient: client,
				ConfigurationProvider: func() organization.CommandConfiguration {
					return testCase.configuration
				},
			}
			command, buildError := builder.BuildListCommand()
			require.NoError(subTest, buildError)

			output := &bytes.Buffer{}
			command.SetOut(output)
			command.SetErr(output)
			command.SetArgs(testCase.arguments)
			command.SetContext(context.Background())

			executionError := command.Execute()
			if testCase.expectedError != nil {
				require.ErrorIs(subTest, executionError, testCase.expectedError)
				require.Empty(subTest, client.listedOwners)
				return
			}
			require.NoError(subTest, executionError)
			require.Equal(subTest, []string{testCase.expectedOwner}, client.listedOwners)
			require.Equal(subTest, githubcli.DefaultPerPage, client.listOptions[0].PerPage)
			require.Equal(subTest, "updated", client.listOptions[0].Sort)
			require.Equal(subTest, "desc", client.listOptions[0].Direction)
		})
	}
}

func TestCloneCommandCompilesFilterBeforeListing(testInstance *testing.T) {
	client := &stubRepositoryClient{}
	builder := organization.CommandBuilder{RepositoryClient: client, WorkingDirectory: testInstance.TempDir()}
	command, buildError := builder.BuildCloneCommand()
	require.NoError(testInstance, buildError)

	command.SetOut(&bytes.Buffer{})
	command.SetErr(&bytes.Buffer{})
	command.SetArgs([]string{"acme", "--filter", "("})
	command.SetContext(context.Background())

	executionError := command.Execute()
	var patternError fanout.FilterPatternError
	require.ErrorAs(testInstance, executionError, &patternError)
	require.Empty(testInstance, client.listedOwners)
}

func TestCloneCommandClonesIntoWorkingDirectory(testInstance *testing.T) {
	lipgloss.SetColorProfile(termenv.Ascii)
	workingDirectory := testInstance.TempDir()
	client := &stubRepositoryClient{repositories: []githubcli.Repository{{Name: "widgets"}, {Name: "gadgets"}}}
	builder := organization.CommandBuilder{RepositoryClient: client, WorkingDirectory: workingDirectory}
	command, buildError := builder.BuildCloneCommand()
	require.NoError(testInstance, buildError)

	output := &bytes.Buffer{}
	command.SetOut(output)
	command.SetArgs([]string{"--org", "acme", "-f", "^wid"})
	command.SetContext(context.Background())

	require.NoError(testInstance, command.Execute())
	require.Equal(testInstance, []string{"acme/widgets"}, client.clonedNames)
	require.Equal(testInstance, []string{workingDirectory}, client.cloneTargets)
	require.Contains(testInstance, output.String(), "1 cloned, 0 skipped, 0 failed")
}

func TestCommandConfigurationSanitizeRestoresDefaults(testInstance *testing.T) {
	sanitized := organization.CommandConfiguration{Token: " t ", PerPage: -1, Sort: " ", Direction: ""}.Sanitize()
	require.Equal(testInstance, organization.CommandConfiguration{Token: "t", PerPage: 100, Sort: "updated", Direction: "desc"}, sanitized)

	defaults := organization.DefaultConfigurationValues("github")
	require.Equal(testInstance, 100, defaults["github.per_page"])
	require.Equal(testInstance, "", defaults["github.default_org"])
}
