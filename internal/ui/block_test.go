package ui_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/require"

	"github.com/temirov/gmux/internal/execshell"
	"github.com/temirov/gmux/internal/ui"
)

type countingWriter struct {
	bytes.Buffer
	writes int
}

func (writer *countingWriter) Write(data []byte) (int, error) {
	writer.writes++
	return writer.Buffer.Write(data)
}

func TestRepositoryBlockRendersCommandOutcome(testInstance *testing.T) {
	lipgloss.SetColorProfile(termenv.Ascii)

	testCases := []struct {
		name          string
		result        execshell.ExecutionResult
		elapsed       time.Duration
		expectedLines []string
	}{
		{
			name:    "success",
			result:  execshell.ExecutionResult{StandardOutput: "  On branch main\n", ExitCode: 0},
			elapsed: 1500 * time.Millisecond,
			expectedLines: []string{
				"📦 widgets (/work/widgets)",
				"⚡ git status",
				"On branch main",
				"✓ Success (1.50s)",
			},
		},
		{
			name:   "failure_with_stderr",
			result: execshell.ExecutionResult{StandardError: "fatal: not a git repository\n", ExitCode: 128},
			expectedLines: []string{
				"📦 widgets (/work/widgets)",
				"⚡ git status",
				"fatal: not a git repository",
				"✗ Failed (exit code: 128)",
			},
		},
		{
			name:   "abnormal_termination",
			result: execshell.ExecutionResult{ExitCode: -1},
			expectedLines: []string{
				"📦 widgets (/work/widgets)",
				"⚡ git status",
				"✗ Failed (exit code: -1)",
			},
		},
	}

	for _, testCase := range testCases {
		testCase := testCase
		testInstance.Run(testCase.name, func(subTest *testing.T) {
			block := ui.NewRepositoryBlock()
			block.Header("widgets", "/work/widgets")
			block.Command("git status")
			block.CommandResult(testCase.result, testCase.elapsed)

			require.Equal(subTest, strings.Join(testCase.expectedLines, "\n")+"\n", block.String())
		})
	}
}

func TestRepositoryBlockWritesOnce(testInstance *testing.T) {
	lipgloss.SetColorProfile(termenv.Ascii)

	block := ui.NewRepositoryBlock()
	block.Header("widgets", "")
	block.Info("No changes found")
	block.Skip("Skipping widgets")

	writer := &countingWriter{}
	bytesWritten, writeError := block.WriteTo(writer)
	require.NoError(testInstance, writeError)
	require.Equal(testInstance, 1, writer.writes)
	require.Equal(testInstance, int64(writer.Len()), bytesWritten)
	require.Equal(testInstance, "📦 widgets\nℹ No changes found\n⏭ Skipping widgets\n\n", writer.String())

	emptyWriter := &countingWriter{}
	_, emptyError := ui.NewRepositoryBlock().WriteTo(emptyWriter)
	require.NoError(testInstance, emptyError)
	require.Zero(testInstance, emptyWriter.writes)
}

func TestRenderSummary(testInstance *testing.T) {
	lipgloss.SetColorProfile(termenv.Ascii)

	require.Equal(testInstance, "3 succeeded, 0 failed", ui.RenderSummary(3, 0))
	require.Equal(testInstance, "1 succeeded, 2 failed", ui.RenderSummary(1, 2))
}
