package prompt_test

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/gmux/internal/repos/prompt"
	"github.com/temirov/gmux/internal/repos/shared"
)

const (
	testPromptTextConstant = "Push feature-x to origin? [a/N/y] "
	testTokenAnswer        = "ghp_example"
)

type stubConfirmationPrompter struct {
	mutex   sync.Mutex
	results []shared.ConfirmationResult
	err     error
	calls   int
}

func (prompter *stubConfirmationPrompter) Confirm(string) (shared.ConfirmationResult, error) {
	prompter.mutex.Lock()
	defer prompter.mutex.Unlock()
	prompter.calls++
	if prompter.err != nil {
		return shared.ConfirmationResult{}, prompter.err
	}
	if len(prompter.results) == 0 {
		return shared.ConfirmationResult{}, nil
	}
	index := prompter.calls - 1
	if index >= len(prompter.results) {
		index = len(prompter.results) - 1
	}
	return prompter.results[index], nil
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("terminal closed")
}

func TestIOConfirmationPrompterInterpretsAnswers(testInstance *testing.T) {
	testCases := []struct {
		name           string
		input          string
		expectedResult shared.ConfirmationResult
	}{
		{name: "short_yes", input: "y\n", expectedResult: shared.ConfirmationResult{Confirmed: true}},
		{name: "long_yes_mixed_case", input: "  YeS \n", expectedResult: shared.ConfirmationResult{Confirmed: true}},
		{name: "apply_all", input: "a\n", expectedResult: shared.ConfirmationResult{Confirmed: true, ApplyToAll: true}},
		{name: "apply_all_long", input: "all\n", expectedResult: shared.ConfirmationResult{Confirmed: true, ApplyToAll: true}},
		{name: "explicit_no", input: "n\n", expectedResult: shared.ConfirmationResult{}},
		{name: "empty_answer", input: "\n", expectedResult: shared.ConfirmationResult{}},
		{name: "end_of_input", input: "", expectedResult: shared.ConfirmationResult{}},
		{name: "answer_without_newline", input: "y", expectedResult: shared.ConfirmationResult{Confirmed: true}},
	}

	for _, testCase := range testCases {
		testCase := testCase
		testInstance.Run(testCase.name, func(subTest *testing.T) {
			outputBuffer := &bytes.Buffer{}
			prompter := prompt.NewIOConfirmationPrompter(strings.NewReader(testCase.input), outputBuffer)

			result, confirmError := prompter.Confirm(testPromptTextConstant)
			require.NoError(subTest, confirmError)
			require.Equal(subTest, testCase.expectedResult, result)
			require.Equal(subTest, testPromptTextConstant, outputBuffer.String())
		})
	}
}

func TestIOConfirmationPrompterPropagatesReadErrors(testInstance *testing.T) {
	prompter := prompt.NewIOConfirmationPrompter(failingReader{}, nil)

	result, confirmError := prompter.Confirm(testPromptTextConstant)
	require.Error(testInstance, confirmError)
	require.Equal(testInstance, shared.ConfirmationResult{}, result)
}

func TestIOConfirmationPrompterReadsSuccessiveLines(testInstance *testing.T) {
	prompter := prompt.NewIOConfirmationPrompter(strings.NewReader("  "+testTokenAnswer+"  \nacme\n"), nil)

	firstAnswer, firstError := prompter.ReadLine("Token: ")
	require.NoError(testInstance, firstError)
	require.Equal(testInstance, testTokenAnswer, firstAnswer)

	secondAnswer, secondError := prompter.ReadLine("Owner: ")
	require.NoError(testInstance, secondError)
	require.Equal(testInstance, "acme", secondAnswer)
}

func TestSerializedConfirmationPrompterBehavior(testInstance *testing.T) {
	testCases := []struct {
		name                 string
		initialAssumeYes     bool
		responses            []shared.ConfirmationResult
		promptError          error
		expectAssumeYesAfter bool
		expectError          bool
		expectedPromptCalls  int
	}{
		{
			name:                 "initial_assume_yes_persists",
			initialAssumeYes:     true,
			expectAssumeYesAfter: true,
		},
		{
			name:                 "decline_does_not_set_assume_yes",
			responses:            []shared.ConfirmationResult{{Confirmed: false}},
			expectAssumeYesAfter: false,
			expectedPromptCalls:  1,
		},
		{
			name:                 "single_accept_does_not_set_assume_yes",
			responses:            []shared.ConfirmationResult{{Confirmed: true}},
			expectAssumeYesAfter: false,
			expectedPromptCalls:  1,
		},
		{
			name:                 "apply_all_sets_assume_yes",
			responses:            []shared.ConfirmationResult{{Confirmed: true, ApplyToAll: true}},
			expectAssumeYesAfter: true,
			expectedPromptCalls:  1,
		},
		{
			name:                 "propagates_prompt_error",
			responses:            []shared.ConfirmationResult{{Confirmed: true}},
			promptError:          errors.New("prompt failure"),
			expectAssumeYesAfter: false,
			expectError:          true,
			expectedPromptCalls:  1,
		},
		{
			name:                 "nil_base_prompter_returns_zero_result",
			expectAssumeYesAfter: false,
		},
	}

	for _, testCase := range testCases {
		testCase := testCase
		testInstance.Run(testCase.name, func(subTest *testing.T) {
			var basePrompter shared.ConfirmationPrompter
			var stub *stubConfirmationPrompter
			if testCase.responses != nil || testCase.promptError != nil {
				stub = &stubConfirmationPrompter{results: testCase.responses, err: testCase.promptError}
				basePrompter = stub
			}
			wrappedPrompter := prompt.NewSerializedConfirmationPrompter(basePrompter, testCase.initialAssumeYes)

			_, confirmError := wrappedPrompter.Confirm(testPromptTextConstant)
			if testCase.expectError {
				require.Error(subTest, confirmError)
			} else {
				require.NoError(subTest, confirmError)
			}

			require.Equal(subTest, testCase.expectAssumeYesAfter, wrappedPrompter.AssumeYes())
			if stub != nil {
				require.Equal(subTest, testCase.expectedPromptCalls, stub.calls)
			} else {
				require.Zero(subTest, testCase.expectedPromptCalls)
			}
		})
	}
}

func TestSerializedConfirmationPrompterStopsAskingAfterApplyToAll(testInstance *testing.T) {
	stub := &stubConfirmationPrompter{results: []shared.ConfirmationResult{{Confirmed: true, ApplyToAll: true}}}
	wrappedPrompter := prompt.NewSerializedConfirmationPrompter(stub, false)

	var waitGroup sync.WaitGroup
	results := make([]shared.ConfirmationResult, 8)
	confirmErrors := make([]error, len(results))
	for index := range results {
		waitGroup.Add(1)
		go func(position int) {
			defer waitGroup.Done()
			results[position], confirmErrors[position] = wrappedPrompter.Confirm(testPromptTextConstant)
		}(index)
	}
	waitGroup.Wait()

	require.Equal(testInstance, 1, stub.calls)
	for index, result := range results {
		require.NoError(testInstance, confirmErrors[index])
		require.True(testInstance, result.Confirmed)
	}
}

func TestSerializedLineReaderDelegates(testInstance *testing.T) {
	reader := prompt.NewSerializedLineReader(prompt.NewIOConfirmationPrompter(strings.NewReader("Fix bug\n"), nil))

	answer, readError := reader.ReadLine("Title: ")
	require.NoError(testInstance, readError)
	require.Equal(testInstance, "Fix bug", answer)

	emptyReader := prompt.NewSerializedLineReader(nil)
	emptyAnswer, emptyError := emptyReader.ReadLine("Title: ")
	require.NoError(testInstance, emptyError)
	require.Empty(testInstance, emptyAnswer)
}
