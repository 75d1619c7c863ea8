package prompt

import (
	"bufio"
	"errors"
	"io"
	"strings"
	"sync"

	"github.com/temirov/gmux/internal/repos/shared"
)

const (
	affirmativeShortAnswerConstant = "y"
	affirmativeLongAnswerConstant  = "yes"
	applyAllShortAnswerConstant    = "a"
	applyAllLongAnswerConstant     = "all"
)

// IOConfirmationPrompter reads confirmation responses and free-text answers from an io.Reader.
type IOConfirmationPrompter struct {
	reader *bufio.Reader
	writer io.Writer
}

// NewIOConfirmationPrompter constructs a prompter from the provided reader and writer.
func NewIOConfirmationPrompter(input io.Reader, output io.Writer) *IOConfirmationPrompter {
	return &IOConfirmationPrompter{reader: bufio.NewReader(input), writer: output}
}

// Confirm writes the prompt and interprets y/yes as confirmation and a/all as confirmation for every
// remaining prompt. Anything else, including end of input, declines.
func (prompter *IOConfirmationPrompter) Confirm(prompt string) (shared.ConfirmationResult, error) {
	response, readError := prompter.ReadLine(prompt)
	if readError != nil {
		return shared.ConfirmationResult{}, readError
	}

	switch strings.ToLower(response) {
	case affirmativeShortAnswerConstant, affirmativeLongAnswerConstant:
		return shared.ConfirmationResult{Confirmed: true}, nil
	case applyAllShortAnswerConstant, applyAllLongAnswerConstant:
		return shared.ConfirmationResult{Confirmed: true, ApplyToAll: true}, nil
	default:
		return shared.ConfirmationResult{}, nil
	}
}

// ReadLine writes the prompt and returns the trimmed answer. End of input yields an empty answer.
func (prompter *IOConfirmationPrompter) ReadLine(prompt string) (string, error) {
	if prompter.writer != nil {
		if _, writeError := io.WriteString(prompter.writer, prompt); writeError != nil {
			return "", writeError
		}
	}

	response, readError := prompter.reader.ReadString('\n')
	if readError != nil && !errors.Is(readError, io.EOF) {
		return "", readError
	}
	return strings.TrimSpace(response), nil
}

// SerializedConfirmationPrompter lets concurrent repository tasks share one terminal. Prompts are asked
// one at a time, and once the operator answers "all" every later prompt is confirmed without asking.
type SerializedConfirmationPrompter struct {
	mutex     sync.Mutex
	base      shared.ConfirmationPrompter
	assumeYes bool
}

// NewSerializedConfirmationPrompter wraps the base prompter. initialAssumeYes confirms every prompt.
func NewSerializedConfirmationPrompter(base shared.ConfirmationPrompter, initialAssumeYes bool) *SerializedConfirmationPrompter {
	return &SerializedConfirmationPrompter{base: base, assumeYes: initialAssumeYes}
}

// Confirm asks the base prompter while holding the terminal.
func (prompter *SerializedConfirmationPrompter) Confirm(prompt string) (shared.ConfirmationResult, error) {
	prompter.mutex.Lock()
	defer prompter.mutex.Unlock()

	if prompter.assumeYes {
		return shared.ConfirmationResult{Confirmed: true, ApplyToAll: true}, nil
	}
	if prompter.base == nil {
		return shared.ConfirmationResult{}, nil
	}

	result, promptError := prompter.base.Confirm(prompt)
	if promptError != nil {
		return shared.ConfirmationResult{}, promptError
	}
	if result.ApplyToAll {
		prompter.assumeYes = true
	}
	return result, nil
}

// AssumeYes reports whether prompts are currently confirmed automatically.
func (prompter *SerializedConfirmationPrompter) AssumeYes() bool {
	prompter.mutex.Lock()
	defer prompter.mutex.Unlock()
	return prompter.assumeYes
}

// SerializedLineReader guards a LineReader with a mutex.
type SerializedLineReader struct {
	mutex sync.Mutex
	base  shared.LineReader
}

// NewSerializedLineReader wraps the base reader.
func NewSerializedLineReader(base shared.LineReader) *SerializedLineReader {
	return &SerializedLineReader{base: base}
}

// ReadLine reads one answer while holding the terminal.
func (reader *SerializedLineReader) ReadLine(prompt string) (string, error) {
	reader.mutex.Lock()
	defer reader.mutex.Unlock()
	if reader.base == nil {
		return "", nil
	}
	return reader.base.ReadLine(prompt)
}
