package ui

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/temirov/gmux/internal/execshell"
)

const (
	headerTemplateConstant              = "%s %s (%s)"
	headerWithoutDetailTemplateConstant = "%s %s"
	symbolLineTemplateConstant          = "%s %s"
	successStatusTemplateConstant       = "%s Success (%.2fs)"
	failureStatusTemplateConstant       = "%s Failed (exit code: %d)"
	summaryTemplateConstant             = "%d succeeded, %d failed"
	separatorCharacterConstant          = "─"
	separatorWidthConstant              = 80
	blockLineTerminatorConstant         = "\n"
)

// RepositoryBlock accumulates the console output produced for one repository so it can be written as a
// single contiguous block while other repositories are still running.
type RepositoryBlock struct {
	buffer bytes.Buffer
}

// NewRepositoryBlock constructs an empty block.
func NewRepositoryBlock() *RepositoryBlock {
	return &RepositoryBlock{}
}

// Header records the repository name and a muted detail such as its path or branch.
func (block *RepositoryBlock) Header(repositoryName string, detail string) {
	if len(strings.TrimSpace(detail)) == 0 {
		block.Line(fmt.Sprintf(headerWithoutDetailTemplateConstant, RepositorySymbol, EmphasisStyle.Render(repositoryName)))
		return
	}
	block.Line(fmt.Sprintf(headerTemplateConstant, RepositorySymbol, EmphasisStyle.Render(repositoryName), MutedStyle.Render(detail)))
}

// Command records the command line being run.
func (block *RepositoryBlock) Command(commandLine string) {
	block.Line(fmt.Sprintf(symbolLineTemplateConstant, AccentStyle.Render(CommandSymbol), EmphasisStyle.Render(commandLine)))
}

// Output records trimmed standard output. Blank output is omitted.
func (block *RepositoryBlock) Output(standardOutput string) {
	trimmedOutput := strings.TrimSpace(standardOutput)
	if len(trimmedOutput) == 0 {
		return
	}
	block.Line(trimmedOutput)
}

// ErrorOutput records trimmed standard error in the error style. Blank output is omitted.
func (block *RepositoryBlock) ErrorOutput(standardError string) {
	trimmedOutput := strings.TrimSpace(standardError)
	if len(trimmedOutput) == 0 {
		return
	}
	block.Line(ErrorStyle.Render(trimmedOutput))
}

// Status records the outcome line for a finished command. An exit code of -1 reports abnormal termination.
func (block *RepositoryBlock) Status(result execshell.ExecutionResult, elapsed time.Duration) {
	if result.ExitCode == 0 {
		block.Line(SuccessStyle.Render(fmt.Sprintf(successStatusTemplateConstant, SuccessSymbol, elapsed.Seconds())))
		return
	}
	block.Line(ErrorStyle.Render(fmt.Sprintf(failureStatusTemplateConstant, FailureSymbol, result.ExitCode)))
}

// CommandResult records the standard streams and status of a finished command.
func (block *RepositoryBlock) CommandResult(result execshell.ExecutionResult, elapsed time.Duration) {
	block.Output(result.StandardOutput)
	block.ErrorOutput(result.StandardError)
	block.Status(result, elapsed)
}

// Info records an informational note.
func (block *RepositoryBlock) Info(message string) {
	block.Line(fmt.Sprintf(symbolLineTemplateConstant, InfoSymbol, message))
}

// Skip records why the repository was skipped.
func (block *RepositoryBlock) Skip(message string) {
	block.Line(fmt.Sprintf(symbolLineTemplateConstant, SkipSymbol, MutedStyle.Render(message)))
}

// Success records a positive outcome.
func (block *RepositoryBlock) Success(message string) {
	block.Line(SuccessStyle.Render(fmt.Sprintf(symbolLineTemplateConstant, SuccessSymbol, message)))
}

// Failure records a failed step.
func (block *RepositoryBlock) Failure(message string) {
	block.Line(ErrorStyle.Render(fmt.Sprintf(symbolLineTemplateConstant, FailureSymbol, message)))
}

// Separator records a muted horizontal rule.
func (block *RepositoryBlock) Separator() {
	block.Line(MutedStyle.Render(strings.Repeat(separatorCharacterConstant, separatorWidthConstant)))
}

// Line records one raw line.
func (block *RepositoryBlock) Line(text string) {
	block.buffer.WriteString(text)
	block.buffer.WriteString(blockLineTerminatorConstant)
}

// String returns the accumulated block.
func (block *RepositoryBlock) String() string {
	return block.buffer.String()
}

// WriteTo writes the accumulated block, followed by a blank line, with a single Write call.
func (block *RepositoryBlock) WriteTo(writer io.Writer) (int64, error) {
	if writer == nil || block.buffer.Len() == 0 {
		return 0, nil
	}
	contents := append(block.buffer.Bytes(), blockLineTerminatorConstant...)
	bytesWritten, writeError := writer.Write(contents)
	return int64(bytesWritten), writeError
}

// RenderSummary formats the success and failure counts of a batch.
func RenderSummary(succeeded int, failed int) string {
	summary := fmt.Sprintf(summaryTemplateConstant, succeeded, failed)
	if failed > 0 {
		return ErrorStyle.Render(summary)
	}
	return SuccessStyle.Render(summary)
}
