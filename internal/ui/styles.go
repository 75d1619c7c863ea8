package ui

import "github.com/charmbracelet/lipgloss"

// Palette used by repository blocks and summaries.
var (
	AccentColor   lipgloss.TerminalColor = lipgloss.Color("62")
	SuccessColor  lipgloss.TerminalColor = lipgloss.Color("82")
	ErrorColor    lipgloss.TerminalColor = lipgloss.Color("196")
	WarningColor  lipgloss.TerminalColor = lipgloss.Color("214")
	MutedColor    lipgloss.TerminalColor = lipgloss.Color("240")
	EmphasisColor lipgloss.TerminalColor = lipgloss.Color("255")
)

// Styles applied to console output.
var (
	EmphasisStyle = lipgloss.NewStyle().Foreground(EmphasisColor).Bold(true)
	AccentStyle   = lipgloss.NewStyle().Foreground(AccentColor)
	SuccessStyle  = lipgloss.NewStyle().Foreground(SuccessColor)
	ErrorStyle    = lipgloss.NewStyle().Foreground(ErrorColor)
	WarningStyle  = lipgloss.NewStyle().Foreground(WarningColor)
	MutedStyle    = lipgloss.NewStyle().Foreground(MutedColor)
)

// Symbols prefixed to block lines.
const (
	RepositorySymbol = "📦"
	CommandSymbol    = "⚡"
	SuccessSymbol    = "✓"
	FailureSymbol    = "✗"
	SkipSymbol       = "⏭"
	InfoSymbol       = "ℹ"
	QuestionSymbol   = "❓"
	BrowserSymbol    = "🌐"
)
