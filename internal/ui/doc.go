// Package ui formats console output: styled per-repository blocks that are written as one unit, batch
// summaries, and human-readable command lifecycle messages.
package ui
