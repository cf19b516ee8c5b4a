// Package ui renders the end-of-run summary, styled with lipgloss when the
// output is an interactive terminal.
package ui
