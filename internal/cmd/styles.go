package cmd

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

var (
	styleTitle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))   // cyan
	styleLabel = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))             // gray
	styleValue = lipgloss.NewStyle().Bold(true)
	styleOK    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))              // green
	styleWarn  = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))             // yellow
	styleError = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)  // red
)

// statLine formats one aligned label/value row for terminal output.
func statLine(label string, value any) string {
	return "  " + styleLabel.Render(fmt.Sprintf("%-24s", label)) + " " + styleValue.Render(fmt.Sprint(value))
}
