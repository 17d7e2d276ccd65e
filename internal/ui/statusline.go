// Package ui holds terminal presentation helpers.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Counts is what a redaction run reports to the summary line.
type Counts struct {
	Lines       int
	Sensitive   int
	Oversized   int
	StageErrors int
	Failed      int
}

// Summary formats the end-of-run line. It returns "" when nothing was
// processed. When color is set the line is styled by severity.
func Summary(c Counts, color bool) string {
	if c.Lines <= 0 {
		return ""
	}
	parts := []string{
		fmt.Sprintf("%d %s", c.Lines, plural(c.Lines, "line", "lines")),
		fmt.Sprintf("%d sensitive", c.Sensitive),
		fmt.Sprintf("%d oversized", c.Oversized),
	}
	if c.StageErrors > 0 {
		parts = append(parts, fmt.Sprintf("%d stage %s", c.StageErrors, plural(c.StageErrors, "error", "errors")))
	}
	if c.Failed > 0 {
		parts = append(parts, fmt.Sprintf("%d failed", c.Failed))
	}
	line := "logmask: " + strings.Join(parts, ", ")
	if !color {
		return line
	}
	style := lipgloss.NewStyle().Foreground(Muted)
	switch {
	case c.Failed > 0 || c.StageErrors > 0:
		style = lipgloss.NewStyle().Foreground(Danger).Bold(true)
	case c.Sensitive > 0 || c.Oversized > 0:
		style = lipgloss.NewStyle().Foreground(Warning)
	}
	return style.Render(line)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
