package ui

import "github.com/charmbracelet/lipgloss"

const (
	colorTeal  = "#2DD4BF"
	colorAmber = "#FBBF24"
	colorRed   = "#F87171"
	colorSlate = "#94A3B8"
)

var (
	Primary = lipgloss.Color(colorTeal)
	Warning = lipgloss.Color(colorAmber)
	Danger  = lipgloss.Color(colorRed)
	Muted   = lipgloss.Color(colorSlate)
)
