package ui

import (
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// Theme returns the form theme used by `logmask init`. Focused fields use
// the primary color, blurred ones fall back to muted text, and validation
// errors use the danger color shared with the summary line.
func Theme() *huh.Theme {
	t := huh.ThemeBase()
	t.Form.Base = t.Form.Base.PaddingLeft(1)
	t.Group.Title = fg(Primary).Bold(true).Underline(true)
	t.Group.Description = fg(Muted).Italic(true)

	paintFields(&t.Focused, Primary)
	paintFields(&t.Blurred, Muted)
	t.Blurred.SelectSelector = lipgloss.NewStyle().SetString("  ")
	t.Blurred.MultiSelectSelector = lipgloss.NewStyle().SetString("  ")

	t.Focused.FocusedButton = t.Focused.FocusedButton.Foreground(lipgloss.Color("0")).Background(Primary).Bold(true)
	t.Focused.BlurredButton = t.Focused.BlurredButton.Foreground(Muted)
	return t
}

// paintFields applies one accent color to a field style set.
func paintFields(s *huh.FieldStyles, accent lipgloss.Color) {
	s.Title = fg(accent).Bold(accent == Primary)
	s.Description = fg(Muted)
	s.ErrorIndicator = fg(Danger).SetString(" !")
	s.ErrorMessage = fg(Danger)
	s.SelectSelector = fg(accent).SetString("> ")
	s.MultiSelectSelector = fg(accent).SetString("> ")
	s.SelectedOption = fg(accent)
	s.SelectedPrefix = fg(accent).SetString("(x) ")
	s.UnselectedPrefix = fg(Muted).SetString("( ) ")
	s.TextInput.Cursor = fg(Warning)
	s.TextInput.Prompt = fg(accent)
}

func fg(c lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(c)
}
