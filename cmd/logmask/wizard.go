package main

import (
	"errors"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/suryansh-23/logmask/internal/config"
	"github.com/suryansh-23/logmask/internal/redact"
	"github.com/suryansh-23/logmask/internal/ui"
)

const previewSample = "auth <SensitiveData>deadbeef</SensitiveData> ok"

// wizardModel renders the init form with a live preview of the redaction
// the current answers would produce.
type wizardModel struct {
	form  *huh.Form
	draft *initDraft
}

func (m wizardModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m wizardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	model, cmd := m.form.Update(msg)
	if f, ok := model.(*huh.Form); ok {
		m.form = f
	}
	return m, cmd
}

func (m wizardModel) View() string {
	return m.form.View() + "\n" + previewLine(m.draft)
}

func previewLine(d *initDraft) string {
	label := lipgloss.NewStyle().Foreground(ui.Muted).Render("Preview: ")
	r, err := redact.NewRedactor(d.apply(config.DefaultConfig()).Redaction)
	if err != nil {
		return label + lipgloss.NewStyle().Foreground(ui.Danger).Render(err.Error())
	}
	return label + lipgloss.NewStyle().Foreground(ui.Primary).Render(r.Redact(previewSample))
}

func runPreviewForm(form *huh.Form, draft *initDraft) error {
	if os.Getenv("TERM") == "dumb" {
		return form.Run()
	}

	form.SubmitCmd = tea.Quit
	form.CancelCmd = tea.Interrupt

	p := tea.NewProgram(wizardModel{form: form, draft: draft}, tea.WithOutput(os.Stderr), tea.WithInput(os.Stdin))
	m, err := p.Run()
	if err != nil {
		if errors.Is(err, tea.ErrInterrupted) {
			return huh.ErrUserAborted
		}
		return err
	}
	if wm, ok := m.(wizardModel); ok && wm.form.State == huh.StateAborted {
		return huh.ErrUserAborted
	}
	return nil
}
