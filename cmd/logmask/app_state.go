package main

import (
	"fmt"

	"github.com/suryansh-23/logmask/internal/config"
	"github.com/suryansh-23/logmask/internal/debug"
	"github.com/suryansh-23/logmask/internal/redact"
)

type appState struct {
	cfg       config.Config
	cfgFound  bool
	cfgPath   string
	cfgSource string
	redactor  *redact.Redactor
	logger    *debug.Logger
}

// eventLogger returns the logger for per-line redaction events, or nil when
// event logging is off.
func (s *appState) eventLogger(component string) *debug.Logger {
	if !s.cfg.Debug.LogEvents {
		return nil
	}
	return s.logger.With("component", component)
}

type exitCodeError struct {
	code int
}

func (e *exitCodeError) Error() string {
	return fmt.Sprintf("command exited with code %d", e.code)
}
