package redact

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// StageErrorPrefix precedes the input of a stage that failed.
	StageErrorPrefix = "<redaction error>: "
	// FailurePrefix precedes the diagnostic emitted when the whole pipeline fails.
	FailurePrefix = "<redaction failed> "
)

var (
	ErrInvalidMarker = errors.New("invalid sensitive marker")

	errGroupIndex     = errors.New("capture group out of range")
	errGroupUnmatched = errors.New("capture group did not participate")
	errMissingMatch   = errors.New("match span missing")
)

// RuleError reports a failure while applying a single rule.
type RuleError struct {
	Rule string
	Err  error
}

func (e *RuleError) Error() string {
	return fmt.Sprintf("rule %s: %v", e.Rule, e.Err)
}

func (e *RuleError) Unwrap() error { return e.Err }

// PanicError carries a runtime fault recovered at the Redact boundary.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	if err, ok := e.Value.(error); ok {
		return err.Error()
	}
	return fmt.Sprint(e.Value)
}

func (e *PanicError) Unwrap() error {
	err, _ := e.Value.(error)
	return err
}

// Diagnostic renders err as the replacement text for a failed redaction.
func Diagnostic(err error) string {
	if err == nil {
		return FailurePrefix + "unknown"
	}
	return FailurePrefix + Category(err) + ": " + err.Error()
}

// Category returns the unqualified type name of the innermost cause of err.
func Category(err error) string {
	if err == nil {
		return ""
	}
	var pe *PanicError
	if errors.As(err, &pe) {
		if inner, ok := pe.Value.(error); ok {
			return typeName(inner)
		}
		return typeName(pe.Value)
	}
	return typeName(err)
}

func typeName(v any) string {
	name := strings.TrimLeft(fmt.Sprintf("%T", v), "*")
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	return name
}
