package debug

import (
	"bytes"
	"strings"
	"testing"
)

func TestDisabledLoggerDiscards(t *testing.T) {
	var buf bytes.Buffer
	l := New(false, TextHandler(&buf))
	l.Infof("hello %s", "world")
	if buf.Len() != 0 {
		t.Fatalf("expected no output, got %q", buf.String())
	}
}

func TestNilLoggerIsSafe(t *testing.T) {
	var l *Logger
	l.Infof("ignored")
	l.Warnf("ignored")
	if l.Enabled() {
		t.Fatalf("nil logger must be disabled")
	}
	if l.With("k", "v") != nil {
		t.Fatalf("With on nil logger must return nil")
	}
}

func TestEnabledLoggerWritesLevelAndAttrs(t *testing.T) {
	var buf bytes.Buffer
	l := New(true, TextHandler(&buf)).With("component", "stream")
	l.Warnf("line %d too long", 3)
	out := buf.String()
	if !strings.Contains(out, "level=WARN") {
		t.Fatalf("missing level: %q", out)
	}
	if !strings.Contains(out, `msg="line 3 too long"`) {
		t.Fatalf("missing message: %q", out)
	}
	if !strings.Contains(out, "component=stream") {
		t.Fatalf("missing attr: %q", out)
	}
}
