package sink

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

type failingWriter struct{ err error }

func (f failingWriter) Write(p []byte) (int, error) { return 0, f.err }

type shortWriter struct{}

func (shortWriter) Write(p []byte) (int, error) { return len(p) / 2, nil }

func TestFanOutDuplicatesWrites(t *testing.T) {
	a, b := &bytes.Buffer{}, &bytes.Buffer{}
	f := NewFanOut(a, nil, b)

	n, err := f.Write([]byte("line\n"))
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if n != 5 {
		t.Fatalf("n = %d", n)
	}
	if a.String() != "line\n" || b.String() != "line\n" {
		t.Fatalf("a = %q b = %q", a.String(), b.String())
	}
}

func TestFanOutReturnsFirstError(t *testing.T) {
	boom := errors.New("boom")
	ok := &bytes.Buffer{}
	f := NewFanOut(ok, failingWriter{err: boom})

	if _, err := f.Write([]byte("x")); !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
	if ok.String() != "x" {
		t.Fatalf("healthy writer skipped: %q", ok.String())
	}
}

func TestFanOutDetectsShortWrite(t *testing.T) {
	f := NewFanOut(&bytes.Buffer{}, shortWriter{})
	if _, err := f.Write([]byte("abcd")); !errors.Is(err, io.ErrShortWrite) {
		t.Fatalf("err = %v", err)
	}
}
