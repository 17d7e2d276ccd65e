package redact

import (
	"bytes"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/suryansh-23/logmask/internal/ansi"
	"github.com/suryansh-23/logmask/internal/config"
	"github.com/suryansh-23/logmask/internal/debug"
)

// Stream redacts a byte stream line by line and writes the result to out.
// ANSI escape sequences are passed through untouched. A Stream is not safe
// for concurrent writers.
type Stream struct {
	out      io.Writer
	redactor *Redactor
	maxLine  int
	buffer   []byte
	logger   *debug.Logger

	lines  int
	report Report
	// err is sticky: after a failed write the stream drops its buffer
	// and rejects further output.
	err error
}

// NewStream returns a line-redacting writer. A nil logger disables event logs.
func NewStream(out io.Writer, r *Redactor, cfg config.Stream, logger *debug.Logger) *Stream {
	maxLine := cfg.MaxLineBytes
	if maxLine < 0 {
		maxLine = config.DefaultMaxLineBytes
	}
	return &Stream{
		out:      out,
		redactor: r,
		maxLine:  maxLine,
		logger:   logger,
	}
}

// Write buffers p and emits every complete line. When the underlying writer
// fails, n counts the bytes of p that were emitted before the failure and the
// rest of the buffer is discarded.
func (s *Stream) Write(p []byte) (int, error) {
	if s.err != nil {
		return 0, s.err
	}
	held := len(s.buffer)
	s.buffer = append(s.buffer, p...)
	consumed := 0
	for {
		idx := bytes.IndexByte(s.buffer[consumed:], '\n')
		if idx < 0 {
			break
		}
		end := consumed + idx + 1
		if err := s.emit(s.buffer[consumed:end]); err != nil {
			return s.fail(consumed-held, len(p), err)
		}
		consumed = end
	}
	for s.maxLine > 0 && len(s.buffer)-consumed >= s.maxLine {
		cut := utf8SafePrefixLen(s.buffer[consumed:], s.maxLine)
		if cut == 0 {
			cut = s.maxLine
		}
		if err := s.emit(s.buffer[consumed : consumed+cut]); err != nil {
			return s.fail(consumed-held, len(p), err)
		}
		consumed += cut
	}
	if consumed > 0 {
		s.buffer = append([]byte(nil), s.buffer[consumed:]...)
	}
	return len(p), nil
}

func (s *Stream) fail(written, size int, err error) (int, error) {
	s.err = err
	s.buffer = nil
	return min(max(written, 0), size), err
}

// Close flushes any pending partial line. The underlying writer is not closed.
func (s *Stream) Close() error {
	return s.Flush()
}

// Flush emits the buffered tail as a line without terminator.
func (s *Stream) Flush() error {
	if s.err != nil {
		return s.err
	}
	if len(s.buffer) == 0 {
		return nil
	}
	tail := s.buffer
	s.buffer = nil
	if err := s.emit(tail); err != nil {
		s.err = err
		return err
	}
	return nil
}

// Report returns the counts accumulated over all emitted lines.
func (s *Stream) Report() Report {
	return s.report
}

// Lines returns the number of lines emitted so far.
func (s *Stream) Lines() int {
	return s.lines
}

func (s *Stream) emit(chunk []byte) error {
	line := string(chunk)
	terminator := ""
	if strings.HasSuffix(line, "\n") {
		line = line[:len(line)-1]
		terminator = "\n"
	}
	redacted, rep := s.redactLine(line)
	if _, err := io.WriteString(s.out, redacted+terminator); err != nil {
		return err
	}
	s.lines++
	s.report.Add(rep)
	s.logEvent(rep)
	return nil
}

func (s *Stream) redactLine(line string) (string, Report) {
	if !ansi.HasEscape(line) {
		return s.redactor.RedactReport(line)
	}
	var (
		b   strings.Builder
		rep Report
	)
	b.Grow(len(line))
	for _, seg := range ansi.Split(line) {
		if seg.Kind == ansi.SegmentEscape {
			b.WriteString(seg.Text)
			continue
		}
		out, segRep := s.redactor.RedactReport(seg.Text)
		rep.Add(segRep)
		b.WriteString(out)
	}
	return b.String(), rep
}

func (s *Stream) logEvent(rep Report) {
	if s.logger == nil || !rep.Changed() {
		return
	}
	if rep.Failures > 0 || rep.StageErrors > 0 {
		s.logger.Warnf("redaction degraded line=%d stage_errors=%d failures=%d", s.lines, rep.StageErrors, rep.Failures)
		return
	}
	s.logger.Infof("redact event line=%d sensitive=%d oversized=%d", s.lines, rep.Sensitive, rep.Oversized)
}

func splitUTF8Tail(buf []byte) ([]byte, []byte) {
	if len(buf) == 0 {
		return nil, nil
	}
	start := len(buf) - 1
	for start >= 0 && !utf8.RuneStart(buf[start]) {
		start--
	}
	if start < 0 {
		return nil, buf
	}
	if utf8.FullRune(buf[start:]) {
		return buf, nil
	}
	return buf[:start], buf[start:]
}

func utf8SafePrefixLen(buf []byte, max int) int {
	if max <= 0 {
		return 0
	}
	if max > len(buf) {
		max = len(buf)
	}
	head, _ := splitUTF8Tail(buf[:max])
	return len(head)
}
