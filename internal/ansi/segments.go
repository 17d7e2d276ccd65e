package ansi

// SegmentKind identifies splitter output types.
type SegmentKind int

const (
	SegmentText SegmentKind = iota
	SegmentEscape
)

const esc = 0x1b

// Segment holds a classified slice of a line.
type Segment struct {
	Kind SegmentKind
	Text string
}

// HasEscape reports whether s contains an ESC byte.
func HasEscape(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] == esc {
			return true
		}
	}
	return false
}

// Split breaks s into alternating text and escape-sequence segments.
// An unterminated trailing sequence is returned as an escape segment.
func Split(s string) []Segment {
	var segments []Segment
	textStart := 0
	i := 0
	for i < len(s) {
		if s[i] != esc {
			i++
			continue
		}
		if i > textStart {
			segments = append(segments, Segment{Kind: SegmentText, Text: s[textStart:i]})
		}
		end := sequenceEnd(s, i)
		segments = append(segments, Segment{Kind: SegmentEscape, Text: s[i:end]})
		i = end
		textStart = end
	}
	if textStart < len(s) {
		segments = append(segments, Segment{Kind: SegmentText, Text: s[textStart:]})
	}
	return segments
}

// sequenceEnd returns the index just past the escape sequence starting at start.
func sequenceEnd(s string, start int) int {
	i := start + 1
	if i >= len(s) {
		return len(s)
	}
	intro := s[i]
	i++
	switch intro {
	case '[':
		// CSI: parameters and intermediates, then a final byte in 0x40-0x7e.
		for i < len(s) {
			b := s[i]
			i++
			if b >= 0x40 && b <= 0x7e {
				return i
			}
		}
		return len(s)
	case ']', 'P', 'X', '^', '_':
		// String sequences end at ST (ESC \); OSC may also end at BEL.
		for i < len(s) {
			b := s[i]
			if intro == ']' && b == 0x07 {
				return i + 1
			}
			if b == esc && i+1 < len(s) && s[i+1] == '\\' {
				return i + 2
			}
			i++
		}
		return len(s)
	default:
		return i
	}
}
