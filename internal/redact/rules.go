package redact

import (
	"encoding/hex"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/suryansh-23/logmask/internal/config"
	"github.com/suryansh-23/logmask/internal/types"
)

// OversizedThreshold is the run length a hex or base64 token must exceed
// before it is replaced by a size marker.
const OversizedThreshold = 1000

const (
	lengthLabel  = "LENGTH:"
	hexAlphabet  = `[0-9a-fA-F]`
	b64Alphabet  = `[0-9a-zA-Z+/]`
	b64Padding   = `={0,3}`
	slashHex     = "2f"
	closeSlashes = `/{0,2}`
)

// rule pairs a compiled matcher with the builder of its replacement text.
type rule struct {
	name    string
	stage   types.Stage
	re    *regexp.Regexp
	// minRun is the length a whole match must exceed; zero disables the check.
	minRun int
	render func(s string, loc []int) (string, error)
}

// RuleInfo describes a compiled rule.
type RuleInfo struct {
	Name  string
	Stage types.Stage
}

func buildSensitiveRules(cfg config.Sensitive) ([]rule, error) {
	var rules []rule
	for _, marker := range cfg.Markers {
		if err := config.ValidateMarker(marker); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidMarker, err)
		}
		for _, enc := range types.Encodings() {
			if !cfg.EncodingEnabled(enc) {
				continue
			}
			r, err := sensitiveRule(marker, enc)
			if err != nil {
				return nil, err
			}
			rules = append(rules, r)
		}
	}
	return rules, nil
}

func sensitiveRule(marker string, enc types.Encoding) (rule, error) {
	quoted := regexp.QuoteMeta(marker)
	open := "<" + quoted + ">"
	closing := "<" + closeSlashes + quoted + ">"

	var pattern string
	render := renderRawTags
	switch enc {
	case types.EncodingRawHex:
		pattern = "(" + open + ")(" + hexAlphabet + "*)(" + closing + ")"
	case types.EncodingBase64:
		pattern = "(" + open + ")(" + b64Alphabet + "*" + b64Padding + ")(" + closing + ")"
	case types.EncodingHexEncoded:
		name := hex.EncodeToString([]byte(marker + ">"))
		lt := hex.EncodeToString([]byte("<"))
		// The tags are hex too, so the payload stops at the first close tag.
		pattern = "(?i)(" + lt + name + ")([0-9a-f]*?)(" + lt + "(?:" + slashHex + "){0,2}" + name + ")"
		render = renderDecodedTags
	default:
		return rule{}, fmt.Errorf("unknown encoding %q", enc)
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return rule{}, fmt.Errorf("compile %s rule for %q: %w", enc, marker, err)
	}
	return rule{
		name:   fmt.Sprintf("%s/%s", marker, enc),
		stage:  types.StageSensitive,
		re:     re,
		render: render,
	}, nil
}

func buildOversizedRules(cfg config.Oversized) ([]rule, error) {
	var rules []rule
	for _, kind := range types.RunKinds() {
		if !cfg.KindEnabled(kind) {
			continue
		}
		var pattern string
		switch kind {
		case types.RunHex:
			pattern = "(" + hexAlphabet + "+)"
		case types.RunBase64:
			pattern = "(" + b64Alphabet + "+)" + b64Padding
		}
		// RE2 caps repeat counts at 1000, so runs are matched unbounded and
		// filtered by length instead of using {n,}.
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("compile %s run rule: %w", kind, err)
		}
		rules = append(rules, rule{
			name:   "oversized/" + string(kind),
			stage:  types.StageOversized,
			re:     re,
			minRun: OversizedThreshold,
			render: renderTooBig,
		})
	}
	return rules, nil
}

// apply replaces every qualifying match of rl in s.
// Each occurrence is rendered from its own submatches.
func (rl rule) apply(s string) (string, int, error) {
	locs := rl.re.FindAllStringSubmatchIndex(s, -1)
	if len(locs) == 0 {
		return s, 0, nil
	}
	var b strings.Builder
	cursor := 0
	count := 0
	for _, loc := range locs {
		// Base64 padding counts toward the run length.
		if rl.minRun > 0 && loc[1]-loc[0] <= rl.minRun {
			continue
		}
		repl, err := rl.render(s, loc)
		if err != nil {
			return s, 0, &RuleError{Rule: rl.name, Err: err}
		}
		if count == 0 {
			b.Grow(len(s))
		}
		b.WriteString(s[cursor:loc[0]])
		b.WriteString(repl)
		cursor = loc[1]
		count++
	}
	if count == 0 {
		return s, 0, nil
	}
	b.WriteString(s[cursor:])
	return b.String(), count, nil
}

func renderRawTags(s string, loc []int) (string, error) {
	open, err := group(s, loc, 1)
	if err != nil {
		return "", err
	}
	payload, err := group(s, loc, 2)
	if err != nil {
		return "", err
	}
	closing, err := group(s, loc, 3)
	if err != nil {
		return "", err
	}
	return open + lengthLabel + strconv.Itoa(utf8.RuneCountInString(payload)) + closing, nil
}

func renderDecodedTags(s string, loc []int) (string, error) {
	open, err := decodedGroup(s, loc, 1)
	if err != nil {
		return "", err
	}
	payload, err := group(s, loc, 2)
	if err != nil {
		return "", err
	}
	closing, err := decodedGroup(s, loc, 3)
	if err != nil {
		return "", err
	}
	return open + lengthLabel + strconv.Itoa(utf8.RuneCountInString(payload)) + closing, nil
}

func renderTooBig(s string, loc []int) (string, error) {
	if len(loc) < 2 || loc[0] < 0 || loc[1] < loc[0] {
		return "", errMissingMatch
	}
	return "<TOO BIG:" + strconv.Itoa(utf8.RuneCountInString(s[loc[0]:loc[1]])) + ">", nil
}

func group(s string, loc []int, idx int) (string, error) {
	start, end, err := captureBounds(loc, idx)
	if err != nil {
		return "", err
	}
	return s[start:end], nil
}

func decodedGroup(s string, loc []int, idx int) (string, error) {
	raw, err := group(s, loc, idx)
	if err != nil {
		return "", err
	}
	decoded, err := hex.DecodeString(raw)
	if err != nil {
		return "", fmt.Errorf("decode tag %q: %w", raw, err)
	}
	return string(decoded), nil
}

func captureBounds(submatches []int, idx int) (int, int, error) {
	if idx < 0 || idx*2+1 >= len(submatches) {
		return -1, -1, fmt.Errorf("%w: %d", errGroupIndex, idx)
	}
	start, end := submatches[idx*2], submatches[idx*2+1]
	if start < 0 || end < start {
		return -1, -1, fmt.Errorf("%w: %d", errGroupUnmatched, idx)
	}
	return start, end, nil
}
