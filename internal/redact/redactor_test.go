package redact

import (
	"errors"
	"regexp"
	"strings"
	"sync"
	"testing"

	"github.com/suryansh-23/logmask/internal/config"
	"github.com/suryansh-23/logmask/internal/types"
)

const (
	hexOpen        = "3c53656e736974697665446174613e"
	hexClose       = "3c2f53656e736974697665446174613e"
	hexDoubleClose = "3c2f2f53656e736974697665446174613e"
)

func newDefaultRedactor(t *testing.T) *Redactor {
	t.Helper()
	r, err := NewRedactor(config.DefaultConfig().Redaction)
	if err != nil {
		t.Fatalf("new redactor: %v", err)
	}
	return r
}

func hexRun(n int) string {
	return strings.Repeat("0123456789abcdef", n/16+1)[:n]
}

func TestRedactLeavesPlainMessages(t *testing.T) {
	r := newDefaultRedactor(t)
	cases := []string{
		"",
		"hello world",
		"user logged in id=42",
		"<SensitiveData>has space</SensitiveData>",
		"<SensitiveData>unterminated",
		"<Secret>abcd</Secret>",
		hexRun(64),
	}
	for _, in := range cases {
		if got := r.Redact(in); got != in {
			t.Fatalf("Redact(%q) = %q", in, got)
		}
	}
}

func TestRedactSensitiveEncodings(t *testing.T) {
	r := newDefaultRedactor(t)
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"raw hex", "<SensitiveData>deadbeef</SensitiveData>", "<SensitiveData>LENGTH:8</SensitiveData>"},
		{"base64", "<SensitiveData>SGVsbG8=</SensitiveData>", "<SensitiveData>LENGTH:8</SensitiveData>"},
		{"base64 word", "key=<SensitiveData>null</SensitiveData>", "key=<SensitiveData>LENGTH:4</SensitiveData>"},
		{"empty payload", "<SensitiveData></SensitiveData>", "<SensitiveData>LENGTH:0</SensitiveData>"},
		{"hex encoded", hexOpen + "deadbeef" + hexClose, "<SensitiveData>LENGTH:8</SensitiveData>"},
		{"hex encoded upper", strings.ToUpper(hexOpen + "deadbeef" + hexClose), "<SensitiveData>LENGTH:8</SensitiveData>"},
		{"hex encoded inline", "token " + strings.ToUpper(hexOpen) + "00" + hexClose + " end", "token <SensitiveData>LENGTH:2</SensitiveData> end"},
		{"double slash close", "<SensitiveData>abcd<//SensitiveData>", "<SensitiveData>LENGTH:4<//SensitiveData>"},
		{"unslashed close", "<SensitiveData>abcd<SensitiveData>", "<SensitiveData>LENGTH:4<SensitiveData>"},
		{"hex encoded double slash", hexOpen + "abcd" + hexDoubleClose, "<SensitiveData>LENGTH:4<//SensitiveData>"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := r.Redact(tc.in); got != tc.want {
				t.Fatalf("Redact(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestRedactMixedEncodingsInOneMessage(t *testing.T) {
	r := newDefaultRedactor(t)
	in := "<SensitiveData>abcd</SensitiveData> " + hexOpen + "010203" + hexClose + " <SensitiveData>SGk=</SensitiveData>"
	want := "<SensitiveData>LENGTH:4</SensitiveData> <SensitiveData>LENGTH:6</SensitiveData> <SensitiveData>LENGTH:4</SensitiveData>"
	out, rep := r.RedactReport(in)
	if out != want {
		t.Fatalf("out = %q, want %q", out, want)
	}
	if rep.Sensitive != 3 || rep.Oversized != 0 || rep.StageErrors != 0 || rep.Failures != 0 {
		t.Fatalf("report = %+v", rep)
	}
}

func TestRedactReportsLengthPerOccurrence(t *testing.T) {
	r := newDefaultRedactor(t)
	in := "<SensitiveData>ab</SensitiveData> and <SensitiveData>abcdef</SensitiveData>"
	want := "<SensitiveData>LENGTH:2</SensitiveData> and <SensitiveData>LENGTH:6</SensitiveData>"
	if got := r.Redact(in); got != want {
		t.Fatalf("Redact = %q, want %q", got, want)
	}

	adjacent := hexOpen + "aa" + hexClose + hexOpen + "bbbbbb" + hexClose
	want = "<SensitiveData>LENGTH:2</SensitiveData><SensitiveData>LENGTH:6</SensitiveData>"
	out, rep := r.RedactReport(adjacent)
	if out != want {
		t.Fatalf("adjacent hex encoded = %q, want %q", out, want)
	}
	if rep.Sensitive != 2 {
		t.Fatalf("sensitive = %d, want 2", rep.Sensitive)
	}
}

func TestRedactBareOpenTagClosesPayload(t *testing.T) {
	in := "<SensitiveData>ab<SensitiveData>cd</SensitiveData>"

	// The second open tag closes "ab"; the base64 rule then masks "cd".
	r := newDefaultRedactor(t)
	if got := r.Redact(in); got != "<SensitiveData>LENGTH:2<SensitiveData>LENGTH:2</SensitiveData>" {
		t.Fatalf("default encodings = %q", got)
	}

	// With raw hex alone the consumed tag cannot open "cd" again.
	cfg := config.DefaultConfig().Redaction
	cfg.Sensitive.Encodings = []types.Encoding{types.EncodingRawHex}
	r, err := NewRedactor(cfg)
	if err != nil {
		t.Fatalf("new redactor: %v", err)
	}
	if got := r.Redact(in); got != "<SensitiveData>LENGTH:2<SensitiveData>cd</SensitiveData>" {
		t.Fatalf("raw hex only = %q", got)
	}
}

func TestRedactCustomMarkers(t *testing.T) {
	cfg := config.DefaultConfig().Redaction
	cfg.Sensitive.Markers = []string{"SensitiveData", "Secret"}
	r, err := NewRedactor(cfg)
	if err != nil {
		t.Fatalf("new redactor: %v", err)
	}
	in := "<Secret>abcd</Secret> <SensitiveData>ab</SensitiveData> 3c5365637265743e" + "ff" + "3c2f5365637265743e"
	want := "<Secret>LENGTH:4</Secret> <SensitiveData>LENGTH:2</SensitiveData> <Secret>LENGTH:2</Secret>"
	if got := r.Redact(in); got != want {
		t.Fatalf("Redact = %q, want %q", got, want)
	}
}

func TestRedactOversizedThreshold(t *testing.T) {
	r := newDefaultRedactor(t)
	for _, n := range []int{999, OversizedThreshold} {
		in := hexRun(n)
		if got := r.Redact(in); got != in {
			t.Fatalf("run of %d changed to %q", n, got)
		}
	}
	if got := r.Redact(hexRun(OversizedThreshold + 1)); got != "<TOO BIG:1001>" {
		t.Fatalf("run of 1001 = %q", got)
	}
	if got := r.Redact(hexRun(1500)); got != "<TOO BIG:1500>" {
		t.Fatalf("run of 1500 = %q", got)
	}
}

func TestRedactOversizedKeepsSurroundingText(t *testing.T) {
	r := newDefaultRedactor(t)
	out, rep := r.RedactReport("before " + hexRun(1500) + " after")
	if out != "before <TOO BIG:1500> after" {
		t.Fatalf("out = %q", out)
	}
	if rep.Oversized != 1 {
		t.Fatalf("oversized = %d", rep.Oversized)
	}
	if got := r.Redact("xyz" + hexRun(1500)); got != "xyz<TOO BIG:1500>" {
		t.Fatalf("glued prefix = %q", got)
	}
}

func TestRedactOversizedBase64CountsPadding(t *testing.T) {
	r := newDefaultRedactor(t)
	blob := strings.Repeat("QUJD", 300)
	if got := r.Redact(blob + "=="); got != "<TOO BIG:1202>" {
		t.Fatalf("padded run = %q", got)
	}
	if got := r.Redact("blob=" + blob + "=== tail"); got != "blob=<TOO BIG:1203> tail" {
		t.Fatalf("embedded run = %q", got)
	}
}

func TestRedactOversizedBase64PaddingCrossesThreshold(t *testing.T) {
	r := newDefaultRedactor(t)
	blob := strings.Repeat("QUJD", 250)
	if got := r.Redact(blob); got != blob {
		t.Fatalf("run of exactly 1000 changed to %q", got)
	}
	if got := r.Redact(blob + "="); got != "<TOO BIG:1001>" {
		t.Fatalf("1000 chars plus padding = %q", got)
	}
}

func TestRedactSensitiveThenOversized(t *testing.T) {
	r := newDefaultRedactor(t)
	in := "<SensitiveData>" + hexRun(1200) + "</SensitiveData> " + hexRun(1100)
	want := "<SensitiveData>LENGTH:1200</SensitiveData> <TOO BIG:1100>"
	out, rep := r.RedactReport(in)
	if out != want {
		t.Fatalf("out = %q", out)
	}
	if rep.Sensitive != 1 || rep.Oversized != 1 {
		t.Fatalf("report = %+v", rep)
	}
}

func TestRedactStageToggles(t *testing.T) {
	sensitiveOnly := config.DefaultConfig().Redaction
	sensitiveOnly.Oversized.Enabled = false
	r, err := NewRedactor(sensitiveOnly)
	if err != nil {
		t.Fatalf("new redactor: %v", err)
	}
	big := hexRun(1500)
	if got := r.Redact(big); got != big {
		t.Fatalf("oversized stage ran while disabled")
	}

	oversizedOnly := config.DefaultConfig().Redaction
	oversizedOnly.Sensitive.Enabled = false
	r, err = NewRedactor(oversizedOnly)
	if err != nil {
		t.Fatalf("new redactor: %v", err)
	}
	tagged := "<SensitiveData>deadbeef</SensitiveData>"
	if got := r.Redact(tagged); got != tagged {
		t.Fatalf("sensitive stage ran while disabled: %q", got)
	}

	onlyRawHex := config.DefaultConfig().Redaction
	onlyRawHex.Sensitive.Encodings = []types.Encoding{types.EncodingRawHex}
	r, err = NewRedactor(onlyRawHex)
	if err != nil {
		t.Fatalf("new redactor: %v", err)
	}
	if got := r.Redact("<SensitiveData>SGk=</SensitiveData>"); got != "<SensitiveData>SGk=</SensitiveData>" {
		t.Fatalf("base64 rule ran while disabled: %q", got)
	}
}

func TestRedactStageErrorFallback(t *testing.T) {
	// renderRawTags needs three groups; these patterns have none.
	broken := rule{
		name:   "broken",
		re:     regexp.MustCompile(`x`),
		render: renderRawTags,
	}
	r := &Redactor{sensitive: []rule{broken}}
	out, rep := r.RedactReport("a x b")
	if out != StageErrorPrefix+"a x b" {
		t.Fatalf("sensitive fallback = %q", out)
	}
	if rep.StageErrors != 1 || rep.Failures != 0 {
		t.Fatalf("report = %+v", rep)
	}

	broken.re = regexp.MustCompile(`x+`)
	broken.minRun = OversizedThreshold
	r = &Redactor{oversized: []rule{broken}}
	in := strings.Repeat("x", 1200)
	if got := r.Redact(in); got != StageErrorPrefix+in {
		t.Fatalf("oversized fallback prefix = %q", got[:40])
	}
}

func TestRedactRecoversPanics(t *testing.T) {
	panicking := func(v any) *Redactor {
		return &Redactor{sensitive: []rule{{
			name: "panic",
			re:   regexp.MustCompile(`x`),
			render: func(string, []int) (string, error) {
				panic(v)
			},
		}}}
	}

	out, rep := panicking("boom").RedactReport("x")
	if out != "<redaction failed> string: boom" {
		t.Fatalf("out = %q", out)
	}
	if rep.Failures != 1 {
		t.Fatalf("failures = %d", rep.Failures)
	}

	out = panicking(&RuleError{Rule: "x", Err: errors.New("kaput")}).Redact("x")
	if out != "<redaction failed> RuleError: rule x: kaput" {
		t.Fatalf("out = %q", out)
	}
}

func TestRedactNilRedactor(t *testing.T) {
	var r *Redactor
	if got := r.Redact("abc"); got != "abc" {
		t.Fatalf("nil redactor = %q", got)
	}
	if r.Rules() != nil {
		t.Fatalf("nil redactor has rules")
	}
}

func TestRedactOddInputsDoNotFail(t *testing.T) {
	r := newDefaultRedactor(t)
	cases := []string{
		"\x00\x00<SensitiveData>\x00</SensitiveData>",
		"<SensitiveData><SensitiveData>ab</SensitiveData></SensitiveData>",
		"<SensitiveData>ab<SensitiveData>cd</SensitiveData>",
		"\xff\xfe" + hexRun(2000),
		strings.Repeat("<SensitiveData>", 500),
		strings.Repeat("=", 3000),
	}
	for _, in := range cases {
		out := r.Redact(in)
		if strings.HasPrefix(out, FailurePrefix) || strings.HasPrefix(out, StageErrorPrefix) {
			t.Fatalf("Redact(%.40q) degraded: %.80q", in, out)
		}
	}
}

func TestRedactIdempotentOnWellFormedInput(t *testing.T) {
	r := newDefaultRedactor(t)
	inputs := []string{
		"<SensitiveData>deadbeef</SensitiveData>",
		hexOpen + "deadbeef" + hexClose,
		"id " + hexRun(1500) + " done",
	}
	for _, in := range inputs {
		once := r.Redact(in)
		if twice := r.Redact(once); twice != once {
			t.Fatalf("second pass changed %q to %q", once, twice)
		}
	}
}

func TestRedactConcurrentUse(t *testing.T) {
	r := newDefaultRedactor(t)
	in := "<SensitiveData>deadbeef</SensitiveData> " + hexRun(1500)
	want := "<SensitiveData>LENGTH:8</SensitiveData> <TOO BIG:1500>"

	var wg sync.WaitGroup
	errs := make(chan string, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				if got := r.Redact(in); got != want {
					errs <- got
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	for got := range errs {
		t.Fatalf("concurrent Redact = %q", got)
	}
}

func TestRulesListsEvaluationOrder(t *testing.T) {
	r := newDefaultRedactor(t)
	var names []string
	for _, info := range r.Rules() {
		names = append(names, info.Name)
	}
	want := []string{
		"SensitiveData/raw_hex",
		"SensitiveData/hex_encoded",
		"SensitiveData/base64",
		"oversized/hex",
		"oversized/base64",
	}
	if strings.Join(names, ",") != strings.Join(want, ",") {
		t.Fatalf("rules = %v", names)
	}
}

func TestNewRedactorRejectsBadMarker(t *testing.T) {
	cfg := config.DefaultConfig().Redaction
	cfg.Sensitive.Markers = []string{"bad marker>"}
	if _, err := NewRedactor(cfg); !errors.Is(err, ErrInvalidMarker) {
		t.Fatalf("err = %v, want ErrInvalidMarker", err)
	}
}
