// Package redact masks sensitive payloads and oversized hex/base64 dumps in
// formatted log messages.
package redact

import "github.com/suryansh-23/logmask/internal/config"

// Redactor applies the sensitive-marker stage and then the oversized-token
// stage to a message. It is immutable after construction and safe for
// concurrent use.
type Redactor struct {
	sensitive []rule
	oversized []rule
}

// Report counts what a redaction changed.
type Report struct {
	Sensitive   int
	Oversized   int
	StageErrors int
	// Failures counts messages replaced by a failure diagnostic.
	Failures int
}

// Add accumulates other into r.
func (r *Report) Add(other Report) {
	r.Sensitive += other.Sensitive
	r.Oversized += other.Oversized
	r.StageErrors += other.StageErrors
	r.Failures += other.Failures
}

// Changed reports whether any replacement happened.
func (r Report) Changed() bool {
	return r.Sensitive > 0 || r.Oversized > 0 || r.StageErrors > 0 || r.Failures > 0
}

// NewRedactor compiles the rule tables enabled by cfg.
func NewRedactor(cfg config.Redaction) (*Redactor, error) {
	r := &Redactor{}
	if cfg.Sensitive.Enabled {
		rules, err := buildSensitiveRules(cfg.Sensitive)
		if err != nil {
			return nil, err
		}
		r.sensitive = rules
	}
	if cfg.Oversized.Enabled {
		rules, err := buildOversizedRules(cfg.Oversized)
		if err != nil {
			return nil, err
		}
		r.oversized = rules
	}
	return r, nil
}

// Rules lists the compiled rules in evaluation order.
func (r *Redactor) Rules() []RuleInfo {
	if r == nil {
		return nil
	}
	out := make([]RuleInfo, 0, len(r.sensitive)+len(r.oversized))
	for _, rl := range r.sensitive {
		out = append(out, RuleInfo{Name: rl.name, Stage: rl.stage})
	}
	for _, rl := range r.oversized {
		out = append(out, RuleInfo{Name: rl.name, Stage: rl.stage})
	}
	return out
}

// Redact returns message with sensitive payloads and oversized runs masked.
// It never panics; failures are reported inline in the returned text.
func (r *Redactor) Redact(message string) string {
	out, _ := r.RedactReport(message)
	return out
}

// RedactReport is Redact plus counts of what was replaced.
func (r *Redactor) RedactReport(message string) (out string, rep Report) {
	if r == nil {
		return message, Report{}
	}
	defer func() {
		if v := recover(); v != nil {
			out = Diagnostic(&PanicError{Value: v})
			rep = Report{Failures: 1}
		}
	}()

	out = message
	masked, n, err := runStage(r.sensitive, out)
	if err != nil {
		out = StageErrorPrefix + out
		rep.StageErrors++
	} else {
		out = masked
		rep.Sensitive = n
	}

	// A message no longer than the threshold cannot hold a qualifying run.
	if len(out) <= OversizedThreshold {
		return out, rep
	}
	masked, n, err = runStage(r.oversized, out)
	if err != nil {
		out = StageErrorPrefix + out
		rep.StageErrors++
	} else {
		out = masked
		rep.Oversized = n
	}
	return out, rep
}

// runStage folds s through rules. Any rule error aborts the stage.
func runStage(rules []rule, s string) (string, int, error) {
	total := 0
	for _, rl := range rules {
		next, n, err := rl.apply(s)
		if err != nil {
			return s, 0, err
		}
		s = next
		total += n
	}
	return s, total, nil
}
