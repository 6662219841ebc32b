package errors

import (
	"encoding/json"
	stderrors "errors"

	"github.com/minnieml-lang/mml/internal/span"
)

// Report is the canonical structured diagnostic: every analysis phase
// returns a slice of these instead of raising an exception (spec §3.6,
// §7). The schema tag keeps MML's error payloads distinguishable from
// any other tool consuming the same JSON shape.
type Report struct {
	Schema  string         `json:"schema"` // always "mml.error/v1"
	Code    string         `json:"code"`
	Phase   string         `json:"phase"` // "parser", "names", "types", "ownership", ...
	Message string         `json:"message"`
	Span    *span.Span     `json:"span,omitempty"`
	Data    map[string]any `json:"data,omitempty"`
	Fix     *Fix           `json:"fix,omitempty"`
}

// Fix is an optional suggested remediation, carried through from the
// parser's structured errors (spec §7: "messages suitable for direct
// display").
type Fix struct {
	Suggestion string  `json:"suggestion"`
	Confidence float64 `json:"confidence"`
}

const schema = "mml.error/v1"

// New builds a Report with the schema tag already set.
func New(code, phase, message string, sp span.Span) *Report {
	return &Report{Schema: schema, Code: code, Phase: phase, Message: message, Span: &sp}
}

// WithData attaches structured data and returns the same Report for
// chaining at the call site.
func (r *Report) WithData(data map[string]any) *Report {
	r.Data = data
	return r
}

// WithFix attaches a suggested fix and returns the same Report.
func (r *Report) WithFix(suggestion string, confidence float64) *Report {
	r.Fix = &Fix{Suggestion: suggestion, Confidence: confidence}
	return r
}

// ReportError wraps a Report as an error so it survives errors.As()
// unwrapping when a phase needs to return a single terminal error
// (the compiler-internal invariant-violation path; see SPEC_FULL.md's
// Error handling section).
type ReportError struct {
	Rep *Report
}

func (e *ReportError) Error() string {
	if e.Rep == nil {
		return "unknown error"
	}
	return e.Rep.Code + ": " + e.Rep.Message
}

// AsReport extracts a Report from an error chain, if present.
func AsReport(err error) (*Report, bool) {
	var re *ReportError
	if stderrors.As(err, &re) {
		return re.Rep, true
	}
	return nil, false
}

// WrapReport wraps r as an error.
func WrapReport(r *Report) error {
	if r == nil {
		return nil
	}
	return &ReportError{Rep: r}
}

// ToJSON renders the report deterministically.
func (r *Report) ToJSON(compact bool) (string, error) {
	if compact {
		b, err := json.Marshal(r)
		return string(b), err
	}
	b, err := json.MarshalIndent(r, "", "  ")
	return string(b), err
}
