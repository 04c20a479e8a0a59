// Package validation checks optimization requests before they reach the
// gateway and collects what it finds into a Report.
package validation

import (
	"fmt"
	"strings"

	"github.com/ChicagoDave/klaro/pkg/optimize"
)

// Level says which check produced a finding.
type Level string

const (
	// LevelSchema covers the shape and values of the request itself.
	LevelSchema Level = "schema"
	// LevelAnalytical covers what the catalogue data implies for the goals and
	// the fallback ranking.
	LevelAnalytical Level = "analytical"
)

// Severity ranks a finding. Only errors make a request invalid.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Result is a single finding. Source names the request document it came from
// once reports for several documents are merged.
type Result struct {
	Level       Level    `json:"level"`
	Severity    Severity `json:"severity"`
	Message     string   `json:"message"`
	Path        string   `json:"path"`
	Source      string   `json:"source,omitempty"`
	ActualValue any      `json:"actual_value,omitempty"`
	Expected    string   `json:"expected,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// Report holds findings in the order they were raised.
type Report struct {
	Valid    bool     `json:"valid"`
	Findings []Result `json:"findings"`
	Summary  string   `json:"summary"`
}

// NewReport returns an empty, valid report.
func NewReport() *Report {
	r := &Report{Valid: true, Findings: []Result{}}
	r.summarize()
	return r
}

// AddError records a finding that blocks the request.
func (r *Report) AddError(result Result) { r.add(SeverityError, result) }

// AddWarning records a finding the request can run with.
func (r *Report) AddWarning(result Result) { r.add(SeverityWarning, result) }

// AddInfo records a note.
func (r *Report) AddInfo(result Result) { r.add(SeverityInfo, result) }

func (r *Report) add(sev Severity, result Result) {
	result.Severity = sev
	r.Findings = append(r.Findings, result)
	if sev == SeverityError {
		r.Valid = false
	}
	r.summarize()
}

// Merge appends other's findings, tagging those without a source with source.
func (r *Report) Merge(source string, other *Report) {
	for _, f := range other.Findings {
		if f.Source == "" {
			f.Source = source
		}
		r.Findings = append(r.Findings, f)
	}
	r.Valid = r.Valid && other.Valid
	r.summarize()
}

// Errors returns the blocking findings.
func (r *Report) Errors() []Result { return r.only(SeverityError) }

// Warnings returns the non-blocking findings.
func (r *Report) Warnings() []Result { return r.only(SeverityWarning) }

// Info returns the notes.
func (r *Report) Info() []Result { return r.only(SeverityInfo) }

func (r *Report) only(sev Severity) []Result {
	var out []Result
	for _, f := range r.Findings {
		if f.Severity == sev {
			out = append(out, f)
		}
	}
	return out
}

// Err returns nil for a valid report, otherwise an error wrapping
// optimize.ErrInvalidRequest that lists every error message.
func (r *Report) Err() error {
	if r.Valid {
		return nil
	}
	return fmt.Errorf("%w: %s", optimize.ErrInvalidRequest, strings.Join(messages(r.Errors()), "; "))
}

// WarningMessages returns the warning texts, for attaching to run diagnostics.
func (r *Report) WarningMessages() []string {
	return messages(r.Warnings())
}

func messages(rs []Result) []string {
	out := make([]string, 0, len(rs))
	for _, f := range rs {
		out = append(out, f.Message)
	}
	return out
}

func (r *Report) summarize() {
	var counts [3]int
	for _, f := range r.Findings {
		switch f.Severity {
		case SeverityError:
			counts[0]++
		case SeverityWarning:
			counts[1]++
		default:
			counts[2]++
		}
	}
	r.Summary = strings.Join([]string{
		plural(counts[0], "error"),
		plural(counts[1], "warning"),
		plural(counts[2], "note"),
	}, ", ")
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
