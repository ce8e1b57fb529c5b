package validation

import (
	"fmt"
	"strings"
)

// Severity classifies a diagnostic.
type Severity string

const (
	// SeverityError marks a problem that blocks promotion.
	SeverityError Severity = "error"
	// SeverityWarning marks a problem worth surfacing but not blocking.
	SeverityWarning Severity = "warning"
)

// Diagnostic is a single validation finding.
type Diagnostic struct {
	Severity Severity `json:"severity"`
	File     string   `json:"file,omitempty"`
	Line     int      `json:"line,omitempty"`
	Message  string   `json:"message"`
}

func (d Diagnostic) String() string {
	var sb strings.Builder
	sb.WriteString(string(d.Severity))
	if d.File != "" {
		sb.WriteString(" ")
		sb.WriteString(d.File)
		if d.Line > 0 {
			fmt.Fprintf(&sb, ":%d", d.Line)
		}
	}
	sb.WriteString(": ")
	sb.WriteString(d.Message)
	return sb.String()
}

// Report collects the diagnostics for one change.
type Report struct {
	Change      string       `json:"change"`
	Diagnostics []Diagnostic `json:"diagnostics,omitempty"`
}

// AddError appends an error diagnostic.
func (r *Report) AddError(file string, line int, format string, args ...any) {
	r.Diagnostics = append(r.Diagnostics, Diagnostic{
		Severity: SeverityError,
		File:     file,
		Line:     line,
		Message:  fmt.Sprintf(format, args...),
	})
}

// AddWarning appends a warning diagnostic.
func (r *Report) AddWarning(file string, line int, format string, args ...any) {
	r.Diagnostics = append(r.Diagnostics, Diagnostic{
		Severity: SeverityWarning,
		File:     file,
		Line:     line,
		Message:  fmt.Sprintf(format, args...),
	})
}

// Errors returns the number of error diagnostics.
func (r *Report) Errors() int {
	return r.count(SeverityError)
}

// Warnings returns the number of warning diagnostics.
func (r *Report) Warnings() int {
	return r.count(SeverityWarning)
}

func (r *Report) count(sev Severity) int {
	n := 0
	for _, d := range r.Diagnostics {
		if d.Severity == sev {
			n++
		}
	}
	return n
}

// Pass reports whether the change may be promoted. Errors always fail;
// in strict mode warnings fail too.
func (r *Report) Pass(strict bool) bool {
	if r.Errors() > 0 {
		return false
	}
	if strict && r.Warnings() > 0 {
		return false
	}
	return true
}
