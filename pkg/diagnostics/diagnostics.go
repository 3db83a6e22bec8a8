// Package diagnostics defines Pal diagnostic types for scan, parse, and runtime errors.
package diagnostics

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Diagnostic code constants.
const (
	EScan      = "E_SCAN"
	EParse     = "E_PARSE"
	EType      = "E_TYPE"
	EUndefined = "E_UNDEFINED"
	EDepth     = "E_DEPTH"
	EBudget    = "E_BUDGET"
	ECancelled = "E_CANCELLED"
	EIO        = "E_IO"

	// Warnings never fail a run.
	WUnbound = "W_UNBOUND"
	WUnused  = "W_UNUSED"
)

// Diagnostic represents a scan, parse, runtime, or lint diagnostic.
type Diagnostic struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Line    int    `json:"line"`
	// Where locates a parse error: "", " at end" or " at '<lexeme>'".
	Where string `json:"where,omitempty"`
}

// MakeDiag creates a new Diagnostic.
func MakeDiag(code, message string, line int, where string) Diagnostic {
	return Diagnostic{
		Code:    code,
		Message: message,
		Line:    line,
		Where:   where,
	}
}

// At renders the location suffix for an error reported at a token.
func At(lexeme string, atEnd bool) string {
	if atEnd {
		return " at end"
	}
	return fmt.Sprintf(" at '%s'", lexeme)
}

// IsWarning reports whether d is a lint warning rather than an error.
func (d Diagnostic) IsWarning() bool {
	return strings.HasPrefix(d.Code, "W_")
}

// IsStatic reports whether d was produced before evaluation (scanning or parsing).
func (d Diagnostic) IsStatic() bool {
	return d.Code == EScan || d.Code == EParse
}

// String renders d in the Pal text format:
//
//	[line N] Error<where>: message   (scan and parse errors)
//	message [line N]                  (runtime errors)
func (d Diagnostic) String() string {
	switch {
	case d.IsWarning():
		return fmt.Sprintf("[line %d] Warning%s: %s", d.Line, d.Where, d.Message)
	case d.IsStatic():
		return fmt.Sprintf("[line %d] Error%s: %s", d.Line, d.Where, d.Message)
	default:
		return fmt.Sprintf("%s [line %d]", d.Message, d.Line)
	}
}

// FormatDiagnostic formats a single diagnostic for display.
func FormatDiagnostic(d Diagnostic, asJSON bool) string {
	if asJSON {
		b, _ := json.Marshal(d)
		return string(b)
	}
	return d.String()
}

// FormatDiagnostics formats a slice of diagnostics, one per line.
func FormatDiagnostics(diags []Diagnostic, asJSON bool) string {
	if asJSON {
		b, _ := json.Marshal(diags)
		return string(b)
	}
	parts := make([]string, len(diags))
	for i, d := range diags {
		parts[i] = d.String()
	}
	return strings.Join(parts, "\n")
}

// Collector accumulates diagnostics across the phases of one run.
// The driver owns it and inspects it between phases.
type Collector struct {
	diags []Diagnostic
}

// Add records a diagnostic.
func (c *Collector) Add(d Diagnostic) {
	c.diags = append(c.diags, d)
}

// Extend records every diagnostic in ds.
func (c *Collector) Extend(ds []Diagnostic) {
	c.diags = append(c.diags, ds...)
}

// HadError reports whether a scan or parse error was recorded.
func (c *Collector) HadError() bool {
	for _, d := range c.diags {
		if d.IsStatic() {
			return true
		}
	}
	return false
}

// HadRuntimeError reports whether a runtime error was recorded.
func (c *Collector) HadRuntimeError() bool {
	for _, d := range c.diags {
		if !d.IsStatic() && !d.IsWarning() {
			return true
		}
	}
	return false
}

// Failed reports whether any error (not warning) was recorded.
func (c *Collector) Failed() bool {
	return c.HadError() || c.HadRuntimeError()
}

// All returns the recorded diagnostics in order.
func (c *Collector) All() []Diagnostic {
	return c.diags
}

// Errors returns the recorded diagnostics, excluding warnings.
func (c *Collector) Errors() []Diagnostic {
	var out []Diagnostic
	for _, d := range c.diags {
		if !d.IsWarning() {
			out = append(out, d)
		}
	}
	return out
}
