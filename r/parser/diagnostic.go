package parser

import (
	"fmt"
	"sort"
)

type Severity int

const (
	SevInfo Severity = iota
	SevWarning
	SevError
)

func (s Severity) String() string {
	switch s {
	case SevInfo:
		return "info"
	case SevWarning:
		return "warning"
	case SevError:
		return "error"
	}
	return "unknown"
}

// Code identifies the kind of problem a diagnostic reports.
type Code string

const (
	CodeUnexpectedToken    Code = "unexpected-token"
	CodeMissingOperand     Code = "missing-operand"
	CodeExpected           Code = "expected"
	CodeUnclosed           Code = "unclosed"
	CodeNonAssociative     Code = "non-associative"
	CodeUnterminatedString Code = "unterminated-string"
	CodeUnterminatedName   Code = "unterminated-name"
	CodeUnterminatedOp     Code = "unterminated-operator"
	CodeInvalidEscape      Code = "invalid-escape"
	CodeMalformedNumber    Code = "malformed-number"
	CodeInvalidCharacter   Code = "invalid-character"
	CodeTrailingInput      Code = "trailing-input"
)

type Diagnostic struct {
	Severity Severity
	Code     Code
	Span     Span
	Message  string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s: %s", d.Span.Start, d.Severity, d.Message)
}

func errorAt(code Code, span Span, format string, args ...any) Diagnostic {
	return Diagnostic{
		Severity: SevError,
		Code:     code,
		Span:     span,
		Message:  fmt.Sprintf(format, args...),
	}
}

// SortDiagnostics orders diagnostics by start offset, then end offset, then
// severity (most severe first) and code.
func SortDiagnostics(diags []Diagnostic) {
	sort.SliceStable(diags, func(i, j int) bool {
		a, b := diags[i], diags[j]
		if a.Span.Start.Offset != b.Span.Start.Offset {
			return a.Span.Start.Offset < b.Span.Start.Offset
		}
		if a.Span.End.Offset != b.Span.End.Offset {
			return a.Span.End.Offset < b.Span.End.Offset
		}
		if a.Severity != b.Severity {
			return a.Severity > b.Severity
		}
		return a.Code < b.Code
	})
}

func HasErrors(diags []Diagnostic) bool {
	for _, d := range diags {
		if d.Severity == SevError {
			return true
		}
	}
	return false
}
