// Package errors provides structured error handling for the schema scanner.
// It defines error codes, kinds, and formatting for both human-readable
// terminal output and machine-parseable JSON.
package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a unique error code in the scanner
type ErrorCode string

// ErrorKind names the class of failure a ScanError belongs to
type ErrorKind string

const (
	// KindTypeGraph is raised for structural defects in the input type graph (GRA100-199)
	KindTypeGraph ErrorKind = "TypeGraphError"
	// KindTagConflict is raised only in strict tag mode (TAG200-299)
	KindTagConflict ErrorKind = "TagConflictError"
	// KindUnsupportedWrapper is reported for unregistered wrapper shapes (WRP300-399)
	KindUnsupportedWrapper ErrorKind = "UnsupportedWrapperShapeError"
	// KindRouteConflict is raised only in strict overload mode (RTE400-499)
	KindRouteConflict ErrorKind = "RouteConflictError"
)

// ErrorSeverity indicates the severity level of an error
type ErrorSeverity string

const (
	// SeverityError aborts the scan of the current root
	SeverityError ErrorSeverity = "error"
	// SeverityWarning is recorded in the model and never aborts a scan
	SeverityWarning ErrorSeverity = "warning"
)

// ScanError represents a structured scanner error
type ScanError struct {
	// Code is the unique error code (e.g., "GRA100")
	Code ErrorCode `json:"code"`
	// Type is a machine-readable error type identifier
	Type string `json:"type"`
	// Kind is the error class
	Kind ErrorKind `json:"kind"`
	// Severity is the error severity level
	Severity ErrorSeverity `json:"severity"`
	// Message is the primary error message
	Message string `json:"message"`
	// Node is the identity of the offending type graph node
	Node string `json:"node,omitempty"`
	// Expected describes what was expected (optional)
	Expected string `json:"expected,omitempty"`
	// Actual describes what was actually found (optional)
	Actual string `json:"actual,omitempty"`
	// Suggestion provides a hint for fixing the error (optional)
	Suggestion string `json:"suggestion,omitempty"`
}

// Error implements the error interface
func (e *ScanError) Error() string {
	return FormatCompact(e)
}

// Format returns a human-readable error message for terminal output
func (e *ScanError) Format() string {
	return FormatError(e)
}

// ToJSON returns the error as a JSON string
func (e *ScanError) ToJSON() (string, error) {
	bytes, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// WithNode sets the offending node identity
func (e *ScanError) WithNode(node string) *ScanError {
	e.Node = node
	return e
}

// WithExpected sets the expected value for the error
func (e *ScanError) WithExpected(expected string) *ScanError {
	e.Expected = expected
	return e
}

// WithActual sets the actual value for the error
func (e *ScanError) WithActual(actual string) *ScanError {
	e.Actual = actual
	return e
}

// WithSuggestion sets a suggestion for fixing the error
func (e *ScanError) WithSuggestion(suggestion string) *ScanError {
	e.Suggestion = suggestion
	return e
}

// ErrorList is a collection of scanner errors
type ErrorList []*ScanError

// Error implements the error interface
func (el ErrorList) Error() string {
	if len(el) == 0 {
		return "no errors"
	}
	return FormatErrorList(el)
}

// HasErrors returns true if the list contains any errors (excludes warnings)
func (el ErrorList) HasErrors() bool {
	for _, err := range el {
		if err.Severity == SeverityError {
			return true
		}
	}
	return false
}

// ToJSON returns all errors as a JSON array
func (el ErrorList) ToJSON() (string, error) {
	bytes, err := json.MarshalIndent(el, "", "  ")
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// ErrorCount returns the number of errors by severity
func (el ErrorList) ErrorCount() (errors, warnings int) {
	for _, err := range el {
		switch err.Severity {
		case SeverityError:
			errors++
		case SeverityWarning:
			warnings++
		}
	}
	return
}

// As reports whether err is (or wraps) a ScanError and returns it
func As(err error) (*ScanError, bool) {
	var se *ScanError
	if stderrors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// IsTypeGraphError reports whether err is a TypeGraphError
func IsTypeGraphError(err error) bool {
	return isKind(err, KindTypeGraph)
}

// IsTagConflict reports whether err is a TagConflictError
func IsTagConflict(err error) bool {
	return isKind(err, KindTagConflict)
}

// IsRouteConflict reports whether err is a RouteConflictError
func IsRouteConflict(err error) bool {
	return isKind(err, KindRouteConflict)
}

func isKind(err error, kind ErrorKind) bool {
	se, ok := As(err)
	return ok && se.Kind == kind
}

func newError(
	code ErrorCode,
	typ string,
	kind ErrorKind,
	severity ErrorSeverity,
	format string,
	args ...interface{},
) *ScanError {
	return &ScanError{
		Code:     code,
		Type:     typ,
		Kind:     kind,
		Severity: severity,
		Message:  fmt.Sprintf(format, args...),
	}
}
