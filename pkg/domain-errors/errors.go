// Package domainerrors defines the error taxonomy shared by the extraction
// pipeline. Every failure surfaced to callers is an *Error carrying a Code,
// a human-readable message and a details map.
//
// Callers match on codes, either with HasCode or with errors.Is against the
// sentinel values (ErrExtraction, ErrValidation, ...):
//
//	if errors.Is(err, dErrors.ErrValidation) { ... }
package domainerrors

import (
	"errors"
	"fmt"
	"maps"
	"sort"
	"strings"
)

// Code classifies a failure.
type Code string

const (
	// CodeExtraction indicates a registry call failed or returned no usable payload.
	CodeExtraction Code = "extraction"

	// CodeTransformation indicates a mapping step failed.
	CodeTransformation Code = "transformation"

	// CodeValidation indicates a field violated a structural or range rule.
	CodeValidation Code = "validation"

	// CodeCoordinateConversion indicates planar coordinates could not be converted.
	CodeCoordinateConversion Code = "coordinate_conversion"

	// CodeInvalidInput indicates a caller-supplied value is malformed.
	CodeInvalidInput Code = "invalid_input"

	// CodeInternal is used for anything that does not fit the categories above.
	CodeInternal Code = "internal"
)

// Error wraps pipeline failures with a normalized code.
type Error struct {
	Code    Code
	Message string
	Details map[string]any
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Code))
	b.WriteString(": ")
	b.WriteString(e.Message)
	if len(e.Details) > 0 {
		keys := make([]string, 0, len(e.Details))
		for k := range e.Details {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteString(" (")
		for i, k := range keys {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%s=%v", k, e.Details[k])
		}
		b.WriteString(")")
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap supports error unwrapping.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error with the same code and no message.
// This lets the sentinel values below match any error of their category.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Message == "" && t.Code == e.Code
}

// WithDetail returns a copy of e with key set in its details.
func (e *Error) WithDetail(key string, value any) *Error {
	cp := *e
	cp.Details = make(map[string]any, len(e.Details)+1)
	maps.Copy(cp.Details, e.Details)
	cp.Details[key] = value
	return &cp
}

// Detail returns a single detail value.
func (e *Error) Detail(key string) (any, bool) {
	v, ok := e.Details[key]
	return v, ok
}

// Sentinels for errors.Is matching by category.
var (
	ErrExtraction           = &Error{Code: CodeExtraction}
	ErrTransformation       = &Error{Code: CodeTransformation}
	ErrValidation           = &Error{Code: CodeValidation}
	ErrCoordinateConversion = &Error{Code: CodeCoordinateConversion}
	ErrInvalidInput         = &Error{Code: CodeInvalidInput}
)

// New creates an error with the given code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap creates an error with the given code around an underlying cause.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// Extraction reports a failed registry call for sourceID at endpoint.
func Extraction(sourceID, endpoint, message string, err error) *Error {
	return &Error{
		Code:    CodeExtraction,
		Message: message,
		Details: map[string]any{"source_id": sourceID, "endpoint": endpoint},
		Err:     err,
	}
}

// Transformation reports a failed mapping step.
func Transformation(message string, details map[string]any) *Error {
	return &Error{Code: CodeTransformation, Message: message, Details: details}
}

// Validation reports a field that broke a structural or range rule.
func Validation(field string, value any, message string) *Error {
	return &Error{
		Code:    CodeValidation,
		Message: message,
		Details: map[string]any{"field": field, "value": value},
	}
}

// CoordinateConversion reports a planar pair that could not be converted.
func CoordinateConversion(x, y any, message string, err error) *Error {
	return &Error{
		Code:    CodeCoordinateConversion,
		Message: message,
		Details: map[string]any{"x": x, "y": y},
		Err:     err,
	}
}

// HasCode reports whether any *Error in err's chain carries code.
func HasCode(err error, code Code) bool {
	var de *Error
	for err != nil {
		if errors.As(err, &de) {
			if de.Code == code {
				return true
			}
			err = de.Err
			continue
		}
		return false
	}
	return false
}

// CodeOf extracts the outermost code from err, or CodeInternal.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// DetailOf returns a detail from the outermost *Error in err's chain.
func DetailOf(err error, key string) (any, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de.Detail(key)
	}
	return nil, false
}
