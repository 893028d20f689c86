package models

import (
	"bytes"
	"encoding/json"
	"strconv"
)

type fieldState uint8

const (
	stateUnset fieldState = iota
	stateNull
	stateValue
)

// Field is a tri-state registry value: the key was absent (unset), present
// as JSON null, or present with a value. The distinction matters only while
// mapping; normalized records collapse it to a plain optional.
type Field[T any] struct {
	state fieldState
	value T
}

// Value returns a set Field holding v.
func Value[T any](v T) Field[T] {
	return Field[T]{state: stateValue, value: v}
}

// Null returns a Field that was present as JSON null.
func Null[T any]() Field[T] {
	return Field[T]{state: stateNull}
}

// Get returns the value and whether one is present.
func (f Field[T]) Get() (T, bool) {
	return f.value, f.state == stateValue
}

// OrZero returns the value, or the zero value when unset or null.
func (f Field[T]) OrZero() T {
	return f.value
}

// Ptr returns a pointer to a copy of the value, or nil.
func (f Field[T]) Ptr() *T {
	if f.state != stateValue {
		return nil
	}
	v := f.value
	return &v
}

func (f Field[T]) IsSet() bool   { return f.state == stateValue }
func (f Field[T]) IsNull() bool  { return f.state == stateNull }
func (f Field[T]) IsUnset() bool { return f.state == stateUnset }

// IsZero lets `omitzero` drop unset fields when re-encoding.
func (f Field[T]) IsZero() bool { return f.state == stateUnset }

// UnmarshalJSON implements json.Unmarshaler. It is only invoked when the key
// is present, so a Field left untouched stays unset.
func (f *Field[T]) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		var zero T
		f.state, f.value = stateNull, zero
		return nil
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	f.state, f.value = stateValue, v
	return nil
}

// MarshalJSON implements json.Marshaler.
func (f Field[T]) MarshalJSON() ([]byte, error) {
	if f.state != stateValue {
		return []byte("null"), nil
	}
	return json.Marshal(f.value)
}

// Text is a registry scalar that may arrive as a JSON string or number.
// Coordinates and years are served either way depending on the endpoint.
type Text string

// UnmarshalJSON implements json.Unmarshaler.
func (t *Text) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = Text(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*t = Text(n.String())
	return nil
}

// String returns the raw text.
func (t Text) String() string { return string(t) }

// Float parses the text as a float.
func (t Text) Float() (float64, error) {
	return strconv.ParseFloat(string(t), 64)
}
