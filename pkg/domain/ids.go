// Package domain holds the registry identifier primitives. Identifiers are
// validated once at the trust boundary and treated as opaque strings after.
package domain

import (
	"strings"

	dErrors "sirene/pkg/domain-errors"
)

const (
	sirenLength = 9
	siretLength = 14
	nicLength   = 5
)

// SIREN identifies a legal unit: exactly 9 ASCII digits.
type SIREN string

// SIRET identifies an establishment: its SIREN followed by a 5 digit NIC.
type SIRET string

// ParseSIREN validates s as a SIREN. Surrounding whitespace is not accepted.
func ParseSIREN(s string) (SIREN, error) {
	if !isDigits(s, sirenLength) {
		return "", dErrors.New(dErrors.CodeInvalidInput, "siren must be exactly 9 ASCII digits").
			WithDetail("value", s)
	}
	return SIREN(s), nil
}

// ParseSIRET validates s as a SIRET.
func ParseSIRET(s string) (SIRET, error) {
	if !isDigits(s, siretLength) {
		return "", dErrors.New(dErrors.CodeInvalidInput, "siret must be exactly 14 ASCII digits").
			WithDetail("value", s)
	}
	return SIRET(s), nil
}

// ComposeSIRET builds a SIRET from a SIREN and an establishment NIC.
func ComposeSIRET(siren SIREN, nic string) (SIRET, error) {
	if !isDigits(nic, nicLength) {
		return "", dErrors.New(dErrors.CodeInvalidInput, "nic must be exactly 5 ASCII digits").
			WithDetail("value", nic)
	}
	return ParseSIRET(string(siren) + nic)
}

// String returns the identifier value.
func (s SIREN) String() string { return string(s) }

// IsNil returns true if the identifier is empty.
func (s SIREN) IsNil() bool { return s == "" }

// String returns the identifier value.
func (s SIRET) String() string { return string(s) }

// IsNil returns true if the identifier is empty.
func (s SIRET) IsNil() bool { return s == "" }

// SIREN returns the legal unit part of the SIRET.
func (s SIRET) SIREN() SIREN {
	if len(s) < sirenLength {
		return ""
	}
	return SIREN(s[:sirenLength])
}

// NIC returns the establishment part of the SIRET.
func (s SIRET) NIC() string {
	if len(s) < siretLength {
		return ""
	}
	return string(s[sirenLength:])
}

// NormalizeDigits strips everything but ASCII digits, so "552 100 554"
// and "552100554" normalize to the same value.
func NormalizeDigits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

func isDigits(s string, n int) bool {
	if len(s) != n {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
