package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "sirene/pkg/domain-errors"
)

func mustDate(t *testing.T, s string) Date {
	t.Helper()
	d, err := ParseDate(s)
	require.NoError(t, err)
	return d
}

func ptr[T any](v T) *T { return &v }

func TestNewAddressValidity(t *testing.T) {
	start := mustDate(t, "2020-01-15")

	t.Run("end before start fails", func(t *testing.T) {
		end := mustDate(t, "2020-01-14")
		_, err := NewAddress(Address{FacilitySIRET: "55210055400013", ValidFrom: start, ValidTo: &end})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("end equal to start succeeds", func(t *testing.T) {
		end := mustDate(t, "2020-01-15")
		a, err := NewAddress(Address{FacilitySIRET: "55210055400013", ValidFrom: start, ValidTo: &end})
		require.NoError(t, err)
		assert.Equal(t, "2020-01-15", a.ValidTo.String())
	})

	t.Run("absent end succeeds", func(t *testing.T) {
		_, err := NewAddress(Address{FacilitySIRET: "55210055400013", ValidFrom: start})
		assert.NoError(t, err)
	})

	t.Run("coordinates out of bounds fail", func(t *testing.T) {
		_, err := NewAddress(Address{
			FacilitySIRET: "55210055400013",
			ValidFrom:     start,
			Longitude:     ptr(181.0),
			Latitude:      ptr(48.0),
		})
		assert.Error(t, err)
	})

	t.Run("half a coordinate pair fails", func(t *testing.T) {
		_, err := NewAddress(Address{FacilitySIRET: "55210055400013", ValidFrom: start, Longitude: ptr(2.0)})
		assert.Error(t, err)
	})

	t.Run("missing facility fails", func(t *testing.T) {
		_, err := NewAddress(Address{ValidFrom: start})
		assert.Error(t, err)
	})
}

func TestDate(t *testing.T) {
	t.Run("rejects other layouts", func(t *testing.T) {
		_, err := ParseDate("15/01/2020")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("NewDate drops time of day", func(t *testing.T) {
		d := NewDate(time.Date(2024, 3, 22, 23, 59, 0, 0, time.UTC))
		assert.Equal(t, "2024-03-22", d.String())
	})

	t.Run("json round trip", func(t *testing.T) {
		b, err := json.Marshal(mustDate(t, "1955-03-31"))
		require.NoError(t, err)
		assert.JSONEq(t, `"1955-03-31"`, string(b))

		var d Date
		require.NoError(t, json.Unmarshal(b, &d))
		assert.Equal(t, "1955-03-31", d.String())
	})
}

func TestResultDocument(t *testing.T) {
	r := Result{
		Company:  &Company{SIREN: "552100554", Name: "ACME"},
		Metadata: Metadata{SIREN: "552100554", FacilityCount: 0},
	}

	b, err := json.Marshal(r)
	require.NoError(t, err)

	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(b, &doc))

	for _, key := range []string{
		"facilities", "legal_unit_periods", "establishment_periods", "addresses",
		"activity_classifications", "facility_ownerships", "registry_records",
	} {
		assert.JSONEq(t, `[]`, string(doc[key]), key)
	}
	assert.Contains(t, string(doc["company"]), `"siren":"552100554"`)

	var meta map[string]any
	require.NoError(t, json.Unmarshal(doc["extraction_metadata"], &meta))
	assert.Contains(t, meta, "siren")
	assert.Contains(t, meta, "extracted_at")
	assert.Contains(t, meta, "facility_count")
}

func TestResultCount(t *testing.T) {
	r := Result{
		Facilities: make([]Facility, 3),
		Addresses:  make([]Address, 2),
	}
	c := r.Count()
	assert.Equal(t, 3, c.Facilities)
	assert.Equal(t, 2, c.Addresses)
	assert.Zero(t, c.RegistryRecords)
}
