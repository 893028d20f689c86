package models

import (
	"encoding/json"
	"time"

	dErrors "sirene/pkg/domain-errors"
)

// DateLayout is the registry's calendar date format.
const DateLayout = "2006-01-02"

// Date is a calendar day in UTC. It encodes as "YYYY-MM-DD".
type Date struct {
	time.Time
}

// NewDate returns the calendar day of t in UTC.
func NewDate(t time.Time) Date {
	y, m, d := t.UTC().Date()
	return Date{time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a "YYYY-MM-DD" string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, dErrors.Validation("date", s, "date must be formatted YYYY-MM-DD")
	}
	return Date{t}, nil
}

// String returns the date as "YYYY-MM-DD".
func (d Date) String() string {
	return d.Format(DateLayout)
}

// MarshalJSON implements json.Marshaler.
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// EndsBeforeStart reports whether end is set and precedes start.
func EndsBeforeStart(start Date, end *Date) bool {
	return end != nil && end.Before(start.Time)
}
