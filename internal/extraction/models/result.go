package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Counts summarizes the size of a Result.
type Counts struct {
	Facilities              int `json:"facilities"`
	Addresses               int `json:"addresses"`
	LegalUnitPeriods        int `json:"legal_unit_periods"`
	EstablishmentPeriods    int `json:"establishment_periods"`
	ActivityClassifications int `json:"activity_classifications"`
	FacilityOwnerships      int `json:"facility_ownerships"`
	RegistryRecords         int `json:"registry_records"`
}

// Metadata describes the run that produced a Result.
type Metadata struct {
	RunID          uuid.UUID `json:"run_id"`
	SIREN          string    `json:"siren"`
	Source         string    `json:"source"`
	ExtractedAt    time.Time `json:"extracted_at"`
	FacilityCount  int       `json:"facility_count"`
	ValidationMode string    `json:"validation_mode"`
	Counts         Counts    `json:"counts"`
}

// Result is the immutable aggregate of one extraction run.
// Every slice encodes as a JSON array, never null.
type Result struct {
	Company                 *Company                 `json:"company"`
	Facilities              []Facility               `json:"facilities"`
	LegalUnitPeriods        []LegalUnitPeriod        `json:"legal_unit_periods"`
	EstablishmentPeriods    []EstablishmentPeriod    `json:"establishment_periods"`
	Addresses               []Address                `json:"addresses"`
	ActivityClassifications []ActivityClassification `json:"activity_classifications"`
	FacilityOwnerships      []FacilityOwnership      `json:"facility_ownerships"`
	RegistryRecords         []RegistryRecord         `json:"registry_records"`
	Metadata                Metadata                 `json:"extraction_metadata"`
}

// Count computes the per-collection sizes.
func (r *Result) Count() Counts {
	return Counts{
		Facilities:              len(r.Facilities),
		Addresses:               len(r.Addresses),
		LegalUnitPeriods:        len(r.LegalUnitPeriods),
		EstablishmentPeriods:    len(r.EstablishmentPeriods),
		ActivityClassifications: len(r.ActivityClassifications),
		FacilityOwnerships:      len(r.FacilityOwnerships),
		RegistryRecords:         len(r.RegistryRecords),
	}
}

type resultAlias Result

// MarshalJSON implements json.Marshaler.
func (r Result) MarshalJSON() ([]byte, error) {
	a := resultAlias(r)
	a.Facilities = nonNil(a.Facilities)
	a.LegalUnitPeriods = nonNil(a.LegalUnitPeriods)
	a.EstablishmentPeriods = nonNil(a.EstablishmentPeriods)
	a.Addresses = nonNil(a.Addresses)
	a.ActivityClassifications = nonNil(a.ActivityClassifications)
	a.FacilityOwnerships = nonNil(a.FacilityOwnerships)
	a.RegistryRecords = nonNil(a.RegistryRecords)
	return json.Marshal(a)
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
