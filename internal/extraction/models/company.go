// Package models holds the normalized records produced by one extraction run.
// Records are values: they are built once by the transformer and never
// mutated afterwards. Relationships between records are carried by
// identifier value (SIREN, SIRET), never by reference or slice position.
package models

import "time"

// VerificationSource names the registry every identifier is verified against.
const VerificationSource = "insee_sirene"

// Identifier schemes.
const (
	SchemeSIREN = "siren"
	SchemeSIRET = "siret"
)

// CompanyStatus is the closed status vocabulary for legal units.
type CompanyStatus string

const (
	CompanyActive CompanyStatus = "active"
	CompanyCeased CompanyStatus = "ceased"
)

// FacilityStatus is the closed status vocabulary for establishments.
type FacilityStatus string

const (
	FacilityActive FacilityStatus = "active"
	FacilityClosed FacilityStatus = "closed"
)

// DiffusionStatus tells whether the registry publishes the record in full.
type DiffusionStatus string

const (
	DiffusionPublic  DiffusionStatus = "public"
	DiffusionPartial DiffusionStatus = "partial"
	DiffusionUnknown DiffusionStatus = "unknown"
)

// SizeCategory is the statistical company size.
type SizeCategory string

const (
	SizeSME    SizeCategory = "sme"
	SizeMidcap SizeCategory = "midcap"
	SizeLarge  SizeCategory = "large"
)

// Identifier is one public identifier with its verification metadata.
type Identifier struct {
	Scheme             string    `json:"scheme"`
	Value              string    `json:"value"`
	NormalizedValue    string    `json:"normalized_value"`
	Verified           bool      `json:"verified"`
	VerificationSource string    `json:"verification_source"`
	VerifiedAt         time.Time `json:"verified_at"`
}

// EmployeeBand is a head-count bracket as published by the registry.
// Min and Max are nil when the code is unknown or the bracket is open.
type EmployeeBand struct {
	Code *string `json:"employee_band"`
	Min  *int    `json:"employee_min"`
	Max  *int    `json:"employee_max"`
	Year *int    `json:"employee_band_year"`
}

// Company is the normalized legal unit.
type Company struct {
	SIREN            string          `json:"siren"`
	Name             string          `json:"name"`
	Identifiers      []Identifier    `json:"identifiers"`
	Status           CompanyStatus   `json:"status"`
	CreationDate     *Date           `json:"creation_date"`
	LegalForm        *string         `json:"legal_form"`
	ActivityCode     *string         `json:"activity_code"`
	HeadquartersNIC  *string         `json:"headquarters_nic"`
	SizeCategory     *SizeCategory   `json:"size_category"`
	SizeCategoryYear *int            `json:"size_category_year"`
	DiffusionStatus  DiffusionStatus `json:"diffusion_status"`
	EmployeeBand
}

// Facility is the normalized establishment.
type Facility struct {
	SIRET           string          `json:"siret"`
	ParentSIREN     string          `json:"parent_siren"`
	Name            string          `json:"name"`
	Identifiers     []Identifier    `json:"identifiers"`
	Status          FacilityStatus  `json:"status"`
	Headquarters    bool            `json:"headquarters"`
	CreationDate    *Date           `json:"creation_date"`
	ActivityCode    *string         `json:"activity_code"`
	SearchScore     *float64        `json:"search_score"`
	DiffusionStatus DiffusionStatus `json:"diffusion_status"`
	EmployeeBand
}
