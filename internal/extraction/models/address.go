package models

import (
	dErrors "sirene/pkg/domain-errors"
	"sirene/pkg/geo"
)

// Address is the postal location of one facility.
//
// Invariants:
//   - FacilitySIRET is non-empty
//   - Longitude and Latitude are both set or both nil, and within WGS84 bounds
//   - ValidTo, when set, is not before ValidFrom
type Address struct {
	FacilitySIRET    string   `json:"facility_siret"`
	StreetAddress    *string  `json:"street_address"`
	Complement       *string  `json:"complement"`
	PostalCode       *string  `json:"postal_code"`
	Locality         *string  `json:"locality"`
	MunicipalityCode *string  `json:"municipality_code"`
	DepartmentCode   *string  `json:"department_code"`
	Cedex            *string  `json:"cedex"`
	CountryCode      string   `json:"country_code"`
	Country          *string  `json:"country"`
	Longitude        *float64 `json:"longitude"`
	Latitude         *float64 `json:"latitude"`
	Precision        string   `json:"precision"`
	ValidFrom        Date     `json:"valid_from"`
	ValidTo          *Date    `json:"valid_to"`
}

// NewAddress checks the address invariants and returns a.
func NewAddress(a Address) (*Address, error) {
	if a.FacilitySIRET == "" {
		return nil, dErrors.Validation("facility_siret", a.FacilitySIRET, "address must reference a facility")
	}
	if (a.Longitude == nil) != (a.Latitude == nil) {
		return nil, dErrors.Validation("longitude", a.Longitude, "longitude and latitude must be set together")
	}
	if a.Longitude != nil {
		p := geo.Point{Longitude: *a.Longitude, Latitude: *a.Latitude}
		if !p.Valid() {
			return nil, dErrors.Validation("coordinates", p, "coordinates outside WGS84 bounds")
		}
	}
	if EndsBeforeStart(a.ValidFrom, a.ValidTo) {
		return nil, dErrors.Validation("valid_to", a.ValidTo.String(), "address validity ends before it starts")
	}
	return &a, nil
}
