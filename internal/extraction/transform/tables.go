package transform

import (
	"strings"

	"sirene/internal/extraction/models"
	raw "sirene/internal/registry/models"
)

type statusTable[S ~string] struct {
	codes    map[string]S
	fallback S
}

func (t statusTable[S]) lookup(f raw.Field[string]) S {
	if s, ok := t.codes[strings.TrimSpace(f.OrZero())]; ok {
		return s
	}
	return t.fallback
}

// The registry sometimes omits the administrative state; absent and unknown
// codes take the fallback in every validation mode.
var (
	companyStatuses = statusTable[models.CompanyStatus]{
		codes:    map[string]models.CompanyStatus{"A": models.CompanyActive, "C": models.CompanyCeased},
		fallback: models.CompanyCeased,
	}
	facilityStatuses = statusTable[models.FacilityStatus]{
		codes:    map[string]models.FacilityStatus{"A": models.FacilityActive, "F": models.FacilityClosed},
		fallback: models.FacilityClosed,
	}
)

var sizeCategories = map[string]models.SizeCategory{
	"PME": models.SizeSME,
	"ETI": models.SizeMidcap,
	"GE":  models.SizeLarge,
}

func sizeCategory(f raw.Field[string]) *models.SizeCategory {
	if c, ok := sizeCategories[strings.TrimSpace(f.OrZero())]; ok {
		return &c
	}
	return nil
}

func diffusion(f raw.Field[string]) models.DiffusionStatus {
	switch strings.TrimSpace(f.OrZero()) {
	case "O":
		return models.DiffusionPublic
	case "P":
		return models.DiffusionPartial
	default:
		return models.DiffusionUnknown
	}
}

type bounds struct {
	min int
	max int // -1 for open-ended
}

// INSEE head-count brackets.
var employeeBands = map[string]bounds{
	"00": {0, 0},
	"01": {1, 2},
	"02": {3, 5},
	"03": {6, 9},
	"11": {10, 19},
	"12": {20, 49},
	"21": {50, 99},
	"22": {100, 199},
	"31": {200, 249},
	"32": {250, 499},
	"41": {500, 999},
	"42": {1000, 1999},
	"51": {2000, 4999},
	"52": {5000, 9999},
	"53": {10000, -1},
}

// employeeBand maps a bracket code and its reference year. "NN" and unknown
// codes keep the code with nil bounds.
func employeeBand(code raw.Field[string], year raw.Field[raw.Text]) models.EmployeeBand {
	var band models.EmployeeBand
	c := strings.TrimSpace(code.OrZero())
	if c == "" {
		return band
	}
	band.Code = &c
	if b, ok := employeeBands[c]; ok {
		band.Min = &b.min
		if b.max >= 0 {
			band.Max = &b.max
		}
	}
	band.Year = year4(year)
	return band
}

func year4(f raw.Field[raw.Text]) *int {
	v, err := f.OrZero().Float()
	if err != nil || v < 1000 || v > 9999 || v != float64(int(v)) {
		return nil
	}
	y := int(v)
	return &y
}

// yesNo maps the registry's "O"/"N" flags.
func yesNo(f raw.Field[string]) *bool {
	var b bool
	switch strings.TrimSpace(f.OrZero()) {
	case "O":
		b = true
	case "N":
		b = false
	default:
		return nil
	}
	return &b
}
