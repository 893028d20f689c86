package transform

import (
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"sirene/internal/extraction/extractor"
	"sirene/internal/extraction/models"
	raw "sirene/internal/registry/models"
	dErrors "sirene/pkg/domain-errors"
)

// FacilityBundle is everything derived from one raw establishment.
type FacilityBundle struct {
	Facility  models.Facility
	Periods   []models.EstablishmentPeriod
	Address   *models.Address
	Ownership models.FacilityOwnership
	Record    models.RegistryRecord
}

// Run accumulates the records of one extraction into a Result. Establishments
// are added one at a time so callers can report progress between them.
type Run struct {
	t           *Transformer
	extractedAt time.Time
	parentName  string
	seen        int
	result      models.Result
}

// Start maps the legal unit and opens a run for its establishments.
func (t *Transformer) Start(u *raw.LegalUnit, extractedAt time.Time) (*Run, error) {
	if extractedAt.IsZero() {
		extractedAt = t.extractedAt
	}
	extractedAt = extractedAt.UTC()

	company, err := t.transformCompany(u, extractedAt)
	if err != nil {
		return nil, t.failure(err, "legal unit", sirenOf(u))
	}
	periods, err := t.TransformLegalUnitPeriods(u)
	if err != nil {
		return nil, t.failure(err, "legal unit", company.SIREN)
	}
	record, err := t.legalUnitRecord(u, extractedAt)
	if err != nil {
		return nil, t.failure(err, "legal unit", company.SIREN)
	}

	return &Run{
		t:           t,
		extractedAt: extractedAt,
		parentName:  CurrentDenomination(u),
		result: models.Result{
			Company:          company,
			LegalUnitPeriods: periods,
			RegistryRecords:  []models.RegistryRecord{*record},
		},
	}, nil
}

// Company returns the mapped legal unit.
func (r *Run) Company() *models.Company {
	return r.result.Company
}

// Add maps one establishment and appends its records to the run. It returns
// a nil bundle when the permissive mode skips an establishment that belongs
// to another legal unit.
func (r *Run) Add(e *raw.Establishment) (*FacilityBundle, error) {
	r.seen++
	t := r.t
	parent := r.result.Company.SIREN

	if s := strings.TrimSpace(e.SIREN.OrZero()); s != "" && s != parent {
		verr := dErrors.Validation("siren", s, "establishment belongs to another legal unit").
			WithDetail("parent_siren", parent)
		if err := t.violation(verr, s); err != nil {
			return nil, t.failure(err, "establishment", s)
		}
		return nil, nil
	}

	facility, err := t.transformFacility(e, r.parentName, r.extractedAt)
	if err != nil {
		return nil, t.failure(err, "establishment", e.SIRET.OrZero())
	}
	if facility.ParentSIREN != parent {
		verr := dErrors.Validation("siret", facility.SIRET, "establishment belongs to another legal unit").
			WithDetail("parent_siren", parent)
		if err := t.violation(verr, facility.SIRET); err != nil {
			return nil, t.failure(err, "establishment", facility.SIRET)
		}
		return nil, nil
	}

	periods, err := t.TransformEstablishmentPeriods(e)
	if err != nil {
		return nil, t.failure(err, "establishment", facility.SIRET)
	}
	address, err := t.transformAddress(e, facility, r.extractedAt)
	if err != nil {
		return nil, t.failure(err, "establishment", facility.SIRET)
	}
	record, err := t.establishmentRecord(e, facility.SIRET, r.extractedAt)
	if err != nil {
		return nil, t.failure(err, "establishment", facility.SIRET)
	}

	b := &FacilityBundle{
		Facility:  *facility,
		Periods:   periods,
		Address:   address,
		Ownership: t.transformOwnership(e, facility, r.extractedAt),
		Record:    *record,
	}

	res := &r.result
	res.Facilities = append(res.Facilities, b.Facility)
	res.EstablishmentPeriods = append(res.EstablishmentPeriods, b.Periods...)
	if b.Address != nil {
		res.Addresses = append(res.Addresses, *b.Address)
	}
	res.FacilityOwnerships = append(res.FacilityOwnerships, b.Ownership)
	res.RegistryRecords = append(res.RegistryRecords, b.Record)
	return b, nil
}

// Result snapshots the run. The returned aggregate shares no slices with
// the run, so later calls to Add do not change it.
func (r *Run) Result() *models.Result {
	res := r.result
	if r.result.Company != nil {
		company := *r.result.Company
		res.Company = &company
	}
	res.Facilities = slices.Clone(r.result.Facilities)
	res.LegalUnitPeriods = slices.Clone(r.result.LegalUnitPeriods)
	res.EstablishmentPeriods = slices.Clone(r.result.EstablishmentPeriods)
	res.Addresses = slices.Clone(r.result.Addresses)
	res.FacilityOwnerships = slices.Clone(r.result.FacilityOwnerships)
	res.RegistryRecords = slices.Clone(r.result.RegistryRecords)
	res.ActivityClassifications = slices.Clone(r.t.cache.Entries())
	res.Metadata = models.Metadata{
		RunID:          uuid.New(),
		SIREN:          res.Company.SIREN,
		Source:         Source,
		ExtractedAt:    r.extractedAt,
		FacilityCount:  r.seen,
		ValidationMode: string(r.t.cfg.ValidationMode),
	}
	res.Metadata.Counts = res.Count()
	return &res
}

// TransformComplete maps a full extraction. Any record failure aborts the
// mapping with a transformation error wrapping the cause.
func (t *Transformer) TransformComplete(ext *extractor.Extraction) (*models.Result, error) {
	if ext == nil {
		return nil, dErrors.Transformation("extraction is missing", nil)
	}
	run, err := t.Start(ext.Company, ext.Metadata.ExtractedAt)
	if err != nil {
		return nil, err
	}
	for i := range ext.Facilities {
		if _, err := run.Add(&ext.Facilities[i]); err != nil {
			return nil, err
		}
	}
	return run.Result(), nil
}

// failure wraps a record error as a transformation error unless it already is one.
func (t *Transformer) failure(err error, kind, id string) error {
	t.metrics.IncrementTransformFailure(string(innerCode(err)))
	if dErrors.CodeOf(err) == dErrors.CodeTransformation {
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeTransformation, kind+" could not be transformed").
		WithDetail("record", id)
}

func innerCode(err error) dErrors.Code {
	if dErrors.HasCode(err, dErrors.CodeValidation) {
		return dErrors.CodeValidation
	}
	return dErrors.CodeOf(err)
}

func sirenOf(u *raw.LegalUnit) string {
	if u == nil {
		return ""
	}
	return u.SIREN.OrZero()
}
