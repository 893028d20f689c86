// Package transform maps raw registry records into the normalized output
// model. Mapping functions work one record at a time; the only state carried
// between calls is the injected ClassificationCache, so a Transformer and
// its cache serve exactly one extraction run.
package transform

import (
	"log/slog"
	"strings"
	"time"

	"sirene/internal/extraction/config"
	"sirene/internal/extraction/metrics"
	"sirene/internal/extraction/models"
	raw "sirene/internal/registry/models"
	"sirene/pkg/domain"
	dErrors "sirene/pkg/domain-errors"
	"sirene/pkg/geo"
	pstrings "sirene/pkg/platform/strings"
)

// Placeholder names used when no name can be resolved.
const (
	UnknownCompany  = "Unknown Company"
	UnknownFacility = "Unknown Facility"
)

// Transformer maps raw records under one validation policy.
type Transformer struct {
	cfg         config.Config
	cache       *ClassificationCache
	labeler     ActivityLabeler
	logger      *slog.Logger
	metrics     *metrics.Metrics
	now         func() time.Time
	extractedAt time.Time
}

type Option func(*Transformer)

// WithClassificationCache injects the run's classification cache.
func WithClassificationCache(c *ClassificationCache) Option {
	return func(t *Transformer) {
		t.cache = c
	}
}

func WithActivityLabeler(l ActivityLabeler) Option {
	return func(t *Transformer) {
		t.labeler = l
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(t *Transformer) {
		t.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(t *Transformer) {
		t.metrics = m
	}
}

// WithClock sets the time source for ingestion timestamps.
func WithClock(now func() time.Time) Option {
	return func(t *Transformer) {
		t.now = now
	}
}

// WithExtractedAt sets the extraction time used for verification stamps and
// as the fallback for missing source dates.
func WithExtractedAt(at time.Time) Option {
	return func(t *Transformer) {
		t.extractedAt = at.UTC()
	}
}

// New constructs a Transformer. A fresh ClassificationCache is created
// unless one is injected.
func New(cfg config.Config, opts ...Option) (*Transformer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	t := &Transformer{
		cfg:    cfg,
		logger: slog.New(slog.DiscardHandler),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.cache == nil {
		t.cache = NewClassificationCache()
	}
	if t.extractedAt.IsZero() {
		t.extractedAt = t.now().UTC()
	}
	return t, nil
}

// Classifications returns the classifications seen so far in first-seen order.
func (t *Transformer) Classifications() []models.ActivityClassification {
	return t.cache.Entries()
}

// =============================================================================
// Validation policy
// =============================================================================

// required handles a missing required field: strict fails, the other modes
// continue with the default.
func (t *Transformer) required(field, record string) error {
	if t.cfg.ValidationMode.Strict() {
		return dErrors.Validation(field, nil, field+" is required").WithDetail("record", record)
	}
	t.logger.Debug("default applied for missing field", "field", field, "record", record)
	return nil
}

// violation handles a range rule failure: permissive drops the value and
// the other modes fail.
func (t *Transformer) violation(err *dErrors.Error, record string) error {
	if t.cfg.ValidationMode.SuppressRangeErrors() {
		t.logger.Debug("invalid value dropped", "error", err.Message, "record", record)
		return nil
	}
	return err.WithDetail("record", record)
}

// date parses an optional YYYY-MM-DD field.
func (t *Transformer) date(field string, f raw.Field[string], record string) (*models.Date, error) {
	s := strings.TrimSpace(f.OrZero())
	if s == "" {
		return nil, nil
	}
	d, err := models.ParseDate(s)
	if err != nil {
		return nil, t.violation(dErrors.Validation(field, s, "date must be formatted YYYY-MM-DD"), record)
	}
	return &d, nil
}

func text(f raw.Field[string]) *string {
	if s, ok := pstrings.FirstNonBlank(f.OrZero()); ok {
		return &s
	}
	return nil
}

func (t *Transformer) identifier(scheme, value string, ref time.Time) models.Identifier {
	return models.Identifier{
		Scheme:             scheme,
		Value:              value,
		NormalizedValue:    domain.NormalizeDigits(value),
		Verified:           true,
		VerificationSource: models.VerificationSource,
		VerifiedAt:         ref,
	}
}

// classify registers the activity code of a period and returns its scheme.
func (t *Transformer) classify(scheme, code raw.Field[string]) (*string, *string) {
	c := text(code)
	if c == nil {
		return nil, nil
	}
	s := strings.TrimSpace(scheme.OrZero())
	if s == "" {
		s = "unknown"
	}
	var label *string
	if t.labeler != nil && !t.cache.Contains(s, *c) {
		if l, ok := t.labeler(NormalizeScheme(s), *c); ok {
			label = &l
		}
	}
	entry := t.cache.Resolve(s, *c, label)
	return &entry.Scheme, c
}

// =============================================================================
// Current period selection
// =============================================================================

type period interface {
	Bounds() (start, end raw.Field[string])
}

// currentIndex returns the period without an end date, else the one with the
// latest start date, else -1.
func currentIndex[P period](periods []P) int {
	best, bestStart := -1, ""
	for i, p := range periods {
		start, end := p.Bounds()
		if strings.TrimSpace(end.OrZero()) == "" {
			return i
		}
		if s := strings.TrimSpace(start.OrZero()); best < 0 || s > bestStart {
			best, bestStart = i, s
		}
	}
	return best
}

func currentLegalUnitPeriod(u *raw.LegalUnit) *raw.LegalUnitPeriod {
	if i := currentIndex(u.Periodes); i >= 0 {
		return &u.Periodes[i]
	}
	return nil
}

func currentEstablishmentPeriod(e *raw.Establishment) *raw.EstablishmentPeriod {
	if i := currentIndex(e.Periodes); i >= 0 {
		return &e.Periodes[i]
	}
	return nil
}

// CurrentDenomination returns the legal unit's current registered name, or "".
func CurrentDenomination(u *raw.LegalUnit) string {
	if u == nil {
		return ""
	}
	if p := currentLegalUnitPeriod(u); p != nil {
		if s, ok := pstrings.FirstNonBlank(p.Denomination.OrZero()); ok {
			return s
		}
	}
	return ""
}

// =============================================================================
// Legal units
// =============================================================================

func legalUnitSIREN(u *raw.LegalUnit) (string, error) {
	s := strings.TrimSpace(u.SIREN.OrZero())
	if s == "" {
		return "", dErrors.Transformation("legal unit has no SIREN", nil)
	}
	if _, err := domain.ParseSIREN(s); err != nil {
		return "", dErrors.Transformation("legal unit SIREN is malformed", map[string]any{"siren": s})
	}
	return s, nil
}

func (t *Transformer) personalName(first, usage, last raw.Field[string]) string {
	if !t.cfg.IncludePersonalData {
		return ""
	}
	surname, ok := pstrings.FirstNonBlank(usage.OrZero(), last.OrZero())
	if !ok {
		return ""
	}
	return pstrings.JoinPresent(first.OrZero(), surname)
}

// CompanyName resolves the display name of a legal unit.
func (t *Transformer) CompanyName(u *raw.LegalUnit) string {
	var candidates []string
	if p := currentLegalUnitPeriod(u); p != nil {
		candidates = append(candidates, p.Denomination.OrZero(), p.DenominationUsuelle1.OrZero())
	}
	candidates = append(candidates, u.Sigle.OrZero())
	if p := currentLegalUnitPeriod(u); p != nil {
		candidates = append(candidates, t.personalName(u.PrenomUsuel, p.NomUsage, p.Nom))
	}
	if name, ok := pstrings.FirstNonBlank(candidates...); ok {
		return name
	}
	return UnknownCompany
}

// TransformCompany maps a raw legal unit.
func (t *Transformer) TransformCompany(u *raw.LegalUnit) (*models.Company, error) {
	return t.transformCompany(u, t.extractedAt)
}

func (t *Transformer) transformCompany(u *raw.LegalUnit, ref time.Time) (*models.Company, error) {
	if u == nil {
		return nil, dErrors.Transformation("legal unit record is missing", nil)
	}
	siren, err := legalUnitSIREN(u)
	if err != nil {
		return nil, err
	}

	created, err := t.date("dateCreationUniteLegale", u.DateCreation, siren)
	if err != nil {
		return nil, err
	}
	if created == nil {
		if err := t.required("dateCreationUniteLegale", siren); err != nil {
			return nil, err
		}
	}

	c := &models.Company{
		SIREN:            siren,
		Name:             t.CompanyName(u),
		Identifiers:      []models.Identifier{t.identifier(models.SchemeSIREN, siren, ref)},
		Status:           companyStatuses.fallback,
		CreationDate:     created,
		SizeCategory:     sizeCategory(u.CategorieEntreprise),
		SizeCategoryYear: year4(u.AnneeCategorieEntreprise),
		DiffusionStatus:  diffusion(u.StatutDiffusion),
		EmployeeBand:     employeeBand(u.TrancheEffectifs, u.AnneeEffectifs),
	}
	if p := currentLegalUnitPeriod(u); p != nil {
		c.Status = companyStatuses.lookup(p.EtatAdministratif)
		c.LegalForm = text(p.CategorieJuridique)
		c.ActivityCode = text(p.ActivitePrincipale)
		c.HeadquartersNIC = text(p.NicSiege)
	}
	return c, nil
}

// TransformLegalUnitPeriods maps every period of a legal unit. Under the
// permissive mode a period that ends before it starts is dropped.
func (t *Transformer) TransformLegalUnitPeriods(u *raw.LegalUnit) ([]models.LegalUnitPeriod, error) {
	siren, err := legalUnitSIREN(u)
	if err != nil {
		return nil, err
	}
	current := currentIndex(u.Periodes)

	out := make([]models.LegalUnitPeriod, 0, len(u.Periodes))
	for i, p := range u.Periodes {
		start, end, keep, err := t.periodBounds(p.DateDebut, p.DateFin, siren)
		if err != nil {
			return nil, err
		}
		if !keep {
			continue
		}

		scheme, code := t.classify(p.NomenclatureActivitePrincipale, p.ActivitePrincipale)
		lp := models.LegalUnitPeriod{
			SIREN:           siren,
			StartDate:       start,
			EndDate:         end,
			Current:         i == current,
			Status:          companyStatuses.lookup(p.EtatAdministratif),
			StatusChanged:   p.ChangementEtatAdministratif.OrZero(),
			Name:            text(p.Denomination),
			UsualNames:      nonBlank(p.DenominationUsuelle1, p.DenominationUsuelle2, p.DenominationUsuelle3),
			LegalForm:       text(p.CategorieJuridique),
			ActivityCode:    code,
			ActivityScheme:  scheme,
			HeadquartersNIC: text(p.NicSiege),
			SocialEconomy:   yesNo(p.EconomieSocialeSolidaire),
			MissionCompany:  yesNo(p.SocieteMission),
			Employer:        yesNo(p.CaractereEmployeur),
		}
		if t.cfg.IncludePersonalData {
			lp.LastName = text(p.Nom)
			lp.UsageName = text(p.NomUsage)
			if lp.Name == nil {
				if n := t.personalName(u.PrenomUsuel, p.NomUsage, p.Nom); n != "" {
					lp.Name = &n
				}
			}
		}
		out = append(out, lp)
	}
	return out, nil
}

// periodBounds parses a period's dates. keep is false when the permissive
// mode drops the period.
func (t *Transformer) periodBounds(startField, endField raw.Field[string], record string) (start, end *models.Date, keep bool, err error) {
	if start, err = t.date("dateDebut", startField, record); err != nil {
		return nil, nil, false, err
	}
	if end, err = t.date("dateFin", endField, record); err != nil {
		return nil, nil, false, err
	}
	if start != nil && models.EndsBeforeStart(*start, end) {
		verr := dErrors.Validation("dateFin", end.String(), "period ends before it starts").
			WithDetail("dateDebut", start.String())
		if err := t.violation(verr, record); err != nil {
			return nil, nil, false, err
		}
		return nil, nil, false, nil
	}
	return start, end, true, nil
}

func nonBlank(fields ...raw.Field[string]) []string {
	values := make([]string, 0, len(fields))
	for _, f := range fields {
		values = append(values, f.OrZero())
	}
	return pstrings.DedupeAndTrim(values)
}

// =============================================================================
// Establishments
// =============================================================================

// FacilitySIRET derives the establishment's SIRET from the record, or from
// its SIREN and NIC.
func FacilitySIRET(e *raw.Establishment) (string, error) {
	if s, ok := pstrings.FirstNonBlank(e.SIRET.OrZero()); ok {
		siret, err := domain.ParseSIRET(s)
		if err != nil {
			return "", dErrors.Transformation("establishment SIRET is malformed", map[string]any{"siret": s})
		}
		return siret.String(), nil
	}
	siren, err := domain.ParseSIREN(strings.TrimSpace(e.SIREN.OrZero()))
	if err != nil {
		return "", dErrors.Transformation("establishment has no SIRET and no usable SIREN", nil)
	}
	siret, err := domain.ComposeSIRET(siren, strings.TrimSpace(e.NIC.OrZero()))
	if err != nil {
		return "", dErrors.Transformation("establishment has no SIRET and no usable NIC", map[string]any{"siren": siren.String()})
	}
	return siret.String(), nil
}

// FacilityName resolves the display name of an establishment: the current
// period's usual name, then its three signage lines, then parentName.
func FacilityName(e *raw.Establishment, parentName string) string {
	var candidates []string
	if p := currentEstablishmentPeriod(e); p != nil {
		candidates = append(candidates,
			p.DenominationUsuelle.OrZero(),
			p.Enseigne1.OrZero(),
			p.Enseigne2.OrZero(),
			p.Enseigne3.OrZero(),
		)
	}
	candidates = append(candidates, parentName)
	if name, ok := pstrings.FirstNonBlank(candidates...); ok {
		return name
	}
	return UnknownFacility
}

// TransformFacility maps a raw establishment. parentName is the parent
// legal unit's current denomination, or "" when unknown.
func (t *Transformer) TransformFacility(e *raw.Establishment, parentName string) (*models.Facility, error) {
	return t.transformFacility(e, parentName, t.extractedAt)
}

func (t *Transformer) transformFacility(e *raw.Establishment, parentName string, ref time.Time) (*models.Facility, error) {
	if e == nil {
		return nil, dErrors.Transformation("establishment record is missing", nil)
	}
	siret, err := FacilitySIRET(e)
	if err != nil {
		return nil, err
	}

	created, err := t.date("dateCreationEtablissement", e.DateCreation, siret)
	if err != nil {
		return nil, err
	}
	if created == nil {
		if err := t.required("dateCreationEtablissement", siret); err != nil {
			return nil, err
		}
	}

	f := &models.Facility{
		SIRET:           siret,
		ParentSIREN:     domain.SIRET(siret).SIREN().String(),
		Name:            FacilityName(e, parentName),
		Identifiers:     []models.Identifier{t.identifier(models.SchemeSIRET, siret, ref)},
		Status:          facilityStatuses.fallback,
		Headquarters:    e.EtablissementSiege.OrZero(),
		CreationDate:    created,
		SearchScore:     e.Score.Ptr(),
		DiffusionStatus: diffusion(e.StatutDiffusion),
		EmployeeBand:    employeeBand(e.TrancheEffectifs, e.AnneeEffectifs),
	}
	if p := currentEstablishmentPeriod(e); p != nil {
		f.Status = facilityStatuses.lookup(p.EtatAdministratif)
		f.ActivityCode = text(p.ActivitePrincipale)
	}
	return f, nil
}

// TransformEstablishmentPeriods maps every period of an establishment.
func (t *Transformer) TransformEstablishmentPeriods(e *raw.Establishment) ([]models.EstablishmentPeriod, error) {
	siret, err := FacilitySIRET(e)
	if err != nil {
		return nil, err
	}
	current := currentIndex(e.Periodes)

	out := make([]models.EstablishmentPeriod, 0, len(e.Periodes))
	for i, p := range e.Periodes {
		start, end, keep, err := t.periodBounds(p.DateDebut, p.DateFin, siret)
		if err != nil {
			return nil, err
		}
		if !keep {
			continue
		}
		scheme, code := t.classify(p.NomenclatureActivitePrincipale, p.ActivitePrincipale)
		out = append(out, models.EstablishmentPeriod{
			SIRET:          siret,
			StartDate:      start,
			EndDate:        end,
			Current:        i == current,
			Status:         facilityStatuses.lookup(p.EtatAdministratif),
			StatusChanged:  p.ChangementEtatAdministratif.OrZero(),
			TradeName:      text(p.DenominationUsuelle),
			Signage:        nonBlank(p.Enseigne1, p.Enseigne2, p.Enseigne3),
			ActivityCode:   code,
			ActivityScheme: scheme,
			Employer:       yesNo(p.CaractereEmployeur),
		})
	}
	return out, nil
}

// =============================================================================
// Addresses and ownership
// =============================================================================

// validity returns the window during which the facility occupies its
// address: from its creation date (else its earliest period start, else
// ref) until the start of its current period when it is closed.
func (t *Transformer) validity(e *raw.Establishment, f *models.Facility, ref time.Time) (models.Date, *models.Date) {
	from := models.NewDate(ref)
	switch {
	case f.CreationDate != nil:
		from = *f.CreationDate
	default:
		if earliest := earliestStart(e.Periodes); earliest != nil {
			from = *earliest
		}
	}

	var to *models.Date
	if f.Status == models.FacilityClosed {
		if p := currentEstablishmentPeriod(e); p != nil {
			if d, err := models.ParseDate(strings.TrimSpace(p.DateDebut.OrZero())); err == nil {
				to = &d
			}
		}
	}
	// The window is derived, so a closing date before the start is dropped
	// in every mode rather than reported as a source violation.
	if models.EndsBeforeStart(from, to) {
		t.logger.Debug("derived validity end dropped", "record", f.SIRET, "from", from.String(), "to", to.String())
		to = nil
	}
	return from, to
}

func earliestStart(periods []raw.EstablishmentPeriod) *models.Date {
	var earliest *models.Date
	for _, p := range periods {
		d, err := models.ParseDate(strings.TrimSpace(p.DateDebut.OrZero()))
		if err != nil {
			continue
		}
		if earliest == nil || d.Before(earliest.Time) {
			earliest = &d
		}
	}
	return earliest
}

// departmentCode derives the department from a municipality code: two
// characters, three for overseas codes starting with 97.
func departmentCode(municipality string) *string {
	if len(municipality) < 2 {
		return nil
	}
	n := 2
	if strings.HasPrefix(municipality, "97") && len(municipality) >= 3 {
		n = 3
	}
	d := municipality[:n]
	return &d
}

// TransformAddress maps the address block of an establishment. It returns
// nil when the record carries no address block.
func (t *Transformer) TransformAddress(e *raw.Establishment, f *models.Facility) (*models.Address, error) {
	return t.transformAddress(e, f, t.extractedAt)
}

func (t *Transformer) transformAddress(e *raw.Establishment, f *models.Facility, ref time.Time) (*models.Address, error) {
	a := e.Adresse
	if a == nil {
		return nil, nil
	}

	addr := models.Address{
		FacilitySIRET: f.SIRET,
		Complement:    text(a.ComplementAdresse),
		PostalCode:    text(a.CodePostal),
		Cedex:         text(a.CodeCedex),
		CountryCode:   "FR",
		Precision:     string(config.PrecisionUnknown),
	}
	if street := pstrings.JoinPresent(
		a.NumeroVoie.OrZero().String(),
		a.IndiceRepetition.OrZero(),
		a.TypeVoie.OrZero(),
		a.LibelleVoie.OrZero(),
	); street != "" {
		addr.StreetAddress = &street
	}
	if locality, ok := pstrings.FirstNonBlank(a.LibelleCommune.OrZero(), a.LibelleCommuneEtranger.OrZero()); ok {
		addr.Locality = &locality
	}
	if m := text(a.CodeCommune); m != nil {
		addr.MunicipalityCode = m
		addr.DepartmentCode = departmentCode(*m)
	}
	if code := text(a.CodePaysEtranger); code != nil {
		addr.CountryCode = *code
		addr.Country = text(a.LibellePaysEtranger)
	} else if label := text(a.LibellePaysEtranger); label != nil {
		addr.CountryCode = ""
		addr.Country = label
	}

	if p := t.coordinates(a, f.SIRET); p != nil {
		addr.Longitude, addr.Latitude = &p.Longitude, &p.Latitude
		addr.Precision = string(t.cfg.CoordinatePrecision)
	}

	addr.ValidFrom, addr.ValidTo = t.validity(e, f, ref)
	return models.NewAddress(addr)
}

// coordinates converts the Lambert 93 pair. Absence and conversion failures
// both yield nil.
func (t *Transformer) coordinates(a *raw.Address, record string) *geo.Point {
	x, xok := a.CoordonneeLambertAbscisse.Get()
	y, yok := a.CoordonneeLambertOrdonnee.Get()
	if !xok || !yok {
		return nil
	}
	p, err := geo.ParseToWGS84(x.String(), y.String(), false)
	if err != nil {
		t.logger.Debug("coordinates not converted", "record", record, "error", err)
		return nil
	}
	return p
}

// TransformOwnership derives the company-facility link. Its window is the
// facility's address validity window.
func (t *Transformer) TransformOwnership(e *raw.Establishment, f *models.Facility) models.FacilityOwnership {
	return t.transformOwnership(e, f, t.extractedAt)
}

func (t *Transformer) transformOwnership(e *raw.Establishment, f *models.Facility, ref time.Time) models.FacilityOwnership {
	role := models.RoleBranch
	if f.Headquarters {
		role = models.RoleHeadquarters
	}
	from, to := t.validity(e, f, ref)
	return models.FacilityOwnership{
		CompanySIREN:  f.ParentSIREN,
		FacilitySIRET: f.SIRET,
		Role:          role,
		ValidFrom:     from,
		ValidTo:       to,
	}
}
