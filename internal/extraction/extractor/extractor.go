// Package extractor pulls one legal unit and all of its establishments from
// the registry. Establishment pages are fetched strictly in sequence; the
// bulk and streaming calls share one paging loop so they always agree.
package extractor

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"sirene/internal/extraction/metrics"
	"sirene/internal/registry"
	"sirene/internal/registry/models"
	dErrors "sirene/pkg/domain-errors"
)

// Batch is one page of establishments together with the total the
// registry reported on the first page.
type Batch struct {
	Establishments []models.Establishment
	Total          int
}

// Metadata describes a full extraction.
type Metadata struct {
	SIREN         string
	ExtractedAt   time.Time
	FacilityCount int
}

// Extraction is the raw output of ExtractFull.
type Extraction struct {
	Company    *models.LegalUnit
	Facilities []models.Establishment
	Metadata   Metadata
}

// Extractor reads raw records through a registry.Client.
type Extractor struct {
	client   registry.Client
	pageSize int
	logger   *slog.Logger
	metrics  *metrics.Metrics
	tracer   trace.Tracer
	now      func() time.Time
}

type Option func(*Extractor)

// WithPageSize overrides the number of establishments requested per page.
func WithPageSize(n int) Option {
	return func(e *Extractor) {
		e.pageSize = n
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(e *Extractor) {
		e.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Extractor) {
		e.metrics = m
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(e *Extractor) {
		e.tracer = t
	}
}

// WithClock sets the time source used for extraction timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Extractor) {
		e.now = now
	}
}

// New constructs an Extractor.
func New(client registry.Client, opts ...Option) (*Extractor, error) {
	if client == nil {
		return nil, errors.New("registry client is required")
	}
	e := &Extractor{
		client:   client,
		pageSize: registry.PageSize,
		logger:   slog.New(slog.DiscardHandler),
		tracer:   otel.Tracer("sirene/extractor"),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.pageSize < 1 {
		return nil, fmt.Errorf("page size must be at least 1, got %d", e.pageSize)
	}
	return e, nil
}

// ExtractCompany fetches the legal unit identified by siren.
func (e *Extractor) ExtractCompany(ctx context.Context, siren string) (*models.LegalUnit, error) {
	ctx, span := e.tracer.Start(ctx, "extractor.company",
		trace.WithAttributes(attribute.String("siren", siren)))
	defer span.End()

	start := time.Now()
	resp, err := e.client.LegalUnit(ctx, siren)
	e.metrics.ObserveRegistryCall(registry.EndpointLegalUnit, time.Since(start), err)
	if err != nil {
		return nil, fail(span, dErrors.Extraction(siren, registry.EndpointLegalUnit, "legal unit lookup failed", err))
	}
	if resp == nil || resp.UniteLegale == nil {
		return nil, fail(span, dErrors.Extraction(siren, registry.EndpointLegalUnit, "registry returned no legal unit", nil))
	}
	e.logger.DebugContext(ctx, "legal unit fetched", "siren", siren, "periods", len(resp.UniteLegale.Periodes))
	return resp.UniteLegale, nil
}

// ExtractAllFacilities returns every establishment of siren in registry
// order. A failed page fails the whole call and no partial result is returned.
func (e *Extractor) ExtractAllFacilities(ctx context.Context, siren string) ([]models.Establishment, error) {
	var all []models.Establishment
	for batch, err := range e.StreamFacilities(ctx, siren) {
		if err != nil {
			return nil, err
		}
		all = append(all, batch.Establishments...)
	}
	e.logger.InfoContext(ctx, "establishments extracted", "siren", siren, "count", len(all))
	return all, nil
}

// StreamFacilities yields each page of establishments as soon as it arrives.
// The sequence is single-use. Breaking out of the loop stops paging; no
// further page is requested. A page failure is yielded once as the error and
// ends the sequence. Empty pages are not yielded.
func (e *Extractor) StreamFacilities(ctx context.Context, siren string) iter.Seq2[Batch, error] {
	return func(yield func(Batch, error) bool) {
		total, fetched := 0, 0
		for page := 0; ; page++ {
			resp, err := e.fetchPage(ctx, siren, page)
			if err != nil {
				yield(Batch{}, err)
				return
			}
			if page == 0 {
				total = resp.Header.Total
			}
			n := len(resp.Etablissements)
			fetched += n
			if n > 0 && !yield(Batch{Establishments: resp.Etablissements, Total: total}, nil) {
				return
			}
			// A zero total means the header carried no count; rely on short pages then.
			if n < e.pageSize || (total > 0 && fetched >= total) {
				return
			}
		}
	}
}

// ExtractFull fetches the legal unit and then all of its establishments.
func (e *Extractor) ExtractFull(ctx context.Context, siren string) (*Extraction, error) {
	extractedAt := e.now().UTC()

	company, err := e.ExtractCompany(ctx, siren)
	if err != nil {
		return nil, err
	}
	facilities, err := e.ExtractAllFacilities(ctx, siren)
	if err != nil {
		return nil, err
	}
	return &Extraction{
		Company:    company,
		Facilities: facilities,
		Metadata: Metadata{
			SIREN:         siren,
			ExtractedAt:   extractedAt,
			FacilityCount: len(facilities),
		},
	}, nil
}

func (e *Extractor) fetchPage(ctx context.Context, siren string, page int) (*models.EstablishmentPage, error) {
	offset := page * e.pageSize
	ctx, span := e.tracer.Start(ctx, "extractor.establishment_page",
		trace.WithAttributes(
			attribute.String("siren", siren),
			attribute.Int("page", page),
			attribute.Int("offset", offset),
		))
	defer span.End()

	start := time.Now()
	resp, err := e.client.SearchEstablishments(ctx, models.SearchQuery{
		Q:                    registry.SIRENQuery(siren),
		Nombre:               e.pageSize,
		Debut:                offset,
		MasquerValeursNulles: true,
	})
	e.metrics.ObserveRegistryCall(registry.EndpointEstablishments, time.Since(start), err)
	if err != nil {
		return nil, fail(span, dErrors.Extraction(siren, registry.EndpointEstablishments,
			fmt.Sprintf("establishment page %d failed", page), err).WithDetail("offset", offset))
	}
	if resp == nil {
		return nil, fail(span, dErrors.Extraction(siren, registry.EndpointEstablishments,
			fmt.Sprintf("establishment page %d was empty", page), nil).WithDetail("offset", offset))
	}

	e.metrics.ObservePage(len(resp.Etablissements))
	span.SetAttributes(attribute.Int("count", len(resp.Etablissements)))
	e.logger.DebugContext(ctx, "establishment page fetched",
		"siren", siren,
		"page", page,
		"offset", offset,
		"count", len(resp.Etablissements),
		"total", resp.Header.Total,
	)
	return resp, nil
}

func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
