// Package orchestrator wires the extractor and the transformer together
// behind a one-shot call and a progress-reporting call.
package orchestrator

import (
	"context"
	"errors"
	"iter"
	"log/slog"
	"time"

	"sirene/internal/extraction/config"
	"sirene/internal/extraction/extractor"
	"sirene/internal/extraction/metrics"
	"sirene/internal/extraction/models"
	"sirene/internal/extraction/transform"
	raw "sirene/internal/registry/models"
	"sirene/pkg/domain"
	dErrors "sirene/pkg/domain-errors"
)

// Extractor is the registry-facing half of a run.
type Extractor interface {
	ExtractCompany(ctx context.Context, siren string) (*raw.LegalUnit, error)
	StreamFacilities(ctx context.Context, siren string) iter.Seq2[extractor.Batch, error]
	ExtractFull(ctx context.Context, siren string) (*extractor.Extraction, error)
}

// Sink receives every successful result.
type Sink interface {
	Publish(ctx context.Context, result *models.Result) error
}

// Orchestrator runs extractions. It holds no per-run state, so concurrent
// runs for different SIRENs are independent.
type Orchestrator struct {
	extractor Extractor
	cfg       config.Config
	sink      Sink
	labeler   transform.ActivityLabeler
	logger    *slog.Logger
	metrics   *metrics.Metrics
	now       func() time.Time
}

type Option func(*Orchestrator)

func WithSink(s Sink) Option {
	return func(o *Orchestrator) {
		o.sink = s
	}
}

func WithActivityLabeler(l transform.ActivityLabeler) Option {
	return func(o *Orchestrator) {
		o.labeler = l
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(o *Orchestrator) {
		o.metrics = m
	}
}

func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		o.now = now
	}
}

// New constructs an Orchestrator.
func New(ext Extractor, cfg config.Config, opts ...Option) (*Orchestrator, error) {
	if ext == nil {
		return nil, errors.New("extractor is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := &Orchestrator{
		extractor: ext,
		cfg:       cfg,
		logger:    slog.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// transformer builds the per-run transformer with its own classification cache.
func (o *Orchestrator) transformer(extractedAt time.Time) (*transform.Transformer, error) {
	return transform.New(o.cfg,
		transform.WithClassificationCache(transform.NewClassificationCache()),
		transform.WithActivityLabeler(o.labeler),
		transform.WithExtractedAt(extractedAt),
		transform.WithClock(o.now),
		transform.WithLogger(o.logger),
		transform.WithMetrics(o.metrics),
	)
}

// Extract runs a full extraction and mapping for siren. The identifier is
// validated before any registry call; failures from either stage are
// returned unchanged.
func (o *Orchestrator) Extract(ctx context.Context, siren string) (result *models.Result, err error) {
	start := time.Now()
	defer func() { o.metrics.ObserveRun("one_shot", time.Since(start), err) }()

	id, err := domain.ParseSIREN(siren)
	if err != nil {
		return nil, err
	}
	o.logger.InfoContext(ctx, "extraction started", "siren", id.String())

	ext, err := o.extractor.ExtractFull(ctx, id.String())
	if err != nil {
		o.logger.ErrorContext(ctx, "extraction failed", "siren", id.String(), "error", err)
		return nil, err
	}
	tr, err := o.transformer(ext.Metadata.ExtractedAt)
	if err != nil {
		return nil, err
	}
	result, err = tr.TransformComplete(ext)
	if err != nil {
		o.logger.ErrorContext(ctx, "transformation failed", "siren", id.String(), "error", err)
		return nil, err
	}
	if err := o.publish(ctx, result); err != nil {
		return nil, err
	}

	o.logger.InfoContext(ctx, "extraction completed",
		"siren", id.String(),
		"facilities", len(result.Facilities),
		"duration", time.Since(start),
	)
	return result, nil
}

// ExtractWithProgress does the work of Extract while reporting progress:
// one CompanyExtracted event, one FacilityProcessed event per mapped
// establishment, then Completed. On failure a Failed event is reported and
// the error is still returned.
func (o *Orchestrator) ExtractWithProgress(ctx context.Context, siren string, reporter Reporter) (result *models.Result, err error) {
	if reporter == nil {
		reporter = discardReporter{}
	}
	start := time.Now()
	defer func() {
		o.metrics.ObserveRun("progress", time.Since(start), err)
		if err != nil {
			o.logger.ErrorContext(ctx, "extraction failed", "siren", siren, "error", err)
			reporter.Report(ctx, Failed{Message: err.Error(), Err: err})
		}
	}()

	id, err := domain.ParseSIREN(siren)
	if err != nil {
		return nil, err
	}
	o.logger.InfoContext(ctx, "extraction started", "siren", id.String(), "progress", true)

	extractedAt := o.now().UTC()
	unit, err := o.extractor.ExtractCompany(ctx, id.String())
	if err != nil {
		return nil, err
	}
	tr, err := o.transformer(extractedAt)
	if err != nil {
		return nil, err
	}
	run, err := tr.Start(unit, extractedAt)
	if err != nil {
		return nil, err
	}
	reporter.Report(ctx, CompanyExtracted{SIREN: run.Company().SIREN, Name: run.Company().Name})

	current := 0
	for batch, err := range o.extractor.StreamFacilities(ctx, id.String()) {
		if err != nil {
			return nil, err
		}
		for i := range batch.Establishments {
			current++
			b, err := run.Add(&batch.Establishments[i])
			if err != nil {
				return nil, err
			}
			if b == nil {
				continue
			}
			reporter.Report(ctx, FacilityProcessed{
				Current: current,
				Total:   batch.Total,
				SIRET:   b.Facility.SIRET,
				Name:    b.Facility.Name,
			})
		}
	}

	result = run.Result()
	if err := o.publish(ctx, result); err != nil {
		return nil, err
	}
	reporter.Report(ctx, Completed{
		SIREN:         result.Metadata.SIREN,
		FacilityCount: result.Metadata.FacilityCount,
		Counts:        result.Metadata.Counts,
	})
	o.logger.InfoContext(ctx, "extraction completed",
		"siren", id.String(),
		"facilities", len(result.Facilities),
		"duration", time.Since(start),
	)
	return result, nil
}

func (o *Orchestrator) publish(ctx context.Context, result *models.Result) error {
	if o.sink == nil {
		return nil
	}
	if err := o.sink.Publish(ctx, result); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "result could not be published").
			WithDetail("siren", result.Metadata.SIREN)
	}
	return nil
}
