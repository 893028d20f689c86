package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"sirene/internal/extraction/config"
	"sirene/internal/extraction/extractor"
	"sirene/internal/extraction/models"
	"sirene/internal/registry"
	"sirene/internal/registry/mocks"
	raw "sirene/internal/registry/models"
	dErrors "sirene/pkg/domain-errors"
)

// =============================================================================
// Orchestrator Test Suite
// =============================================================================
// Justification for unit tests: event ordering and failure reporting are
// only observable from inside the process.

const testSIREN = "552100554"

var fixedNow = func() time.Time { return time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC) }

type recordingSink struct {
	mu      sync.Mutex
	results []*models.Result
	err     error
}

func (s *recordingSink) Publish(_ context.Context, r *models.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = append(s.results, r)
	return s.err
}

type eventLog struct {
	events []Event
}

func (l *eventLog) Report(_ context.Context, e Event) {
	l.events = append(l.events, e)
}

func (l *eventLog) types() []EventType {
	out := make([]EventType, len(l.events))
	for i, e := range l.events {
		out[i] = e.Type()
	}
	return out
}

type OrchestratorSuite struct {
	suite.Suite
	ctx    context.Context
	client *registry.StaticClient
	sink   *recordingSink
	orch   *Orchestrator
}

func TestOrchestratorSuite(t *testing.T) {
	suite.Run(t, new(OrchestratorSuite))
}

func legalUnit() *raw.LegalUnit {
	return &raw.LegalUnit{
		SIREN:        raw.Value(testSIREN),
		DateCreation: raw.Value("1955-03-31"),
		Periodes: []raw.LegalUnitPeriod{{
			DateDebut:                      raw.Value("2008-01-01"),
			EtatAdministratif:              raw.Value("A"),
			Denomination:                   raw.Value("ACME INDUSTRIE"),
			ActivitePrincipale:             raw.Value("29.10Z"),
			NomenclatureActivitePrincipale: raw.Value("NAFRev2"),
		}},
	}
}

func establishments(n int) []raw.Establishment {
	out := make([]raw.Establishment, n)
	for i := range out {
		out[i] = raw.Establishment{
			SIREN:        raw.Value(testSIREN),
			NIC:          raw.Value(fmt.Sprintf("%05d", i+1)),
			SIRET:        raw.Value(fmt.Sprintf("%s%05d", testSIREN, i+1)),
			DateCreation: raw.Value("2001-01-01"),
			Adresse:      &raw.Address{CodePostal: raw.Value("75002")},
			Periodes: []raw.EstablishmentPeriod{{
				DateDebut:         raw.Value("2001-01-01"),
				EtatAdministratif: raw.Value("A"),
				Enseigne1:         raw.Value(fmt.Sprintf("SITE %d", i+1)),
			}},
		}
	}
	return out
}

func (s *OrchestratorSuite) newOrchestrator(client registry.Client, opts ...Option) *Orchestrator {
	ext, err := extractor.New(client, extractor.WithPageSize(2), extractor.WithClock(fixedNow))
	s.Require().NoError(err)
	o, err := New(ext, config.Default(), append([]Option{WithClock(fixedNow)}, opts...)...)
	s.Require().NoError(err)
	return o
}

func (s *OrchestratorSuite) SetupTest() {
	s.ctx = context.Background()
	s.client = &registry.StaticClient{
		LegalUnits:     map[string]*raw.LegalUnit{testSIREN: legalUnit()},
		Establishments: map[string][]raw.Establishment{testSIREN: establishments(5)},
	}
	s.sink = &recordingSink{}
	s.orch = s.newOrchestrator(s.client, WithSink(s.sink))
}

// =============================================================================
// One-shot Tests
// =============================================================================

func (s *OrchestratorSuite) TestExtract() {
	s.Run("returns the normalized aggregate", func() {
		res, err := s.orch.Extract(s.ctx, testSIREN)
		s.Require().NoError(err)
		s.Equal("ACME INDUSTRIE", res.Company.Name)
		s.Len(res.Facilities, 5)
		s.Len(res.Addresses, 5)
		s.Len(res.RegistryRecords, 6)
		s.Len(res.ActivityClassifications, 1)
		s.Equal(5, res.Metadata.FacilityCount)
	})

	s.Run("publishes to the sink", func() {
		s.sink.results = nil
		res, err := s.orch.Extract(s.ctx, testSIREN)
		s.Require().NoError(err)
		s.Require().Len(s.sink.results, 1)
		s.Same(res, s.sink.results[0])
	})

	s.Run("each run gets its own classification cache", func() {
		a, err := s.orch.Extract(s.ctx, testSIREN)
		s.Require().NoError(err)
		b, err := s.orch.Extract(s.ctx, testSIREN)
		s.Require().NoError(err)
		s.Equal(a.ActivityClassifications, b.ActivityClassifications)
		s.NotEqual(a.Metadata.RunID, b.Metadata.RunID)
	})
}

func (s *OrchestratorSuite) TestExtractRejectsMalformedSIREN() {
	ctrl := gomock.NewController(s.T())
	client := mocks.NewMockClient(ctrl) // no calls expected
	o := s.newOrchestrator(client)

	for _, siren := range []string{"", "55210055", "5521005541", "55210055A", "５５２１００５５４"} {
		s.Run(siren, func() {
			_, err := o.Extract(s.ctx, siren)
			s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))

			_, err = o.ExtractWithProgress(s.ctx, siren, nil)
			s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
		})
	}
}

func (s *OrchestratorSuite) TestExtractPropagatesFailuresUnchanged() {
	s.Run("registry failure", func() {
		_, err := s.orch.Extract(s.ctx, "999999999")
		s.True(errors.Is(err, dErrors.ErrExtraction))
	})

	s.Run("strict transformation failure", func() {
		s.client.LegalUnits[testSIREN].DateCreation = raw.Field[string]{}
		defer func() { s.client.LegalUnits[testSIREN].DateCreation = raw.Value("1955-03-31") }()

		ext, err := extractor.New(s.client)
		s.Require().NoError(err)
		cfg, err := config.New(config.WithValidationMode(config.ModeStrict))
		s.Require().NoError(err)
		o, err := New(ext, cfg)
		s.Require().NoError(err)

		_, err = o.Extract(s.ctx, testSIREN)
		s.True(dErrors.HasCode(err, dErrors.CodeTransformation))
	})

	s.Run("sink failure", func() {
		s.sink.err = errors.New("broker unavailable")
		defer func() { s.sink.err = nil }()

		_, err := s.orch.Extract(s.ctx, testSIREN)
		s.Error(err)
		s.ErrorIs(err, s.sink.err)
	})
}

// =============================================================================
// Progress Tests
// =============================================================================

func (s *OrchestratorSuite) TestExtractWithProgress() {
	log := &eventLog{}
	res, err := s.orch.ExtractWithProgress(s.ctx, testSIREN, log)
	s.Require().NoError(err)

	s.Equal([]EventType{
		EventCompanyExtracted,
		EventFacilityProcessing, EventFacilityProcessing, EventFacilityProcessing,
		EventFacilityProcessing, EventFacilityProcessing,
		EventCompleted,
	}, log.types())

	s.Equal(CompanyExtracted{SIREN: testSIREN, Name: "ACME INDUSTRIE"}, log.events[0])
	for i := 1; i <= 5; i++ {
		p := log.events[i].(FacilityProcessed)
		s.Equal(i, p.Current)
		s.Equal(5, p.Total)
		s.Equal(fmt.Sprintf("SITE %d", i), p.Name)
	}
	done := log.events[6].(Completed)
	s.Equal(5, done.FacilityCount)
	s.Equal(res.Count(), done.Counts)
	s.Len(s.sink.results, 1)
}

func (s *OrchestratorSuite) TestProgressMatchesOneShot() {
	oneShot, err := s.orch.Extract(s.ctx, testSIREN)
	s.Require().NoError(err)
	progress, err := s.orch.ExtractWithProgress(s.ctx, testSIREN, nil)
	s.Require().NoError(err)

	s.Equal(oneShot.Company, progress.Company)
	s.Equal(oneShot.Facilities, progress.Facilities)
	s.Equal(oneShot.Addresses, progress.Addresses)
	s.Equal(oneShot.ActivityClassifications, progress.ActivityClassifications)
	s.Equal(oneShot.Metadata.Counts, progress.Metadata.Counts)
}

func (s *OrchestratorSuite) TestProgressReportsFailureAndReturnsIt() {
	ctrl := gomock.NewController(s.T())
	client := mocks.NewMockClient(ctrl)
	cause := &registry.StatusError{StatusCode: 500, Endpoint: registry.EndpointEstablishments}

	client.EXPECT().LegalUnit(gomock.Any(), testSIREN).
		Return(&raw.LegalUnitResponse{UniteLegale: legalUnit()}, nil)
	gomock.InOrder(
		client.EXPECT().SearchEstablishments(gomock.Any(), gomock.Any()).
			Return(&raw.EstablishmentPage{Header: raw.Header{Total: 4}, Etablissements: establishments(2)}, nil),
		client.EXPECT().SearchEstablishments(gomock.Any(), gomock.Any()).
			Return(nil, cause),
	)

	log := &eventLog{}
	res, err := s.newOrchestrator(client).ExtractWithProgress(s.ctx, testSIREN, log)
	s.Nil(res)
	s.Require().Error(err)
	s.ErrorAs(err, &cause)

	s.Equal([]EventType{
		EventCompanyExtracted, EventFacilityProcessing, EventFacilityProcessing, EventError,
	}, log.types())
	failed := log.events[3].(Failed)
	s.Equal(err.Error(), failed.Message)
	s.Same(err, failed.Err)
}

func (s *OrchestratorSuite) TestChannelReporter() {
	ch := make(chan Event, 16)
	_, err := s.orch.ExtractWithProgress(s.ctx, testSIREN, ChannelReporter(ch))
	s.Require().NoError(err)
	close(ch)

	var last Event
	count := 0
	for e := range ch {
		last = e
		count++
	}
	s.Equal(7, count)
	s.Equal(EventCompleted, last.Type())
}

func (s *OrchestratorSuite) TestReporterFunc() {
	var names []string
	reporter := ReporterFunc(func(_ context.Context, e Event) {
		if p, ok := e.(FacilityProcessed); ok {
			names = append(names, p.Name)
		}
	})
	_, err := s.orch.ExtractWithProgress(s.ctx, testSIREN, reporter)
	s.Require().NoError(err)
	s.Equal([]string{"SITE 1", "SITE 2", "SITE 3", "SITE 4", "SITE 5"}, names)
}
