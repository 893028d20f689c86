package orchestrator

import (
	"context"

	"sirene/internal/extraction/models"
)

// EventType names a progress event.
type EventType string

const (
	EventCompanyExtracted   EventType = "company_extracted"
	EventFacilityProcessing EventType = "facilities_processing"
	EventCompleted          EventType = "completed"
	EventError              EventType = "error"
)

// Event is one progress notification. The set of implementations is closed.
type Event interface {
	Type() EventType
	event()
}

// CompanyExtracted is reported once the legal unit has been fetched and mapped.
type CompanyExtracted struct {
	SIREN string `json:"siren"`
	Name  string `json:"name"`
}

// FacilityProcessed is reported after each establishment is mapped.
// Current counts establishments received so far; Total is the registry's count.
type FacilityProcessed struct {
	Current int    `json:"current"`
	Total   int    `json:"total"`
	SIRET   string `json:"siret"`
	Name    string `json:"name"`
}

// Completed is the final event of a successful run.
type Completed struct {
	SIREN         string        `json:"siren"`
	FacilityCount int           `json:"facility_count"`
	Counts        models.Counts `json:"counts"`
}

// Failed is the final event of a failed run. The error is still returned
// to the caller.
type Failed struct {
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (CompanyExtracted) Type() EventType  { return EventCompanyExtracted }
func (FacilityProcessed) Type() EventType { return EventFacilityProcessing }
func (Completed) Type() EventType         { return EventCompleted }
func (Failed) Type() EventType            { return EventError }

func (CompanyExtracted) event()  {}
func (FacilityProcessed) event() {}
func (Completed) event()         {}
func (Failed) event()            {}

// Reporter receives progress events.
type Reporter interface {
	Report(ctx context.Context, e Event)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(ctx context.Context, e Event)

func (f ReporterFunc) Report(ctx context.Context, e Event) { f(ctx, e) }

// ChannelReporter delivers events on a channel. A send blocks until the
// event is received or ctx is done; events sent after ctx is done are dropped.
type ChannelReporter chan<- Event

func (c ChannelReporter) Report(ctx context.Context, e Event) {
	select {
	case c <- e:
	case <-ctx.Done():
	}
}

type discardReporter struct{}

func (discardReporter) Report(context.Context, Event) {}
