package registry

import (
	"context"
	"sync"
	"time"

	"sirene/internal/registry/models"
)

//go:generate mockgen -source=clients.go -destination=mocks/mocks.go -package=mocks Client

// Client is the typed binding to the Sirene registry. Transport, headers,
// status codes and retries live behind it; the extraction core only sees
// decoded records.
type Client interface {
	// LegalUnit fetches one legal unit by SIREN.
	LegalUnit(ctx context.Context, siren string) (*models.LegalUnitResponse, error)

	// SearchEstablishments runs one page of a multi-criteria establishment search.
	SearchEstablishments(ctx context.Context, q models.SearchQuery) (*models.EstablishmentPage, error)
}

// StaticClient serves a fixed data set from memory. It pages establishments
// exactly like the registry does and records every query it receives, which
// makes it useful for local runs and pagination tests.
type StaticClient struct {
	Latency        time.Duration
	LegalUnits     map[string]*models.LegalUnit
	Establishments map[string][]models.Establishment

	mu      sync.Mutex
	queries []models.SearchQuery
}

// LegalUnit implements Client.
func (c *StaticClient) LegalUnit(ctx context.Context, siren string) (*models.LegalUnitResponse, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	unit, ok := c.LegalUnits[siren]
	if !ok {
		return nil, &StatusError{StatusCode: 404, Endpoint: EndpointLegalUnit, Body: "Unité légale non trouvée"}
	}
	return &models.LegalUnitResponse{
		Header:      models.Header{Statut: 200, Message: "OK"},
		UniteLegale: unit,
	}, nil
}

// SearchEstablishments implements Client. Only `siren:<value>` queries are understood.
func (c *StaticClient) SearchEstablishments(ctx context.Context, q models.SearchQuery) (*models.EstablishmentPage, error) {
	c.mu.Lock()
	c.queries = append(c.queries, q)
	c.mu.Unlock()

	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	all := c.Establishments[SIRENFromQuery(q.Q)]
	start := min(max(q.Debut, 0), len(all))
	end := min(start+max(q.Nombre, 0), len(all))
	page := append([]models.Establishment(nil), all[start:end]...)

	return &models.EstablishmentPage{
		Header: models.Header{
			Statut: 200,
			Total:  len(all),
			Debut:  q.Debut,
			Nombre: len(page),
		},
		Etablissements: page,
	}, nil
}

// Queries returns the search queries received so far, in order.
func (c *StaticClient) Queries() []models.SearchQuery {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.SearchQuery(nil), c.queries...)
}

func (c *StaticClient) wait(ctx context.Context) error {
	if c.Latency <= 0 {
		return ctx.Err()
	}
	select {
	case <-time.After(c.Latency):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
