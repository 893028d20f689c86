package sirene

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sirene/internal/registry"
	"sirene/internal/registry/models"
)

func newTestClient(t *testing.T, handler http.Handler, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	base := []Option{
		WithAPIKey("test-key"),
		WithBackOff(func() backoff.BackOff { return &backoff.ZeroBackOff{} }),
		WithHTTPClient(srv.Client()),
	}
	c, err := New(srv.URL, append(base, opts...)...)
	require.NoError(t, err)
	return c
}

func TestLegalUnit(t *testing.T) {
	t.Run("decodes the legal unit and sends the api key", func(t *testing.T) {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/siren/552100554", r.URL.Path)
			assert.Equal(t, "test-key", r.Header.Get(apiKeyHeader))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"header":{"statut":200,"message":"ok"},"uniteLegale":{"siren":"552100554","periodesUniteLegale":[{"denominationUniteLegale":"PEUGEOT"}]}}`))
		}))

		resp, err := c.LegalUnit(context.Background(), "552100554")
		require.NoError(t, err)
		require.NotNil(t, resp.UniteLegale)
		assert.Equal(t, "552100554", resp.UniteLegale.SIREN.OrZero())
		require.Len(t, resp.UniteLegale.Periodes, 1)
		assert.Equal(t, "PEUGEOT", resp.UniteLegale.Periodes[0].Denomination.OrZero())
	})

	t.Run("404 is a permanent status error", func(t *testing.T) {
		var calls atomic.Int32
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			http.Error(w, "not found", http.StatusNotFound)
		}))

		_, err := c.LegalUnit(context.Background(), "000000000")
		require.Error(t, err)
		var se *registry.StatusError
		require.True(t, errors.As(err, &se))
		assert.True(t, se.NotFound())
		assert.Equal(t, registry.EndpointLegalUnit, se.Endpoint)
		assert.Equal(t, int32(1), calls.Load())
	})
}

func TestRetries(t *testing.T) {
	t.Run("retries 5xx up to max retries", func(t *testing.T) {
		var calls atomic.Int32
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusServiceUnavailable)
		}), WithMaxRetries(2))

		_, err := c.LegalUnit(context.Background(), "552100554")
		require.Error(t, err)
		assert.Equal(t, int32(3), calls.Load())
	})

	t.Run("recovers after a rate limited attempt", func(t *testing.T) {
		var calls atomic.Int32
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) == 1 {
				w.WriteHeader(http.StatusTooManyRequests)
				return
			}
			_, _ = w.Write([]byte(`{"header":{"statut":200},"uniteLegale":{"siren":"552100554"}}`))
		}), WithMaxRetries(1))

		resp, err := c.LegalUnit(context.Background(), "552100554")
		require.NoError(t, err)
		assert.Equal(t, "552100554", resp.UniteLegale.SIREN.OrZero())
		assert.Equal(t, int32(2), calls.Load())
	})

	t.Run("zero retries makes a single attempt", func(t *testing.T) {
		var calls atomic.Int32
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusBadGateway)
		}), WithMaxRetries(0))

		_, err := c.LegalUnit(context.Background(), "552100554")
		require.Error(t, err)
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("each attempt is bounded by the timeout", func(t *testing.T) {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
		}), WithMaxRetries(0), WithTimeout(50*time.Millisecond))

		start := time.Now()
		_, err := c.LegalUnit(context.Background(), "552100554")
		require.Error(t, err)
		assert.Less(t, time.Since(start), time.Second)
	})
}

func TestSearchEstablishments(t *testing.T) {
	t.Run("sends paging parameters", func(t *testing.T) {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/siret", r.URL.Path)
			assert.Equal(t, "siren:552100554", r.URL.Query().Get("q"))
			assert.Equal(t, "1000", r.URL.Query().Get("nombre"))
			assert.Equal(t, "2000", r.URL.Query().Get("debut"))
			assert.Equal(t, "true", r.URL.Query().Get("masquerValeursNulles"))
			_, _ = w.Write([]byte(`{"header":{"statut":200,"total":2001,"debut":2000,"nombre":1},"etablissements":[{"siret":"55210055400013"}]}`))
		}))

		page, err := c.SearchEstablishments(context.Background(), models.SearchQuery{
			Q:                    registry.SIRENQuery("552100554"),
			Nombre:               1000,
			Debut:                2000,
			MasquerValeursNulles: true,
		})
		require.NoError(t, err)
		assert.Equal(t, 2001, page.Header.Total)
		require.Len(t, page.Etablissements, 1)
	})

	t.Run("404 yields an empty page", func(t *testing.T) {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"header":{"statut":404,"message":"Aucun élément trouvé"}}`, http.StatusNotFound)
		}))

		page, err := c.SearchEstablishments(context.Background(), models.SearchQuery{Q: "siren:552100554", Nombre: 1000})
		require.NoError(t, err)
		assert.Empty(t, page.Etablissements)
		assert.Equal(t, 0, page.Header.Total)
	})

	t.Run("malformed body is not retried", func(t *testing.T) {
		var calls atomic.Int32
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			_, _ = w.Write([]byte(`{"header":`))
		}), WithMaxRetries(3))

		_, err := c.SearchEstablishments(context.Background(), models.SearchQuery{Q: "siren:552100554", Nombre: 1000})
		require.Error(t, err)
		assert.Equal(t, int32(1), calls.Load())
	})
}

func TestNewRejectsInvalidBudget(t *testing.T) {
	_, err := New("http://example.test", WithMaxRetries(-1))
	require.Error(t, err)

	_, err = New("http://example.test", WithTimeout(0))
	require.Error(t, err)
}
