package httputil

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "sirene/pkg/domain-errors"
)

type upstream struct{ status int }

func (u upstream) Error() string  { return "upstream" }
func (u upstream) NotFound() bool { return u.status == http.StatusNotFound }

func TestStatusFor(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"invalid input", dErrors.New(dErrors.CodeInvalidInput, "bad siren"), http.StatusBadRequest},
		{"registry not found", dErrors.Extraction("552100554", "legal_unit", "failed", upstream{404}), http.StatusNotFound},
		{"registry unavailable", dErrors.Extraction("552100554", "legal_unit", "failed", upstream{503}), http.StatusBadGateway},
		{"extraction without cause", dErrors.Extraction("552100554", "legal_unit", "empty", nil), http.StatusBadGateway},
		{"transformation", dErrors.Transformation("bad record", nil), http.StatusUnprocessableEntity},
		{"validation", dErrors.Validation("date", "x", "bad date"), http.StatusUnprocessableEntity},
		{"internal", dErrors.New(dErrors.CodeInternal, "sink down"), http.StatusInternalServerError},
		{"plain error", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, StatusFor(tc.err))
		})
	}
}

func TestWriteError(t *testing.T) {
	t.Run("internal error omits description", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.New(dErrors.CodeInternal, "kafka failed"))

		require.Equal(t, http.StatusInternalServerError, w.Code)
		var body map[string]string
		require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
		assert.Equal(t, "internal", body["error"])
		assert.NotContains(t, body, "error_description")
	})

	t.Run("bad request includes description", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "siren must be exactly 9 ASCII digits"))

		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
		var body map[string]string
		require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
		assert.Equal(t, "invalid_input", body["error"])
		assert.Equal(t, "siren must be exactly 9 ASCII digits", body["error_description"])
	})

	t.Run("not found uses its own code", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.Extraction("552100554", "legal_unit", "legal unit fetch failed", upstream{404}))

		require.Equal(t, http.StatusNotFound, w.Code)
		var body map[string]string
		require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
		assert.Equal(t, "not_found", body["error"])
	})
}
