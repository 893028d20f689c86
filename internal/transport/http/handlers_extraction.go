package httptransport

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"sirene/internal/extraction/models"
	"sirene/internal/extraction/orchestrator"
	"sirene/internal/platform/logger"
	"sirene/pkg/domain"
	"sirene/pkg/platform/httputil"
)

//go:generate mockgen -source=handlers_extraction.go -destination=mocks/extraction-mocks.go -package=mocks ExtractionService

// ExtractionService runs extractions for the handlers.
type ExtractionService interface {
	Extract(ctx context.Context, siren string) (*models.Result, error)
	ExtractWithProgress(ctx context.Context, siren string, reporter orchestrator.Reporter) (*models.Result, error)
}

// ExtractionHandler serves the company endpoints.
type ExtractionHandler struct {
	service ExtractionService
	logger  *slog.Logger
}

// NewExtractionHandler creates an ExtractionHandler.
func NewExtractionHandler(service ExtractionService, logger *slog.Logger) *ExtractionHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExtractionHandler{service: service, logger: logger}
}

// Register mounts the company routes on r.
func (h *ExtractionHandler) Register(r chi.Router) {
	r.Get("/v1/companies/{siren}", h.handleExtract)
	r.Get("/v1/companies/{siren}/progress", h.handleProgress)
}

func (h *ExtractionHandler) handleExtract(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContext(ctx, h.logger)
	siren := chi.URLParam(r, "siren")

	result, err := h.service.Extract(ctx, siren)
	if err != nil {
		log.WarnContext(ctx, "extraction request failed", "siren", siren, "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

// progressLine is one NDJSON line of the progress stream.
type progressLine struct {
	Type orchestrator.EventType `json:"type"`
	Data orchestrator.Event     `json:"data"`
}

// handleProgress streams one JSON object per line. The SIREN is checked
// before the stream opens so a malformed value still gets a 400; once the
// stream is open, failures arrive as a final "error" line.
func (h *ExtractionHandler) handleProgress(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContext(ctx, h.logger)
	siren := chi.URLParam(r, "siren")

	if _, err := domain.ParseSIREN(siren); err != nil {
		httputil.WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)

	rc := http.NewResponseController(w)
	enc := json.NewEncoder(w)
	reporter := orchestrator.ReporterFunc(func(ctx context.Context, e orchestrator.Event) {
		if ctx.Err() != nil {
			return
		}
		if err := enc.Encode(progressLine{Type: e.Type(), Data: e}); err != nil {
			log.DebugContext(ctx, "progress write failed", "siren", siren, "error", err)
			return
		}
		_ = rc.Flush()
	})

	if _, err := h.service.ExtractWithProgress(ctx, siren, reporter); err != nil {
		log.WarnContext(ctx, "progress extraction failed", "siren", siren, "error", err)
	}
}
