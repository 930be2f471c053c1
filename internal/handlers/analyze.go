package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"spinwheel/internal/config"
	"spinwheel/internal/extract"
	"spinwheel/internal/viewmodel"
)

// AnalyzeHandler serves the stateless option extraction endpoint.
type AnalyzeHandler struct {
	extractor *extract.Service
	settings  *config.Settings
	timeout   time.Duration
	log       *zap.SugaredLogger
}

func NewAnalyzeHandler(extractor *extract.Service, cfg *config.Config, log *zap.SugaredLogger) *AnalyzeHandler {
	return &AnalyzeHandler{extractor: extractor, settings: cfg.Wheel, timeout: cfg.AnalyzeTimeout, log: log}
}

func (h *AnalyzeHandler) RegisterRoutes(r chi.Router) {
	r.Post("/analyze", h.analyze)
}

func (h *AnalyzeHandler) analyze(w http.ResponseWriter, r *http.Request) {
	text, ok := decodeText(w, r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Missing 'text' in payload")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()
	items, err := h.extractor.Extract(ctx, text)
	if err != nil {
		status, msg := extractFailure(err, h.settings.LocaleFor(requestLocale(r)).Messages)
		if status >= http.StatusInternalServerError {
			h.log.Warnw("analyze failed", "error", err)
		}
		writeError(w, status, msg)
		return
	}
	writeJSON(w, http.StatusOK, viewmodel.ItemsResponse{Items: items})
}

func extractFailure(err error, msgs config.Messages) (int, string) {
	switch {
	case errors.Is(err, extract.ErrEmptyText):
		return http.StatusBadRequest, "Empty text"
	case errors.Is(err, extract.ErrNoItems):
		return http.StatusUnprocessableEntity, msgs.VoiceEmpty
	default:
		return http.StatusBadGateway, msgs.VoiceFailed
	}
}
