package handlers

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"spinwheel/internal/config"
	"spinwheel/internal/extract"
	"spinwheel/internal/history"
	"spinwheel/internal/render"
	"spinwheel/internal/session"
	"spinwheel/internal/viewmodel"
	"spinwheel/internal/wheel"
)

const (
	minImageSize   = 64
	maxHistory     = 100
	keepAliveEvery = 25 * time.Second
)

// WheelHandler serves the per-session wheel API: state, options, spins,
// the rendered image, the event stream, history and voice input.
type WheelHandler struct {
	store          *session.Store
	renderer       render.Renderer
	extractor      *extract.Service
	historyLimit   int
	analyzeTimeout time.Duration
	log            *zap.SugaredLogger
}

// NewWheelHandler creates a WheelHandler over store.
func NewWheelHandler(store *session.Store, renderer render.Renderer, extractor *extract.Service, cfg *config.Config, log *zap.SugaredLogger) *WheelHandler {
	return &WheelHandler{
		store:          store,
		renderer:       renderer,
		extractor:      extractor,
		historyLimit:   cfg.HistoryLimit,
		analyzeTimeout: cfg.AnalyzeTimeout,
		log:            log,
	}
}

func (h *WheelHandler) RegisterRoutes(r chi.Router) {
	r.Get("/wheels/{id}", h.getWheel)
	r.Put("/wheels/{id}/options", h.setOptions)
	r.Post("/wheels/{id}/spin", h.spin)
	r.Get("/wheels/{id}/wheel.png", h.image)
	r.Get("/wheels/{id}/history", h.history)
	r.Post("/wheels/{id}/voice", h.voice)
}

// RegisterStreamRoutes registers the long-lived SSE route, which must not sit
// behind a request timeout.
func (h *WheelHandler) RegisterStreamRoutes(r chi.Router) {
	r.Get("/wheels/{id}/stream", h.stream)
}

func (h *WheelHandler) messages(sess *session.Session) config.Messages {
	return h.store.Settings().LocaleFor(sess.Locale).Messages
}

func (h *WheelHandler) getWheel(w http.ResponseWriter, r *http.Request) {
	now := time.Now().UTC()
	sess, err := h.store.Touch(chi.URLParam(r, "id"), now)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, buildWheelState(sess, h.store.Settings(), now))
}

func (h *WheelHandler) setOptions(w http.ResponseWriter, r *http.Request) {
	text, ok := decodeText(w, r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Missing 'text' in payload")
		return
	}
	now := time.Now().UTC()
	sess, err := h.store.SetText(chi.URLParam(r, "id"), text, now)
	if !h.handleWheelError(w, sess, err) {
		return
	}
	writeJSON(w, http.StatusOK, buildWheelState(sess, h.store.Settings(), now))
}

func (h *WheelHandler) spin(w http.ResponseWriter, r *http.Request) {
	now := time.Now().UTC()
	sess, spin, started, err := h.store.Spin(chi.URLParam(r, "id"), now)
	if !h.handleWheelError(w, sess, err) {
		return
	}
	status := http.StatusOK
	if started {
		status = http.StatusAccepted
	}
	writeJSON(w, status, viewmodel.SpinResponse{
		Started:      started,
		ExtraDegrees: spin.ExtraDegrees,
		TotalDegrees: spin.TotalDegrees,
		Rotation:     spin.Rotation,
		DurationMS:   spin.EndsAt.Sub(spin.StartedAt).Milliseconds(),
		EndsAtMS:     spin.EndsAt.UnixMilli(),
		Wheel:        buildWheelState(sess, h.store.Settings(), now),
	})
}

// handleWheelError writes the response for err and reports whether the caller should continue.
func (h *WheelHandler) handleWheelError(w http.ResponseWriter, sess *session.Session, err error) bool {
	switch {
	case err == nil:
		return true
	case errors.Is(err, session.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, wheel.ErrTooFewOptions):
		writeError(w, http.StatusUnprocessableEntity, h.messages(sess).TooFew)
	case errors.Is(err, wheel.ErrSpinning):
		writeError(w, http.StatusConflict, h.messages(sess).Spinning)
	default:
		h.log.Errorw("wheel operation failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
	return false
}

func (h *WheelHandler) image(w http.ResponseWriter, r *http.Request) {
	now := time.Now().UTC()
	sess, ok := h.store.Get(chi.URLParam(r, "id"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	settings := h.store.Settings()
	size := parseInt(r.URL.Query().Get("size"), settings.Render.Size)
	if size < minImageSize {
		size = minImageSize
	}
	if size > settings.Render.MaxSize {
		size = settings.Render.MaxSize
	}

	snap := sess.Wheel.Snapshot(now)
	etag := `"` + strconv.Itoa(snap.Revision) + "-" + strconv.Itoa(size) + `"`
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "no-cache")
	if match := r.Header.Get("If-None-Match"); match != "" && strings.Contains(match, etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	var buf bytes.Buffer
	if err := h.renderer.RenderPNG(&buf, snap.Options, size); err != nil {
		h.log.Errorw("render wheel", "session", sess.ID, "error", err)
		http.Error(w, "failed to render", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	_, _ = w.Write(buf.Bytes())
}

func (h *WheelHandler) history(w http.ResponseWriter, r *http.Request) {
	limit := parseInt(r.URL.Query().Get("limit"), h.historyLimit)
	if limit < 1 {
		limit = 1
	}
	if limit > maxHistory {
		limit = maxHistory
	}
	recs, err := h.store.Recent(r.Context(), chi.URLParam(r, "id"), limit)
	if errors.Is(err, session.ErrNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		h.log.Errorw("load history", "error", err)
		writeError(w, http.StatusInternalServerError, "history unavailable")
		return
	}
	if recs == nil {
		recs = []history.Record{}
	}
	writeJSON(w, http.StatusOK, recs)
}

func (h *WheelHandler) voice(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	now := time.Now().UTC()
	sess, err := h.store.Touch(id, now)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	text, ok := decodeText(w, r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Missing 'text' in payload")
		return
	}
	if sess.Wheel.Snapshot(now).InputsLocked {
		writeError(w, http.StatusConflict, h.messages(sess).Spinning)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.analyzeTimeout)
	defer cancel()
	items, err := h.extractor.Extract(ctx, text)
	if err != nil {
		status, msg := extractFailure(err, h.messages(sess))
		if status >= http.StatusInternalServerError {
			h.log.Warnw("voice extraction failed", "session", id, "error", err)
		}
		writeError(w, status, msg)
		return
	}

	now = time.Now().UTC()
	sess, err = h.store.SetText(id, strings.Join(items, "\n"), now)
	if !h.handleWheelError(w, sess, err) {
		return
	}
	writeJSON(w, http.StatusOK, viewmodel.VoiceResponse{
		Items: items,
		Wheel: buildWheelState(sess, h.store.Settings(), now),
	})
}

func (h *WheelHandler) stream(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	sess, err := h.store.Touch(id, time.Now().UTC())
	if err != nil {
		http.NotFound(w, r)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	hub, ok := h.store.Broadcaster(id)
	if !ok {
		http.NotFound(w, r)
		return
	}
	sub := hub.Subscribe()
	defer hub.Unsubscribe(sub)

	send := func(event session.Event) {
		writeSSE(w, string(event), buildWheelState(sess, h.store.Settings(), time.Now().UTC()))
		flusher.Flush()
	}
	send(session.EventWheel)

	keepAlive := time.NewTicker(keepAliveEvery)
	defer keepAlive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case event, ok := <-sub:
			if !ok {
				return
			}
			send(event)
		case <-keepAlive.C:
			_, _ = w.Write([]byte(": keepalive\n\n"))
			flusher.Flush()
		}
	}
}

func parseInt(value string, fallback int) int {
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
