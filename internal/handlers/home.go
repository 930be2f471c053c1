package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"spinwheel/internal/config"
	"spinwheel/internal/session"
	"spinwheel/internal/viewmodel"
	"spinwheel/internal/wheel"
	"spinwheel/pkg/token"
	"spinwheel/views/pages"
)

const sessionCookieName = "spinwheel_session"

// HomeHandler serves the wheel page and creates sessions.
type HomeHandler struct {
	store  *session.Store
	cfg    *config.Config
	secret []byte
	log    *zap.SugaredLogger
}

func NewHomeHandler(store *session.Store, cfg *config.Config, log *zap.SugaredLogger) *HomeHandler {
	return &HomeHandler{store: store, cfg: cfg, secret: []byte(cfg.SessionSecret), log: log}
}

func (h *HomeHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.home)
	r.Post("/wheels", h.createWheel)
}

func (h *HomeHandler) home(w http.ResponseWriter, r *http.Request) {
	now := time.Now().UTC()
	sess := h.resumeSession(r, now)
	if sess == nil {
		sess = h.store.Create(requestLocale(r), now)
		h.log.Infow("session created", "session", sess.ID, "locale", sess.Locale)
	}
	h.setSessionCookie(w, sess, now)

	settings := h.store.Settings()
	loc := settings.LocaleFor(sess.Locale)
	state := buildWheelState(sess, settings, now)
	data := viewmodel.WheelPage{
		Lang:       sess.Locale,
		Title:      loc.Title,
		Text:       state.Text,
		StatusText: state.StatusText,
		SpinLabel:  loc.Messages.SpinButton,
		InputLabel: loc.Messages.InputLabel,
		VoiceLabel: loc.Messages.VoiceIdle,
		Locked:     state.InputsLocked,
		Boot: viewmodel.WheelBoot{
			State:           state,
			Messages:        loc.Messages,
			SpeechLang:      loc.SpeechLang,
			AutoSpinDelayMS: settings.Spin.AutoSpinDelayMS,
			MinOptions:      wheel.MinSpinOptions,
		},
	}
	renderHTML(w, r, pages.WheelPage(data))
}

func (h *HomeHandler) createWheel(w http.ResponseWriter, r *http.Request) {
	now := time.Now().UTC()
	sess := h.store.Create(requestLocale(r), now)
	h.log.Infow("session created", "session", sess.ID, "locale", sess.Locale)
	h.setSessionCookie(w, sess, now)
	writeJSON(w, http.StatusCreated, buildWheelState(sess, h.store.Settings(), now))
}

// resumeSession returns the live session named by the cookie, unless ?lang=
// asks for a different locale.
func (h *HomeHandler) resumeSession(r *http.Request, now time.Time) *session.Session {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return nil
	}
	claims, err := token.Verify(cookie.Value, h.secret, now)
	if err != nil {
		h.log.Debugw("ignoring session cookie", "error", err)
		return nil
	}
	sess, err := h.store.Touch(claims.Subject, now)
	if err != nil {
		return nil
	}
	if lang := r.URL.Query().Get("lang"); lang != "" && h.store.Settings().ResolveLocale(lang) != sess.Locale {
		return nil
	}
	return sess
}

func (h *HomeHandler) setSessionCookie(w http.ResponseWriter, sess *session.Session, now time.Time) {
	value, err := token.Issue(sess.ID, sess.Locale, h.secret, now, h.cfg.SessionTTL)
	if err != nil {
		h.log.Errorw("sign session cookie", "session", sess.ID, "error", err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  now.Add(h.cfg.SessionTTL),
	})
}
