package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"spinwheel/internal/config"
	"spinwheel/internal/session"
	"spinwheel/internal/viewmodel"
	"spinwheel/internal/wheel"
)

func buildWheelState(sess *session.Session, settings *config.Settings, now time.Time) viewmodel.WheelState {
	snap := sess.Wheel.Snapshot(now)
	labels := make([]string, len(snap.Options))
	for i, opt := range snap.Options {
		labels[i] = wheel.Truncate(opt)
	}
	return viewmodel.WheelState{
		ID:           sess.ID,
		Locale:       sess.Locale,
		State:        string(snap.State),
		Status:       string(snap.Status),
		StatusText:   statusText(snap, settings.LocaleFor(sess.Locale).Messages),
		Text:         snap.Text,
		Options:      snap.Options,
		Labels:       labels,
		Revision:     snap.Revision,
		Rotation:     snap.Rotation,
		DurationMS:   snap.Duration.Milliseconds(),
		RemainingMS:  snap.Remaining.Milliseconds(),
		InputsLocked: snap.InputsLocked,
		HasWinner:    snap.HasWinner,
		WinnerIndex:  snap.WinnerIndex,
		Winner:       snap.Winner,
		ImageURL:     fmt.Sprintf("/wheels/%s/wheel.png?rev=%d", sess.ID, snap.Revision),
	}
}

func statusText(snap wheel.Snapshot, msgs config.Messages) string {
	switch snap.Status {
	case wheel.StatusThinking:
		return msgs.Thinking
	case wheel.StatusWinner:
		return msgs.WinnerPrefix + snap.Winner
	default:
		return msgs.Ready
	}
}

// requestLocale picks ?lang=, then the first Accept-Language tag.
func requestLocale(r *http.Request) string {
	if lang := strings.TrimSpace(r.URL.Query().Get("lang")); lang != "" {
		return lang
	}
	accept := r.Header.Get("Accept-Language")
	if i := strings.IndexAny(accept, ",;"); i >= 0 {
		accept = accept[:i]
	}
	return strings.TrimSpace(accept)
}
