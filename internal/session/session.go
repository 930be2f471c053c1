// Package session keeps one wheel per browser session and drives its spin timing.
package session

import (
	"context"
	"crypto/rand"
	"encoding/base32"
	"encoding/binary"
	"errors"
	mrand "math/rand"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"spinwheel/internal/config"
	"spinwheel/internal/history"
	"spinwheel/internal/wheel"
	"spinwheel/pkg/realtime"
)

// Event names what changed in a session.
type Event string

const (
	EventWheel  Event = "wheel"
	EventSpin   Event = "spin"
	EventResult Event = "result"
)

// ErrNotFound is returned for unknown or expired session IDs.
var ErrNotFound = errors.New("session not found")

const recordTimeout = 5 * time.Second

// Session is one user's wheel.
type Session struct {
	ID        string
	CreatedAt time.Time
	Locale    string
	Wheel     *wheel.Controller

	mu       sync.Mutex
	lastSeen time.Time
}

// LastSeen returns when the session was last used.
func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if now.After(s.lastSeen) {
		s.lastSeen = now
	}
}

// Store holds sessions and delegates to realtime.RoomStore for broadcast and timing.
type Store struct {
	r        *realtime.RoomStore[*Session, Event]
	settings *config.Settings
	history  history.Repository
	log      *zap.SugaredLogger
}

// NewStore creates an in-memory session store. Settled spins are written to repo.
func NewStore(settings *config.Settings, repo history.Repository, log *zap.SugaredLogger) *Store {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Store{
		r:        realtime.NewRoomStore[*Session, Event](realtime.DefaultBuffer),
		settings: settings,
		history:  repo,
		log:      log,
	}
}

// Settings returns the wheel settings sessions are built with.
func (s *Store) Settings() *config.Settings {
	return s.settings
}

// Create starts a session showing the locale's demo options.
func (s *Store) Create(locale string, now time.Time) *Session {
	locale = s.settings.ResolveLocale(locale)
	loc := s.settings.Locales[locale]
	ctl := wheel.NewController(wheel.Settings{
		Duration:    s.settings.SpinDuration(),
		ExtraTurns:  s.settings.Spin.ExtraTurns,
		Placeholder: loc.PlaceholderPair(),
	}, mrand.New(mrand.NewSource(seed())), loc.DemoText())

	sess := &Session{
		ID:        newID(),
		CreatedAt: now,
		Locale:    locale,
		Wheel:     ctl,
		lastSeen:  now,
	}
	ctl.OnSettle(func(res wheel.Result) { s.settled(sess.ID, res) })
	s.r.Create(sess.ID, sess)
	return sess
}

// Get returns a session by ID if it exists.
func (s *Store) Get(id string) (*Session, bool) {
	room, ok := s.r.Get(id)
	if !ok {
		return nil, false
	}
	return room.State, true
}

// Touch returns the session and marks it as used at now.
func (s *Store) Touch(id string, now time.Time) (*Session, error) {
	sess, ok := s.Get(id)
	if !ok {
		return nil, ErrNotFound
	}
	sess.touch(now)
	return sess, nil
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	return s.r.Len()
}

// Broadcaster returns the event broadcaster of a session.
func (s *Store) Broadcaster(id string) (*realtime.Broadcaster[Event], bool) {
	return s.r.Broadcaster(id)
}

// Publish notifies subscribers of a session update.
func (s *Store) Publish(id string, event Event) {
	s.r.Publish(id, event)
}

// SetText replaces the options of a session's wheel.
func (s *Store) SetText(id, raw string, now time.Time) (*Session, error) {
	sess, err := s.Touch(id, now)
	if err != nil {
		return nil, err
	}
	if err := sess.Wheel.SetText(raw); err != nil {
		return sess, err
	}
	s.Publish(id, EventWheel)
	return sess, nil
}

// Spin starts a spin on the session's wheel and arms its settle timer.
// started is false when a spin was already in flight.
func (s *Store) Spin(id string, now time.Time) (*Session, wheel.Spin, bool, error) {
	sess, err := s.Touch(id, now)
	if err != nil {
		return nil, wheel.Spin{}, false, err
	}
	spin, started, err := sess.Wheel.Spin(now)
	if err != nil {
		return sess, spin, false, err
	}
	if started {
		s.EnsureSpinLoop(id)
		s.r.Wake(id)
		s.Publish(id, EventSpin)
		s.log.Debugw("spin started", "session", id, "rotation", spin.Rotation, "extra", spin.ExtraDegrees)
	}
	return sess, spin, started, nil
}

// EnsureSpinLoop starts the timing loop for a session if not already running.
// The loop parks while the wheel is idle and settles each spin at its deadline.
func (s *Store) EnsureSpinLoop(id string) {
	getState := func() (*Session, bool) {
		return s.Get(id)
	}
	tick := func(sess *Session, now time.Time) (time.Time, []Event, bool) {
		sess.Wheel.AdvanceIfNeeded(now)
		next, ok := sess.Wheel.NextTimer(now)
		if !ok {
			return time.Time{}, nil, false
		}
		return next, nil, false
	}
	s.r.RunLoop(id, getState, tick)
}

// Looping reports whether the session's timing loop is running.
func (s *Store) Looping(id string) bool {
	return s.r.Looping(id)
}

// Delete removes a session, stopping its loop and closing its streams.
func (s *Store) Delete(id string) bool {
	return s.r.Delete(id)
}

// Sweep deletes sessions idle for longer than ttl and returns how many it removed.
// A spinning wheel is never swept. In-process history of a swept session is dropped.
func (s *Store) Sweep(now time.Time, ttl time.Duration) int {
	var expired []string
	s.r.Range(func(id string, sess *Session) bool {
		if now.Sub(sess.LastSeen()) > ttl && !sess.Wheel.Snapshot(now).InputsLocked {
			expired = append(expired, id)
		}
		return true
	})
	forget, _ := s.history.(history.Forgetter)
	removed := 0
	for _, id := range expired {
		if s.r.Delete(id) {
			removed++
			if forget != nil {
				forget.Forget(id)
			}
		}
	}
	if removed > 0 {
		s.log.Infow("swept idle sessions", "removed", removed, "live", s.r.Len())
	}
	return removed
}

// Recent lists the latest settled spins of a session.
func (s *Store) Recent(ctx context.Context, id string, limit int) ([]history.Record, error) {
	if _, ok := s.Get(id); !ok {
		return nil, ErrNotFound
	}
	if s.history == nil {
		return nil, nil
	}
	return s.history.Recent(ctx, id, limit)
}

// settled runs under the controller's lock, so the write happens elsewhere.
func (s *Store) settled(id string, res wheel.Result) {
	s.Publish(id, EventResult)
	s.log.Infow("spin settled", "session", id, "winner", res.Winner, "index", res.Index, "rotation", res.ActualRotation)
	if s.history == nil {
		return
	}
	rec := history.NewRecord(id, res)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
		defer cancel()
		if err := s.history.Record(ctx, rec); err != nil {
			s.log.Errorw("record spin", "session", id, "error", err)
		}
	}()
}

func newID() string {
	// 10 bytes -> 16 chars of base32, short and url-safe.
	buf := make([]byte, 10)
	_, _ = rand.Read(buf)
	encoder := base32.StdEncoding.WithPadding(base32.NoPadding)
	return strings.ToLower(encoder.EncodeToString(buf))
}

func seed() int64 {
	var b [8]byte
	_, _ = rand.Read(b[:])
	return int64(binary.LittleEndian.Uint64(b[:]))
}
