package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"spinwheel/internal/config"
	"spinwheel/internal/history"
	"spinwheel/internal/wheel"
)

func newTestStore(t *testing.T, durationMS int) (*Store, *history.Memory) {
	t.Helper()
	settings, err := config.DefaultSettings()
	if err != nil {
		t.Fatalf("DefaultSettings: %v", err)
	}
	settings.Spin.DurationMS = durationMS
	repo := history.NewMemory(10)
	return NewStore(settings, repo, nil), repo
}

func waitEvent(t *testing.T, ch <-chan Event, want Event) {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case got, ok := <-ch:
			if !ok {
				t.Fatalf("channel closed waiting for %q", want)
			}
			if got == want {
				return
			}
		case <-timeout:
			t.Fatalf("timed out waiting for %q", want)
		}
	}
}

func TestStore_CreateGetTouch(t *testing.T) {
	s, _ := newTestStore(t, 4000)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	sess := s.Create("en-US", now)
	if sess.ID == "" || len(sess.ID) != 16 {
		t.Errorf("session ID %q, want 16 chars", sess.ID)
	}
	if sess.Locale != "en" {
		t.Errorf("Locale %q, want en", sess.Locale)
	}
	snap := sess.Wheel.Snapshot(now)
	if len(snap.Options) != 6 || snap.Options[0] != "Burger" {
		t.Errorf("demo options %q", snap.Options)
	}

	got, ok := s.Get(sess.ID)
	if !ok || got != sess {
		t.Fatal("Get did not return the created session")
	}
	if _, ok := s.Get("missing"); ok {
		t.Error("Get should return false for missing ID")
	}

	later := now.Add(time.Minute)
	if _, err := s.Touch(sess.ID, later); err != nil {
		t.Fatalf("Touch: %v", err)
	}
	if !sess.LastSeen().Equal(later) {
		t.Errorf("LastSeen %v, want %v", sess.LastSeen(), later)
	}
	if _, err := s.Touch("missing", later); !errors.Is(err, ErrNotFound) {
		t.Errorf("Touch missing err = %v, want ErrNotFound", err)
	}
}

func TestStore_SetTextPublishesWheel(t *testing.T) {
	s, _ := newTestStore(t, 4000)
	now := time.Now().UTC()
	sess := s.Create("zh", now)
	hub, ok := s.Broadcaster(sess.ID)
	if !ok {
		t.Fatal("no broadcaster for new session")
	}
	ch := hub.Subscribe()
	defer hub.Unsubscribe(ch)

	if _, err := s.SetText(sess.ID, "a\nb", now); err != nil {
		t.Fatalf("SetText: %v", err)
	}
	waitEvent(t, ch, EventWheel)
	if got := sess.Wheel.Snapshot(now).Options; len(got) != 2 {
		t.Errorf("options %q, want [a b]", got)
	}
}

func TestStore_SpinSettlesAndRecords(t *testing.T) {
	s, repo := newTestStore(t, 150)
	sess := s.Create("en", time.Now().UTC())
	hub, _ := s.Broadcaster(sess.ID)
	ch := hub.Subscribe()
	defer hub.Unsubscribe(ch)

	_, spin, started, err := s.Spin(sess.ID, time.Now().UTC())
	if err != nil {
		t.Fatalf("Spin: %v", err)
	}
	if !started {
		t.Fatal("first spin should start")
	}
	if spin.TotalDegrees < 5*360 {
		t.Errorf("TotalDegrees %d, want at least 1800", spin.TotalDegrees)
	}
	if !s.Looping(sess.ID) {
		t.Error("spin loop not running")
	}
	if _, err := s.SetText(sess.ID, "x\ny", time.Now().UTC()); !errors.Is(err, wheel.ErrSpinning) {
		t.Errorf("SetText while spinning err = %v, want ErrSpinning", err)
	}

	waitEvent(t, ch, EventSpin)
	waitEvent(t, ch, EventResult)

	deadline := time.Now().Add(2 * time.Second)
	for {
		recs, _ := repo.Recent(context.Background(), sess.ID, 0)
		if len(recs) == 1 {
			snap := sess.Wheel.Snapshot(time.Now().UTC())
			if recs[0].Winner != snap.Winner {
				t.Errorf("recorded winner %q, snapshot winner %q", recs[0].Winner, snap.Winner)
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("history has %d records, want 1", len(recs))
		}
		time.Sleep(5 * time.Millisecond)
	}

	recs, err := s.Recent(context.Background(), sess.ID, 10)
	if err != nil || len(recs) != 1 {
		t.Errorf("Recent = %d records, %v", len(recs), err)
	}
}

func TestStore_SpinTooFewOptions(t *testing.T) {
	s, _ := newTestStore(t, 4000)
	now := time.Now().UTC()
	sess := s.Create("en", now)
	if _, err := s.SetText(sess.ID, "lonely", now); err != nil {
		t.Fatalf("SetText: %v", err)
	}
	_, _, started, err := s.Spin(sess.ID, now)
	if !errors.Is(err, wheel.ErrTooFewOptions) {
		t.Errorf("Spin err = %v, want ErrTooFewOptions", err)
	}
	if started {
		t.Error("rejected spin reported started")
	}
	if s.Looping(sess.ID) {
		t.Error("rejected spin should not start a loop")
	}
}

func TestStore_SpinUnknownSession(t *testing.T) {
	s, _ := newTestStore(t, 4000)
	if _, _, _, err := s.Spin("missing", time.Now().UTC()); !errors.Is(err, ErrNotFound) {
		t.Errorf("Spin err = %v, want ErrNotFound", err)
	}
	if _, err := s.Recent(context.Background(), "missing", 5); !errors.Is(err, ErrNotFound) {
		t.Errorf("Recent err = %v, want ErrNotFound", err)
	}
}

func TestStore_Sweep(t *testing.T) {
	s, _ := newTestStore(t, 60_000)
	now := time.Now().UTC()
	idle := s.Create("en", now.Add(-2*time.Hour))
	spinning := s.Create("en", now.Add(-2*time.Hour))
	fresh := s.Create("en", now)
	if _, _, _, err := s.Spin(spinning.ID, now.Add(-30*time.Second)); err != nil {
		t.Fatalf("Spin: %v", err)
	}

	hub, _ := s.Broadcaster(idle.ID)
	ch := hub.Subscribe()

	if removed := s.Sweep(now.Add(-2*time.Hour+time.Second), time.Hour); removed != 0 {
		t.Errorf("early sweep removed %d, want 0", removed)
	}
	if removed := s.Sweep(now, 10*time.Second); removed != 1 {
		t.Errorf("Sweep removed %d, want 1", removed)
	}
	if _, ok := s.Get(idle.ID); ok {
		t.Error("idle session survived sweep")
	}
	if _, ok := s.Get(spinning.ID); !ok {
		t.Error("spinning session was swept")
	}
	if _, ok := s.Get(fresh.ID); !ok {
		t.Error("fresh session was swept")
	}
	if _, ok := <-ch; ok {
		t.Error("swept session's subscribers should be closed")
	}
	s.Delete(spinning.ID)
}

func TestStore_SweepForgetsMemoryHistory(t *testing.T) {
	s, repo := newTestStore(t, 50)
	start := time.Now().UTC()
	sess := s.Create("en", start)
	if _, _, _, err := s.Spin(sess.ID, start); err != nil {
		t.Fatalf("Spin: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		recs, _ := repo.Recent(context.Background(), sess.ID, 0)
		if len(recs) == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("history has %d records, want 1", len(recs))
		}
		time.Sleep(5 * time.Millisecond)
	}

	if removed := s.Sweep(start.Add(48*time.Hour), time.Hour); removed != 1 {
		t.Fatalf("Sweep removed %d, want 1", removed)
	}
	recs, _ := repo.Recent(context.Background(), sess.ID, 0)
	if len(recs) != 0 {
		t.Errorf("swept session still holds %d records", len(recs))
	}
}
