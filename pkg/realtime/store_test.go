package realtime

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestNewRoomStore(t *testing.T) {
	s := NewRoomStore[string, string](0)
	if s == nil {
		t.Fatal("NewRoomStore returned nil")
	}
	if s.Len() != 0 {
		t.Errorf("Len %d, want 0", s.Len())
	}
}

func TestRoomStore_Create_Get(t *testing.T) {
	s := NewRoomStore[string, string](0)
	s.Create("room1", "state1")
	room, ok := s.Get("room1")
	if !ok {
		t.Fatal("Get returned false for existing room")
	}
	if room.ID != "room1" {
		t.Errorf("room ID %q, want room1", room.ID)
	}
	if room.State != "state1" {
		t.Errorf("room State %q, want state1", room.State)
	}

	_, ok = s.Get("nonexistent")
	if ok {
		t.Error("Get should return false for missing ID")
	}
}

func TestRoomStore_Publish(t *testing.T) {
	s := NewRoomStore[string, string](0)
	s.Create("r1", "x")
	hub, ok := s.Broadcaster("r1")
	if !ok {
		t.Fatal("Broadcaster returned false for existing room")
	}
	ch := hub.Subscribe()
	defer hub.Unsubscribe(ch)

	s.Publish("r1", "event1")
	got := <-ch
	if got != "event1" {
		t.Errorf("got %q, want event1", got)
	}

	// unknown rooms are ignored
	s.Publish("missing", "event2")
	if _, ok := s.Broadcaster("missing"); ok {
		t.Error("Broadcaster should not create rooms")
	}
}

func TestRoomStore_Delete(t *testing.T) {
	s := NewRoomStore[string, string](0)
	s.Create("r1", "x")
	hub, _ := s.Broadcaster("r1")
	ch := hub.Subscribe()

	if !s.Delete("r1") {
		t.Fatal("Delete returned false for existing room")
	}
	if _, open := <-ch; open {
		t.Error("subscribers should be closed on Delete")
	}
	if _, ok := s.Get("r1"); ok {
		t.Error("room should be gone after Delete")
	}
	if s.Delete("r1") {
		t.Error("second Delete should return false")
	}
}

func TestRoomStore_Range(t *testing.T) {
	s := NewRoomStore[int, string](0)
	s.Create("a", 1)
	s.Create("b", 2)
	sum := 0
	s.Range(func(_ string, v int) bool {
		sum += v
		return true
	})
	if sum != 3 {
		t.Errorf("sum %d, want 3", sum)
	}
}

func TestRoomStore_RunLoop_PublishesAndStops(t *testing.T) {
	s := NewRoomStore[string, string](0)
	s.Create("r1", "x")
	hub, _ := s.Broadcaster("r1")
	ch := hub.Subscribe()
	defer hub.Unsubscribe(ch)

	var ticks atomic.Int32
	getState := func() (string, bool) { return "x", true }
	tick := func(_ string, now time.Time) (time.Time, []string, bool) {
		if ticks.Add(1) == 1 {
			return now.Add(5 * time.Millisecond), nil, false
		}
		return time.Time{}, []string{"done"}, true
	}
	s.RunLoop("r1", getState, tick)

	select {
	case got := <-ch:
		if got != "done" {
			t.Errorf("got %q, want done", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not publish")
	}
	deadline := time.Now().Add(2 * time.Second)
	for s.Looping("r1") && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if s.Looping("r1") {
		t.Error("loop should have exited after stop")
	}
}

func TestRoomStore_RunLoop_ParksUntilWake(t *testing.T) {
	s := NewRoomStore[string, string](0)
	s.Create("r1", "x")
	hub, _ := s.Broadcaster("r1")
	ch := hub.Subscribe()
	defer hub.Unsubscribe(ch)

	var ticks atomic.Int32
	getState := func() (string, bool) { return "x", true }
	tick := func(_ string, _ time.Time) (time.Time, []string, bool) {
		if ticks.Add(1) == 1 {
			return time.Time{}, nil, false
		}
		return time.Time{}, []string{"woke"}, false
	}
	s.RunLoop("r1", getState, tick)
	// idempotent
	s.RunLoop("r1", getState, tick)

	select {
	case got := <-ch:
		t.Fatalf("parked loop published %q before Wake", got)
	case <-time.After(20 * time.Millisecond):
	}

	s.Wake("r1")
	select {
	case got := <-ch:
		if got != "woke" {
			t.Errorf("got %q, want woke", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not resume after Wake")
	}

	s.StopLoop("r1")
	deadline := time.Now().Add(2 * time.Second)
	for s.Looping("r1") && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if s.Looping("r1") {
		t.Error("StopLoop should end the loop")
	}
}

func TestRoomStore_Wake_NoPanicWhenNoLoop(t *testing.T) {
	s := NewRoomStore[string, string](0)
	s.Wake("nonexistent")
	s.StopLoop("nonexistent")
}
