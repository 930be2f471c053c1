package realtime

import (
	"context"
	"sync"
	"time"
)

// Room holds state and a broadcaster for one room.
type Room[T, E any] struct {
	ID    string
	State T
	hub   *Broadcaster[E]
}

// RoomStore manages rooms, their broadcasters and their timing loops.
type RoomStore[T, E any] struct {
	mu     sync.RWMutex
	buffer int
	rooms  map[string]*Room[T, E]
	loops  map[string]context.CancelFunc
	wakes  map[string]chan struct{}
}

// NewRoomStore creates an empty room store whose broadcasters queue up to buffer events per subscriber.
func NewRoomStore[T, E any](buffer int) *RoomStore[T, E] {
	return &RoomStore[T, E]{
		buffer: buffer,
		rooms:  make(map[string]*Room[T, E]),
		loops:  make(map[string]context.CancelFunc),
		wakes:  make(map[string]chan struct{}),
	}
}

// Create adds a room with the given id and state, and a new Broadcaster.
func (s *RoomStore[T, E]) Create(id string, state T) *Room[T, E] {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := &Room[T, E]{ID: id, State: state, hub: NewBroadcaster[E](s.buffer)}
	s.rooms[id] = r
	return r
}

// Get returns the room by ID if it exists.
func (s *RoomStore[T, E]) Get(id string) (*Room[T, E], bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rooms[id]
	return r, ok
}

// Delete removes the room, stops its loop and closes its subscribers.
func (s *RoomStore[T, E]) Delete(id string) bool {
	s.mu.Lock()
	r, ok := s.rooms[id]
	if ok {
		delete(s.rooms, id)
	}
	cancel, looping := s.loops[id]
	s.mu.Unlock()
	if looping {
		cancel()
	}
	if ok {
		r.hub.Close()
	}
	return ok
}

// Range calls fn for every room until fn returns false. fn must not call back into the store.
func (s *RoomStore[T, E]) Range(fn func(id string, state T) bool) {
	s.mu.RLock()
	snapshot := make([]*Room[T, E], 0, len(s.rooms))
	for _, r := range s.rooms {
		snapshot = append(snapshot, r)
	}
	s.mu.RUnlock()
	for _, r := range snapshot {
		if !fn(r.ID, r.State) {
			return
		}
	}
}

// Len returns the number of rooms.
func (s *RoomStore[T, E]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rooms)
}

// Publish notifies subscribers of the room's broadcaster. Unknown rooms are ignored.
func (s *RoomStore[T, E]) Publish(id string, event E) {
	if hub, ok := s.Broadcaster(id); ok {
		hub.Publish(event)
	}
}

// Broadcaster returns the broadcaster for the room.
func (s *RoomStore[T, E]) Broadcaster(id string) (*Broadcaster[E], bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rooms[id]
	if !ok {
		return nil, false
	}
	return r.hub, true
}

// TickFunc is called by RunLoop to determine the next wake time and events to publish.
// A zero next parks the loop until Wake; stop true means exit the loop.
type TickFunc[T, E any] func(state T, now time.Time) (next time.Time, events []E, stop bool)

// RunLoop starts a timing loop for the room. If a loop already exists for id, it is not started again.
func (s *RoomStore[T, E]) RunLoop(id string, getState func() (T, bool), tick TickFunc[T, E]) {
	s.mu.Lock()
	if _, ok := s.loops[id]; ok {
		s.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	wake := make(chan struct{}, 1)
	s.loops[id] = cancel
	s.wakes[id] = wake
	s.mu.Unlock()

	go func() {
		defer func() {
			s.mu.Lock()
			delete(s.loops, id)
			delete(s.wakes, id)
			s.mu.Unlock()
			cancel()
		}()

		for {
			state, ok := getState()
			if !ok {
				return
			}
			next, events, stop := tick(state, time.Now().UTC())
			for _, e := range events {
				s.Publish(id, e)
			}
			if stop {
				return
			}
			if next.IsZero() {
				select {
				case <-ctx.Done():
					return
				case <-wake:
				}
				continue
			}
			wait := time.Until(next)
			if wait < 0 {
				wait = 0
			}
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
			case <-wake:
				timer.Stop()
			}
		}
	}()
}

// Looping reports whether a loop is running for id.
func (s *RoomStore[T, E]) Looping(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.loops[id]
	return ok
}

// Wake unblocks the room's loop so it recomputes immediately.
func (s *RoomStore[T, E]) Wake(id string) {
	s.mu.RLock()
	wake, ok := s.wakes[id]
	s.mu.RUnlock()
	if !ok {
		return
	}
	select {
	case wake <- struct{}{}:
	default:
	}
}

// StopLoop cancels the room's loop if one is running.
func (s *RoomStore[T, E]) StopLoop(id string) {
	s.mu.RLock()
	cancel, ok := s.loops[id]
	s.mu.RUnlock()
	if ok {
		cancel()
	}
}
