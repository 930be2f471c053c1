// Package history records settled spins.
package history

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"spinwheel/internal/wheel"
)

// DefaultMemoryLimit is how many spins Memory keeps per wheel.
const DefaultMemoryLimit = 50

// Record is one settled spin.
type Record struct {
	ID           uuid.UUID `json:"id"`
	WheelID      string    `json:"wheelId"`
	Options      []string  `json:"options"`
	Winner       string    `json:"winner"`
	WinnerIndex  int       `json:"winnerIndex"`
	Rotation     int64     `json:"rotation"`
	ExtraDegrees int       `json:"extraDegrees"`
	StartedAt    time.Time `json:"startedAt"`
	SettledAt    time.Time `json:"settledAt"`
}

// NewRecord builds a record for a settled spin of wheelID.
func NewRecord(wheelID string, res wheel.Result) Record {
	return Record{
		ID:           uuid.New(),
		WheelID:      wheelID,
		Options:      append([]string(nil), res.Spin.Options...),
		Winner:       res.Winner,
		WinnerIndex:  res.Index,
		Rotation:     res.Spin.Rotation,
		ExtraDegrees: res.Spin.ExtraDegrees,
		StartedAt:    res.Spin.StartedAt,
		SettledAt:    res.SettledAt,
	}
}

// Repository stores and lists spin records.
type Repository interface {
	Record(ctx context.Context, rec Record) error
	// Recent returns up to limit records for wheelID, newest first.
	Recent(ctx context.Context, wheelID string, limit int) ([]Record, error)
}

// Forgetter is implemented by repositories that hold records only as long as
// the wheel lives.
type Forgetter interface {
	Forget(wheelID string)
}

// Memory keeps the last few records per wheel in process.
type Memory struct {
	mu     sync.RWMutex
	limit  int
	wheels map[string][]Record
}

// NewMemory creates a store keeping up to limit records per wheel.
func NewMemory(limit int) *Memory {
	if limit <= 0 {
		limit = DefaultMemoryLimit
	}
	return &Memory{limit: limit, wheels: make(map[string][]Record)}
}

func (m *Memory) Record(_ context.Context, rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	recs := append(m.wheels[rec.WheelID], rec)
	if len(recs) > m.limit {
		recs = append([]Record(nil), recs[len(recs)-m.limit:]...)
	}
	m.wheels[rec.WheelID] = recs
	return nil
}

func (m *Memory) Recent(_ context.Context, wheelID string, limit int) ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	recs := m.wheels[wheelID]
	if limit <= 0 || limit > len(recs) {
		limit = len(recs)
	}
	out := make([]Record, 0, limit)
	for i := len(recs) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, recs[i])
	}
	return out, nil
}

// Forget drops all records of wheelID.
func (m *Memory) Forget(wheelID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.wheels, wheelID)
}
