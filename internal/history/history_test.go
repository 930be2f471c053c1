package history

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spinwheel/internal/wheel"
)

func rec(wheelID string, i int) Record {
	return Record{WheelID: wheelID, Winner: fmt.Sprintf("w%d", i), WinnerIndex: i}
}

func TestNewRecord(t *testing.T) {
	start := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	res := wheel.Result{
		Spin: wheel.Spin{
			ExtraDegrees: 90,
			Rotation:     1890,
			Options:      wheel.Options{"A", "B", "C", "D"},
			StartedAt:    start,
		},
		Index:     2,
		Winner:    "C",
		SettledAt: start.Add(4 * time.Second),
	}
	r := NewRecord("abc", res)
	assert.NotEqual(t, [16]byte{}, [16]byte(r.ID))
	assert.Equal(t, "abc", r.WheelID)
	assert.Equal(t, []string{"A", "B", "C", "D"}, r.Options)
	assert.Equal(t, "C", r.Winner)
	assert.Equal(t, 2, r.WinnerIndex)
	assert.Equal(t, int64(1890), r.Rotation)
	assert.Equal(t, 90, r.ExtraDegrees)
	assert.Equal(t, start.Add(4*time.Second), r.SettledAt)

	res.Spin.Options[0] = "Z"
	assert.Equal(t, "A", r.Options[0], "record must not alias the spin's options")
}

func TestMemory_RecentNewestFirst(t *testing.T) {
	m := NewMemory(10)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		require.NoError(t, m.Record(ctx, rec("a", i)))
	}
	require.NoError(t, m.Record(ctx, rec("b", 9)))

	got, err := m.Recent(ctx, "a", 0)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "w2", got[0].Winner)
	assert.Equal(t, "w0", got[2].Winner)

	got, err = m.Recent(ctx, "a", 2)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = m.Recent(ctx, "missing", 5)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestMemory_BoundedPerWheel(t *testing.T) {
	m := NewMemory(3)
	ctx := context.Background()
	for i := 0; i < 10; i++ {
		require.NoError(t, m.Record(ctx, rec("a", i)))
	}
	got, err := m.Recent(ctx, "a", 0)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"w9", "w8", "w7"}, []string{got[0].Winner, got[1].Winner, got[2].Winner})

	m.Forget("a")
	got, _ = m.Recent(ctx, "a", 0)
	assert.Empty(t, got)
}

func TestNewMemory_DefaultLimit(t *testing.T) {
	m := NewMemory(0)
	assert.Equal(t, DefaultMemoryLimit, m.limit)
}

func TestUpsertWheelQuery(t *testing.T) {
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	sqlStr, args, err := upsertWheelQuery(Record{WheelID: "abc", SettledAt: at}).ToSql()
	require.NoError(t, err)
	assert.Equal(t,
		"INSERT INTO wheels (id,spin_count,last_spin_at) VALUES ($1,$2,$3) "+
			"ON CONFLICT (id) DO UPDATE SET spin_count = wheels.spin_count + 1, last_spin_at = EXCLUDED.last_spin_at",
		sqlStr)
	assert.Equal(t, []interface{}{"abc", 1, at}, args)
}

func TestInsertSpinQuery(t *testing.T) {
	sqlStr, args, err := insertSpinQuery(rec("abc", 1)).ToSql()
	require.NoError(t, err)
	assert.Equal(t,
		"INSERT INTO spins (id,wheel_id,options,winner,winner_index,rotation,extra_degrees,started_at,settled_at) "+
			"VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)",
		sqlStr)
	assert.Len(t, args, 9)
	assert.Equal(t, "abc", args[1])
}

func TestRecentQuery(t *testing.T) {
	sqlStr, args, err := recentQuery("abc", 5).ToSql()
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT id, wheel_id, options, winner, winner_index, rotation, extra_degrees, started_at, settled_at "+
			"FROM spins WHERE wheel_id = $1 ORDER BY settled_at DESC LIMIT 5",
		sqlStr)
	assert.Equal(t, []interface{}{"abc"}, args)

	sqlStr, _, err = recentQuery("abc", 0).ToSql()
	require.NoError(t, err)
	assert.NotContains(t, sqlStr, "LIMIT")
}
