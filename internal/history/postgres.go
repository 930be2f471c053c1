package history

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	trmpgx "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/avito-tech/go-transaction-manager/trm/v2"
	"github.com/avito-tech/go-transaction-manager/trm/v2/manager"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	wheelsTable    = "wheels"
	colWheelID     = "id"
	colSpinCount   = "spin_count"
	colLastSpinAt  = "last_spin_at"
	spinsTable     = "spins"
	colSpinID      = "id"
	colSpinWheelID = "wheel_id"
	colOptions     = "options"
	colWinner      = "winner"
	colWinnerIndex = "winner_index"
	colRotation    = "rotation"
	colExtra       = "extra_degrees"
	colStartedAt   = "started_at"
	colSettledAt   = "settled_at"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS wheels (
		id           TEXT PRIMARY KEY,
		spin_count   BIGINT NOT NULL DEFAULT 0,
		last_spin_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS spins (
		id            UUID PRIMARY KEY,
		wheel_id      TEXT NOT NULL REFERENCES wheels(id) ON DELETE CASCADE,
		options       TEXT[] NOT NULL,
		winner        TEXT NOT NULL,
		winner_index  INT NOT NULL,
		rotation      BIGINT NOT NULL,
		extra_degrees INT NOT NULL,
		started_at    TIMESTAMPTZ NOT NULL,
		settled_at    TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS spins_wheel_settled_idx ON spins (wheel_id, settled_at DESC)`,
}

// Postgres stores records in Postgres. Record writes the wheel counter and
// the spin row in one transaction.
type Postgres struct {
	dbc       *pgxpool.Pool
	txManager trm.Manager
}

// NewPostgres wraps an open pool.
func NewPostgres(dbc *pgxpool.Pool) (*Postgres, error) {
	m, err := manager.New(trmpgx.NewDefaultFactory(dbc))
	if err != nil {
		return nil, fmt.Errorf("create tx manager: %w", err)
	}
	return &Postgres{dbc: dbc, txManager: m}, nil
}

// Connect opens a pool for dsn and checks it.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	dbc, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := dbc.Ping(ctx); err != nil {
		dbc.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return dbc, nil
}

// Migrate creates the tables if they do not exist.
func (p *Postgres) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := p.dbc.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

func (p *Postgres) Record(ctx context.Context, rec Record) error {
	return p.txManager.Do(ctx, func(txCtx context.Context) error {
		tr := trmpgx.DefaultCtxGetter.DefaultTrOrDB(txCtx, p.dbc)

		sqlStr, args, err := upsertWheelQuery(rec).ToSql()
		if err != nil {
			return err
		}
		if _, err := tr.Exec(txCtx, sqlStr, args...); err != nil {
			return fmt.Errorf("upsert wheel %s: %w", rec.WheelID, err)
		}

		sqlStr, args, err = insertSpinQuery(rec).ToSql()
		if err != nil {
			return err
		}
		if _, err := tr.Exec(txCtx, sqlStr, args...); err != nil {
			return fmt.Errorf("insert spin %s: %w", rec.ID, err)
		}
		return nil
	})
}

func (p *Postgres) Recent(ctx context.Context, wheelID string, limit int) ([]Record, error) {
	sqlStr, args, err := recentQuery(wheelID, limit).ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := p.dbc.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("query spins: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.WheelID, &rec.Options, &rec.Winner, &rec.WinnerIndex,
			&rec.Rotation, &rec.ExtraDegrees, &rec.StartedAt, &rec.SettledAt); err != nil {
			return nil, fmt.Errorf("scan spin: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func upsertWheelQuery(rec Record) sq.InsertBuilder {
	return sq.Insert(wheelsTable).
		Columns(colWheelID, colSpinCount, colLastSpinAt).
		Values(rec.WheelID, 1, rec.SettledAt).
		Suffix("ON CONFLICT (" + colWheelID + ") DO UPDATE SET " +
			colSpinCount + " = " + wheelsTable + "." + colSpinCount + " + 1, " +
			colLastSpinAt + " = EXCLUDED." + colLastSpinAt).
		PlaceholderFormat(sq.Dollar)
}

func insertSpinQuery(rec Record) sq.InsertBuilder {
	return sq.Insert(spinsTable).
		Columns(colSpinID, colSpinWheelID, colOptions, colWinner, colWinnerIndex,
			colRotation, colExtra, colStartedAt, colSettledAt).
		Values(rec.ID, rec.WheelID, rec.Options, rec.Winner, rec.WinnerIndex,
			rec.Rotation, rec.ExtraDegrees, rec.StartedAt, rec.SettledAt).
		PlaceholderFormat(sq.Dollar)
}

func recentQuery(wheelID string, limit int) sq.SelectBuilder {
	q := sq.Select(colSpinID, colSpinWheelID, colOptions, colWinner, colWinnerIndex,
		colRotation, colExtra, colStartedAt, colSettledAt).
		From(spinsTable).
		Where(sq.Eq{colSpinWheelID: wheelID}).
		OrderBy(colSettledAt + " DESC").
		PlaceholderFormat(sq.Dollar)
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}
	return q
}
