package store

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"pocketpoker/internal/season"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Postgres stores each season as one JSONB row guarded by its version column.
type Postgres struct {
	Pool *pgxpool.Pool
}

func NewPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Postgres{Pool: pool}, nil
}

// Migrate applies the embedded goose migrations.
func (p *Postgres) Migrate(ctx context.Context) error {
	sub, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return err
	}
	db := stdlib.OpenDBFromPool(p.Pool)
	defer db.Close()
	provider, err := goose.NewProvider(goose.DialectPostgres, db, sub)
	if err != nil {
		return fmt.Errorf("goose provider: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}

func (p *Postgres) Close() {
	if p.Pool != nil {
		p.Pool.Close()
	}
}

func (p *Postgres) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return p.Pool.Ping(ctx)
}

func (p *Postgres) Get(ctx context.Context, id string) (*season.Season, error) {
	var b []byte
	err := p.Pool.QueryRow(ctx, `SELECT doc FROM seasons WHERE id = $1`, id).Scan(&b)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return decode(b)
}

func (p *Postgres) Create(ctx context.Context, s *season.Season) error {
	b, err := encode(s)
	if err != nil {
		return err
	}
	tag, err := p.Pool.Exec(ctx,
		`INSERT INTO seasons (id, version, doc, updated_at) VALUES ($1, $2, $3, $4) ON CONFLICT (id) DO NOTHING`,
		s.SeasonID, s.Version, b, s.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrExists
	}
	return nil
}

// Save writes s when the stored version still equals prev and refreshes the
// flattened transaction table in the same transaction.
func (p *Postgres) Save(ctx context.Context, s *season.Season, prev int64) error {
	b, err := encode(s)
	if err != nil {
		return err
	}
	tx, err := p.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`UPDATE seasons SET version = $2, doc = $3, updated_at = $4 WHERE id = $1 AND version = $5`,
		s.SeasonID, s.Version, b, s.UpdatedAt, prev)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM seasons WHERE id = $1)`, s.SeasonID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrNotFound
		}
		return ErrVersionMismatch
	}
	if err := syncTxns(ctx, tx, s); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func syncTxns(ctx context.Context, tx pgx.Tx, s *season.Season) error {
	if _, err := tx.Exec(ctx, `DELETE FROM season_txns WHERE season_id = $1`, s.SeasonID); err != nil {
		return err
	}
	rows := make([][]any, 0)
	for _, g := range s.Games {
		for i, t := range g.Txns {
			rows = append(rows, []any{s.SeasonID, g.ID, i, t.From, t.To, int64(t.Amount), g.CreatedAt})
		}
	}
	if len(rows) == 0 {
		return nil
	}
	_, err := tx.CopyFrom(ctx,
		pgx.Identifier{"season_txns"},
		[]string{"season_id", "game_id", "seq", "from_name", "to_name", "amount_cents", "created_at"},
		pgx.CopyFromRows(rows))
	return err
}

// TxnTotals sums settled transfers per (from, to) pair across every game of a season.
func (p *Postgres) TxnTotals(ctx context.Context, seasonID string) (map[[2]string]int64, error) {
	rows, err := p.Pool.Query(ctx,
		`SELECT from_name, to_name, SUM(amount_cents) FROM season_txns WHERE season_id = $1 GROUP BY from_name, to_name`,
		seasonID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[[2]string]int64{}
	for rows.Next() {
		var from, to string
		var sum int64
		if err := rows.Scan(&from, &to, &sum); err != nil {
			return nil, err
		}
		out[[2]string{from, to}] = sum
	}
	return out, rows.Err()
}

func mapNotFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
