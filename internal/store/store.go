// Package store persists season documents. Every backend implements the same
// compare-and-swap contract on the document version.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"pocketpoker/internal/season"
)

var (
	ErrNotFound        = errors.New("not_found")
	ErrExists          = errors.New("already_exists")
	ErrVersionMismatch = errors.New("version_mismatch")
)

const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

// Store is what every backend provides.
type Store interface {
	Get(ctx context.Context, id string) (*season.Season, error)
	Create(ctx context.Context, s *season.Season) error
	Save(ctx context.Context, s *season.Season, prev int64) error
	Ping(ctx context.Context) error
	Close()
}

type Options struct {
	Backend       string
	PostgresDSN   string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// Open connects the configured backend. Postgres is migrated before use.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Backend)) {
	case "", BackendMemory:
		return NewMemory(), nil
	case BackendPostgres:
		if opts.PostgresDSN == "" {
			return nil, errors.New("postgres backend requires POSTGRES_DSN")
		}
		pg, err := NewPostgres(ctx, opts.PostgresDSN)
		if err != nil {
			return nil, err
		}
		if err := pg.Migrate(ctx); err != nil {
			pg.Close()
			return nil, err
		}
		return pg, nil
	case BackendRedis:
		r := NewRedis(opts.RedisAddr, opts.RedisPassword, opts.RedisDB)
		if err := r.Ping(ctx); err != nil {
			r.Close()
			return nil, fmt.Errorf("ping redis %s: %w", opts.RedisAddr, err)
		}
		return r, nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", opts.Backend)
	}
}

func encode(s *season.Season) ([]byte, error) {
	c := *s
	c.NextGameAt = nil
	b, err := json.Marshal(&c)
	if err != nil {
		return nil, fmt.Errorf("encode season %s: %w", s.SeasonID, err)
	}
	return b, nil
}

func decode(b []byte) (*season.Season, error) {
	var s season.Season
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("decode season: %w", err)
	}
	s.Normalize()
	return &s, nil
}
