package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"

	"pocketpoker/internal/season"
)

// Redis stores each season under one key and uses WATCH/MULTI for the version check.
type Redis struct {
	Client *redis.Client
	Prefix string
}

func NewRedis(addr, password string, db int) *Redis {
	return &Redis{
		Client: redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db}),
		Prefix: "pp:season:",
	}
}

func (r *Redis) key(id string) string {
	return r.Prefix + id
}

func (r *Redis) Get(ctx context.Context, id string) (*season.Season, error) {
	b, err := r.Client.Get(ctx, r.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return decode(b)
}

func (r *Redis) Create(ctx context.Context, s *season.Season) error {
	b, err := encode(s)
	if err != nil {
		return err
	}
	ok, err := r.Client.SetNX(ctx, r.key(s.SeasonID), b, 0).Result()
	if err != nil {
		return err
	}
	if !ok {
		return ErrExists
	}
	return nil
}

func (r *Redis) Save(ctx context.Context, s *season.Season, prev int64) error {
	b, err := encode(s)
	if err != nil {
		return err
	}
	key := r.key(s.SeasonID)
	err = r.Client.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		var head struct {
			Version int64 `json:"version"`
		}
		if err := json.Unmarshal(cur, &head); err != nil {
			return err
		}
		if head.Version != prev {
			return ErrVersionMismatch
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, b, 0)
			return nil
		})
		return err
	}, key)
	if errors.Is(err, redis.TxFailedErr) {
		return ErrVersionMismatch
	}
	return err
}

func (r *Redis) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return r.Client.Ping(ctx).Err()
}

func (r *Redis) Close() {
	_ = r.Client.Close()
}
