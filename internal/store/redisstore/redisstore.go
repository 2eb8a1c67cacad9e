package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/suPer8Hu/pawtrip/internal/places"
)

type Store struct {
	rdb    *redis.Client
	prefix string
}

func New(addr, password string, db int) *Store {
	return NewWithClient(redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	}))
}

func NewWithClient(rdb *redis.Client) *Store {
	return &Store{rdb: rdb, prefix: "pawtrip:"}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

func (s *Store) Close() error {
	return s.rdb.Close()
}

// Get implements places.Cache.
func (s *Store) Get(ctx context.Context, key string) ([]places.Place, bool, error) {
	raw, err := s.rdb.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var out []places.Place
	if err := json.Unmarshal(raw, &out); err != nil {
		// treat a corrupt entry as a miss; the next Set overwrites it
		return nil, false, nil
	}
	return out, true, nil
}

// Set implements places.Cache.
func (s *Store) Set(ctx context.Context, key string, list []places.Place, ttl time.Duration) error {
	b, err := json.Marshal(list)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, s.prefix+key, b, ttl).Err()
}
