// Package redis adapts a redis client to the cbcache store seam. It exists
// for deployments that want the same cache surface without a couchbase
// cluster; expiry semantics match the couchbase convention, including
// absolute timestamps.
package redis

import (
	"context"
	"errors"

	goredis "github.com/redis/go-redis/v9"

	"github.com/unkn0wn-root/cbcache/store"
)

var ErrNilClient = errors.New("redis store: nil client")

type Store struct {
	rdb         goredis.UniversalClient
	closeClient bool
}

var _ store.Store = (*Store)(nil)

type Config struct {
	Client      goredis.UniversalClient
	CloseClient bool // set true only if this store exclusively owns the client
}

func New(cfg Config) (*Store, error) {
	if cfg.Client == nil {
		return nil, ErrNilClient
	}
	return &Store{rdb: cfg.Client, closeClient: cfg.CloseClient}, nil
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := s.rdb.Get(ctx, key).Bytes()
	if err == goredis.Nil {
		return nil, false, nil // miss
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	n, err := s.rdb.Exists(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *Store) Upsert(ctx context.Context, key string, value []byte, expiry uint32) error {
	ttl := store.TTL(expiry)
	if expiry != 0 && ttl <= 0 {
		// absolute expiry already in the past; storing would resurrect it
		return s.rdb.Del(ctx, key).Err()
	}
	return s.rdb.Set(ctx, key, value, ttl).Err()
}

func (s *Store) Remove(ctx context.Context, key string) error {
	// DEL of an absent key reports zero removals, which is fine here
	return s.rdb.Del(ctx, key).Err()
}

// Close releases the underlying client only when this store owns it.
// Safe to call multiple times.
func (s *Store) Close(context.Context) error {
	if s.closeClient {
		if err := s.rdb.Close(); err != nil && !errors.Is(err, goredis.ErrClosed) {
			return err
		}
	}
	return nil
}
