// Package ristretto backs the cbcache store seam with an in-process
// Ristretto cache. Ristretto admits writes probabilistically; a rejected
// write surfaces as an error so the batch engine records it as that key's
// failure instead of pretending it stuck.
package ristretto

import (
	"context"
	"errors"

	rc "github.com/dgraph-io/ristretto"

	"github.com/unkn0wn-root/cbcache/store"
)

var ErrRejected = errors.New("ristretto store: write rejected by admission policy")

type Store struct {
	c *rc.Cache
}

var _ store.Store = (*Store)(nil)

type Config struct {
	NumCounters int64
	MaxCost     int64
	BufferItems int64
	Metrics     bool
}

func New(cfg Config) (*Store, error) {
	if cfg.NumCounters <= 0 || cfg.MaxCost <= 0 || cfg.BufferItems <= 0 {
		return nil, errors.New("ristretto store: invalid config")
	}
	c, err := rc.NewCache(&rc.Config{
		NumCounters: cfg.NumCounters,
		MaxCost:     cfg.MaxCost,
		BufferItems: cfg.BufferItems,
		Metrics:     cfg.Metrics,
	})
	if err != nil {
		return nil, err
	}
	return &Store{c: c}, nil
}

func (s *Store) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := s.c.Get(key)
	if !ok {
		return nil, false, nil
	}
	b, _ := v.([]byte)
	if b == nil {
		// drop unexpected entry shape
		s.c.Del(key)
		return nil, false, nil
	}
	return b, true, nil
}

func (s *Store) Exists(_ context.Context, key string) (bool, error) {
	_, ok := s.c.Get(key)
	return ok, nil
}

func (s *Store) Upsert(_ context.Context, key string, value []byte, expiry uint32) error {
	ttl := store.TTL(expiry)
	if expiry != 0 && ttl <= 0 {
		s.c.Del(key)
		return nil
	}
	if !s.c.SetWithTTL(key, value, int64(len(value)), ttl) {
		return ErrRejected
	}
	return nil
}

func (s *Store) Remove(_ context.Context, key string) error {
	s.c.Del(key)
	return nil
}

func (s *Store) Close(context.Context) error {
	s.c.Wait()
	s.c.Close()
	return nil
}

// Metrics exposes the underlying cache metrics when enabled in Config.
func (s *Store) Metrics() *rc.Metrics { return s.c.Metrics }
