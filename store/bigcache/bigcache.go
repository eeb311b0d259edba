// Package bigcache backs the cbcache store seam with an in-process BigCache.
// BigCache has no per-entry TTL: every entry lives for the configured
// LifeWindow and the normalized expiry handed to Upsert is ignored. Suitable
// for tests and single-process deployments that accept that trade.
package bigcache

import (
	"context"
	"time"

	bc "github.com/allegro/bigcache/v3"

	"github.com/unkn0wn-root/cbcache/store"
)

type Store struct {
	c *bc.BigCache
}

var _ store.Store = (*Store)(nil)

type Config struct {
	LifeWindow         time.Duration
	CleanWindow        time.Duration
	MaxEntriesInWindow int
	MaxEntrySize       int
	HardMaxCacheSizeMB int // ~ memory limit; 0 = unlimited
}

func New(cfg Config) (*Store, error) {
	conf := bc.DefaultConfig(cfg.LifeWindow)
	if cfg.CleanWindow > 0 {
		conf.CleanWindow = cfg.CleanWindow
	}
	if cfg.MaxEntriesInWindow > 0 {
		conf.MaxEntriesInWindow = cfg.MaxEntriesInWindow
	}
	if cfg.MaxEntrySize > 0 {
		conf.MaxEntrySize = cfg.MaxEntrySize
	}
	if cfg.HardMaxCacheSizeMB > 0 {
		conf.HardMaxCacheSize = cfg.HardMaxCacheSizeMB
	}
	c, err := bc.NewBigCache(conf)
	if err != nil {
		return nil, err
	}
	return &Store{c: c}, nil
}

func (s *Store) Get(_ context.Context, key string) ([]byte, bool, error) {
	b, err := s.c.Get(key)
	if err == bc.ErrEntryNotFound {
		return nil, false, nil
	}
	return b, err == nil, err
}

func (s *Store) Exists(_ context.Context, key string) (bool, error) {
	_, err := s.c.Get(key)
	if err == bc.ErrEntryNotFound {
		return false, nil
	}
	return err == nil, err
}

func (s *Store) Upsert(_ context.Context, key string, value []byte, _ uint32) error {
	// per-entry expiry unsupported; LifeWindow governs
	return s.c.Set(key, value)
}

func (s *Store) Remove(_ context.Context, key string) error {
	err := s.c.Delete(key)
	if err == bc.ErrEntryNotFound {
		return nil
	}
	return err
}

func (s *Store) Close(context.Context) error {
	return s.c.Close()
}
