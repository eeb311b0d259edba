package cbcache

import (
	"context"
	"fmt"
	"sort"
	"time"

	c "github.com/unkn0wn-root/cbcache/codec"
	"github.com/unkn0wn-root/cbcache/internal/util"
	st "github.com/unkn0wn-root/cbcache/store"
)

type cache[V any] struct {
	ns         string
	version    string
	store      st.Store
	codec      c.Codec[V]
	log        Logger
	defaultTTL time.Duration

	now func() time.Time // swapped in tests
}

func newCache[V any](opts Options[V]) (*cache[V], error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("cbcache: store is required")
	}
	if opts.Codec == nil {
		return nil, fmt.Errorf("cbcache: codec is required")
	}
	if opts.Namespace == "" {
		return nil, fmt.Errorf("cbcache: namespace is required")
	}

	cc := &cache[V]{
		ns:         opts.Namespace,
		version:    opts.Version,
		store:      opts.Store,
		codec:      opts.Codec,
		defaultTTL: opts.DefaultTTL,
		now:        time.Now,
	}
	cc.log = coalesce[Logger](opts.Logger, NopLogger{})
	return cc, nil
}

func (cc *cache[V]) Close(ctx context.Context) error {
	if cc.store != nil {
		return cc.store.Close(ctx)
	}
	return nil
}

func (cc *cache[V]) Fetch(ctx context.Context, keys []string) map[string]V {
	out := make(map[string]V, len(keys))
	for _, k := range keys {
		raw, ok, err := cc.store.Get(ctx, cc.storageKey(k))
		if err != nil {
			cc.log.Warn("fetch: store read failed", Fields{"key": k, "err": err})
			continue // recovered per key; a read error is a miss
		}
		if !ok {
			continue
		}
		v, err := cc.codec.Decode(raw)
		if err != nil {
			cc.log.Warn("fetch: value decode failed", Fields{"key": k, "err": err})
			continue
		}
		out[k] = v
	}
	return out
}

func (cc *cache[V]) Have(ctx context.Context, key string) bool {
	ok, err := cc.store.Exists(ctx, cc.storageKey(key))
	if err != nil {
		cc.log.Warn("have: store lookup failed", Fields{"key": key, "err": err})
		return false
	}
	return ok
}

func (cc *cache[V]) Delete(ctx context.Context, keys []string) BatchResult {
	var res BatchResult
	for _, k := range keys {
		// stores map "already absent" to success themselves
		err := cc.store.Remove(ctx, cc.storageKey(k))
		if err != nil {
			cc.log.Warn("delete: remove failed", Fields{"key": k, "err": err})
		}
		res.add(k, err)
	}
	return res
}

func (cc *cache[V]) Save(ctx context.Context, entries map[string]V, ttl time.Duration) BatchResult {
	var res BatchResult
	if len(entries) == 0 {
		return res
	}
	if ttl == 0 {
		ttl = cc.defaultTTL
	}
	// one normalization for the whole batch
	expiry := normalizeExpiry(ttl, cc.now())

	// stable iteration order keeps outcomes deterministic
	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	// encode phase: keys the codec rejects fail without touching the store
	encoded := make(map[string][]byte, len(entries))
	for _, k := range keys {
		b, err := cc.codec.Encode(entries[k])
		if err != nil {
			cc.log.Warn("save: value encode failed", Fields{"key": k, "err": err})
			res.add(k, err)
			continue
		}
		encoded[k] = b
	}

	for _, k := range keys {
		b, ok := encoded[k]
		if !ok {
			continue
		}
		err := cc.store.Upsert(ctx, cc.storageKey(k), b, uint32(expiry))
		if err != nil {
			cc.log.Warn("save: upsert failed", Fields{"key": k, "err": err})
		}
		res.add(k, err)
	}
	return res
}

func (cc *cache[V]) Clear(_ context.Context, namespace string) bool {
	// No bulk removal primitive at this layer; keys written under an old
	// Version simply age out.
	cc.log.Debug("clear is unsupported for this store integration", Fields{"namespace": namespace})
	return false
}

func (cc *cache[V]) storageKey(userKey string) string {
	return util.StorageKey(cc.ns, cc.version, userKey)
}
