package cbcache

import (
	"context"
	"time"

	c "github.com/unkn0wn-root/cbcache/codec"
	st "github.com/unkn0wn-root/cbcache/store"
)

// Cache is the batch cache surface over one store handle. V is the caller's
// value type; serialization is handled by a pluggable Codec[V].
//
// Batch methods never abort on a single key and never return an error:
// per-key failures come back as data (absent keys, booleans, BatchResult).
type Cache[V any] interface {
	// Fetch returns the deserialized values found for keys. A missing key
	// is simply absent from the result - a miss, not a failure.
	Fetch(ctx context.Context, keys []string) map[string]V

	// Have reports whether the store currently holds key, without
	// fetching the value.
	Have(ctx context.Context, key string) bool

	// Delete removes keys. A key that was already absent counts as
	// deleted; the per-key outcomes carry everything else.
	Delete(ctx context.Context, keys []string) BatchResult

	// Save writes entries with the given TTL (0 => Options.DefaultTTL).
	// Keys the codec cannot encode fail without touching the store.
	Save(ctx context.Context, entries map[string]V, ttl time.Duration) BatchResult

	// Clear always reports false: the store integration has no safe
	// namespace-wide removal. Bump Options.Version to retire a namespace.
	Clear(ctx context.Context, namespace string) bool

	Close(ctx context.Context) error
}

// Options configure a Cache. Namespace, Store and Codec are required.
type Options[V any] struct {
	// Required
	Namespace string // logical namespace to avoid collisions, e.g. "user"
	Store     st.Store
	Codec     c.Codec[V]

	Logger Logger // if nil, NopLogger is used

	// DefaultTTL applies when Save is called with ttl 0.
	// Zero means entries never expire.
	DefaultTTL time.Duration

	// Version is a generation token mixed into every storage key. Changing
	// it orphans everything written under the previous value, which is how
	// this integration "clears" a namespace.
	Version string
}

func New[V any](opts Options[V]) (Cache[V], error) {
	return newCache[V](opts)
}
