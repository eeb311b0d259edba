// Package store defines the document-store abstraction used by cbcache.
//
// Implementations MUST be byte-for-byte transparent: Get must return exactly
// the same []byte that was previously passed to Upsert for a key (no metadata
// framing, no re-encoding, no mutation).
//
// Expiry follows the couchbase wire convention: 0 means no expiry, values
// up to and including RelativeCutoff are relative seconds, and values beyond
// it are absolute unix timestamps. Callers are expected to hand an already
// normalized expiry to Upsert; TTL converts it back into a duration for
// stores that only speak durations.
package store

import (
	"context"
	"time"
)

// RelativeCutoff is the largest expiry (in seconds) the store reads as a
// relative duration. 30 days.
const RelativeCutoff = 30 * 24 * 60 * 60

// Store is one logical connection to a document store. It is opened once per
// adapter instance and used sequentially; concurrency safety, timeouts and
// retry are the backing client's business, not this seam's.
type Store interface {
	// Get returns (value, true, nil) on hit; (nil, false, nil) on miss.
	// IO/remote errors return (nil, false, err).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Exists reports whether the store currently holds key without
	// fetching the value.
	Exists(ctx context.Context, key string) (bool, error)

	// Upsert stores value under key with a normalized expiry.
	Upsert(ctx context.Context, key string, value []byte, expiry uint32) error

	// Remove deletes key. A key that was already absent is not an error;
	// a removal the store cannot confirm is.
	Remove(ctx context.Context, key string) error

	// Close releases the connection.
	Close(ctx context.Context) error
}

// TTL converts a normalized expiry into a duration. Absolute timestamps
// become the time remaining until them, which may be negative when the
// moment has already passed.
func TTL(expiry uint32) time.Duration {
	switch {
	case expiry == 0:
		return 0
	case expiry > RelativeCutoff:
		return time.Until(time.Unix(int64(expiry), 0))
	default:
		return time.Duration(expiry) * time.Second
	}
}
