package cbcache

import (
	"math"
	"time"

	st "github.com/unkn0wn-root/cbcache/store"
)

// normalizeExpiry converts a relative TTL into the store's expiry
// convention: zero stays zero (never expires), anything up to the 30-day
// cutoff stays a relative number of seconds, and anything beyond it becomes
// an absolute unix timestamp anchored at now. The result always fits the
// store's 32-bit expiry field: negatives collapse to 0 and absolute
// timestamps past its range saturate at the ceiling.
func normalizeExpiry(ttl time.Duration, now time.Time) int64 {
	secs := int64(ttl / time.Second)
	if secs <= 0 {
		return 0
	}
	if secs > st.RelativeCutoff {
		secs += now.Unix()
		if secs > math.MaxUint32 {
			return math.MaxUint32
		}
	}
	return secs
}
