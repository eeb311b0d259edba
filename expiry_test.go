package cbcache

import (
	"math"
	"testing"
	"time"
)

func TestNormalizeExpiry(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)

	cases := []struct {
		name string
		ttl  time.Duration
		want int64
	}{
		{"zero passes through", 0, 0},
		{"one day stays relative", 86_400 * time.Second, 86_400},
		{"exactly the cutoff stays relative", 2_592_000 * time.Second, 2_592_000},
		{"beyond the cutoff is anchored at now", 3_000_000 * time.Second, 3_000_000 + now.Unix()},
		{"negative collapses to never", -time.Minute, 0},
		{"past the 32-bit range saturates", 200 * 365 * 24 * time.Hour, math.MaxUint32},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := normalizeExpiry(tc.ttl, now); got != tc.want {
				t.Fatalf("normalizeExpiry(%v) = %d, want %d", tc.ttl, got, tc.want)
			}
		})
	}
}
