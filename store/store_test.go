package store

import (
	"testing"
	"time"
)

func TestTTL(t *testing.T) {
	if got := TTL(0); got != 0 {
		t.Fatalf("TTL(0) = %v", got)
	}
	if got := TTL(90); got != 90*time.Second {
		t.Fatalf("TTL(90) = %v", got)
	}

	// the cutoff itself is still relative: exactly 30 days, not a
	// 1970-era absolute timestamp
	if got := TTL(RelativeCutoff); got != RelativeCutoff*time.Second {
		t.Fatalf("TTL(RelativeCutoff) = %v, want %v", got, RelativeCutoff*time.Second)
	}

	// absolute timestamp an hour out: remaining duration, within tolerance
	abs := uint32(time.Now().Add(time.Hour).Unix())
	got := TTL(abs)
	if got < 59*time.Minute || got > 61*time.Minute {
		t.Fatalf("TTL(absolute +1h) = %v", got)
	}

	// absolute timestamp in the past is already expired
	past := uint32(time.Now().Add(-time.Hour).Unix())
	if got := TTL(past); got >= 0 {
		t.Fatalf("TTL(absolute -1h) = %v, want negative", got)
	}
}
