package util

import (
	"strings"
	"testing"
)

func TestStorageKey(t *testing.T) {
	if got := StorageKey("user", "", "u:1"); got != "user:u:1" {
		t.Fatalf("StorageKey = %q", got)
	}
	if got := StorageKey("user", "v2", "u:1"); got != "user:v2:u:1" {
		t.Fatalf("versioned StorageKey = %q", got)
	}
}

func TestStorageKeyHashesOverBudget(t *testing.T) {
	long := strings.Repeat("x", 300)

	got := StorageKey("user", "v1", long)
	if len(got) > MaxKeyLength {
		t.Fatalf("len = %d, want <= %d", len(got), MaxKeyLength)
	}
	if !strings.HasPrefix(got, "user:v1:") {
		t.Fatalf("prefix lost: %q", got)
	}
	// deterministic, and distinct from other long keys
	if got != StorageKey("user", "v1", long) {
		t.Fatal("hashing is not deterministic")
	}
	if got == StorageKey("user", "v1", long+"y") {
		t.Fatal("distinct keys collided")
	}
}
