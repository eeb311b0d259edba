package cbcache

import (
	"context"
	"errors"
	"reflect"
	"sort"
	"strings"
	"testing"
	"time"

	c "github.com/unkn0wn-root/cbcache/codec"
	st "github.com/unkn0wn-root/cbcache/store"
)

type memEntry struct {
	v      []byte
	expiry uint32
}

// memStore is an in-memory document store honoring the expiry convention.
// The err hooks fail specific storage keys to exercise per-key aggregation.
type memStore struct {
	m map[string]memEntry

	getErr    func(key string) error
	upsertErr func(key string) error
	removeErr func(key string) error
}

var _ st.Store = (*memStore)(nil)

func newMemStore() *memStore { return &memStore{m: make(map[string]memEntry)} }

func (p *memStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	if p.getErr != nil {
		if err := p.getErr(key); err != nil {
			return nil, false, err
		}
	}
	e, ok := p.m[key]
	if !ok {
		return nil, false, nil
	}
	return e.v, true, nil
}

func (p *memStore) Exists(_ context.Context, key string) (bool, error) {
	_, ok := p.m[key]
	return ok, nil
}

func (p *memStore) Upsert(_ context.Context, key string, value []byte, expiry uint32) error {
	if p.upsertErr != nil {
		if err := p.upsertErr(key); err != nil {
			return err
		}
	}
	p.m[key] = memEntry{v: value, expiry: expiry}
	return nil
}

func (p *memStore) Remove(_ context.Context, key string) error {
	if p.removeErr != nil {
		if err := p.removeErr(key); err != nil {
			return err
		}
	}
	delete(p.m, key) // absent key is still a successful remove
	return nil
}

func (p *memStore) Close(context.Context) error { return nil }

type user struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// pickyCodec fails encoding for one name, delegating everything else.
type pickyCodec struct {
	inner   c.JSON[user]
	badName string
}

func (p pickyCodec) Encode(u user) ([]byte, error) {
	if u.Name == p.badName {
		return nil, errors.New("unserializable value")
	}
	return p.inner.Encode(u)
}

func (p pickyCodec) Decode(b []byte) (user, error) { return p.inner.Decode(b) }

func newTestCache(t *testing.T, ms st.Store, optsOpt func(*Options[user])) Cache[user] {
	t.Helper()
	opts := Options[user]{
		Namespace: "user",
		Store:     ms,
		Codec:     c.JSON[user]{},
	}
	if optsOpt != nil {
		optsOpt(&opts)
	}
	cc, err := New[user](opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return cc
}

func TestNewValidation(t *testing.T) {
	ms := newMemStore()
	if _, err := New[user](Options[user]{Store: ms, Codec: c.JSON[user]{}}); err == nil {
		t.Error("missing namespace accepted")
	}
	if _, err := New[user](Options[user]{Namespace: "u", Codec: c.JSON[user]{}}); err == nil {
		t.Error("missing store accepted")
	}
	if _, err := New[user](Options[user]{Namespace: "u", Store: ms}); err == nil {
		t.Error("missing codec accepted")
	}
}

func TestFetchReturnsOnlyHits(t *testing.T) {
	ctx := context.Background()
	ms := newMemStore()
	cc := newTestCache(t, ms, nil)

	seed := map[string]user{
		"u:1": {ID: "1", Name: "Ada"},
		"u:2": {ID: "2", Name: "Grace"},
	}
	if res := cc.Save(ctx, seed, 0); !res.OK() {
		t.Fatalf("Save failed: %v", res.FailedKeys())
	}

	got := cc.Fetch(ctx, []string{"u:1", "u:missing", "u:2"})
	if len(got) != 2 {
		t.Fatalf("Fetch returned %d entries: %v", len(got), got)
	}
	if got["u:1"] != seed["u:1"] || got["u:2"] != seed["u:2"] {
		t.Fatalf("Fetch values = %v", got)
	}
	if _, ok := got["u:missing"]; ok {
		t.Fatal("miss leaked into result")
	}
}

func TestFetchRecoversPerKeyReadErrors(t *testing.T) {
	ctx := context.Background()
	ms := newMemStore()
	cc := newTestCache(t, ms, nil)

	cc.Save(ctx, map[string]user{"ok": {ID: "1"}, "boom": {ID: "2"}}, 0)
	ms.getErr = func(key string) error {
		if strings.HasSuffix(key, ":boom") {
			return errors.New("io error")
		}
		return nil
	}

	got := cc.Fetch(ctx, []string{"ok", "boom"})
	if len(got) != 1 || got["ok"].ID != "1" {
		t.Fatalf("Fetch = %v", got)
	}
}

func TestHave(t *testing.T) {
	ctx := context.Background()
	ms := newMemStore()
	cc := newTestCache(t, ms, nil)

	if cc.Have(ctx, "k") {
		t.Fatal("Have before save")
	}
	cc.Save(ctx, map[string]user{"k": {ID: "1"}}, 0)
	if !cc.Have(ctx, "k") {
		t.Fatal("Have after save")
	}
}

func TestDeleteAbsentKeyIsSuccess(t *testing.T) {
	ctx := context.Background()
	cc := newTestCache(t, newMemStore(), nil)

	res := cc.Delete(ctx, []string{"never-existed"})
	if !res.OK() {
		t.Fatalf("delete of absent key failed: %v", res.FailedKeys())
	}
}

func TestDeleteAggregatesFailures(t *testing.T) {
	ctx := context.Background()
	ms := newMemStore()
	cc := newTestCache(t, ms, nil)

	cc.Save(ctx, map[string]user{"a": {ID: "1"}, "b": {ID: "2"}}, 0)
	ms.removeErr = func(key string) error {
		if strings.HasSuffix(key, ":a") {
			return errors.New("remove unconfirmed")
		}
		return nil
	}

	res := cc.Delete(ctx, []string{"a", "b"})
	if res.OK() {
		t.Fatal("expected failure")
	}
	if got := res.FailedKeys(); !reflect.DeepEqual(got, []string{"a"}) {
		t.Fatalf("FailedKeys = %v", got)
	}
	if res.Len() != 2 {
		t.Fatalf("Len = %d, want 2 (batch must run to completion)", res.Len())
	}
	if cc.Have(ctx, "b") {
		t.Fatal("b survived the batch")
	}
}

func TestSavePartialFailure(t *testing.T) {
	ctx := context.Background()
	ms := newMemStore()
	ms.upsertErr = func(key string) error {
		if strings.HasSuffix(key, ":k4") {
			return errors.New("store rejected")
		}
		return nil
	}
	cc := newTestCache(t, ms, func(o *Options[user]) {
		o.Codec = pickyCodec{badName: "bad"}
	})

	entries := map[string]user{
		"k1": {ID: "1", Name: "one"},
		"k2": {ID: "2", Name: "two"},
		"k3": {ID: "3", Name: "bad"}, // codec rejects
		"k4": {ID: "4", Name: "four"}, // store rejects
	}
	res := cc.Save(ctx, entries, 0)
	if res.OK() {
		t.Fatal("expected partial failure")
	}
	failed := res.FailedKeys()
	sort.Strings(failed)
	if !reflect.DeepEqual(failed, []string{"k3", "k4"}) {
		t.Fatalf("FailedKeys = %v, want [k3 k4]", failed)
	}

	got := cc.Fetch(ctx, []string{"k1", "k2", "k3", "k4"})
	if len(got) != 2 || got["k1"].Name != "one" || got["k2"].Name != "two" {
		t.Fatalf("surviving entries = %v", got)
	}
}

func TestSaveExpiryNormalization(t *testing.T) {
	ctx := context.Background()
	now := time.Unix(1_700_000_000, 0)

	cases := []struct {
		name string
		ttl  time.Duration
		want uint32
	}{
		{"never", 0, 0},
		{"one day stays relative", 24 * time.Hour, 86400},
		{"cutoff stays relative", 2_592_000 * time.Second, 2_592_000},
		{"beyond cutoff becomes absolute", 3_000_000 * time.Second, uint32(3_000_000 + now.Unix())},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ms := newMemStore()
			cc := newTestCache(t, ms, nil)
			cc.(*cache[user]).now = func() time.Time { return now }

			if res := cc.Save(ctx, map[string]user{"k": {ID: "1"}}, tc.ttl); !res.OK() {
				t.Fatalf("Save: %v", res.FailedKeys())
			}
			e, ok := ms.m["user:k"]
			if !ok {
				t.Fatal("entry not stored")
			}
			if e.expiry != tc.want {
				t.Fatalf("expiry = %d, want %d", e.expiry, tc.want)
			}
		})
	}
}

func TestSaveAppliesDefaultTTL(t *testing.T) {
	ctx := context.Background()
	ms := newMemStore()
	cc := newTestCache(t, ms, func(o *Options[user]) {
		o.DefaultTTL = time.Hour
	})

	cc.Save(ctx, map[string]user{"k": {ID: "1"}}, 0)
	if e := ms.m["user:k"]; e.expiry != 3600 {
		t.Fatalf("expiry = %d, want 3600", e.expiry)
	}
}

func TestClearAlwaysFalse(t *testing.T) {
	ctx := context.Background()
	ms := newMemStore()
	cc := newTestCache(t, ms, nil)

	cc.Save(ctx, map[string]user{"k": {ID: "1"}}, 0)
	if cc.Clear(ctx, "user") {
		t.Fatal("Clear reported success")
	}
	if cc.Clear(ctx, "") {
		t.Fatal("Clear reported success for empty namespace")
	}
	// and it must not have touched anything
	if !cc.Have(ctx, "k") {
		t.Fatal("Clear removed entries")
	}
}

func TestVersionIsMixedIntoKeys(t *testing.T) {
	ctx := context.Background()
	ms := newMemStore()
	cc := newTestCache(t, ms, func(o *Options[user]) {
		o.Version = "v2"
	})

	cc.Save(ctx, map[string]user{"k": {ID: "1"}}, 0)
	if _, ok := ms.m["user:v2:k"]; !ok {
		t.Fatalf("stored keys: %v", keysOf(ms.m))
	}
}

func keysOf(m map[string]memEntry) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
