// Package couchbase opens the logical couchbase connection used by cbcache:
// cluster, then bucket, then the named scope/collection or the bucket's
// default collection. Connection errors are the SDK's own; nothing here
// retries.
package couchbase

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	gocb "github.com/couchbase/gocb/v2"

	"github.com/unkn0wn-root/cbcache/connstr"
	"github.com/unkn0wn-root/cbcache/store"
)

// Supported client SDK generation, checked before any network activity.
// gocb v2 is the generation this package is written against.
const (
	minClientMajor = 2 // inclusive
	maxClientMajor = 3 // exclusive
)

var (
	// ErrUnsupportedBackend is returned when the compiled SDK reports a
	// version outside the supported range.
	ErrUnsupportedBackend = errors.New("couchbase: client SDK version out of supported range")

	// errUnconfirmedRemove marks a remove the cluster did not acknowledge
	// with a mutation token.
	errUnconfirmedRemove = errors.New("couchbase: remove returned no mutation token")
)

// Store is a live bucket/scope/collection selection.
type Store struct {
	cluster    *gocb.Cluster
	collection *gocb.Collection
	transcoder gocb.Transcoder
}

var _ store.Store = (*Store)(nil)

type Config struct {
	// WaitTimeout bounds the initial bucket readiness wait. 0 => 10s.
	WaitTimeout time.Duration
}

// Dial resolves servers (a connection string or a []string of them) plus the
// caller options map, then opens the handle.
func Dial(servers any, options map[string]string, cfg Config) (*Store, error) {
	r, err := connstr.Resolve(servers, options)
	if err != nil {
		return nil, err
	}
	return Open(r, cfg)
}

// Open establishes the handle for an already resolved configuration.
func Open(r connstr.Resolved, cfg Config) (*Store, error) {
	if err := checkClientVersion(gocb.Version()); err != nil {
		return nil, err
	}

	cluster, err := gocb.Connect(r.ConnString, gocb.ClusterOptions{
		Username: r.Username,
		Password: r.Password,
	})
	if err != nil {
		return nil, err
	}

	bucket := cluster.Bucket(r.Bucket)
	wait := cfg.WaitTimeout
	if wait == 0 {
		wait = 10 * time.Second
	}
	if err := bucket.WaitUntilReady(wait, nil); err != nil {
		_ = cluster.Close(nil)
		return nil, err
	}

	var col *gocb.Collection
	if r.Scope != "" {
		col = bucket.Scope(r.Scope).Collection(r.Collection)
	} else {
		col = bucket.DefaultCollection()
	}
	return &Store{
		cluster:    cluster,
		collection: col,
		transcoder: gocb.NewRawBinaryTranscoder(),
	}, nil
}

func checkClientVersion(v string) error {
	major, ok := parseMajor(v)
	if !ok {
		return fmt.Errorf("%w: cannot parse %q", ErrUnsupportedBackend, v)
	}
	if major < minClientMajor || major >= maxClientMajor {
		return fmt.Errorf("%w: have %s, want >=%d.0 <%d.0", ErrUnsupportedBackend, v, minClientMajor, maxClientMajor)
	}
	return nil
}

func parseMajor(v string) (int, bool) {
	v = strings.TrimPrefix(v, "v")
	head, _, _ := strings.Cut(v, ".")
	n, err := strconv.Atoi(head)
	return n, err == nil
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	res, err := s.collection.Get(key, &gocb.GetOptions{
		Transcoder: s.transcoder,
		Context:    ctx,
	})
	if errors.Is(err, gocb.ErrDocumentNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var raw []byte
	if err := res.Content(&raw); err != nil {
		return nil, false, err
	}
	return raw, true, nil
}

func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	res, err := s.collection.Exists(key, &gocb.ExistsOptions{Context: ctx})
	if err != nil {
		return false, err
	}
	return res.Exists(), nil
}

func (s *Store) Upsert(ctx context.Context, key string, value []byte, expiry uint32) error {
	_, err := s.collection.Upsert(key, value, &gocb.UpsertOptions{
		Expiry:     store.TTL(expiry),
		Transcoder: s.transcoder,
		Context:    ctx,
	})
	return err
}

func (s *Store) Remove(ctx context.Context, key string) error {
	res, err := s.collection.Remove(key, &gocb.RemoveOptions{Context: ctx})
	if errors.Is(err, gocb.ErrDocumentNotFound) {
		return nil // already absent
	}
	if err != nil {
		return err
	}
	if res == nil || res.MutationToken() == nil {
		return errUnconfirmedRemove
	}
	return nil
}

func (s *Store) Close(context.Context) error {
	return s.cluster.Close(nil)
}
