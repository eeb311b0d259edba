// Package connstr parses couchbase connection descriptors and resolves one or
// more of them into the final configuration used to open a store handle.
//
// Grammar (bit-exact):
//
//	couchbase[s]://[user:pass@]host[:port]/bucket[/scope/collection][?opt1=v1&opt2=v2]
//
// A descriptor is well-formed only if it carries the couchbase scheme and a
// bucket name. A scope without a collection (or the reverse) is malformed.
package connstr

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
)

// Protocol selects plain or TLS transport.
type Protocol string

const (
	Plain  Protocol = "couchbase"
	Secure Protocol = "couchbases"
)

// Passwords shorter than this do not bind; the credential block falls through
// to whatever the resolver already knows.
const minPasswordLen = 6

var (
	// ErrMalformed is wrapped by every DescriptorError.
	ErrMalformed = errors.New("malformed descriptor")
)

// DescriptorError reports where and why a connection string failed to parse.
type DescriptorError struct {
	DSN    string
	Reason string
}

func (e *DescriptorError) Error() string {
	return fmt.Sprintf("connstr: %q: %s", e.DSN, e.Reason)
}

func (e *DescriptorError) Unwrap() error { return ErrMalformed }

func malformed(dsn, reason string) error {
	return &DescriptorError{DSN: dsn, Reason: reason}
}

// Descriptor is one parsed connection string.
type Descriptor struct {
	Protocol   Protocol
	Host       string // may embed a port
	Username   string
	Password   string
	Bucket     string
	Scope      string
	Collection string
	Options    map[string]string // last occurrence wins
	RawOptions string            // the options block as written, without '?'
}

// strictNotices counts active escalations. While positive, recoverable parse
// notices become DescriptorError instead of being ignored.
var strictNotices atomic.Int32

// EscalateNotices promotes otherwise-silent parse notices (trailing slash
// after the resource path, empty option segments, a bare '?') to hard errors
// until the returned release func runs, so a sloppy string can never yield a
// partially-populated descriptor mid-resolution. Release is idempotent and
// must run on every exit path; Resolve holds an escalation for its whole
// duration.
func EscalateNotices() (release func()) {
	strictNotices.Add(1)
	var once sync.Once
	return func() { once.Do(func() { strictNotices.Add(-1) }) }
}

// Parse parses a single connection string into a Descriptor.
func Parse(dsn string) (Descriptor, error) {
	strict := strictNotices.Load() > 0
	var d Descriptor

	var rest string
	switch {
	case strings.HasPrefix(dsn, string(Secure)+"://"):
		d.Protocol = Secure
		rest = dsn[len(Secure)+3:]
	case strings.HasPrefix(dsn, string(Plain)+"://"):
		d.Protocol = Plain
		rest = dsn[len(Plain)+3:]
	default:
		return d, malformed(dsn, "missing couchbase:// scheme")
	}

	// authority [ /path ] [ ?options ]
	auth, tail := rest, ""
	if i := strings.IndexAny(rest, "/?"); i != -1 {
		auth, tail = rest[:i], rest[i:]
	}

	if at := strings.LastIndexByte(auth, '@'); at != -1 {
		creds := auth[:at]
		auth = auth[at+1:]
		if user, pass, ok := strings.Cut(creds, ":"); ok && user != "" && len(pass) >= minPasswordLen {
			d.Username, d.Password = user, pass
		}
		// otherwise the block does not bind credentials
	}
	if auth == "" {
		return d, malformed(dsn, "missing host")
	}
	d.Host = auth

	path := tail
	opts, hasOpts := "", false
	if q := strings.IndexByte(tail, '?'); q != -1 {
		path, opts, hasOpts = tail[:q], tail[q+1:], true
	}

	path = strings.TrimPrefix(path, "/")
	if path == "" {
		return d, malformed(dsn, "missing bucket name")
	}
	segs := strings.Split(path, "/")
	if n := len(segs); segs[n-1] == "" {
		if strict {
			return d, malformed(dsn, "trailing slash after resource path")
		}
		segs = segs[:n-1]
	}
	for _, s := range segs {
		if s == "" {
			return d, malformed(dsn, "empty resource path segment")
		}
	}
	switch len(segs) {
	case 1:
		d.Bucket = segs[0]
	case 3:
		d.Bucket, d.Scope, d.Collection = segs[0], segs[1], segs[2]
	case 2:
		return d, malformed(dsn, "scope requires a collection name")
	default:
		return d, malformed(dsn, "resource path has too many segments")
	}

	if hasOpts {
		d.RawOptions = opts
		if opts == "" {
			if strict {
				return d, malformed(dsn, "empty options block")
			}
		} else {
			m, err := parseOptions(dsn, opts, strict)
			if err != nil {
				return d, err
			}
			d.Options = m
		}
	}
	return d, nil
}

func parseOptions(dsn, raw string, strict bool) (map[string]string, error) {
	out := make(map[string]string)
	for _, seg := range strings.Split(raw, "&") {
		if seg == "" {
			if strict {
				return nil, malformed(dsn, "empty option segment")
			}
			continue
		}
		k, v, ok := strings.Cut(seg, "=")
		if !ok || k == "" {
			return nil, malformed(dsn, fmt.Sprintf("option %q is not key=value", seg))
		}
		out[k] = v // last occurrence wins
	}
	return out, nil
}
