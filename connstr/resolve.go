package connstr

import (
	"errors"
	"fmt"
	"strings"
)

// Caller option keys that seed the running credentials.
const (
	optUsername = "username"
	optPassword = "password"
)

var (
	// ErrInvalidServers is returned when the server argument is neither a
	// string nor a list of strings.
	ErrInvalidServers = errors.New("servers must be a string or a []string")

	// ErrNoServers is returned for an empty server list.
	ErrNoServers = errors.New("at least one connection string is required")
)

// Resolved is the merged outcome of one or more descriptors plus the caller
// options map: everything needed to open a single logical store handle.
type Resolved struct {
	Hosts      []string // one per descriptor, order preserved
	Protocol   Protocol
	Username   string
	Password   string
	Bucket     string
	Scope      string
	Collection string
	Options    map[string]string
	ConnString string // canonical form: proto://h1,h2[?lastOpts]
}

// Resolve merges descriptors into one Resolved. servers is a single
// connection string or a []string of them; options may pre-seed "username"
// and "password" and seeds the merged options map.
//
// Precedence, in order of processing:
//   - running credentials start from the options map; a descriptor that binds
//     its own credentials replaces them for all subsequent descriptors
//   - the running protocol is replaced whenever a descriptor specifies the
//     non-default (secure) variant
//   - inline options overwrite earlier values per key, across descriptors
//   - bucket/scope/collection and the trailing options string come from the
//     last descriptor
//
// Notices are escalated for the whole resolution and restored on every exit
// path, so a sloppy descriptor fails hard instead of half-resolving.
func Resolve(servers any, options map[string]string) (Resolved, error) {
	var list []string
	switch s := servers.(type) {
	case string:
		list = []string{s}
	case []string:
		list = s
	default:
		return Resolved{}, fmt.Errorf("%w: got %T", ErrInvalidServers, servers)
	}
	if len(list) == 0 {
		return Resolved{}, ErrNoServers
	}

	release := EscalateNotices()
	defer release()

	r := Resolved{
		Protocol: Plain,
		Options:  make(map[string]string, len(options)),
	}
	for k, v := range options {
		r.Options[k] = v
	}
	r.Username = options[optUsername]
	r.Password = options[optPassword]

	var last Descriptor
	for _, dsn := range list {
		d, err := Parse(dsn)
		if err != nil {
			return Resolved{}, err
		}
		if d.Username != "" {
			r.Username, r.Password = d.Username, d.Password
		}
		if d.Protocol != Plain {
			r.Protocol = d.Protocol
		}
		for k, v := range d.Options {
			r.Options[k] = v
		}
		r.Hosts = append(r.Hosts, d.Host)
		last = d
	}

	r.Bucket, r.Scope, r.Collection = last.Bucket, last.Scope, last.Collection
	r.ConnString = canonical(r.Protocol, r.Hosts, last.RawOptions)
	return r, nil
}

func canonical(p Protocol, hosts []string, rawOpts string) string {
	s := string(p) + "://" + strings.Join(hosts, ",")
	if rawOpts != "" {
		s += "?" + rawOpts
	}
	return s
}
