// Package cbcache maps a generic batch key-value cache surface onto a remote
// document store, couchbase first. It translates connection descriptors into
// one live store handle and tracks per-key success or failure instead of
// failing a whole batch on a single key.
//
// Components:
//   - connstr: descriptor parsing and multi-DSN resolution with defined
//     override precedence, rendering the canonical connection string.
//   - store: the document-store seam (Get/Exists/Upsert/Remove) with
//     couchbase, redis, bigcache and ristretto backends.
//   - Codec[V]: (de)serializes V <-> []byte (JSON, msgpack, CBOR, protobuf).
//   - Cache[V]: the batch engine. Fetch returns only hits, Delete treats an
//     absent key as removed, Save reports the exact set of failed keys, and
//     Clear is deliberately unsupported (bump Options.Version instead).
//
// Keys are stored as <namespace>:<version>:<key>; assembled keys over the
// 250-byte budget are hashed.
//
// Typical wiring:
//
//	st, err := couchbase.Dial(
//	    []string{"couchbase://host1/app/cfg/entries?n1qlTimeout=60"},
//	    map[string]string{"username": "svc", "password": "hunter22"},
//	    couchbase.Config{},
//	)
//	cc, err := cbcache.New[User](cbcache.Options[User]{
//	    Namespace: "user",
//	    Store:     st,
//	    Codec:     codec.JSON[User]{},
//	})
package cbcache
