package cbcache

// Outcome records one key's fate within a batch operation.
// Err is nil on success.
type Outcome struct {
	Key string
	Err error
}

// BatchResult aggregates per-key outcomes of one batch call. Every requested
// key gets exactly one outcome; a batch never aborts early because one key
// failed. The zero value is ready to use and reports OK.
type BatchResult struct {
	outcomes []Outcome
	failed   int
}

func (r *BatchResult) add(key string, err error) {
	r.outcomes = append(r.outcomes, Outcome{Key: key, Err: err})
	if err != nil {
		r.failed++
	}
}

// OK reports whether every key succeeded.
func (r BatchResult) OK() bool { return r.failed == 0 }

// FailedKeys returns the keys that failed, in processing order.
// Nil when everything succeeded.
func (r BatchResult) FailedKeys() []string {
	if r.failed == 0 {
		return nil
	}
	out := make([]string, 0, r.failed)
	for _, o := range r.outcomes {
		if o.Err != nil {
			out = append(out, o.Key)
		}
	}
	return out
}

// Outcomes returns every per-key outcome in processing order.
func (r BatchResult) Outcomes() []Outcome { return r.outcomes }

// Len is the number of keys the batch processed.
func (r BatchResult) Len() int { return len(r.outcomes) }
