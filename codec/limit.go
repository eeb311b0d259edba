package codec

import "fmt"

// Limit wraps another codec to cap the payload size accepted by Decode;
// Encode is forwarded unchanged. Use it when reading from a cache shared
// with writers you do not fully trust. MaxDecode <= 0 disables the cap.
type Limit[V any] struct {
	// Inner is the wrapped codec. It must be set.
	Inner Codec[V]
	// MaxDecode is the largest payload (bytes) Decode will hand to Inner.
	MaxDecode int
}

func (c Limit[V]) Encode(v V) ([]byte, error) { return c.Inner.Encode(v) }

func (c Limit[V]) Decode(b []byte) (V, error) {
	if c.MaxDecode > 0 && len(b) > c.MaxDecode {
		var zero V
		return zero, fmt.Errorf("payload too large: %d > %d", len(b), c.MaxDecode)
	}
	return c.Inner.Decode(b)
}
