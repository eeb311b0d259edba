// Package codec provides the marshalling seam between caller values and the
// storage-safe byte strings the stores hold.
package codec

// Codec encodes/decodes values V to []byte for storage.
type Codec[V any] interface {
	Encode(V) ([]byte, error)
	Decode([]byte) (V, error)
}
