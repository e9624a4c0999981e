package cacheguard

import (
	"github.com/dolthub/maphash"
)

// Hasher hashes Guards by their guarded value only, using the runtime's
// hash function for T. Guards holding equal values hash equally no matter
// where they live or what their padding bytes contain.
//
// A Hasher is seeded randomly on creation; hashes from different Hashers
// are unrelated.
type Hasher[T comparable] struct {
	h maphash.Hasher[T]
}

// NewHasher returns a Hasher with a random seed.
func NewHasher[T comparable]() Hasher[T] {
	return Hasher[T]{h: maphash.NewHasher[T]()}
}

// Hash returns the hash of g's value.
func (h Hasher[T]) Hash(g *Guard[T]) uint64 {
	return h.h.Hash(g.v)
}

// HashValue returns the hash v would have inside a Guard.
func (h Hasher[T]) HashValue(v T) uint64 {
	return h.h.Hash(v)
}

// Reseed returns a copy of h with a new random seed.
func (h Hasher[T]) Reseed() Hasher[T] {
	return Hasher[T]{h: maphash.NewSeed(h.h)}
}
