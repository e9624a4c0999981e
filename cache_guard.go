// Package cacheguard pads a value to the cache-line size of the target
// architecture so that it never shares a cache line with other memory.
package cacheguard

//go:generate go run ./cmd/cacheguardgen -dir internal/opt -mod go.mod

import (
	"fmt"
	"reflect"

	"github.com/llxisdsh/cacheguard/internal/opt"
)

// CacheLineSize is the cache-line size, in bytes, of the build's GOARCH.
// It is fixed at compile time by build constraints and can be forced with
// one of the cacheguard_linesize_{8,16,32,64,128,256} build tags.
//
//	32:  arm, mips, mipsle, riscv, riscv64, sparc
//	128: amd64, arm64, mips64, mips64le, ppc, ppc64, ppc64le, wasm
//	256: s390x
//	64:  386, loong64, sparc64 and every other GOARCH
const CacheLineSize = opt.CacheLineSize_

// CacheLinePad is exactly CacheLineSize bytes of padding.
type CacheLinePad struct{ _ [CacheLineSize]byte }

// Guard holds one value of type T padded by a full cache line on each side,
// so every cache line holding a byte of the value belongs to the Guard
// alone. Two separately guarded values, such as two atomic counters written
// by different goroutines, never invalidate each other's lines.
//
// Go cannot align a type beyond the machine word, so the isolation comes
// from the padding rather than from the Guard's start address: it holds
// wherever the allocator places the Guard, on the heap, in a slice, or as
// a struct field.
//
// The zero value wraps the zero value of T and is ready to use.
//
// Guard adds no locking and no copy restriction. It may be passed between
// and shared by goroutines exactly when T may; a Guard of an atomic type is
// as safe for concurrent use through Ptr as the atomic itself.
//
// A Guard is 2*CacheLineSize bytes plus the size of T, which is usually not
// a multiple of CacheLineSize.
//
// Padding bytes take part in neither == nor hashing: when T is comparable,
// Guard[T] is comparable and two Guards are equal iff their values are.
type Guard[T any] struct {
	_ CacheLinePad
	v T
	_ CacheLinePad
}

// Of returns a Guard holding v.
//
//go:nosplit
func Of[T any](v T) Guard[T] {
	return Guard[T]{v: v}
}

// New returns a pointer to a new Guard holding v. It is Of for APIs that
// take *Guard[T].
func New[T any](v T) *Guard[T] {
	return &Guard[T]{v: v}
}

// Ptr returns a pointer to the guarded value. Every method of T, including
// pointer-receiver methods such as atomic.Int64.Add, is reachable through
// it.
//
//go:nosplit
func (g *Guard[T]) Ptr() *T {
	return &g.v
}

// Value returns the guarded value.
//
//go:nosplit
func (g Guard[T]) Value() T {
	return g.v
}

// Set replaces the guarded value.
//
//go:nosplit
func (g *Guard[T]) Set(v T) {
	g.v = v
}

// Format implements fmt.Formatter. The %#v verb prints the wrapper and
// the value's Go syntax, e.g. cacheguard.Guard[int]{42}. Every other verb,
// with its flags, width and precision, formats the guarded value as if it
// had been passed directly.
func (g Guard[T]) Format(f fmt.State, verb rune) {
	if verb == 'v' && f.Flag('#') {
		fmt.Fprintf(f, "cacheguard.Guard[%s]{%#v}", reflect.TypeFor[T](), g.v)
		return
	}
	fmt.Fprintf(f, fmt.FormatString(f, verb), g.v)
}

// Equal reports whether a and b hold equal values.
//
//go:nosplit
func Equal[T comparable](a, b *Guard[T]) bool {
	return a.v == b.v
}

// Cloner is implemented by values that duplicate themselves deeply.
type Cloner[T any] interface {
	Clone() T
}

// Clone returns a new Guard holding g's value duplicated by its Clone
// method.
func Clone[T Cloner[T]](g *Guard[T]) Guard[T] {
	return Guard[T]{v: g.v.Clone()}
}

// CloneFunc returns a new Guard holding the value clone produces from g's
// value. An error from clone is returned as is, with a zero Guard.
func CloneFunc[T any](g *Guard[T], clone func(*T) (T, error)) (Guard[T], error) {
	v, err := clone(&g.v)
	if err != nil {
		return Guard[T]{}, err
	}
	return Guard[T]{v: v}, nil
}
