package cacheguard

import (
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/dolthub/maphash"
	"golang.org/x/sync/errgroup"
)

func TestHasherIgnoresPaddingAndAddress(t *testing.T) {
	h := NewHasher[string]()
	a, b := Of("value"), New("value")
	scribble(&a)
	if h.Hash(&a) != h.Hash(b) {
		t.Fatal("equal Guards hash differently")
	}
	if h.Hash(&a) != h.HashValue("value") {
		t.Fatal("Hash(Guard) != HashValue(value)")
	}

	r := h.Reseed()
	if r.Hash(&a) != r.Hash(b) {
		t.Fatal("reseeded hasher is inconsistent")
	}
}

func TestRuntimeHashOfGuard(t *testing.T) {
	h := maphash.NewHasher[Guard[point]]()
	a, b := Of(point{3, 4}), Of(point{3, 4})
	scribble(&a)
	if h.Hash(a) != h.Hash(b) {
		t.Fatal("runtime hash of Guard depends on padding")
	}
}

func TestGuardedStripes(t *testing.T) {
	stripes := make([]Guard[atomic.Uint64], 4)
	const perStripe = 10000

	var g errgroup.Group
	for i := range stripes {
		g.Go(func() error {
			s := stripes[i].Ptr()
			for range perStripe {
				s.Add(1)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}

	var total uint64
	for i := range stripes {
		total += stripes[i].Ptr().Load()
		checkIsolated(t, "stripe "+strconv.Itoa(i), &stripes[i])
	}
	if total != uint64(len(stripes)*perStripe) {
		t.Fatalf("total = %d, want %d", total, len(stripes)*perStripe)
	}
}
