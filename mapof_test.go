//go:build amd64 || arm64 || loong64 || mips64 || mips64le || ppc64 || ppc64le || riscv64 || s390x || wasm

package cacheguard

import (
	"errors"
	"fmt"
	"strconv"
	"testing"

	"github.com/llxisdsh/pb"
	"golang.org/x/sync/errgroup"
)

func TestGuardAsConcurrentMapKey(t *testing.T) {
	var m pb.MapOf[Guard[string], int]
	const n = 256

	// Stores stay on one goroutine: pb's lazy init reads without barriers.
	for i := range n {
		k := Of(strconv.Itoa(i))
		scribble(&k)
		m.Store(k, i)
	}

	var g errgroup.Group
	for range 8 {
		g.Go(func() error {
			for i := range n {
				v, ok := m.Load(Of(strconv.Itoa(i)))
				if !ok || v != i {
					return fmt.Errorf("Load(%d) = %d, %v; want %d, true", i, v, ok, i)
				}
			}
			if _, ok := m.Load(Of("missing")); ok {
				return errors.New("Load(missing) found a value")
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}
}
