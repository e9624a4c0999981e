// Package arch maps target architectures to the cache-line size used for
// padding. The table is the single source of truth for the build-tagged
// constants in internal/opt, which are generated from it.
package arch

import (
	"errors"
	"fmt"
	"slices"
	"unsafe"

	"golang.org/x/sys/cpu"
)

// Default is the line size for every architecture not listed in Table.
// 64 bytes is the most common cache-line size.
const Default uintptr = 64

var (
	// ErrDuplicateArch is returned by Validate when a GOARCH is listed in
	// more than one family.
	ErrDuplicateArch = errors.New("arch: GOARCH listed more than once")
	// ErrInvalidSize is returned by Validate for a line size that is not a
	// power of two in [MinSize, MaxSize].
	ErrInvalidSize = errors.New("arch: invalid cache line size")
)

// Supported line size bounds.
const (
	MinSize uintptr = 8
	MaxSize uintptr = 4096
)

// Family is an architecture family sharing a typical cache-line size.
//
// GoArch holds the GOARCH values that belong to the family. Families with
// no Go port keep an empty GoArch and only document the mapping.
type Family struct {
	Name   string
	Size   uintptr
	GoArch []string
}

// Table lists every family with a non-default line size, grouped by size.
var Table = []Family{
	{Name: "msp430", Size: 8},
	{Name: "m68k", Size: 16},

	{Name: "arm", Size: 32, GoArch: []string{"arm", "armbe"}},
	{Name: "avr", Size: 32},
	{Name: "hexagon", Size: 32},
	{Name: "mips", Size: 32, GoArch: []string{"mips", "mipsle"}},
	{Name: "mips32r6", Size: 32},
	{Name: "riscv32", Size: 32, GoArch: []string{"riscv"}},
	{Name: "riscv64", Size: 32, GoArch: []string{"riscv64"}},
	{Name: "sparc", Size: 32, GoArch: []string{"sparc"}},
	{Name: "xtensa", Size: 32},

	{Name: "aarch64", Size: 128, GoArch: []string{"arm64", "arm64be"}},
	{Name: "amdgpu", Size: 128},
	{Name: "arm64ec", Size: 128},
	// Up to 128 bytes, though 32 is also common.
	{Name: "mips64", Size: 128, GoArch: []string{"mips64", "mips64le", "mips64p32", "mips64p32le"}},
	{Name: "mips64r6", Size: 128},
	{Name: "nvptx64", Size: 128},
	{Name: "powerpc", Size: 128, GoArch: []string{"ppc"}},
	{Name: "powerpc64", Size: 128, GoArch: []string{"ppc64", "ppc64le"}},
	// Most modern CPUs running wasm have 128-byte lines.
	{Name: "wasm32", Size: 128, GoArch: []string{"wasm"}},
	{Name: "wasm64", Size: 128},
	{Name: "x86_64", Size: 128, GoArch: []string{"amd64", "amd64p32"}},

	{Name: "s390x", Size: 256, GoArch: []string{"s390x"}},
}

// DefaultFamilies names the families known to use Default. They are listed
// for documentation; Lookup does not consult them.
var DefaultFamilies = []Family{
	{Name: "bpf", Size: Default},
	{Name: "csky", Size: Default},
	{Name: "loongarch64", Size: Default, GoArch: []string{"loong64"}},
	{Name: "sparc64", Size: Default, GoArch: []string{"sparc64"}},
	{Name: "x86", Size: Default, GoArch: []string{"386"}},
}

// KnownGoArch is the GOARCH list accepted by the go toolchain's build
// constraints.
var KnownGoArch = []string{
	"386", "amd64", "amd64p32", "arm", "armbe", "arm64", "arm64be",
	"loong64", "mips", "mipsle", "mips64", "mips64le", "mips64p32",
	"mips64p32le", "ppc", "ppc64", "ppc64le", "riscv", "riscv64",
	"s390", "s390x", "sparc", "sparc64", "wasm",
}

// Lookup returns the cache-line size for goarch, or Default when goarch is
// not listed in Table.
func Lookup(goarch string) uintptr {
	for i := range Table {
		if slices.Contains(Table[i].GoArch, goarch) {
			return Table[i].Size
		}
	}
	return Default
}

// FamilyOf returns the family goarch belongs to. ok is false for
// architectures that fall back to Default without a documented family.
func FamilyOf(goarch string) (f Family, ok bool) {
	for _, fams := range [][]Family{Table, DefaultFamilies} {
		for i := range fams {
			if slices.Contains(fams[i].GoArch, goarch) {
				return fams[i], true
			}
		}
	}
	return Family{Name: goarch, Size: Default}, false
}

// Sizes returns the distinct line sizes of Table plus Default, ascending.
func Sizes() []uintptr {
	sizes := []uintptr{Default}
	for i := range Table {
		if !slices.Contains(sizes, Table[i].Size) {
			sizes = append(sizes, Table[i].Size)
		}
	}
	slices.Sort(sizes)
	return sizes
}

// Group is the set of GOARCH values sharing one line size.
type Group struct {
	Size   uintptr
	GoArch []string
}

// Groups returns the non-default sizes of Table that have at least one
// GOARCH, ascending, each with its sorted GOARCH list.
func Groups() []Group {
	var groups []Group
	for _, size := range Sizes() {
		if size == Default {
			continue
		}
		var g Group
		for i := range Table {
			if Table[i].Size == size {
				g.GoArch = append(g.GoArch, Table[i].GoArch...)
			}
		}
		if len(g.GoArch) == 0 {
			continue
		}
		g.Size = size
		slices.Sort(g.GoArch)
		groups = append(groups, g)
	}
	return groups
}

// Validate reports whether Table and DefaultFamilies are usable for code
// generation.
func Validate() error {
	return validate(Table, DefaultFamilies)
}

func validate(table, defaults []Family) error {
	seen := make(map[string]string)
	for _, fams := range [][]Family{table, defaults} {
		for _, f := range fams {
			if !ValidSize(f.Size) {
				return fmt.Errorf("%w: %s=%d", ErrInvalidSize, f.Name, f.Size)
			}
			for _, a := range f.GoArch {
				if prev, ok := seen[a]; ok {
					return fmt.Errorf("%w: %s in %s and %s", ErrDuplicateArch, a, prev, f.Name)
				}
				seen[a] = f.Name
			}
		}
	}
	for _, f := range defaults {
		if f.Size != Default {
			return fmt.Errorf("%w: default family %s=%d", ErrInvalidSize, f.Name, f.Size)
		}
	}
	return nil
}

// ValidSize reports whether n is a power of two within [MinSize, MaxSize].
//
//go:nosplit
func ValidSize(n uintptr) bool {
	return n >= MinSize && n <= MaxSize && n&(n-1) == 0
}

// SystemLineSize returns the padding size golang.org/x/sys/cpu uses for the
// build's GOARCH, or Default where that is zero (wasm). It is reported for
// comparison only and never selects the padding of a guarded value.
func SystemLineSize() uintptr {
	if n := unsafe.Sizeof(cpu.CacheLinePad{}); n > 0 {
		return n
	}
	return Default
}
