package arch

import (
	"errors"
	"runtime"
	"slices"
	"testing"
)

func TestLookup(t *testing.T) {
	cases := []struct {
		goarch string
		want   uintptr
	}{
		{"arm", 32},
		{"armbe", 32},
		{"mips", 32},
		{"mipsle", 32},
		{"riscv", 32},
		{"riscv64", 32},
		{"sparc", 32},
		{"arm64", 128},
		{"arm64be", 128},
		{"mips64", 128},
		{"mips64le", 128},
		{"mips64p32", 128},
		{"mips64p32le", 128},
		{"ppc", 128},
		{"ppc64", 128},
		{"ppc64le", 128},
		{"wasm", 128},
		{"amd64", 128},
		{"amd64p32", 128},
		{"s390x", 256},
		{"386", 64},
		{"loong64", 64},
		{"sparc64", 64},
		{"s390", 64},
		{"", 64},
		{"vax", 64},
	}
	for _, c := range cases {
		if got := Lookup(c.goarch); got != c.want {
			t.Fatalf("Lookup(%q) = %d, want %d", c.goarch, got, c.want)
		}
	}
	t.Logf("GOARCH=%s line size: %d", runtime.GOARCH, Lookup(runtime.GOARCH))
}

func TestTableRows(t *testing.T) {
	rows := map[uintptr][]string{
		8:   {"msp430"},
		16:  {"m68k"},
		32:  {"arm", "avr", "hexagon", "mips", "mips32r6", "riscv32", "riscv64", "sparc", "xtensa"},
		128: {"aarch64", "amdgpu", "arm64ec", "mips64", "mips64r6", "nvptx64", "powerpc", "powerpc64", "wasm32", "wasm64", "x86_64"},
		256: {"s390x"},
	}
	got := make(map[uintptr][]string)
	for _, f := range Table {
		got[f.Size] = append(got[f.Size], f.Name)
	}
	for size, names := range rows {
		if !slices.Equal(got[size], names) {
			t.Fatalf("size %d: families = %v, want %v", size, got[size], names)
		}
	}
	if len(got) != len(rows) {
		t.Fatalf("table has %d sizes, want %d", len(got), len(rows))
	}
}

func TestDefaultFamilies(t *testing.T) {
	for _, name := range []string{"bpf", "csky", "loongarch64", "sparc64", "x86"} {
		idx := slices.IndexFunc(DefaultFamilies, func(f Family) bool { return f.Name == name })
		if idx < 0 {
			t.Fatalf("default family %s missing", name)
		}
		for _, a := range DefaultFamilies[idx].GoArch {
			if Lookup(a) != Default {
				t.Fatalf("Lookup(%q) = %d, want default %d", a, Lookup(a), Default)
			}
		}
	}
}

func TestFamilyOf(t *testing.T) {
	f, ok := FamilyOf("amd64")
	if !ok || f.Name != "x86_64" || f.Size != 128 {
		t.Fatalf("FamilyOf(amd64) = %+v, %v", f, ok)
	}
	f, ok = FamilyOf("386")
	if !ok || f.Name != "x86" || f.Size != Default {
		t.Fatalf("FamilyOf(386) = %+v, %v", f, ok)
	}
	f, ok = FamilyOf("s390")
	if ok || f.Size != Default {
		t.Fatalf("FamilyOf(s390) = %+v, %v", f, ok)
	}
}

func TestSizesAndGroups(t *testing.T) {
	if got, want := Sizes(), []uintptr{8, 16, 32, 64, 128, 256}; !slices.Equal(got, want) {
		t.Fatalf("Sizes() = %v, want %v", got, want)
	}
	groups := Groups()
	want := []Group{
		{32, []string{"arm", "armbe", "mips", "mipsle", "riscv", "riscv64", "sparc"}},
		{128, []string{"amd64", "amd64p32", "arm64", "arm64be", "mips64", "mips64le", "mips64p32", "mips64p32le", "ppc", "ppc64", "ppc64le", "wasm"}},
		{256, []string{"s390x"}},
	}
	if len(groups) != len(want) {
		t.Fatalf("Groups() = %v, want %v", groups, want)
	}
	for i := range want {
		if groups[i].Size != want[i].Size || !slices.Equal(groups[i].GoArch, want[i].GoArch) {
			t.Fatalf("group %d = %v, want %v", i, groups[i], want[i])
		}
	}
}

func TestEveryTableArchIsKnown(t *testing.T) {
	for _, fams := range [][]Family{Table, DefaultFamilies} {
		for _, f := range fams {
			for _, a := range f.GoArch {
				if !slices.Contains(KnownGoArch, a) {
					t.Fatalf("%s lists unknown GOARCH %q", f.Name, a)
				}
			}
		}
	}
}

func TestValidate(t *testing.T) {
	if err := Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}

	dup := []Family{
		{Name: "a", Size: 32, GoArch: []string{"arm"}},
		{Name: "b", Size: 128, GoArch: []string{"arm"}},
	}
	if err := validate(dup, nil); !errors.Is(err, ErrDuplicateArch) {
		t.Fatalf("duplicate: err = %v, want %v", err, ErrDuplicateArch)
	}

	for _, size := range []uintptr{0, 4, 48, 8192} {
		bad := []Family{{Name: "x", Size: size}}
		if err := validate(bad, nil); !errors.Is(err, ErrInvalidSize) {
			t.Fatalf("size %d: err = %v, want %v", size, err, ErrInvalidSize)
		}
	}

	badDefault := []Family{{Name: "x86", Size: 32}}
	if err := validate(nil, badDefault); !errors.Is(err, ErrInvalidSize) {
		t.Fatalf("default size: err = %v, want %v", err, ErrInvalidSize)
	}
}

func TestValidSize(t *testing.T) {
	for n := uintptr(0); n <= 8192; n++ {
		want := n == 8 || n == 16 || n == 32 || n == 64 || n == 128 ||
			n == 256 || n == 512 || n == 1024 || n == 2048 || n == 4096
		if got := ValidSize(n); got != want {
			t.Fatalf("ValidSize(%d) = %v, want %v", n, got, want)
		}
	}
}

func TestSystemLineSize(t *testing.T) {
	size := SystemLineSize()
	t.Logf("x/sys/cpu line size: %d, table: %d", size, Lookup(runtime.GOARCH))
	if !ValidSize(size) {
		t.Fatalf("SystemLineSize() = %d, want a power of two in [%d, %d]", size, MinSize, MaxSize)
	}
	if runtime.GOARCH == "wasm" && size != Default {
		t.Fatalf("SystemLineSize() on wasm = %d, want %d", size, Default)
	}
}
