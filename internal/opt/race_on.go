//go:build race

package opt

// Race_ reports whether the race detector is enabled. Allocation counts
// are not stable under it.
const Race_ = true
