package opt

// CacheLineSize_ must be a power of two in [8, 4096]. Any other value fails
// the build here; two override tags fail it by redeclaring CacheLineSize_.
type (
	_ [CacheLineSize_ - 8]byte
	_ [4096 - CacheLineSize_]byte
	_ [-(CacheLineSize_ & (CacheLineSize_ - 1))]byte
)
