package gen

import (
	"strconv"

	"go.uber.org/zap"
)

// ============================================================================
// Configuration
// ============================================================================

// Defaults used when the corresponding option is not given.
const (
	DefaultDir       = "internal/opt"
	DefaultPackage   = "opt"
	DefaultTagPrefix = "cacheguard_linesize_"
)

// Config holds the generator settings.
type Config struct {
	// dir is the directory the cachelinesize files are written to.
	dir string

	// pkg is the package clause of the generated files.
	pkg string

	// tagPrefix names the override build tags: tagPrefix+"128" forces a
	// 128-byte line regardless of GOARCH.
	tagPrefix string

	// goVersion is the module's go directive, e.g. "1.24.0". Empty means
	// a toolchain that only needs //go:build lines.
	goVersion string

	// logger overrides the package logger when non-nil.
	logger *zap.Logger
}

// NewConfig returns a Config with defaults applied, then options.
func NewConfig(options ...func(*Config)) *Config {
	c := &Config{
		dir:       DefaultDir,
		pkg:       DefaultPackage,
		tagPrefix: DefaultTagPrefix,
	}
	for _, o := range options {
		o(c)
	}
	return c
}

// WithDir sets the output directory.
func WithDir(dir string) func(*Config) {
	return func(c *Config) {
		if dir != "" {
			c.dir = dir
		}
	}
}

// WithPackage sets the package name of the generated files.
func WithPackage(pkg string) func(*Config) {
	return func(c *Config) {
		if pkg != "" {
			c.pkg = pkg
		}
	}
}

// WithTagPrefix sets the prefix of the override build tags.
func WithTagPrefix(prefix string) func(*Config) {
	return func(c *Config) {
		if prefix != "" {
			c.tagPrefix = prefix
		}
	}
}

// WithGoVersion sets the go version of the target module, as read by
// GoVersion. Versions before 1.17 get legacy "// +build" lines.
func WithGoVersion(version string) func(*Config) {
	return func(c *Config) {
		c.goVersion = version
	}
}

// WithLogger sets the logger used by this Config.
func WithLogger(l *zap.Logger) func(*Config) {
	return func(c *Config) {
		c.logger = l
	}
}

// Dir returns the output directory.
func (c *Config) Dir() string {
	return c.dir
}

// OverrideTag returns the build tag that forces the given line size.
func (c *Config) OverrideTag(size uintptr) string {
	return c.tagPrefix + strconv.FormatUint(uint64(size), 10)
}

func (c *Config) log() *zap.Logger {
	if c.logger != nil {
		return c.logger
	}
	return Logger()
}
