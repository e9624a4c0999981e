// Command cacheguardgen writes the build-tagged cache-line size constants
// of internal/opt from the architecture table.
//
// Usage:
//
//	go run ./cmd/cacheguardgen                  # regenerate internal/opt
//	go run ./cmd/cacheguardgen -check           # fail if internal/opt is stale
//	go run ./cmd/cacheguardgen -dist -v         # also report GOARCHes of the
//	                                            # installed toolchain that fall
//	                                            # back to the default size
package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/llxisdsh/cacheguard/internal/arch"
	"github.com/llxisdsh/cacheguard/internal/gen"
)

type options struct {
	dir       string
	pkg       string
	mod       string
	tagPrefix string
	dist      bool
	check     bool
}

func main() {
	var (
		o       options
		verbose bool
	)
	flag.StringVar(&o.dir, "dir", gen.DefaultDir, "Output directory")
	flag.StringVar(&o.pkg, "pkg", gen.DefaultPackage, "Package name of the generated files")
	flag.StringVar(&o.mod, "mod", "go.mod", "go.mod whose go directive decides on +build lines")
	flag.StringVar(&o.tagPrefix, "tag-prefix", gen.DefaultTagPrefix, "Prefix of the override build tags")
	flag.BoolVar(&o.dist, "dist", false, "Check `go tool dist list` for GOARCHes without a rule")
	flag.BoolVar(&o.check, "check", false, "Do not write; exit 1 if generated files are stale")
	flag.BoolVar(&verbose, "v", false, "Verbose logging")
	flag.Parse()

	log, err := newLogger(verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	gen.SetLogger(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err = run(ctx, log, o)
	stop()
	if err != nil {
		log.Error("cacheguardgen failed", zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}
	_ = log.Sync()
}

func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.DisableStacktrace = true
	cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if verbose {
		cfg.Level.SetLevel(zapcore.DebugLevel)
	}
	return cfg.Build()
}

func run(ctx context.Context, log *zap.Logger, o options) error {
	version, err := gen.GoVersion(o.mod)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		log.Warn("go.mod not found, assuming a modern toolchain", zap.String("mod", o.mod))
	case err != nil:
		return err
	}

	cfg := gen.NewConfig(
		gen.WithDir(o.dir),
		gen.WithPackage(o.pkg),
		gen.WithTagPrefix(o.tagPrefix),
		gen.WithGoVersion(version),
		gen.WithLogger(log),
	)

	log.Debug("host",
		zap.String("goarch", runtime.GOARCH),
		zap.Uintptr("line_size", arch.Lookup(runtime.GOARCH)),
		zap.Uintptr("x_sys_cpu", arch.SystemLineSize()),
	)

	if o.dist {
		if err := checkDist(ctx, log); err != nil {
			return err
		}
	}

	files, err := gen.Render(cfg)
	if err != nil {
		return err
	}

	if o.check {
		stale, err := gen.Stale(cfg, files)
		if err != nil {
			return err
		}
		if len(stale) > 0 {
			return fmt.Errorf("%w in %s: %s", gen.ErrStale, cfg.Dir(), strings.Join(stale, ", "))
		}
		log.Info("up to date", zap.String("dir", cfg.Dir()), zap.Int("files", len(files)))
		return nil
	}

	n, err := gen.Write(ctx, cfg, files)
	if err != nil {
		return err
	}
	log.Info("done", zap.String("dir", cfg.Dir()), zap.Int("changed", n))
	return nil
}

// checkDist warns about toolchain GOARCHes that have no documented family
// and therefore get arch.Default.
func checkDist(ctx context.Context, log *zap.Logger) error {
	out, err := exec.CommandContext(ctx, "go", "tool", "dist", "list").Output()
	if err != nil {
		return fmt.Errorf("go tool dist list: %w", err)
	}
	archs, err := gen.ParseDistList(bytes.NewReader(out))
	if err != nil {
		return err
	}
	for _, a := range gen.Unmapped(archs) {
		log.Warn("no cache line rule, defaulting",
			zap.String("goarch", a),
			zap.Uintptr("size", arch.Default),
		)
	}
	log.Debug("checked toolchain architectures", zap.Int("goarchs", len(archs)))
	return nil
}
