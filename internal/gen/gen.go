// Package gen renders the build-tagged cache-line size constants of
// internal/opt from the architecture table in internal/arch.
//
// Every GOARCH group of the table gets one file whose //go:build line
// selects it; a default file covers every other GOARCH; one override file
// per table size is selected by a build tag instead of GOARCH. Exactly one
// file is compiled for any target, so a missing or doubled definition of
// CacheLineSize_ is a compile error rather than a silent fallback.
package gen

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"go/build/constraint"
	"go/format"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/mod/modfile"
	"golang.org/x/mod/semver"
	"golang.org/x/sync/errgroup"

	"github.com/llxisdsh/cacheguard/internal/arch"
)

// ErrStale is returned by the CLI check mode when generated files differ
// from what Render produces.
var ErrStale = errors.New("gen: generated files are stale")

// File is one rendered source file.
type File struct {
	Name string
	Src  []byte
}

const (
	filePrefix  = "cachelinesize_"
	header      = "// Code generated by cacheguardgen. DO NOT EDIT.\n"
	plusBuildGo = "v1.17"
)

// GoVersion returns the go directive of the go.mod file at path, or "" when
// the file has none.
func GoVersion(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read go.mod: %w", err)
	}
	f, err := modfile.ParseLax(path, data, nil)
	if err != nil {
		return "", fmt.Errorf("parse go.mod: %w", err)
	}
	if f.Go == nil {
		return "", nil
	}
	return f.Go.Version, nil
}

// Render produces the cachelinesize files for cfg, sorted by name.
func Render(cfg *Config) ([]File, error) {
	if err := arch.Validate(); err != nil {
		return nil, fmt.Errorf("validate table: %w", err)
	}
	log := cfg.log()
	plusBuild := needsPlusBuild(cfg.goVersion, log)

	sizes := arch.Sizes()
	noOverride := make([]string, 0, len(sizes))
	for _, size := range sizes {
		noOverride = append(noOverride, "!"+cfg.OverrideTag(size))
	}

	var files []File
	var listed []string
	for _, g := range arch.Groups() {
		listed = append(listed, g.GoArch...)
		expr := "(" + strings.Join(g.GoArch, " || ") + ") && " + strings.Join(noOverride, " && ")
		if len(g.GoArch) == 1 {
			expr = g.GoArch[0] + " && " + strings.Join(noOverride, " && ")
		}
		doc := []string{"Families: " + strings.Join(familyNames(arch.Table, g.Size), ", ") + "."}
		f, err := render(cfg, filePrefix+strconv.FormatUint(uint64(g.Size), 10)+".go", expr, g.Size, doc, false, plusBuild)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}

	slices.Sort(listed)
	negated := make([]string, 0, len(listed)+len(noOverride))
	for _, a := range listed {
		negated = append(negated, "!"+a)
	}
	negated = append(negated, noOverride...)
	doc := []string{
		"Default for " + strings.Join(familyNames(arch.DefaultFamilies, arch.Default), ", ") + " and every GOARCH",
		"not listed in a " + filePrefix + "N.go file.",
	}
	f, err := render(cfg, filePrefix+"default.go", strings.Join(negated, " && "), arch.Default, doc, false, plusBuild)
	if err != nil {
		return nil, err
	}
	files = append(files, f)

	for _, size := range sizes {
		tag := cfg.OverrideTag(size)
		doc := []string{"Forced by the " + tag + " build tag."}
		f, err := render(cfg, filePrefix+"force_"+strconv.FormatUint(uint64(size), 10)+".go", tag, size, doc, true, plusBuild)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}

	slices.SortFunc(files, func(a, b File) int { return strings.Compare(a.Name, b.Name) })
	log.Debug("rendered cache line files", zap.Int("files", len(files)), zap.Bool("plus_build", plusBuild))
	return files, nil
}

func render(cfg *Config, name, expr string, size uintptr, doc []string, forced, plusBuild bool) (File, error) {
	x, err := constraint.Parse("//go:build " + expr)
	if err != nil {
		return File{}, fmt.Errorf("%s: build constraint: %w", name, err)
	}

	var b bytes.Buffer
	b.WriteString(header)
	b.WriteString("\n//go:build " + x.String() + "\n")
	if plusBuild {
		lines, err := constraint.PlusBuildLines(x)
		if err != nil {
			return File{}, fmt.Errorf("%s: +build lines: %w", name, err)
		}
		for _, l := range lines {
			b.WriteString(l + "\n")
		}
	}
	fmt.Fprintf(&b, "\npackage %s\n\n", cfg.pkg)
	b.WriteString("// CacheLineSize_ is the cache-line size used to pad guarded values.\n")
	for _, l := range doc {
		b.WriteString("// " + l + "\n")
	}
	fmt.Fprintf(&b, "const CacheLineSize_ uintptr = %d\n\n", size)
	b.WriteString("// LineSizeForced_ reports whether an override build tag selected CacheLineSize_.\n")
	fmt.Fprintf(&b, "const LineSizeForced_ = %t\n", forced)

	src, err := format.Source(b.Bytes())
	if err != nil {
		return File{}, fmt.Errorf("%s: format: %w", name, err)
	}
	return File{Name: name, Src: src}, nil
}

func needsPlusBuild(version string, log *zap.Logger) bool {
	if version == "" {
		return false
	}
	v := "v" + version
	if !semver.IsValid(v) {
		log.Warn("unrecognized go version, emitting //go:build only", zap.String("go", version))
		return false
	}
	return semver.Compare(v, plusBuildGo) < 0
}

func familyNames(fams []arch.Family, size uintptr) []string {
	var names []string
	for _, f := range fams {
		if f.Size == size {
			names = append(names, f.Name)
		}
	}
	return names
}

// Write writes files into cfg's directory, skipping files whose content is
// unchanged and removing stale cachelinesize files. It returns the number
// of files written or removed.
func Write(ctx context.Context, cfg *Config, files []File) (int, error) {
	log := cfg.log()
	if err := os.MkdirAll(cfg.dir, 0o755); err != nil {
		return 0, fmt.Errorf("create %s: %w", cfg.dir, err)
	}

	var changed atomic.Int32
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, f := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			path := filepath.Join(cfg.dir, f.Name)
			old, err := os.ReadFile(path)
			if err == nil && bytes.Equal(old, f.Src) {
				log.Debug("unchanged", zap.String("file", path))
				return nil
			}
			if err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("read %s: %w", path, err)
			}
			if err := os.WriteFile(path, f.Src, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}
			changed.Add(1)
			log.Info("wrote", zap.String("file", path))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return int(changed.Load()), err
	}

	extra, err := orphans(cfg, files)
	if err != nil {
		return int(changed.Load()), err
	}
	for _, name := range extra {
		path := filepath.Join(cfg.dir, name)
		if err := os.Remove(path); err != nil {
			return int(changed.Load()), fmt.Errorf("remove %s: %w", path, err)
		}
		changed.Add(1)
		log.Info("removed", zap.String("file", path))
	}
	return int(changed.Load()), nil
}

// Stale returns the names of files that are missing, differ from their
// rendered content, or are generated files Render no longer produces.
func Stale(cfg *Config, files []File) ([]string, error) {
	var stale []string
	for _, f := range files {
		path := filepath.Join(cfg.dir, f.Name)
		old, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			stale = append(stale, f.Name)
		case err != nil:
			return nil, fmt.Errorf("read %s: %w", path, err)
		case !bytes.Equal(old, f.Src):
			stale = append(stale, f.Name)
		}
	}
	extra, err := orphans(cfg, files)
	if err != nil {
		return nil, err
	}
	stale = append(stale, extra...)
	slices.Sort(stale)
	return stale, nil
}

func orphans(cfg *Config, files []File) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(cfg.dir, filePrefix+"*.go"))
	if err != nil {
		return nil, fmt.Errorf("glob %s: %w", cfg.dir, err)
	}
	var out []string
	for _, m := range matches {
		name := filepath.Base(m)
		if strings.HasSuffix(name, "_test.go") {
			continue
		}
		if !slices.ContainsFunc(files, func(f File) bool { return f.Name == name }) {
			out = append(out, name)
		}
	}
	return out, nil
}

// ParseDistList extracts the sorted, distinct GOARCH values from the output
// of "go tool dist list" (one "goos/goarch" pair per line).
func ParseDistList(r io.Reader) ([]string, error) {
	var archs []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		_, goarch, ok := strings.Cut(line, "/")
		if !ok || goarch == "" {
			continue
		}
		if !slices.Contains(archs, goarch) {
			archs = append(archs, goarch)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read dist list: %w", err)
	}
	slices.Sort(archs)
	return archs, nil
}

// Unmapped returns the GOARCH values that belong to no documented family
// and therefore fall back to arch.Default.
func Unmapped(goarchs []string) []string {
	var out []string
	for _, a := range goarchs {
		if _, ok := arch.FamilyOf(a); !ok {
			out = append(out, a)
		}
	}
	return out
}
