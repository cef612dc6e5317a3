// Package testutil provides testing utilities for sitepipe tests.
package testutil

import (
	"context"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/afero"

	"github.com/sitepipe/sitepipe/internal/convert"
	"github.com/sitepipe/sitepipe/internal/errors"
)

// SetupProject creates a temporary project directory with a source/ tree
// holding files (relative path -> content). Returns the project root. The
// directory is cleaned up when the test completes.
func SetupProject(t *testing.T, files map[string]string) string {
	t.Helper()

	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "source"), 0755); err != nil {
		t.Fatalf("failed to create source dir: %v", err)
	}
	WriteTree(t, afero.NewOsFs(), filepath.Join(dir, "source"), files)
	return dir
}

// WriteTree writes files under root on fsys, creating directories.
func WriteTree(t *testing.T, fsys afero.Fs, root string, files map[string]string) {
	t.Helper()

	for path, content := range files {
		fullPath := filepath.Join(root, filepath.FromSlash(path))
		if err := fsys.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
			t.Fatalf("failed to create directory for %s: %v", path, err)
		}
		if err := afero.WriteFile(fsys, fullPath, []byte(content), 0644); err != nil {
			t.Fatalf("failed to write file %s: %v", path, err)
		}
	}
}

// ListTree returns every regular file under root, relative with forward
// slashes and sorted. A missing root yields nil.
func ListTree(t *testing.T, fsys afero.Fs, root string) []string {
	t.Helper()

	var files []string
	err := afero.Walk(fsys, root, func(p string, info fs.FileInfo, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if info.Mode().IsRegular() {
			rel, _ := filepath.Rel(root, p)
			files = append(files, filepath.ToSlash(rel))
		}
		return nil
	})
	if err != nil {
		t.Fatalf("failed to list %s: %v", root, err)
	}
	slices.Sort(files)
	return files
}

// FakeStyles is a StyleCompiler that accepts any input with balanced
// braces and rejects the rest with a SourceFormatError.
type FakeStyles struct {
	mu    sync.Mutex
	calls int
	last  convert.StyleOptions
}

// Compile implements convert.StyleCompiler.
func (f *FakeStyles) Compile(_ context.Context, src convert.StyleSource, opts convert.StyleOptions) (convert.Stylesheet, error) {
	f.mu.Lock()
	f.calls++
	f.last = opts
	f.mu.Unlock()

	content := string(src.Content)
	if strings.Count(content, "{") != strings.Count(content, "}") {
		return convert.Stylesheet{}, errors.NewSourceFormatError("unbalanced braces", nil).
			WithPath(src.Name).WithTool("fake-lessc")
	}

	sheet := convert.Stylesheet{CSS: []byte("/* compiled */\n" + content)}
	if opts.Compress {
		sheet.CSS = []byte(strings.Join(strings.Fields(content), ""))
	}
	if opts.SourceMap {
		sheet.CSS = append(sheet.CSS, []byte("\n/*# sourceMappingURL="+opts.MapURL+" */")...)
		sheet.Map = []byte(`{"version":3,"sources":["` + src.Name + `"],"mappings":""}`)
	}
	return sheet, nil
}

// Calls returns the number of Compile calls.
func (f *FakeStyles) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// LastOptions returns the options of the most recent Compile call.
func (f *FakeStyles) LastOptions() convert.StyleOptions {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.last
}

// FakeWebP is a WebPEncoder that prefixes its input with "WEBP".
type FakeWebP struct{}

// Encode implements convert.WebPEncoder.
func (FakeWebP) Encode(_ context.Context, _ string, data []byte) ([]byte, error) {
	return append([]byte("WEBP"), data...), nil
}

// Toolchain returns a toolchain with fake external converters and the real
// in-process ones.
func Toolchain() *convert.Toolchain {
	return &convert.Toolchain{
		Styles: &FakeStyles{},
		Minify: convert.NewMinifier(),
		Raster: convert.NewRasterOptimizer(75),
		WebP:   FakeWebP{},
	}
}

// SkipIfNoLessc skips the test if lessc is not available.
func SkipIfNoLessc(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("lessc"); err != nil {
		t.Skip("lessc not available")
	}
}

// SkipIfNoCwebp skips the test if cwebp is not available.
func SkipIfNoCwebp(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("cwebp"); err != nil {
		t.Skip("cwebp not available")
	}
}
