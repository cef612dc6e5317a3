// Package assets implements the leaf build tasks: each one reads a slice of
// the source tree, hands it to a converter and writes the result into the
// output tree under the same relative path (or a documented rename).
//
// Every task returns the output paths it wrote. A pattern that matches
// nothing is not a failure, except for the stylesheet entry point.
package assets

import (
	"context"
	"path"
	"path/filepath"
	"runtime"
	"slices"

	"github.com/sourcegraph/conc/pool"
	"github.com/spf13/afero"

	"github.com/sitepipe/sitepipe/internal/config"
	"github.com/sitepipe/sitepipe/internal/convert"
	"github.com/sitepipe/sitepipe/internal/errors"
	"github.com/sitepipe/sitepipe/internal/fsutil"
	"github.com/sitepipe/sitepipe/internal/logging"
)

// Task names.
const (
	NameClean          = "clean"
	NameCopy           = "copy"
	NameStyles         = "styles"
	NameHTML           = "html"
	NameSVG            = "svg"
	NameSprite         = "sprite"
	NameImagesCopy     = "images:copy"
	NameImagesOptimize = "images:optimize"
	NameWebP           = "webp"
)

// Source globs, relative to the source root.
const (
	GlobFonts   = "fonts/**/*.{woff2,woff}"
	GlobHTML    = "*.html"
	GlobStyles  = "less/**/*.less"
	GlobRaster  = "img/**/*.{png,jpg}"
	GlobVectors = "img/**/*.svg"
	GlobIcons   = "img/*.svg"
)

// SpriteName is the output path of the assembled sprite.
const SpriteName = "img/sprite.svg"

// Env is what every leaf task needs: where to read, where to write and
// which converters to call.
type Env struct {
	Fs     afero.Fs
	Source string
	Out    *fsutil.Output
	Tools  *convert.Toolchain
	Config *config.Config
	Logger *logging.Logger
}

// NewEnv resolves the source and output trees of cfg against baseDir.
func NewEnv(cfg *config.Config, baseDir string, fsys afero.Fs, tools *convert.Toolchain, logger *logging.Logger) *Env {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Env{
		Fs:     fsys,
		Source: cfg.Paths.ResolveSource(baseDir),
		Out:    fsutil.NewOutput(fsys, cfg.Paths.ResolveOutput(baseDir)),
		Tools:  tools,
		Config: cfg,
		Logger: logger,
	}
}

// sourcePath returns the absolute path of a source-relative name.
func (e *Env) sourcePath(rel string) string {
	return filepath.Join(e.Source, filepath.FromSlash(rel))
}

// read loads a source-relative file.
func (e *Env) read(rel string) ([]byte, error) {
	data, err := afero.ReadFile(e.Fs, e.sourcePath(rel))
	if err != nil {
		return nil, errors.NewFilesystemError("read", path.Join(filepath.ToSlash(e.Source), rel), err)
	}
	return data, nil
}

// transform is applied to one matched source file. It returns the output
// path and bytes to write.
type transform func(ctx context.Context, rel string, data []byte) (string, []byte, error)

// eachFile runs fn over every file matching pattern, writes what fn returns
// and reports the written paths sorted. Files are processed concurrently;
// the first failure cancels the rest.
func (e *Env) eachFile(ctx context.Context, pattern string, fn transform) ([]string, error) {
	matches, err := fsutil.Glob(e.Fs, e.Source, pattern)
	if err != nil {
		return nil, err
	}
	return e.convertAll(ctx, matches, fn)
}

// convertAll is eachFile over an explicit list of source-relative names.
func (e *Env) convertAll(ctx context.Context, matches []string, fn transform) ([]string, error) {
	if len(matches) == 0 {
		return nil, nil
	}

	p := pool.NewWithResults[string]().
		WithContext(ctx).
		WithFirstError().
		WithCancelOnError().
		WithMaxGoroutines(runtime.GOMAXPROCS(0))
	for _, rel := range matches {
		p.Go(func(ctx context.Context) (string, error) {
			data, err := e.read(rel)
			if err != nil {
				return "", err
			}
			out, converted, err := fn(ctx, rel, data)
			if err != nil {
				return "", err
			}
			if err := e.Out.WriteFile(out, converted); err != nil {
				return "", err
			}
			return out, nil
		})
	}
	written, err := p.Wait()
	if err != nil {
		return nil, err
	}
	slices.Sort(written)
	return written, nil
}

// identity writes the source file unchanged under the same path.
func identity(_ context.Context, rel string, data []byte) (string, []byte, error) {
	return rel, data, nil
}
