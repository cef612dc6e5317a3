package fsutil

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/sitepipe/sitepipe/internal/errors"
)

// Output is the build output tree. Every write goes through Resolve, so a
// relative path that would escape the root is rejected with
// errors.ErrOutsideOutput.
type Output struct {
	fs   afero.Fs
	root string
}

// NewOutput returns an Output rooted at root on fsys.
func NewOutput(fsys afero.Fs, root string) *Output {
	return &Output{fs: fsys, root: filepath.Clean(root)}
}

// Fs returns the underlying filesystem.
func (o *Output) Fs() afero.Fs { return o.fs }

// Root returns the output root.
func (o *Output) Root() string { return o.root }

// Resolve maps rel onto the output root.
func (o *Output) Resolve(rel string) (string, error) {
	slashed := filepath.ToSlash(rel)
	if slashed == "" || strings.HasPrefix(slashed, "/") || filepath.IsAbs(rel) {
		return "", fmt.Errorf("%q: %w", rel, errors.ErrOutsideOutput)
	}
	clean := path.Clean(slashed)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("%q: %w", rel, errors.ErrOutsideOutput)
	}
	return filepath.Join(o.root, filepath.FromSlash(clean)), nil
}

// Clean deletes the output tree and recreates it empty. A missing tree is
// not an error.
func (o *Output) Clean() error {
	if err := o.fs.RemoveAll(o.root); err != nil {
		return errors.NewFilesystemError("remove", o.root, err)
	}
	if err := o.fs.MkdirAll(o.root, 0o755); err != nil {
		return errors.NewFilesystemError("mkdir", o.root, err)
	}
	return nil
}

// WriteFile writes data to rel, creating parent directories. The content is
// written to a sibling temp file first and renamed into place, so a failed
// write never leaves a truncated artifact.
func (o *Output) WriteFile(rel string, data []byte) error {
	dst, err := o.Resolve(rel)
	if err != nil {
		return err
	}
	if err := o.fs.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return errors.NewFilesystemError("mkdir", filepath.Dir(dst), err)
	}

	tmp := dst + ".tmp-" + uuid.NewString()[:8]
	if err := afero.WriteFile(o.fs, tmp, data, 0o644); err != nil {
		_ = o.fs.Remove(tmp)
		return errors.NewFilesystemError("write", dst, err)
	}
	if err := o.fs.Rename(tmp, dst); err != nil {
		_ = o.fs.Remove(tmp)
		return errors.NewFilesystemError("rename", dst, err)
	}
	return nil
}

// WriteAll writes every file in files. Nothing is written unless every
// path resolves, so a bad name cannot leave a partial set behind.
func (o *Output) WriteAll(files map[string][]byte) ([]string, error) {
	names := make([]string, 0, len(files))
	for name := range files {
		if _, err := o.Resolve(name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	slices.Sort(names)

	for i, name := range names {
		if err := o.WriteFile(name, files[name]); err != nil {
			for _, done := range names[:i] {
				_ = o.Remove(done)
			}
			return nil, err
		}
	}
	return names, nil
}

// Remove deletes rel from the output tree. A missing file is not an error.
func (o *Output) Remove(rel string) error {
	dst, err := o.Resolve(rel)
	if err != nil {
		return err
	}
	if err := o.fs.Remove(dst); err != nil && !os.IsNotExist(err) {
		return errors.NewFilesystemError("remove", dst, err)
	}
	return nil
}
