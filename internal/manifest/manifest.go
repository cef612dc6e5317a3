// Package manifest fingerprints an output tree so two builds can be compared
// for byte-identical output.
package manifest

import (
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"maps"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/afero"
	"github.com/zeebo/blake3"

	"github.com/sitepipe/sitepipe/internal/errors"
)

// Entry is one file in the tree.
type Entry struct {
	Path string `json:"path" yaml:"path"`
	Size int64  `json:"size" yaml:"size"`
	Hash string `json:"hash" yaml:"hash"`
}

// Manifest maps output-relative paths to content hashes. Modification times
// are not part of it.
type Manifest struct {
	entries map[string]Entry
}

// Compute hashes every regular file under root on fsys.
func Compute(fsys afero.Fs, root string) (*Manifest, error) {
	m := &Manifest{entries: make(map[string]Entry)}
	if ok, err := afero.DirExists(fsys, root); err != nil {
		return nil, errors.NewFilesystemError("stat", root, err)
	} else if !ok {
		return m, nil
	}

	err := afero.Walk(fsys, root, func(p string, info fs.FileInfo, err error) error {
		if err != nil {
			return errors.NewFilesystemError("walk", p, err)
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return errors.NewFilesystemError("walk", p, err)
		}
		sum, size, err := hashFile(fsys, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		m.entries[rel] = Entry{Path: rel, Size: size, Hash: sum}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

func hashFile(fsys afero.Fs, p string) (string, int64, error) {
	f, err := fsys.Open(p)
	if err != nil {
		return "", 0, errors.NewFilesystemError("open", p, err)
	}
	defer func() { _ = f.Close() }()

	h := blake3.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return "", 0, errors.NewFilesystemError("read", p, err)
	}
	return hex.EncodeToString(h.Sum(nil)), n, nil
}

// Len returns the number of files.
func (m *Manifest) Len() int {
	return len(m.entries)
}

// Paths returns the file paths, sorted.
func (m *Manifest) Paths() []string {
	return slices.Sorted(maps.Keys(m.entries))
}

// Entries returns the entries sorted by path.
func (m *Manifest) Entries() []Entry {
	out := make([]Entry, 0, len(m.entries))
	for _, p := range m.Paths() {
		out = append(out, m.entries[p])
	}
	return out
}

// Lookup returns the entry for path.
func (m *Manifest) Lookup(path string) (Entry, bool) {
	e, ok := m.entries[path]
	return e, ok
}

// Digest is a single hash over the sorted (path, hash) pairs.
func (m *Manifest) Digest() string {
	var b strings.Builder
	for _, e := range m.Entries() {
		fmt.Fprintf(&b, "%s\x00%s\n", e.Path, e.Hash)
	}
	sum := blake3.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

// Equal reports whether both manifests list the same files with the same
// content.
func (m *Manifest) Equal(other *Manifest) bool {
	return maps.Equal(m.entries, other.entries)
}

// Diff returns the paths that differ between m and other: present in only
// one of them or hashed differently.
func (m *Manifest) Diff(other *Manifest) []string {
	var out []string
	for p, e := range m.entries {
		if o, ok := other.entries[p]; !ok || o.Hash != e.Hash {
			out = append(out, p)
		}
	}
	for p := range other.entries {
		if _, ok := m.entries[p]; !ok {
			out = append(out, p)
		}
	}
	slices.Sort(out)
	return out
}
