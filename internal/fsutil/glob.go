// Package fsutil provides source-tree matching and a guarded writer for the
// output tree. All paths handed to and returned from this package are
// relative and use forward slashes; the afero.Fs decides what they are
// relative to.
package fsutil

import (
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/gobwas/glob"
	"github.com/spf13/afero"

	"github.com/sitepipe/sitepipe/internal/errors"
)

// Matcher is a compiled source glob. It understands "*" (within one path
// segment), "**" (any number of segments, including none), "?" and
// "{a,b}" alternation.
type Matcher struct {
	pattern string
	globs   []glob.Glob
}

// Compile parses pattern into a Matcher.
func Compile(pattern string) (*Matcher, error) {
	pattern = strings.TrimPrefix(path.Clean(filepath.ToSlash(pattern)), "./")
	m := &Matcher{pattern: pattern}
	for _, p := range expandDoublestar(pattern) {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid glob %q: %w", pattern, err)
		}
		m.globs = append(m.globs, g)
	}
	return m, nil
}

// Pattern returns the pattern the Matcher was compiled from.
func (m *Matcher) Pattern() string {
	return m.pattern
}

// String implements fmt.Stringer.
func (m *Matcher) String() string {
	return m.pattern
}

// Match reports whether the relative path rel matches.
func (m *Matcher) Match(rel string) bool {
	rel = strings.TrimPrefix(filepath.ToSlash(rel), "./")
	for _, g := range m.globs {
		if g.Match(rel) {
			return true
		}
	}
	return false
}

// expandDoublestar returns pattern plus every variant with one or more
// "**/" segments removed, so that "a/**/b" also matches "a/b".
func expandDoublestar(pattern string) []string {
	i := strings.Index(pattern, "**/")
	if i < 0 {
		return []string{pattern}
	}
	head, tail := pattern[:i], pattern[i+3:]
	var out []string
	for _, rest := range expandDoublestar(tail) {
		out = append(out, head+"**/"+rest, head+rest)
	}
	return out
}

// Glob walks root on fsys and returns the regular files whose path relative
// to root matches pattern, sorted. A missing root yields no matches.
func Glob(fsys afero.Fs, root, pattern string) ([]string, error) {
	m, err := Compile(pattern)
	if err != nil {
		return nil, err
	}
	return m.Find(fsys, root)
}

// Find walks root on fsys and returns every regular file matching m.
func (m *Matcher) Find(fsys afero.Fs, root string) ([]string, error) {
	if ok, err := afero.DirExists(fsys, root); err != nil {
		return nil, errors.NewFilesystemError("stat", root, err)
	} else if !ok {
		return nil, nil
	}

	var matches []string
	err := afero.Walk(fsys, root, func(p string, info fs.FileInfo, err error) error {
		if err != nil {
			return errors.NewFilesystemError("walk", p, err)
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return errors.NewFilesystemError("walk", p, err)
		}
		rel = filepath.ToSlash(rel)
		if m.Match(rel) {
			matches = append(matches, rel)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.Sort(matches)
	return matches, nil
}

// GlobRequired is Glob for mandatory inputs: zero matches is a
// MissingInputError.
func GlobRequired(fsys afero.Fs, root, pattern string) ([]string, error) {
	matches, err := Glob(fsys, root, pattern)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, errors.NewMissingInputError(pattern)
	}
	return matches, nil
}
