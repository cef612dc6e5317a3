package convert

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/sitepipe/sitepipe/internal/errors"
)

// StyleSource is a stylesheet entry point handed to a StyleCompiler.
type StyleSource struct {
	// Name is the entry path relative to the source root, for diagnostics.
	Name string
	// Dir is the directory that relative @import statements resolve against.
	Dir string
	// Content is the entry file's bytes.
	Content []byte
}

// Stylesheet is the compiled result.
type Stylesheet struct {
	CSS []byte
	// Map is the source map, nil when source maps are disabled.
	Map []byte
}

// StyleOptions controls a single compilation.
type StyleOptions struct {
	SourceMap bool
	// MapURL is written as the sourceMappingURL comment, usually the map's
	// base name so that it resolves next to the stylesheet.
	MapURL string
	// Compress asks the compiler to emit compressed CSS. The source map, if
	// any, then describes the compressed output.
	Compress bool
}

// StyleCompiler turns a stylesheet source into CSS.
type StyleCompiler interface {
	Compile(ctx context.Context, src StyleSource, opts StyleOptions) (Stylesheet, error)
}

// Lessc compiles LESS with the lessc executable.
type Lessc struct {
	// Bin is the executable name or path.
	Bin string
	// Args are passed before the input, e.g. plugin flags.
	Args []string
}

// NewLessc returns a Lessc using bin, falling back to "lessc".
func NewLessc(bin string, args ...string) *Lessc {
	if bin == "" {
		bin = "lessc"
	}
	return &Lessc{Bin: bin, Args: args}
}

var lessLineRe = regexp.MustCompile(`on line (\d+)`)

// Compile pipes src to lessc on stdin and collects the CSS and map from a
// scratch directory that is removed before returning.
func (l *Lessc) Compile(ctx context.Context, src StyleSource, opts StyleOptions) (Stylesheet, error) {
	scratch, err := os.MkdirTemp("", "sitepipe-lessc-")
	if err != nil {
		return Stylesheet{}, errors.NewFilesystemError("mkdir", os.TempDir(), err)
	}
	defer func() { _ = os.RemoveAll(scratch) }()

	outCSS := filepath.Join(scratch, "out.css")
	args := append([]string{}, l.Args...)
	args = append(args, "--no-color")
	if opts.Compress {
		args = append(args, "--compress")
	}
	if src.Dir != "" {
		args = append(args, "--include-path="+src.Dir)
	}
	if opts.SourceMap {
		args = append(args, "--source-map="+outCSS+".map")
		if opts.MapURL != "" {
			args = append(args, "--source-map-url="+opts.MapURL)
		}
	}
	args = append(args, "-", outCSS)

	_, stderr, err := run(ctx, invocation{tool: l.Bin, args: args, dir: src.Dir, stdin: src.Content})
	if err != nil {
		if errors.Is(err, errors.ErrConverterUnavailable) || ctx.Err() != nil {
			return Stylesheet{}, err
		}
		return Stylesheet{}, lessError(src.Name, stderr, err)
	}

	css, err := os.ReadFile(outCSS)
	if err != nil {
		return Stylesheet{}, errors.NewFilesystemError("read", outCSS, err)
	}
	sheet := Stylesheet{CSS: css}
	if opts.SourceMap {
		sheet.Map, err = os.ReadFile(outCSS + ".map")
		if err != nil {
			return Stylesheet{}, errors.NewFilesystemError("read", outCSS+".map", err)
		}
	}
	return sheet, nil
}

func lessError(name string, stderr []byte, cause error) error {
	msg := firstLine(stderr)
	if msg == "" {
		msg = "compilation failed"
	}
	e := errors.NewSourceFormatError(msg, cause).WithPath(name).WithTool("lessc")
	if m := lessLineRe.FindStringSubmatch(strings.ToLower(string(stderr))); m != nil {
		if line, err := strconv.Atoi(m[1]); err == nil {
			e.WithLine(line)
		}
	}
	return e
}
