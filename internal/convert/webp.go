package convert

import (
	"context"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sitepipe/sitepipe/internal/errors"
)

// WebPEncoder converts raster images to WebP.
type WebPEncoder interface {
	Encode(ctx context.Context, name string, data []byte) ([]byte, error)
}

// Cwebp encodes WebP with the cwebp executable.
type Cwebp struct {
	Bin     string
	Quality int
}

// NewCwebp returns a Cwebp using bin, falling back to "cwebp".
func NewCwebp(bin string, quality int) *Cwebp {
	if bin == "" {
		bin = "cwebp"
	}
	return &Cwebp{Bin: bin, Quality: quality}
}

// Encode writes data to a scratch file, runs cwebp on it and returns the
// encoded bytes.
func (c *Cwebp) Encode(ctx context.Context, name string, data []byte) ([]byte, error) {
	scratch, err := os.MkdirTemp("", "sitepipe-cwebp-")
	if err != nil {
		return nil, errors.NewFilesystemError("mkdir", os.TempDir(), err)
	}
	defer func() { _ = os.RemoveAll(scratch) }()

	in := filepath.Join(scratch, "in"+strings.ToLower(path.Ext(name)))
	out := filepath.Join(scratch, "out.webp")
	if err := os.WriteFile(in, data, 0o600); err != nil {
		return nil, errors.NewFilesystemError("write", in, err)
	}

	args := []string{"-quiet", "-q", strconv.Itoa(c.Quality), in, "-o", out}
	_, stderr, err := run(ctx, invocation{tool: c.Bin, args: args})
	if err != nil {
		if errors.Is(err, errors.ErrConverterUnavailable) || ctx.Err() != nil {
			return nil, err
		}
		msg := firstLine(stderr)
		if msg == "" {
			msg = "encoding failed"
		}
		return nil, errors.NewSourceFormatError(msg, err).WithPath(name).WithTool("cwebp")
	}

	encoded, err := os.ReadFile(out)
	if err != nil {
		return nil, errors.NewFilesystemError("read", out, err)
	}
	return encoded, nil
}

// WebPName maps a raster path to its WebP sibling, e.g. img/a.png to
// img/a.webp.
func WebPName(name string) string {
	return strings.TrimSuffix(name, path.Ext(name)) + ".webp"
}
