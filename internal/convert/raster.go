package convert

import (
	"bytes"
	"image"
	"image/jpeg"
	"image/png"
	"path"
	"strings"

	"github.com/sitepipe/sitepipe/internal/errors"
)

// RasterOptimizer re-encodes PNG and JPEG images in-process. The smaller of
// the original and re-encoded bytes is kept.
type RasterOptimizer struct {
	// JPEGQuality is the re-encode quality, 1-100.
	JPEGQuality int
}

// NewRasterOptimizer returns a RasterOptimizer with the given JPEG quality.
func NewRasterOptimizer(jpegQuality int) *RasterOptimizer {
	if jpegQuality <= 0 || jpegQuality > 100 {
		jpegQuality = jpeg.DefaultQuality
	}
	return &RasterOptimizer{JPEGQuality: jpegQuality}
}

// Optimize returns the optimized form of data. The format is chosen from
// name's extension.
func (r *RasterOptimizer) Optimize(name string, data []byte) ([]byte, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.NewSourceFormatError("cannot decode image", err).WithPath(name).WithTool("raster")
	}

	var buf bytes.Buffer
	switch strings.ToLower(path.Ext(name)) {
	case ".png":
		enc := png.Encoder{CompressionLevel: png.BestCompression}
		err = enc.Encode(&buf, img)
	case ".jpg", ".jpeg":
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: r.JPEGQuality})
	default:
		return data, nil
	}
	if err != nil {
		return nil, errors.NewSourceFormatError("cannot encode "+format, err).WithPath(name).WithTool("raster")
	}

	if buf.Len() >= len(data) {
		return data, nil
	}
	return buf.Bytes(), nil
}
