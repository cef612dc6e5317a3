package convert

import (
	"github.com/sitepipe/sitepipe/internal/config"
)

// Toolchain is the set of converters leaf tasks use.
type Toolchain struct {
	Styles StyleCompiler
	Minify *Minifier
	Raster *RasterOptimizer
	WebP   WebPEncoder
}

// FromConfig builds the production toolchain.
func FromConfig(cfg *config.Config) *Toolchain {
	return &Toolchain{
		Styles: NewLessc(cfg.Converters.Lessc, cfg.Converters.LesscArgs...),
		Minify: NewMinifier(),
		Raster: NewRasterOptimizer(cfg.Images.JPEGQuality),
		WebP:   NewCwebp(cfg.Converters.Cwebp, cfg.Images.WebPQuality),
	}
}
