package convert

import (
	"fmt"
	"sync"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"
	"github.com/tdewolff/minify/v2/svg"

	"github.com/sitepipe/sitepipe/internal/errors"
)

// Media types understood by Minifier.
const (
	MediaHTML = "text/html"
	MediaSVG  = "image/svg+xml"
	MediaCSS  = "text/css"
)

// Minifier collapses whitespace in markup and optimizes vector data.
type Minifier struct {
	once sync.Once
	m    *minify.M
}

// NewMinifier returns a Minifier for HTML, SVG and CSS.
func NewMinifier() *Minifier {
	return &Minifier{}
}

func (mf *Minifier) init() {
	mf.once.Do(func() {
		m := minify.New()
		m.Add(MediaHTML, &html.Minifier{
			KeepDocumentTags: true,
			KeepEndTags:      true,
			KeepQuotes:       true,
		})
		m.AddFunc(MediaSVG, svg.Minify)
		m.AddFunc(MediaCSS, css.Minify)
		mf.m = m
	})
}

// Minify returns the minified form of data. name is used for diagnostics.
func (mf *Minifier) Minify(mediatype, name string, data []byte) ([]byte, error) {
	mf.init()
	out, err := mf.m.Bytes(mediatype, data)
	if err != nil {
		if errors.Is(err, minify.ErrNotExist) {
			return nil, fmt.Errorf("minify %s: %w", mediatype, err)
		}
		return nil, errors.NewSourceFormatError("cannot minify", err).WithPath(name).WithTool("minify")
	}
	return out, nil
}

// HTML minifies a markup document.
func (mf *Minifier) HTML(name string, data []byte) ([]byte, error) {
	return mf.Minify(MediaHTML, name, data)
}

// SVG optimizes a vector document.
func (mf *Minifier) SVG(name string, data []byte) ([]byte, error) {
	return mf.Minify(MediaSVG, name, data)
}

// CSS minifies a stylesheet. Comments are dropped, including any
// sourceMappingURL.
func (mf *Minifier) CSS(name string, data []byte) ([]byte, error) {
	return mf.Minify(MediaCSS, name, data)
}
