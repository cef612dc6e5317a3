package convert

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"path"
	"strings"

	"github.com/sitepipe/sitepipe/internal/errors"
)

// Icon is one vector file to be placed in a sprite.
type Icon struct {
	// Name is the source path; its base name without extension becomes the
	// symbol id.
	Name string
	Data []byte
}

// ID returns the symbol id for the icon.
func (i Icon) ID() string {
	base := path.Base(i.Name)
	return strings.TrimSuffix(base, path.Ext(base))
}

// svgDoc captures the parts of an icon that survive into a <symbol>.
type svgDoc struct {
	XMLName             xml.Name
	ViewBox             string `xml:"viewBox,attr"`
	PreserveAspectRatio string `xml:"preserveAspectRatio,attr"`
	Inner               []byte `xml:",innerxml"`
}

// AssembleSprite combines icons into a single inline SVG document with one
// <symbol id="..."> per icon, in the order given. The result carries no XML
// declaration or doctype so it can be inlined into markup.
func AssembleSprite(icons []Icon) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`<svg xmlns="http://www.w3.org/2000/svg">`)

	seen := make(map[string]string, len(icons))
	for _, icon := range icons {
		id := icon.ID()
		if prev, ok := seen[id]; ok {
			return nil, errors.NewSourceFormatError(
				fmt.Sprintf("duplicate symbol id %q (also from %s)", id, prev), nil,
			).WithPath(icon.Name).WithTool("sprite")
		}
		seen[id] = icon.Name

		var doc svgDoc
		if err := xml.Unmarshal(icon.Data, &doc); err != nil {
			return nil, errors.NewSourceFormatError("invalid svg", err).WithPath(icon.Name).WithTool("sprite")
		}
		if doc.XMLName.Local != "svg" {
			return nil, errors.NewSourceFormatError(
				fmt.Sprintf("root element is <%s>, want <svg>", doc.XMLName.Local), nil,
			).WithPath(icon.Name).WithTool("sprite")
		}

		buf.WriteString(`<symbol id="`)
		_ = xml.EscapeText(&buf, []byte(id))
		buf.WriteByte('"')
		if doc.ViewBox != "" {
			buf.WriteString(` viewBox="`)
			_ = xml.EscapeText(&buf, []byte(doc.ViewBox))
			buf.WriteByte('"')
		}
		if doc.PreserveAspectRatio != "" {
			buf.WriteString(` preserveAspectRatio="`)
			_ = xml.EscapeText(&buf, []byte(doc.PreserveAspectRatio))
			buf.WriteByte('"')
		}
		buf.WriteByte('>')
		buf.Write(bytes.TrimSpace(doc.Inner))
		buf.WriteString(`</symbol>`)
	}

	buf.WriteString(`</svg>`)
	return buf.Bytes(), nil
}
