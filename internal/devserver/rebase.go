package devserver

import (
	"path"
	"regexp"
	"strings"
)

var cssURLRe = regexp.MustCompile(`url\(\s*(?:"([^"]*)"|'([^']*)'|([^)"'\s]*))\s*\)`)

// RebaseURLs rewrites relative url() references in css against the
// directory of assetPath, a path relative to the output root. Injected
// stylesheets live in a <style> element, so their references would
// otherwise resolve against the page instead of the stylesheet's own
// location. Absolute, scheme-qualified, data and fragment-only references
// are left alone.
func RebaseURLs(assetPath string, css []byte) []byte {
	base := path.Dir("/" + strings.TrimPrefix(assetPath, "/"))
	return cssURLRe.ReplaceAllFunc(css, func(match []byte) []byte {
		m := cssURLRe.FindSubmatch(match)
		quote, ref := "", ""
		switch {
		case m[1] != nil:
			quote, ref = `"`, string(m[1])
		case m[2] != nil:
			quote, ref = "'", string(m[2])
		default:
			ref = string(m[3])
		}
		if !isRelativeRef(ref) {
			return match
		}
		return []byte("url(" + quote + resolveRef(base, ref) + quote + ")")
	})
}

func isRelativeRef(ref string) bool {
	if ref == "" || strings.HasPrefix(ref, "/") || strings.HasPrefix(ref, "#") {
		return false
	}
	// A colon before the first slash is a scheme: data:, http:, blob:.
	if i := strings.IndexByte(ref, ':'); i >= 0 {
		if j := strings.IndexByte(ref, '/'); j < 0 || i < j {
			return false
		}
	}
	return true
}

// resolveRef joins ref onto base, keeping any query or fragment intact.
func resolveRef(base, ref string) string {
	suffix := ""
	if i := strings.IndexAny(ref, "?#"); i >= 0 {
		ref, suffix = ref[:i], ref[i:]
	}
	resolved := path.Join(base, ref)
	if strings.HasSuffix(ref, "/") && resolved != "/" {
		resolved += "/"
	}
	return resolved + suffix
}
