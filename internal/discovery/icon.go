package discovery

import (
	"net/url"
	"strings"
)

// iconRelPriority is the order in which relation keys are consulted for an icon. "icons"
// never survives the rel filter but is honored for callers passing an unfiltered mapping.
var iconRelPriority = []string{"icons", "mask-icon", "apple-touch-icon", "icon"}

// ResolveIcon picks one icon reference from rels. The first key in iconRelPriority with a
// non-empty entry wins; later keys are never consulted even if the winner yields nothing.
func ResolveIcon(rels map[string]Rel) string {
	if len(rels) == 0 {
		return ""
	}
	for _, key := range iconRelPriority {
		rel, ok := rels[key]
		if !ok || relEmpty(rel) {
			continue
		}
		return iconFromRel(rel)
	}
	return ""
}

func relEmpty(rel Rel) bool {
	switch r := rel.(type) {
	case RelList:
		return len(r) == 0
	case RelObject:
		return len(r) == 0
	default:
		return true
	}
}

// iconFromRel applies the candidate shape rules: a keyed structure's url, then the first
// list element as a plain string, its url field, then its src field.
func iconFromRel(rel Rel) string {
	switch r := rel.(type) {
	case RelObject:
		return r["url"]
	case RelList:
		first := r[0]
		if text, ok := first.(Text); ok {
			return string(text)
		}
		if u, ok := Field(first, "url"); ok {
			return u
		}
		if src, ok := Field(first, "src"); ok {
			return src
		}
	}
	return ""
}

// absoluteURL resolves ref against base using RFC 3986 reference resolution. A ref with
// malformed percent escapes has its stray '%' signs escaped first, the way browsers treat
// them. The result is either an absolute URL or empty.
func absoluteURL(ref string, base *url.URL) string {
	if ref == "" {
		return ""
	}
	parsed, err := url.Parse(ref)
	if err != nil {
		if parsed, err = url.Parse(escapeStrayPercents(ref)); err != nil {
			return ""
		}
	}
	if base != nil {
		parsed = base.ResolveReference(parsed)
	}
	if !parsed.IsAbs() {
		return ""
	}
	return parsed.String()
}

// escapeStrayPercents rewrites every '%' not followed by two hex digits as "%25".
func escapeStrayPercents(ref string) string {
	var b strings.Builder
	b.Grow(len(ref))
	for i := 0; i < len(ref); i++ {
		if ref[i] == '%' && (i+2 >= len(ref) || !isHex(ref[i+1]) || !isHex(ref[i+2])) {
			b.WriteString("%25")
			continue
		}
		b.WriteByte(ref[i])
	}
	return b.String()
}

func isHex(c byte) bool {
	switch {
	case '0' <= c && c <= '9', 'a' <= c && c <= 'f', 'A' <= c && c <= 'F':
		return true
	default:
		return false
	}
}
