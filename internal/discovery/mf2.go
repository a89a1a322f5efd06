package discovery

import "net/url"

// MicroformatsParser turns an HTML body into a microformats Document whose relative URLs
// are resolved against base.
type MicroformatsParser interface {
	Parse(body []byte, base *url.URL) (Document, error)
}

// iconRels are the relation types kept from the parsed document.
var iconRels = []string{"apple-touch-icon", "icon", "mask-icon"}

// appTypes mark an application item. h-x-app is the pre-standard spelling still served by
// older clients.
var appTypes = []string{"h-app", "h-x-app"}

// extractMicroformats stores the icon relations and the first application item's
// properties on p. It reports whether an application item with properties was found.
func (p *pass) extractMicroformats(doc Document) bool {
	p.rels = filterRels(doc.Rels, iconRels)
	for _, item := range doc.Items {
		if !isApp(item) {
			continue
		}
		p.mf2 = item.Properties
		break
	}
	if len(p.mf2) == 0 {
		return false
	}
	if name := firstValue(p.mf2, "name"); name != nil {
		p.clientName = TextOf(name)
	}
	if logo := firstValue(p.mf2, "logo"); logo != nil {
		p.clientIcon = TextOf(logo)
	}
	return true
}

func isApp(item Item) bool {
	for _, t := range appTypes {
		if item.HasType(t) {
			return true
		}
	}
	return false
}

func firstValue(props map[string][]Value, key string) Value {
	values := props[key]
	if len(values) == 0 {
		return nil
	}
	return values[0]
}

func filterRels(rels map[string]Rel, keep []string) map[string]Rel {
	out := make(map[string]Rel, len(keep))
	for _, key := range keep {
		if rel, ok := rels[key]; ok {
			out[key] = rel
		}
	}
	return out
}
