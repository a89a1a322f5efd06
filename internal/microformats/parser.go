// Package microformats adapts willnorris.com/go/microformats to the discovery.MicroformatsParser
// contract.
package microformats

import (
	"bytes"
	"fmt"
	"net/url"

	mf2 "willnorris.com/go/microformats"

	"github.com/JakeFAU/indieauth-client-discovery/internal/discovery"
)

// Parser implements discovery.MicroformatsParser.
type Parser struct{}

// NewParser returns a Parser.
func NewParser() *Parser {
	return &Parser{}
}

// Parse extracts relations and top-level items from body. Relative URLs resolve against base.
func (p *Parser) Parse(body []byte, base *url.URL) (discovery.Document, error) {
	data := mf2.Parse(bytes.NewReader(body), base)
	if data == nil {
		return discovery.Document{}, nil
	}
	return discovery.Document{
		Rels:  convertRels(data.Rels),
		Items: convertItems(data.Items),
	}, nil
}

func convertRels(rels map[string][]string) map[string]discovery.Rel {
	out := make(map[string]discovery.Rel, len(rels))
	for name, urls := range rels {
		list := make(discovery.RelList, 0, len(urls))
		for _, u := range urls {
			list = append(list, discovery.Text(u))
		}
		out[name] = list
	}
	return out
}

func convertItems(items []*mf2.Microformat) []discovery.Item {
	out := make([]discovery.Item, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		out = append(out, discovery.Item{
			Type:       append([]string(nil), item.Type...),
			Properties: convertProperties(item.Properties),
		})
	}
	return out
}

func convertProperties(props map[string][]interface{}) map[string][]discovery.Value {
	out := make(map[string][]discovery.Value, len(props))
	for name, raw := range props {
		values := make([]discovery.Value, 0, len(raw))
		for _, v := range raw {
			if value, ok := convertValue(v); ok {
				values = append(values, value)
			}
		}
		out[name] = values
	}
	return out
}

// convertValue maps the parser's dynamic property shapes onto discovery.Value. Nested items
// keep their plain-text value.
func convertValue(v interface{}) (discovery.Value, bool) {
	switch val := v.(type) {
	case string:
		return discovery.Text(val), true
	case map[string]string:
		return discovery.Structured(val), true
	case map[string]interface{}:
		fields := make(discovery.Structured, len(val))
		for k, field := range val {
			if s, ok := field.(string); ok {
				fields[k] = s
			} else {
				fields[k] = fmt.Sprint(field)
			}
		}
		return fields, true
	case *mf2.Microformat:
		if val == nil {
			return nil, false
		}
		fields := discovery.Structured{"value": val.Value}
		if val.HTML != "" {
			fields["html"] = val.HTML
		}
		return fields, true
	default:
		return nil, false
	}
}
