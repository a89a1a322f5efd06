package discovery

// Result is the metadata discovered for one client identifier. It is built once by a
// discovery pass and must be treated as read-only by consumers. Only ClientID carries
// protocol meaning; ClientName, ClientIcon and ClientURI are unverified display values.
type Result struct {
	ClientID   string             `json:"client_id"`
	ClientName string             `json:"client_name"`
	ClientIcon string             `json:"client_icon"`
	ClientURI  string             `json:"client_uri"`
	Rels       map[string]Rel     `json:"rels"`
	MF2        map[string][]Value `json:"mf2"`
	HTML       map[string]string  `json:"html"`
	JSON       map[string]any     `json:"json"`
}

// Value is a microformats property value or relation entry. It is either Text or
// Structured; no other implementations exist.
type Value interface {
	isValue()
}

// Text is a plain string value.
type Text string

func (Text) isValue() {}

// Structured is a value with named fields, e.g. an image with {"value", "alt"} or an
// icon descriptor with {"url"} or {"src"}.
type Structured map[string]string

func (Structured) isValue() {}

// TextOf returns the string carried by v: the string itself for Text, the "value"
// field for Structured.
func TextOf(v Value) string {
	switch val := v.(type) {
	case Text:
		return string(val)
	case Structured:
		return val["value"]
	default:
		return ""
	}
}

// Field returns the named field of a Structured value. Text values have no fields.
func Field(v Value, name string) (string, bool) {
	s, ok := v.(Structured)
	if !ok {
		return "", false
	}
	out, ok := s[name]
	return out, ok
}

// Rel is one entry of the relation mapping: either an ordered RelList or a single
// keyed RelObject.
type Rel interface {
	isRel()
}

// RelList is the usual shape: every link carrying the relation, in document order.
type RelList []Value

func (RelList) isRel() {}

// RelObject is a single keyed structure supplied instead of a list.
type RelObject map[string]string

func (RelObject) isRel() {}

// Format names the branch a discovery pass took after fetching.
type Format string

// Formats reported on an Outcome.
const (
	FormatNone    Format = "none"
	FormatJSON    Format = "json"
	FormatHTML    Format = "html"
	FormatUnknown Format = "unknown"
)

// Outcome pairs the always-present Result with the diagnostic that stopped the pass, if any.
type Outcome struct {
	Result Result
	Format Format
	// StatusCode is the HTTP status of the fetch, zero when no response was received.
	StatusCode int
	Err        error
}

// Response is what a Fetcher hands back for a successful (2xx) GET.
type Response struct {
	URL         string
	StatusCode  int
	ContentType string
	Body        []byte
}

// Document is the microformats parse of an HTML page.
type Document struct {
	Rels  map[string]Rel
	Items []Item
}

// Item is one top-level microformats item.
type Item struct {
	Type       []string
	Properties map[string][]Value
}

// HasType reports whether the item carries the given type marker.
func (i Item) HasType(name string) bool {
	for _, t := range i.Type {
		if t == name {
			return true
		}
	}
	return false
}
