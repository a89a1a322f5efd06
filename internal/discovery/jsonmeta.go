package discovery

import (
	"encoding/json"
	"fmt"
)

// JSON client metadata keys read by parseJSONMetadata.
const (
	keyClientID   = "client_id"
	keyClientName = "client_name"
	keyLogoURI    = "logo_uri"
	keyClientURI  = "client_uri"
)

// parseJSONMetadata decodes a JSON client metadata document into p. A body that is not a
// non-empty object fails with ErrEmptyJSONDocument and leaves p untouched. A document
// without a string client_id is kept in p.json and fails with ErrMissingClientID.
func (p *pass) parseJSONMetadata(body []byte) error {
	var decoded any
	if err := json.Unmarshal(body, &decoded); err != nil {
		return fmt.Errorf("%w: %w", ErrEmptyJSONDocument, err)
	}
	doc, ok := decoded.(map[string]any)
	if !ok || len(doc) == 0 {
		return ErrEmptyJSONDocument
	}
	p.json = doc

	clientID, ok := stringKey(doc, keyClientID)
	if !ok {
		return ErrMissingClientID
	}
	// The document's own identifier replaces the one we were given.
	p.clientID = clientID
	if name, ok := stringKey(doc, keyClientName); ok {
		p.clientName = name
	}
	if logo, ok := stringKey(doc, keyLogoURI); ok {
		p.clientIcon = logo
	}
	if uri, ok := stringKey(doc, keyClientURI); ok {
		p.clientURI = uri
	}
	return nil
}

func stringKey(doc map[string]any, key string) (string, bool) {
	raw, ok := doc[key]
	if !ok {
		return "", false
	}
	s, ok := raw.(string)
	return s, ok
}
