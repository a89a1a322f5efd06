// Package publisher holds the message encoding shared by the event publishers.
package publisher

import (
	"encoding/json"
	"fmt"
	"maps"
)

// Attributer is implemented by payloads that carry message attributes.
type Attributer interface {
	Attributes() map[string]string
}

// Encode marshals payload to JSON and collects its attributes, if any.
func Encode(payload any) ([]byte, map[string]string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal payload: %w", err)
	}
	attrs := map[string]string{}
	if a, ok := payload.(Attributer); ok {
		maps.Copy(attrs, a.Attributes())
	}
	return data, attrs, nil
}
