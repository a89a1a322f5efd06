// Package uuid mints audit record identifiers.
package uuid

import (
	"fmt"

	"github.com/google/uuid"
)

// Generator creates UUIDv7 strings, which sort by creation time.
type Generator struct{}

// NewUUIDGenerator creates a new Generator.
func NewUUIDGenerator() *Generator {
	return &Generator{}
}

// NewID returns a UUIDv7 string.
func (Generator) NewID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generate uuid7: %w", err)
	}
	return id.String(), nil
}

// Validate reports an error unless id is the canonical form of a UUIDv7.
func Validate(id string) error {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("parse record id %q: %w", id, err)
	}
	if parsed.Version() != 7 {
		return fmt.Errorf("record id %q is version %d, want 7", id, parsed.Version())
	}
	if parsed.String() != id {
		return fmt.Errorf("record id %q is not in canonical form", id)
	}
	return nil
}
