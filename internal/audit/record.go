// Package audit records the outcome of every discovery pass to write-only sinks.
package audit

import (
	"strconv"
	"time"

	"github.com/JakeFAU/indieauth-client-discovery/internal/discovery"
)

// Record is one audit row describing a completed discovery pass. Rows are never read back
// to answer later discoveries.
type Record struct {
	ID               string           `json:"id"`
	ClientID         string           `json:"client_id"`
	ResolvedClientID string           `json:"resolved_client_id"`
	Format           string           `json:"format"`
	Outcome          string           `json:"outcome"`
	StatusCode       int              `json:"status_code"`
	DurationMs       int64            `json:"duration_ms"`
	DiscoveredAt     time.Time        `json:"discovered_at"`
	Result           discovery.Result `json:"result"`
}

// Attributes are attached to published messages so subscribers can filter without decoding.
func (r Record) Attributes() map[string]string {
	return map[string]string{
		"outcome":     r.Outcome,
		"format":      r.Format,
		"status_code": strconv.Itoa(r.StatusCode),
	}
}

func newRecord(id, clientID string, out discovery.Outcome, elapsed time.Duration, at time.Time) Record {
	return Record{
		ID:               id,
		ClientID:         clientID,
		ResolvedClientID: out.Result.ClientID,
		Format:           string(out.Format),
		Outcome:          discovery.Kind(out.Err),
		StatusCode:       out.StatusCode,
		DurationMs:       elapsed.Milliseconds(),
		DiscoveredAt:     at,
		Result:           out.Result,
	}
}
