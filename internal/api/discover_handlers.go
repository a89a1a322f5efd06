package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/indieauth-client-discovery/internal/discovery"
	"github.com/JakeFAU/indieauth-client-discovery/internal/logging"
)

// OutcomeHeader carries discovery.Kind of the pass diagnostic. The body is the Result
// regardless of outcome.
const OutcomeHeader = "X-Discovery-Outcome"

const maxRequestBody = 64 << 10

type discoverRequest struct {
	ClientID string `json:"client_id"`
}

// discoverQuery handles GET /v1/clients/discover?client_id=.
func (s *Server) discoverQuery(w http.ResponseWriter, r *http.Request) {
	clientID := strings.TrimSpace(r.URL.Query().Get("client_id"))
	if clientID == "" {
		writeError(w, http.StatusBadRequest, "client_id is required")
		return
	}
	s.discover(w, r, clientID)
}

// discoverBody handles POST /v1/clients/discover with {"client_id": "..."}.
func (s *Server) discoverBody(w http.ResponseWriter, r *http.Request) {
	var req discoverRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	clientID := strings.TrimSpace(req.ClientID)
	if clientID == "" {
		writeError(w, http.StatusBadRequest, "client_id is required")
		return
	}
	s.discover(w, r, clientID)
}

func (s *Server) discover(w http.ResponseWriter, r *http.Request, clientID string) {
	start := time.Now()
	out := s.discoverer.Discover(r.Context(), clientID)
	elapsed := time.Since(start)
	kind := discovery.Kind(out.Err)

	if s.recorder != nil {
		// Audit writes outlive a client that hung up after the pass finished.
		s.recorder.Record(context.WithoutCancel(r.Context()), clientID, out, elapsed)
	}

	logging.WithRequest(s.logger, RequestIDFromContext(r.Context()), clientID).Debug("Discovery served",
		zap.String("format", string(out.Format)),
		zap.String("outcome", kind),
		zap.Duration("duration", elapsed),
	)
	w.Header().Set(OutcomeHeader, kind)
	writeJSON(w, http.StatusOK, out.Result)
}
