// Package api hosts the HTTP server, middleware, and REST handlers used by the
// authorization layer to look up client display metadata. Notable routes:
//   - GET /healthz / readyz for Kubernetes liveness and readiness checks.
//   - GET /metrics for Prometheus scraping.
//   - GET and POST /v1/clients/discover to run one discovery pass.
package api
