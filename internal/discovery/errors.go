package discovery

import (
	"errors"
	"fmt"
)

// Diagnostics that end a discovery pass early. None of them reach the caller as a failure.
var (
	// ErrHostRejected indicates the identifier's host is not eligible for fetching.
	ErrHostRejected = errors.New("client host rejected")

	// ErrInvalidClientID indicates the identifier is not a URL with a host.
	ErrInvalidClientID = errors.New("invalid client identifier")

	// ErrEmptyJSONDocument indicates the JSON body is not a non-empty object.
	ErrEmptyJSONDocument = errors.New("discovery returned an empty JSON document")

	// ErrMissingClientID indicates the JSON metadata document has no client_id.
	ErrMissingClientID = errors.New("no client_id found in JSON client metadata")
)

// FetchStatusError is returned by a Fetcher when the server answered with a non-2xx status.
type FetchStatusError struct {
	URL  string
	Code int
}

func (e *FetchStatusError) Error() string {
	return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.Code)
}

// FetchTransportError is returned by a Fetcher when no usable response was received.
type FetchTransportError struct {
	URL string
	Err error
}

func (e *FetchTransportError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchTransportError) Unwrap() error {
	return e.Err
}

// Kind maps a diagnostic to a stable label for logs, metrics and audit rows.
func Kind(err error) string {
	var (
		statusErr    *FetchStatusError
		transportErr *FetchTransportError
	)
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrHostRejected):
		return "host_rejected"
	case errors.Is(err, ErrInvalidClientID):
		return "invalid_client_id"
	case errors.As(err, &statusErr):
		return "fetch_status"
	case errors.As(err, &transportErr):
		return "fetch_transport"
	case errors.Is(err, ErrEmptyJSONDocument):
		return "empty_json"
	case errors.Is(err, ErrMissingClientID):
		return "missing_client_id"
	default:
		return "error"
	}
}
