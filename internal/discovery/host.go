package discovery

import (
	"fmt"
	"net"
	"net/url"
)

// isLoopbackLiteral reports whether host is one of the IP literals allowed through the
// guard. The comparison is on the literal text, so other spellings of ::1 are rejected.
func isLoopbackLiteral(host string) bool {
	switch host {
	case "127.0.0.1", "::1", "0000:0000:0000:0000:0000:0000:0000:0001":
		return true
	default:
		return false
	}
}

// CheckHost decides whether clientID may be fetched. It returns the parsed URL on success,
// ErrInvalidClientID when there is no host to inspect, and ErrHostRejected when the host
// is an IP literal other than the loopback forms or is exactly "localhost".
func CheckHost(clientID string) (*url.URL, error) {
	u, err := url.Parse(clientID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidClientID, err)
	}
	host := u.Hostname()
	if host == "" {
		return nil, fmt.Errorf("%w: %q has no host", ErrInvalidClientID, clientID)
	}
	if ip := net.ParseIP(host); ip != nil {
		if !isLoopbackLiteral(host) {
			return nil, fmt.Errorf("%w: IP literal %s", ErrHostRejected, host)
		}
	}
	if host == "localhost" {
		return nil, fmt.Errorf("%w: %s", ErrHostRejected, host)
	}
	return u, nil
}
