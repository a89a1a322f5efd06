// Package discovery resolves display metadata for an IndieAuth client identifier.
//
// A pass validates the identifier's host, performs one bounded GET, and branches on the
// declared content type:
//   - application/json: the body is a client metadata document (client_id, client_name,
//     logo_uri, client_uri).
//   - text/html: the page is parsed for microformats; the first h-app item supplies name
//     and logo, otherwise the <title> and icon relation links are used.
//
// Every problem along the way is a diagnostic on the returned Outcome. The Result is always
// usable and holds at least the identifier that was asked for.
package discovery
