// Package client talks to the store-lit HTTP API on behalf of the CLI.
//
// HTTPClient is a resty-based implementation of Client. It sends the session
// cookie obtained from Verify with every request and keeps it in a
// SessionStore between runs.
//
// Transport failures are reported as ErrUnavailable. Non-2xx replies are
// *APIError values that unwrap to ErrUnauthorized, ErrForbidden or
// ErrNotFound where the status matches.
package client
