// Package fetch retrieves tag pages over HTTP.
//
// A Fetcher performs a single GET per call, applies the configured user
// agent, site headers and cookie, waits on a per-authority Throttle, and
// returns the parsed HTML document together with the final URL after
// redirects. Non-success responses are reported as *StatusError so callers
// can tell a missing page apart from other failures.
//
// NewHTTPClient builds the underlying *http.Client, optionally routing every
// connection through a SOCKS5 proxy.
package fetch
