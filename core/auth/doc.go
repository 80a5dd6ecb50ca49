// Package auth provides the bearer tokens sent to the record service and the
// cover server.
//
// A token is either configured statically (auth.token) or signed locally
// with an HS256 secret (auth.jwt_secret). Signed tokens are cached and
// renewed shortly before they expire, so a session reuses one token for
// every write it performs.
package auth
