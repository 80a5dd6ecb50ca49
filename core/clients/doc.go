// Package clients holds the plumbing shared by the outbound service clients:
// the HTTP client, base URL handling and the translation of failed responses
// into retry.StatusError values.
//
// The service clients themselves live in the catalog, resolver and loader
// subpackages.
package clients
