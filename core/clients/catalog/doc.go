// Package catalog talks to the bibliographic store: it fetches records,
// writes active-cover annotations through the record service and reads the
// institution code from the general configuration.
//
// Fetch is guarded by the retry policy. Writes are never retried.
package catalog
