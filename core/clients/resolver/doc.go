// Package resolver queries the cover resolver service for the covers known
// for a set of identifiers and fetches individual thumbnails.
package resolver
