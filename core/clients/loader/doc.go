// Package loader writes to the cover server: it uploads new cover images and
// deletes existing ones. Both operations address the institution endpoint
// <base>/<tenant>/<institution> and are never retried.
package loader
