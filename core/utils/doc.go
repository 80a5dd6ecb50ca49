// Package utils holds small conversion helpers for loosely typed JSON
// payloads returned by the catalog and resolver services.
package utils
