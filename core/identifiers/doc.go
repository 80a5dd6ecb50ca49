// Package identifiers normalizes standard book identifiers.
//
// ISBN-10 values are converted to their 13-digit (978-prefixed) form so that
// every ISBN and EAN handled by the catalog core has a single canonical shape.
//
// # Usage
//
//	isbn, err := identifiers.ToISBN13("0-316-76948-7")
//	if errors.Is(err, identifiers.ErrInvalidIdentifier) {
//	    // drop the value
//	}
package identifiers
