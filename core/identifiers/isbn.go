package identifiers

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidIdentifier is returned when a value cannot be normalized to a
// 13-digit identifier. It is distinct from an empty result.
var ErrInvalidIdentifier = errors.New("invalid identifier")

// ISBN10Prefix is the EAN prefix used when converting ISBN-10 to ISBN-13.
const ISBN10Prefix = "978"

// Clean trims the value and keeps only digits and the X checksum letter.
func Clean(value string) string {
	value = strings.TrimSpace(value)

	var b strings.Builder
	for _, r := range value {
		if isASCIIDigit(r) || r == 'X' || r == 'x' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ToISBN13 converts a raw ISBN-10 or ISBN-13 string to its 13-digit form.
// A 10 character value is treated as ISBN-10: its trailing checksum character
// (digit or X) is discarded and a new EAN-13 checksum is computed over
// "978" + the 9-digit body. Anything that does not end up as exactly 13
// digits yields ErrInvalidIdentifier.
func ToISBN13(raw string) (string, error) {
	isbn := Clean(raw)

	if len(isbn) == 10 {
		body := ISBN10Prefix + isbn[:9]
		if !allDigits(body) {
			return "", fmt.Errorf("%w: %q has a non-digit ISBN-10 body", ErrInvalidIdentifier, raw)
		}
		isbn = body + string(rune('0'+Checksum13(body)))
	}

	if len(isbn) != 13 || !allDigits(isbn) {
		return "", fmt.Errorf("%w: %q is not a 13 digit identifier", ErrInvalidIdentifier, raw)
	}

	return isbn, nil
}

// Checksum13 computes the EAN-13 check digit for a 12-digit prefix.
// Digits at even positions weigh 1, odd positions weigh 3.
func Checksum13(prefix string) int {
	sum := 0
	for i, r := range prefix {
		digit := int(r - '0')
		if i%2 == 0 {
			sum += digit
		} else {
			sum += digit * 3
		}
	}
	return (10 - sum%10) % 10
}

// ValidateISBN13 reports whether a 13-digit value carries a correct checksum.
func ValidateISBN13(isbn string) bool {
	if len(isbn) != 13 || !allDigits(isbn) {
		return false
	}
	return Checksum13(isbn[:12]) == int(isbn[12]-'0')
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !isASCIIDigit(r) {
			return false
		}
	}
	return true
}

// unicode.IsDigit accepts non-ASCII digits, which would corrupt the checksum.
func isASCIIDigit(r rune) bool {
	return r >= '0' && r <= '9'
}
