package bib

import (
	"cover-manager/core/identifiers"
)

// IdentifierSet holds the standard identifiers of a record. Empty kinds are
// omitted when encoded, which is the shape the resolver search expects.
type IdentifierSet struct {
	MMSID string   `json:"mmsid,omitempty"`
	ISBN  []string `json:"isbn,omitempty"`
	ISSN  []string `json:"issn,omitempty"`
	EAN   []string `json:"ean,omitempty"`
}

// IsEmpty reports whether no identifier of any kind is present.
func (s IdentifierSet) IsEmpty() bool {
	return s.MMSID == "" && len(s.ISBN) == 0 && len(s.ISSN) == 0 && len(s.EAN) == 0
}

// Identifiers extracts the standard identifiers of a parsed record.
// ISBN and EAN values that fail normalization are dropped.
func Identifiers(rec *Record, schema Schema) IdentifierSet {
	ids := IdentifierSet{MMSID: rec.RecordID()}
	if rec.Parsed == nil {
		return ids
	}

	for _, raw := range rec.Parsed.SubfieldValues(schema.ISBNTag, schema.ISBNCode) {
		if isbn, err := identifiers.ToISBN13(raw); err == nil {
			ids.ISBN = appendUnique(ids.ISBN, isbn)
		}
	}

	for _, issn := range rec.Parsed.SubfieldValues(schema.ISSNTag, schema.ISSNCode) {
		if schema.DedupeISSN {
			ids.ISSN = appendUnique(ids.ISSN, issn)
		} else {
			ids.ISSN = append(ids.ISSN, issn)
		}
	}

	for _, field := range rec.Parsed.Fields(schema.EANTag) {
		if field.Ind1 != schema.EANInd1 {
			continue
		}
		for _, raw := range field.Values(schema.EANCode) {
			if ean, err := identifiers.ToISBN13(raw); err == nil {
				ids.EAN = appendUnique(ids.EAN, ean)
			}
		}
	}

	return ids
}

func appendUnique(values []string, value string) []string {
	for _, v := range values {
		if v == value {
			return values
		}
	}
	return append(values, value)
}
