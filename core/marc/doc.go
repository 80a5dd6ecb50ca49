// Package marc decodes MARCXML bibliographic records.
//
// Catalog APIs embed the MARC record of a bib as an XML string. This package
// turns that string into a small field/subfield model that the bib package
// queries by tag, indicator and subfield code.
package marc
