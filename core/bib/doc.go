// Package bib models a catalog bibliographic record and extracts the data
// the cover workflow needs from it.
//
// # Record Parsing
//
// Parse decodes the embedded MARCXML body and resolves the consortium (CZ)
// and network (NZ) zone identifiers from linked_record_id, which the catalog
// may send as a single object or as a list.
//
// # Identifiers
//
// Identifiers collects the record id, ISBNs (020 $a), ISSNs (022 $a) and
// EANs (024 $a with first indicator 3). ISBN and EAN values are normalized
// to 13 digits and deduplicated; invalid values are dropped.
//
// # Cover Annotations
//
// ExtractCovers reads the cover fields (921). Fields whose source subfield
// ($2) is the control source "cvr" hold active covers encoded as
// "(source)code"; any other source lists available covers.
//
// Tags, subfield codes and reserved source names live in Schema so they can
// be changed through configuration.
package bib
