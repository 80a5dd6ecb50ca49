package bib

import (
	"bytes"
	"errors"
	"fmt"

	"cover-manager/core/marc"
	"cover-manager/core/utils"

	"github.com/segmentio/encoding/json"
)

// Linked record zone types.
const (
	ZoneCZ = "CZ"
	ZoneNZ = "NZ"
)

// LinkedID is an identifier of the same record in another catalog zone.
type LinkedID struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// LinkedIDs decodes linked_record_id, which the catalog sends either as a
// single object or as a list of objects.
type LinkedIDs []LinkedID

// UnmarshalJSON collapses the single-object form into a one element list.
func (l *LinkedIDs) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*l = nil
		return nil
	}

	var raw []map[string]any
	switch data[0] {
	case '[':
		if err := json.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("parsing linked_record_id list: %w", err)
		}
	case '{':
		var single map[string]any
		if err := json.Unmarshal(data, &single); err != nil {
			return fmt.Errorf("parsing linked_record_id object: %w", err)
		}
		raw = []map[string]any{single}
	default:
		return fmt.Errorf("parsing linked_record_id: expected { or [")
	}

	ids := make(LinkedIDs, 0, len(raw))
	for _, entry := range raw {
		if entry == nil {
			continue
		}
		id := LinkedID{}
		if v, ok := entry["type"]; ok && v != nil {
			id.Type = utils.ToString(v)
		}
		if v, ok := entry["value"]; ok && v != nil {
			id.Value = utils.ToString(v)
		}
		ids = append(ids, id)
	}
	*l = ids
	return nil
}

// Record is a bibliographic record snapshot as returned by the catalog.
type Record struct {
	// MMSID is the primary record identifier.
	MMSID string `json:"mms_id"`
	// MMSIDCZ is the consortium zone identifier, empty when not linked.
	MMSIDCZ string `json:"mms_id_CZ,omitempty"`
	// MMSIDNZ is the network zone identifier, empty when not linked.
	MMSIDNZ string `json:"mms_id_NZ,omitempty"`
	// ConsortiumLinked is true when the record has a CZ identifier.
	ConsortiumLinked bool `json:"is_consortium_linked"`

	Title              string `json:"title"`
	Author             string `json:"author,omitempty"`
	PlaceOfPublication string `json:"place_of_publication,omitempty"`
	PublisherConst     string `json:"publisher_const,omitempty"`
	DateOfPublication  string `json:"date_of_publication,omitempty"`

	LinkedRecordID LinkedIDs `json:"linked_record_id,omitempty"`

	// Anies holds the embedded MARCXML body as its first element.
	Anies []string `json:"anies,omitempty"`

	// Parsed is the decoded MARCXML body, set by Parse.
	Parsed *marc.Record `json:"-"`
}

var errNoBody = errors.New("record has no embedded body")

// Decode reads a catalog record from its JSON representation.
func Decode(data []byte) (*Record, error) {
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to decode bib record: %w", err)
	}
	return &rec, nil
}

// LinkedID returns the value of the first linked identifier of the given
// zone type, or an empty string.
func (r *Record) LinkedID(zone string) string {
	for _, id := range r.LinkedRecordID {
		if id.Type == zone {
			return id.Value
		}
	}
	return ""
}

// RecordID returns the identifier used for writes: the NZ id when present,
// otherwise the primary id.
func (r *Record) RecordID() string {
	if r.MMSIDNZ != "" {
		return r.MMSIDNZ
	}
	return r.MMSID
}

// Parse decodes the embedded MARCXML body and recomputes the zone
// identifiers. A record without mms_id takes it from control field 001.
// It may be called again after linked_record_id changes.
func Parse(rec *Record) (*Record, error) {
	if len(rec.Anies) == 0 {
		return nil, &marc.ParseError{Err: errNoBody}
	}

	parsed, err := marc.Parse(rec.Anies[0])
	if err != nil {
		return nil, err
	}

	rec.Parsed = parsed
	if rec.MMSID == "" {
		rec.MMSID = parsed.ControlField("001")
	}
	rec.MMSIDCZ = rec.LinkedID(ZoneCZ)
	rec.ConsortiumLinked = rec.MMSIDCZ != ""
	rec.MMSIDNZ = rec.LinkedID(ZoneNZ)

	return rec, nil
}
