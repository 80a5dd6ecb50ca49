package reconcile

import (
	"bytes"
	"strings"

	"cover-manager/core/bib"

	"github.com/segmentio/encoding/json"
)

// CoverRecord is a cover known to the resolver service.
type CoverRecord struct {
	// Source is the cover network holding the image (e.g. "covers").
	Source string `json:"source"`
	// IDType is the identifier type, optionally followed by "/<detail>".
	IDType string `json:"id_type"`
	// IDCode is the identifier value the cover is attached to.
	IDCode string `json:"id_code"`
	// CoverCode is the resolver's own cover id.
	CoverCode string `json:"cover_code"`
	// IsActive marks covers selected for display.
	IsActive bool `json:"is_active"`
	// CoverURL is the thumbnail location, when known.
	CoverURL string `json:"cover_url,omitempty"`
}

// ActiveID returns the code recorded for an active cover: the upper-cased
// id type (text before the first "/") followed by the id code.
func (c CoverRecord) ActiveID() string {
	prefix, _, _ := strings.Cut(c.IDType, "/")
	return strings.ToUpper(prefix) + c.IDCode
}

// LiveCoverSet groups resolver covers by source, keeping first-seen order.
// The zero value is ready to use.
type LiveCoverSet struct {
	sources []string
	covers  map[string][]CoverRecord
}

// Add appends a cover to its source bucket.
func (l *LiveCoverSet) Add(c CoverRecord) {
	if l.covers == nil {
		l.covers = make(map[string][]CoverRecord)
	}
	if _, ok := l.covers[c.Source]; !ok {
		l.sources = append(l.sources, c.Source)
	}
	l.covers[c.Source] = append(l.covers[c.Source], c)
}

// Has reports whether the resolver returned any cover for source.
func (l *LiveCoverSet) Has(source string) bool {
	if l == nil {
		return false
	}
	_, ok := l.covers[source]
	return ok
}

// Sources returns the source names in first-seen order.
func (l *LiveCoverSet) Sources() []string {
	if l == nil {
		return nil
	}
	return l.sources
}

// Covers returns the covers of source.
func (l *LiveCoverSet) Covers(source string) []CoverRecord {
	if l == nil {
		return nil
	}
	return l.covers[source]
}

// Len returns the total number of covers.
func (l *LiveCoverSet) Len() int {
	n := 0
	for _, source := range l.Sources() {
		n += len(l.covers[source])
	}
	return n
}

// MarshalJSON encodes the set as an object keyed by source in source order.
func (l *LiveCoverSet) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, source := range l.Sources() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(source)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(l.covers[source])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// ReasonKind classifies why a record needs an update.
type ReasonKind string

const (
	// ReasonPrimaryRemoved: the primary source is recorded but no longer live.
	ReasonPrimaryRemoved ReasonKind = "primary_removed"
	// ReasonSourceMissing: a live source has no recorded bucket.
	ReasonSourceMissing ReasonKind = "source_missing"
	// ReasonNotRecorded: an active live cover is missing from the record.
	ReasonNotRecorded ReasonKind = "not_recorded"
	// ReasonStale: a recorded cover is no longer active.
	ReasonStale ReasonKind = "stale"
)

// Reason describes one detected drift.
type Reason struct {
	Kind   ReasonKind `json:"kind"`
	Source string     `json:"source"`
	Code   string     `json:"code,omitempty"`
}

func (r Reason) String() string {
	if r.Code == "" {
		return string(r.Kind) + ": " + r.Source
	}
	return string(r.Kind) + ": " + r.Source + "/" + r.Code
}

// Decision is the outcome of comparing live covers with the stored annotation.
type Decision struct {
	// NeedsUpdate is true when the record must be rewritten.
	NeedsUpdate bool `json:"needs_update"`
	// Payload is the full replacement annotation, computed on every pass.
	Payload *bib.CoverIDs `json:"payload"`
	// Reasons lists every drift found.
	Reasons []Reason `json:"reasons"`
}

// Options controls whether a decision may be written back.
type Options struct {
	// DryRun prevents any write if true.
	DryRun bool
	// Confirmed indicates the caller approved the write.
	// If false, nothing is written regardless of DryRun.
	Confirmed bool
	// Current, if set, is checked right before the write. A false result
	// skips it, as the caller no longer wants the outcome.
	Current func() bool
}
