package bib

import (
	"bytes"

	"github.com/segmentio/encoding/json"
)

// CoverIDs maps source names to ordered sets of cover codes. Sources and
// codes keep their first-seen order and a code is stored at most once per
// source. The zero value is ready to use.
type CoverIDs struct {
	sources []string
	codes   map[string][]string
}

// NewCoverIDs builds a set from a plain map. Sources are added in the order
// given by order; sources missing from order are ignored.
func NewCoverIDs(order []string, codes map[string][]string) *CoverIDs {
	c := &CoverIDs{}
	for _, source := range order {
		c.Ensure(source)
		for _, code := range codes[source] {
			c.Add(source, code)
		}
	}
	return c
}

// Ensure creates an empty bucket for source if it does not exist yet.
func (c *CoverIDs) Ensure(source string) {
	if c.codes == nil {
		c.codes = make(map[string][]string)
	}
	if _, ok := c.codes[source]; !ok {
		c.sources = append(c.sources, source)
		c.codes[source] = []string{}
	}
}

// Add appends code to the bucket of source. It returns false when the code
// was already present.
func (c *CoverIDs) Add(source, code string) bool {
	c.Ensure(source)
	if c.Contains(source, code) {
		return false
	}
	c.codes[source] = append(c.codes[source], code)
	return true
}

// Has reports whether a bucket exists for source, even an empty one.
func (c *CoverIDs) Has(source string) bool {
	if c == nil {
		return false
	}
	_, ok := c.codes[source]
	return ok
}

// Contains reports whether code is stored under source.
func (c *CoverIDs) Contains(source, code string) bool {
	if c == nil {
		return false
	}
	for _, existing := range c.codes[source] {
		if existing == code {
			return true
		}
	}
	return false
}

// Codes returns the codes stored under source.
func (c *CoverIDs) Codes(source string) []string {
	if c == nil {
		return nil
	}
	return c.codes[source]
}

// Sources returns the source names in first-seen order.
func (c *CoverIDs) Sources() []string {
	if c == nil {
		return nil
	}
	return c.sources
}

// Len returns the number of sources.
func (c *CoverIDs) Len() int {
	if c == nil {
		return 0
	}
	return len(c.sources)
}

// Map returns a copy of the content as a plain map.
func (c *CoverIDs) Map() map[string][]string {
	m := make(map[string][]string, c.Len())
	for _, source := range c.Sources() {
		m[source] = append([]string{}, c.codes[source]...)
	}
	return m
}

// MarshalJSON encodes the set as an object whose keys follow source order.
func (c *CoverIDs) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, source := range c.Sources() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(source)
		if err != nil {
			return nil, err
		}
		codes := c.codes[source]
		if codes == nil {
			codes = []string{}
		}
		value, err := json.Marshal(codes)
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
