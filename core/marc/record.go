package marc

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ParseError reports an embedded record body that could not be decoded.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("malformed MARCXML record: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// errNoRecord is wrapped in a ParseError when the body holds no record element.
var errNoRecord = errors.New("no record element found")

// Record is a decoded MARCXML record.
type Record struct {
	Leader        string         `xml:"leader"`
	ControlFields []ControlField `xml:"controlfield"`
	DataFields    []DataField    `xml:"datafield"`
}

// ControlField is a MARC 00X field.
type ControlField struct {
	Tag   string `xml:"tag,attr"`
	Value string `xml:",chardata"`
}

// DataField is a repeatable MARC data field with indicators and subfields.
type DataField struct {
	Tag       string     `xml:"tag,attr"`
	Ind1      string     `xml:"ind1,attr"`
	Ind2      string     `xml:"ind2,attr"`
	Subfields []Subfield `xml:"subfield"`
}

// Subfield is a coded value inside a data field.
type Subfield struct {
	Code  string `xml:"code,attr"`
	Value string `xml:",chardata"`
}

// Parse decodes the first record element found in body. A bare <record>,
// a namespaced <marc:record> and a record wrapped in a <collection> or <bib>
// element are all accepted.
func Parse(body string) (*Record, error) {
	dec := xml.NewDecoder(strings.NewReader(body))

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return nil, &ParseError{Err: errNoRecord}
		}
		if err != nil {
			return nil, &ParseError{Err: err}
		}

		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "record" {
			continue
		}

		var rec Record
		if err := dec.DecodeElement(&rec, &start); err != nil {
			return nil, &ParseError{Err: err}
		}
		return &rec, nil
	}
}

// Fields returns the data fields with the given tag in document order.
func (r *Record) Fields(tag string) []DataField {
	var fields []DataField
	for _, f := range r.DataFields {
		if f.Tag == tag {
			fields = append(fields, f)
		}
	}
	return fields
}

// SubfieldValues returns every value of subfield code across all fields
// tagged tag, in document order.
func (r *Record) SubfieldValues(tag, code string) []string {
	var values []string
	for _, f := range r.Fields(tag) {
		values = append(values, f.Values(code)...)
	}
	return values
}

// ControlField returns the value of the first control field with the tag.
func (r *Record) ControlField(tag string) string {
	for _, f := range r.ControlFields {
		if f.Tag == tag {
			return f.Value
		}
	}
	return ""
}

// Values returns every value of subfield code in this field.
func (f DataField) Values(code string) []string {
	var values []string
	for _, sf := range f.Subfields {
		if sf.Code == code {
			values = append(values, sf.Value)
		}
	}
	return values
}

// First returns the first value of subfield code in this field.
func (f DataField) First(code string) (string, bool) {
	for _, sf := range f.Subfields {
		if sf.Code == code {
			return sf.Value, true
		}
	}
	return "", false
}
