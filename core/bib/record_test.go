package bib

import (
	"testing"

	"cover-manager/core/marc"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const recordJSON = `{
  "mms_id": "9912345678901471",
  "title": "The catcher in the rye",
  "linked_record_id": [
    {"type": "NZ", "value": "9955555555501471"},
    {"type": "CZ", "value": "9977777777701471"}
  ],
  "anies": ["<record><datafield tag=\"020\" ind1=\" \" ind2=\" \"><subfield code=\"a\">0316769487</subfield></datafield></record>"]
}`

func TestDecodeAndParse(t *testing.T) {
	rec, err := Decode([]byte(recordJSON))
	require.NoError(t, err)

	rec, err = Parse(rec)
	require.NoError(t, err)

	assert.Equal(t, "9912345678901471", rec.MMSID)
	assert.Equal(t, "9955555555501471", rec.MMSIDNZ)
	assert.Equal(t, "9977777777701471", rec.MMSIDCZ)
	assert.True(t, rec.ConsortiumLinked)
	assert.Equal(t, "9955555555501471", rec.RecordID())
	require.NotNil(t, rec.Parsed)
	assert.Equal(t, []string{"0316769487"}, rec.Parsed.SubfieldValues("020", "a"))
}

func TestParse_MMSIDFromControlField(t *testing.T) {
	rec, err := Parse(&Record{Anies: []string{`<record><controlfield tag="001">9911111111101471</controlfield></record>`}})
	require.NoError(t, err)
	assert.Equal(t, "9911111111101471", rec.MMSID)
	assert.Equal(t, "9911111111101471", rec.RecordID())

	rec, err = Parse(&Record{MMSID: "1", Anies: []string{`<record><controlfield tag="001">2</controlfield></record>`}})
	require.NoError(t, err)
	assert.Equal(t, "1", rec.MMSID)
}

func TestLinkedIDs_SingleObject(t *testing.T) {
	rec, err := Decode([]byte(`{"mms_id": "1", "linked_record_id": {"type": "CZ", "value": "42"}, "anies": ["<record/>"]}`))
	require.NoError(t, err)
	require.Len(t, rec.LinkedRecordID, 1)

	rec, err = Parse(rec)
	require.NoError(t, err)
	assert.Equal(t, "42", rec.MMSIDCZ)
	assert.Equal(t, "", rec.MMSIDNZ)
	assert.True(t, rec.ConsortiumLinked)
	assert.Equal(t, "1", rec.RecordID())
}

func TestLinkedIDs_Variants(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		expected LinkedIDs
		wantErr  bool
	}{
		{"absent", `{"mms_id": "1"}`, nil, false},
		{"null", `{"linked_record_id": null}`, nil, false},
		{"empty list", `{"linked_record_id": []}`, LinkedIDs{}, false},
		{"numeric value", `{"linked_record_id": {"type": "NZ", "value": 991234}}`, LinkedIDs{{Type: "NZ", Value: "991234"}}, false},
		{"scalar", `{"linked_record_id": "NZ"}`, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := Decode([]byte(tt.body))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, rec.LinkedRecordID)
		})
	}
}

func TestParse_NoLinks(t *testing.T) {
	rec, err := Parse(&Record{MMSID: "1", Anies: []string{"<record/>"}})
	require.NoError(t, err)
	assert.False(t, rec.ConsortiumLinked)
	assert.Equal(t, "1", rec.RecordID())
}

func TestParse_Errors(t *testing.T) {
	var perr *marc.ParseError

	_, err := Parse(&Record{MMSID: "1"})
	assert.ErrorAs(t, err, &perr)

	_, err = Parse(&Record{MMSID: "1", Anies: []string{"<record><datafield"}})
	assert.ErrorAs(t, err, &perr)
}
