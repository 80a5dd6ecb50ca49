package marc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleRecord = `<?xml version="1.0" encoding="UTF-8"?>
<record>
  <leader>01234nam a2200289 i 4500</leader>
  <controlfield tag="001">9912345678901471</controlfield>
  <datafield tag="020" ind1=" " ind2=" ">
    <subfield code="a">0316769487</subfield>
    <subfield code="q">paperback</subfield>
  </datafield>
  <datafield tag="020" ind1=" " ind2=" ">
    <subfield code="a">9780316769488</subfield>
  </datafield>
  <datafield tag="245" ind1="1" ind2="0">
    <subfield code="a">The catcher in the rye</subfield>
  </datafield>
</record>`

func TestParse(t *testing.T) {
	rec, err := Parse(sampleRecord)
	require.NoError(t, err)

	assert.Equal(t, "01234nam a2200289 i 4500", rec.Leader)
	assert.Equal(t, "9912345678901471", rec.ControlField("001"))
	assert.Equal(t, "", rec.ControlField("003"))
	assert.Len(t, rec.Fields("020"), 2)
	assert.Equal(t, []string{"0316769487", "9780316769488"}, rec.SubfieldValues("020", "a"))

	title, ok := rec.Fields("245")[0].First("a")
	assert.True(t, ok)
	assert.Equal(t, "The catcher in the rye", title)

	_, ok = rec.Fields("245")[0].First("b")
	assert.False(t, ok)
}

func TestParse_Wrapped(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{
			name: "collection",
			body: `<collection><record><datafield tag="022" ind1=" " ind2=" "><subfield code="a">1234-5678</subfield></datafield></record></collection>`,
		},
		{
			name: "namespaced",
			body: `<marc:record xmlns:marc="http://www.loc.gov/MARC21/slim"><marc:datafield tag="022" ind1=" " ind2=" "><marc:subfield code="a">1234-5678</marc:subfield></marc:datafield></marc:record>`,
		},
		{
			name: "bib wrapper",
			body: `<bib><mms_id>99</mms_id><record><datafield tag="022" ind1=" " ind2=" "><subfield code="a">1234-5678</subfield></datafield></record></bib>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := Parse(tt.body)
			require.NoError(t, err)
			assert.Equal(t, []string{"1234-5678"}, rec.SubfieldValues("022", "a"))
		})
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty", ""},
		{"no record", "<collection></collection>"},
		{"truncated", "<record><datafield tag=\"020\">"},
		{"not xml", "this is not xml <<"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := Parse(tt.body)
			assert.Nil(t, rec)
			var perr *ParseError
			assert.ErrorAs(t, err, &perr)
		})
	}
}
