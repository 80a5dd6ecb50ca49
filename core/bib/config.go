package bib

// Schema holds the catalog conventions used to locate identifiers and cover
// annotations inside a MARC record.
type Schema struct {
	// ISBNTag and ISBNCode locate ISBN values.
	ISBNTag  string `mapstructure:"isbn_tag" default:"020"`
	ISBNCode string `mapstructure:"isbn_code" default:"a"`
	// ISSNTag and ISSNCode locate ISSN values.
	ISSNTag  string `mapstructure:"issn_tag" default:"022"`
	ISSNCode string `mapstructure:"issn_code" default:"a"`
	// EANTag, EANCode and EANInd1 locate EAN values (024 with first indicator 3).
	EANTag  string `mapstructure:"ean_tag" default:"024"`
	EANCode string `mapstructure:"ean_code" default:"a"`
	EANInd1 string `mapstructure:"ean_ind1" default:"3"`
	// CoverTag is the repeatable field holding cover annotations.
	CoverTag string `mapstructure:"cover_tag" default:"921"`
	// CoverSourceCode is the subfield carrying the source name.
	CoverSourceCode string `mapstructure:"cover_source_code" default:"2"`
	// CoverValueCode is the subfield carrying cover codes.
	CoverValueCode string `mapstructure:"cover_value_code" default:"c"`
	// ControlSource marks fields listing active covers as "(source)code".
	ControlSource string `mapstructure:"control_source" default:"cvr"`
	// PrimarySource is the cover network whose removal forces a record update.
	PrimarySource string `mapstructure:"primary_source" default:"covers"`
	// DedupeISSN removes duplicate ISSN values. The catalog historically kept them.
	DedupeISSN bool `mapstructure:"dedupe_issn" default:"false"`
}

// DefaultSchema returns the schema used by the catalog out of the box.
func DefaultSchema() Schema {
	return Schema{
		ISBNTag:         "020",
		ISBNCode:        "a",
		ISSNTag:         "022",
		ISSNCode:        "a",
		EANTag:          "024",
		EANCode:         "a",
		EANInd1:         "3",
		CoverTag:        "921",
		CoverSourceCode: "2",
		CoverValueCode:  "c",
		ControlSource:   "cvr",
		PrimarySource:   "covers",
	}
}
