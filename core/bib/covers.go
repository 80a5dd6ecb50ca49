package bib

import (
	"regexp"
	"strings"
)

// controlValuePattern splits an active cover value "(source)code".
var controlValuePattern = regexp.MustCompile(`\((.*?)\)(.*)`)

// CoverAnnotations are the cover codes recorded in a bib record.
type CoverAnnotations struct {
	// Available lists every cover code per source outside the control source.
	Available *CoverIDs `json:"available"`
	// Active lists the cover codes confirmed through the control source.
	Active *CoverIDs `json:"active"`
}

// ExtractCovers reads the cover annotation fields of a parsed record.
func ExtractCovers(rec *Record, schema Schema) CoverAnnotations {
	covers := CoverAnnotations{
		Available: &CoverIDs{},
		Active:    &CoverIDs{},
	}
	if rec.Parsed == nil {
		return covers
	}

	for _, field := range rec.Parsed.Fields(schema.CoverTag) {
		source, _ := field.First(schema.CoverSourceCode)
		source = strings.ToLower(source)
		if source == "" {
			continue
		}

		values := field.Values(schema.CoverValueCode)
		if source == schema.ControlSource {
			for _, value := range values {
				coverSource, code, ok := SplitControlValue(value)
				if !ok {
					continue
				}
				covers.Active.Add(coverSource, code)
			}
			continue
		}

		for _, value := range values {
			covers.Available.Add(source, value)
		}
	}

	return covers
}

// SplitControlValue splits "(source)code" into its parts.
func SplitControlValue(value string) (source, code string, ok bool) {
	m := controlValuePattern.FindStringSubmatch(value)
	if m == nil {
		return "", "", false
	}
	return m[1], m[2], true
}
