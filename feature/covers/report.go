package covers

import (
	"cover-manager/core/bib"
	"cover-manager/core/reconcile"
)

// Summary is the descriptive part of a record shown to the user.
type Summary struct {
	MMSID              string `json:"mms_id"`
	MMSIDNZ            string `json:"mms_id_NZ,omitempty"`
	MMSIDCZ            string `json:"mms_id_CZ,omitempty"`
	ConsortiumLinked   bool   `json:"is_consortium_linked"`
	Title              string `json:"title"`
	Author             string `json:"author,omitempty"`
	PlaceOfPublication string `json:"place_of_publication,omitempty"`
	PublisherConst     string `json:"publisher_const,omitempty"`
	DateOfPublication  string `json:"date_of_publication,omitempty"`
}

// Report is the session state returned to callers.
type Report struct {
	SessionID   string                  `json:"session_id"`
	RequestedID string                  `json:"requested_id"`
	Record      Summary                 `json:"record"`
	Identifiers bib.IdentifierSet       `json:"identifiers"`
	Available   *bib.CoverIDs           `json:"available"`
	Active      *bib.CoverIDs           `json:"active"`
	Live        *reconcile.LiveCoverSet `json:"live"`
	Decision    reconcile.Decision      `json:"decision"`
	Updated     bool                    `json:"updated"`
	ViewURL     string                  `json:"view_url,omitempty"`
}

func (s *Service) report(sessionID string, res *Result) *Report {
	rec := res.Record
	return &Report{
		SessionID:   sessionID,
		RequestedID: res.RequestedID,
		Record: Summary{
			MMSID:              rec.MMSID,
			MMSIDNZ:            rec.MMSIDNZ,
			MMSIDCZ:            rec.MMSIDCZ,
			ConsortiumLinked:   rec.ConsortiumLinked,
			Title:              rec.Title,
			Author:             rec.Author,
			PlaceOfPublication: rec.PlaceOfPublication,
			PublisherConst:     rec.PublisherConst,
			DateOfPublication:  rec.DateOfPublication,
		},
		Identifiers: res.Identifiers,
		Available:   res.Covers.Available,
		Active:      res.Covers.Active,
		Live:        res.Live,
		Decision:    res.Decision,
		Updated:     res.Updated,
		ViewURL:     s.viewLink(res.RequestedID),
	}
}
