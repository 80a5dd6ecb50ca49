package reconcile

import (
	"cover-manager/core/bib"
)

// Activated builds the active cover codes per live source. Every live source
// gets a bucket, even when none of its covers is active.
func Activated(live *LiveCoverSet) *bib.CoverIDs {
	activated := &bib.CoverIDs{}
	for _, source := range live.Sources() {
		activated.Ensure(source)
		for _, c := range live.Covers(source) {
			if c.IsActive {
				activated.Add(source, c.ActiveID())
			}
		}
	}
	return activated
}

// Decide compares the live cover set with the stored active annotation.
// Only sources returned by the resolver are compared, except for the primary
// source whose disappearance is always reported.
func Decide(live *LiveCoverSet, stored *bib.CoverIDs, primarySource string) Decision {
	activated := Activated(live)
	decision := Decision{
		Payload: activated,
		Reasons: []Reason{},
	}

	if primarySource != "" && stored.Has(primarySource) && !live.Has(primarySource) {
		decision.Reasons = append(decision.Reasons, Reason{Kind: ReasonPrimaryRemoved, Source: primarySource})
	}

	for _, source := range activated.Sources() {
		if !stored.Has(source) {
			decision.Reasons = append(decision.Reasons, Reason{Kind: ReasonSourceMissing, Source: source})
			continue
		}

		for _, code := range activated.Codes(source) {
			if !stored.Contains(source, code) {
				decision.Reasons = append(decision.Reasons, Reason{Kind: ReasonNotRecorded, Source: source, Code: code})
			}
		}

		for _, code := range stored.Codes(source) {
			if !activated.Contains(source, code) {
				decision.Reasons = append(decision.Reasons, Reason{Kind: ReasonStale, Source: source, Code: code})
			}
		}
	}

	decision.NeedsUpdate = len(decision.Reasons) > 0
	return decision
}
