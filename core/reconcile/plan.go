package reconcile

import (
	"context"
	"fmt"

	"cover-manager/core/bib"
)

// Persister writes a replacement active-cover annotation for a record and
// returns the updated record.
type Persister interface {
	Persist(ctx context.Context, recordID string, payload *bib.CoverIDs) (*bib.Record, error)
}

// Apply writes the decision payload when an update is needed and the options
// allow it. It returns the updated record, or nil when nothing was written.
func Apply(ctx context.Context, p Persister, recordID string, d Decision, opts Options) (*bib.Record, error) {
	// Safety check: do not execute if not confirmed or dry-run
	if !d.NeedsUpdate || !opts.Confirmed || opts.DryRun {
		return nil, nil
	}

	if recordID == "" {
		return nil, fmt.Errorf("cannot persist covers without a record id")
	}

	if opts.Current != nil && !opts.Current() {
		return nil, nil
	}

	updated, err := p.Persist(ctx, recordID, d.Payload)
	if err != nil {
		return nil, fmt.Errorf("failed to persist active covers for %s: %w", recordID, err)
	}

	return updated, nil
}
