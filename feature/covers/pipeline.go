package covers

import (
	"context"
	"fmt"

	"cover-manager/core/bib"
	"cover-manager/core/clients/loader"
	"cover-manager/core/clients/resolver"
	"cover-manager/core/identifiers"
	"cover-manager/core/reconcile"

	"go.uber.org/zap"
)

// Catalog loads and rewrites bibliographic records.
type Catalog interface {
	Fetch(ctx context.Context, mmsID string) (*bib.Record, error)
	reconcile.Persister
}

// Resolver reports the covers known for a record.
type Resolver interface {
	FetchAll(ctx context.Context, ids bib.IdentifierSet) (*reconcile.LiveCoverSet, error)
	FetchOne(ctx context.Context, source, coverCode string) (*resolver.Thumbnail, error)
}

// CoverServer stores and removes cover images.
type CoverServer interface {
	Upload(ctx context.Context, cover loader.Cover) error
	Delete(ctx context.Context, idType, idCode string) error
}

// Recorder keeps an audit trail of reconciliation decisions.
type Recorder interface {
	Record(ctx context.Context, recordID string, d reconcile.Decision, applied bool) error
}

// Result is the outcome of a refresh. It is never modified once committed
// to a session.
type Result struct {
	// RequestedID is the id the refresh was started with.
	RequestedID string
	// Record is the parsed catalog record.
	Record *bib.Record
	// Identifiers are the standard identifiers of Record.
	Identifiers bib.IdentifierSet
	// Covers are the annotations stored in Record.
	Covers bib.CoverAnnotations
	// Live is the resolver's cover set.
	Live *reconcile.LiveCoverSet
	// Decision compares Live with the stored active covers.
	Decision reconcile.Decision
	// Updated is true when this pass rewrote the record.
	Updated bool
}

// Pipeline runs the refresh steps in order.
type Pipeline struct {
	catalog  Catalog
	resolver Resolver
	recorder Recorder
	schema   bib.Schema
	logger   *zap.Logger
}

// NewPipeline creates a pipeline. recorder may be nil.
func NewPipeline(catalog Catalog, resolver Resolver, recorder Recorder, schema bib.Schema, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		catalog:  catalog,
		resolver: resolver,
		recorder: recorder,
		schema:   schema,
		logger:   logger,
	}
}

// Run loads the record and reconciles it with the live cover set.
func (p *Pipeline) Run(ctx context.Context, mmsID string, opts reconcile.Options) (*Result, error) {
	rec, err := p.catalog.Fetch(ctx, mmsID)
	if err != nil {
		return nil, fmt.Errorf("failed to load record %s: %w", mmsID, err)
	}

	res := &Result{RequestedID: mmsID}
	if err := p.load(res, rec); err != nil {
		return nil, err
	}

	if err := p.Reconcile(ctx, res, opts); err != nil {
		return nil, err
	}
	return res, nil
}

// Reconcile fetches a fresh live cover set for res and decides again.
// A failed fetch aborts the pass; stale data is never reconciled.
func (p *Pipeline) Reconcile(ctx context.Context, res *Result, opts reconcile.Options) error {
	live, err := p.resolver.FetchAll(ctx, res.Identifiers)
	if err != nil {
		return fmt.Errorf("failed to fetch live covers for %s: %w", res.Identifiers.MMSID, err)
	}
	res.Live = live
	return p.Decide(ctx, res, opts)
}

// Decide compares res.Live with the stored active covers and persists the
// replacement annotation when opts allow it.
func (p *Pipeline) Decide(ctx context.Context, res *Result, opts reconcile.Options) error {
	recordID := res.Record.RecordID()
	res.Decision = reconcile.Decide(res.Live, res.Covers.Active, p.schema.PrimarySource)
	res.Updated = false

	if res.Decision.NeedsUpdate {
		reasons := make([]string, 0, len(res.Decision.Reasons))
		for _, r := range res.Decision.Reasons {
			reasons = append(reasons, r.String())
		}
		p.logger.Info("Cover drift detected",
			zap.String("record_id", recordID),
			zap.Strings("reasons", reasons),
			zap.Bool("dry_run", opts.DryRun),
			zap.Bool("confirmed", opts.Confirmed),
		)
	}

	updated, err := reconcile.Apply(ctx, p.catalog, recordID, res.Decision, opts)
	p.record(ctx, recordID, res.Decision, updated != nil)
	if err != nil {
		return err
	}
	if updated == nil {
		return nil
	}

	if err := p.load(res, updated); err != nil {
		return fmt.Errorf("failed to read updated record %s: %w", recordID, err)
	}
	res.Updated = true
	return nil
}

// load parses rec into res and recomputes identifiers and annotations.
func (p *Pipeline) load(res *Result, rec *bib.Record) error {
	parsed, err := bib.Parse(rec)
	if err != nil {
		return err
	}
	res.Record = parsed
	res.Identifiers = bib.Identifiers(parsed, p.schema)
	res.Covers = bib.ExtractCovers(parsed, p.schema)

	for _, isbn := range res.Identifiers.ISBN {
		if !identifiers.ValidateISBN13(isbn) {
			p.logger.Warn("ISBN checksum mismatch",
				zap.String("mms_id", parsed.MMSID),
				zap.String("isbn", isbn),
			)
		}
	}
	return nil
}

func (p *Pipeline) record(ctx context.Context, recordID string, d reconcile.Decision, applied bool) {
	if p.recorder == nil {
		return
	}
	if err := p.recorder.Record(ctx, recordID, d, applied); err != nil {
		p.logger.Warn("Failed to record reconciliation", zap.String("record_id", recordID), zap.Error(err))
	}
}
