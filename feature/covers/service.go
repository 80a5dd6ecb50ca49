package covers

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"cover-manager/core/bib"
	"cover-manager/core/clients/loader"
	"cover-manager/core/clients/resolver"
	"cover-manager/core/logger"
	"cover-manager/core/reconcile"
	"cover-manager/core/storage"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// sessionTTL is how long an idle session is kept.
const sessionTTL = 30 * time.Minute

// Dependencies are the collaborators of a Service.
type Dependencies struct {
	Catalog  Catalog
	Resolver Resolver
	Covers   CoverServer
	// Recorder is optional.
	Recorder Recorder
	// Storage is the optional staging store.
	Storage storage.Client
	Bucket  string
	Schema  bib.Schema
	// ViewLink builds the discovery link of a record id, optional.
	ViewLink func(recordID string) string
	Logger   *zap.Logger
}

// Service manages sessions and runs the cover workflow.
type Service struct {
	pipeline *Pipeline
	resolver Resolver
	covers   CoverServer
	store    storage.Client
	bucket   string
	schema   bib.Schema
	viewLink func(string) string
	logger   *zap.Logger

	mu       sync.Mutex
	sessions map[string]*Session
	waiters  map[string]map[*waiter]struct{}
	flight   singleflight.Group
	locks    *recordLocks
	now      func() time.Time
}

// NewService creates a cover service.
func NewService(deps Dependencies) *Service {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}
	viewLink := deps.ViewLink
	if viewLink == nil {
		viewLink = func(string) string { return "" }
	}
	return &Service{
		pipeline: NewPipeline(deps.Catalog, deps.Resolver, deps.Recorder, deps.Schema, log),
		resolver: deps.Resolver,
		covers:   deps.Covers,
		store:    deps.Storage,
		bucket:   deps.Bucket,
		schema:   deps.Schema,
		viewLink: viewLink,
		logger:   log,
		sessions: make(map[string]*Session),
		waiters:  make(map[string]map[*waiter]struct{}),
		locks:    newRecordLocks(),
		now:      time.Now,
	}
}

// Session returns the session with the given id, creating it if needed.
func (s *Service) Session(id string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[id]; ok {
		return sess
	}

	now := s.now()
	for key, sess := range s.sessions {
		if now.Sub(sess.idleSince()) > sessionTTL {
			delete(s.sessions, key)
		}
	}

	sess := &Session{ID: id, lastUsed: now}
	s.sessions[id] = sess
	return sess
}

// Refresh runs the full pipeline for mmsID and commits the result to the
// session. Identical concurrent refreshes share one pass, which only
// writes while at least one of the joined sessions still wants it.
func (s *Service) Refresh(ctx context.Context, sessionID, mmsID string, opts reconcile.Options) (*Report, error) {
	sess := s.Session(sessionID)
	token := sess.begin(s.now())
	log := logger.WithSession(s.logger, sessionID)

	key := mmsID + "|" + strconv.FormatBool(opts.DryRun) + "|" + strconv.FormatBool(opts.Confirmed)
	leave := s.join(key, &waiter{sess: sess, token: token})
	defer leave()

	v, err, shared := s.flight.Do(key, func() (any, error) {
		unlock := s.locks.lock(mmsID)
		defer unlock()

		opts := opts
		opts.Current = func() bool { return s.anyCurrent(key) }
		return s.pipeline.Run(ctx, mmsID, opts)
	})
	if err != nil {
		log.Warn("Refresh failed", zap.String("mms_id", mmsID), zap.Error(err))
		return nil, err
	}

	res := v.(*Result)
	if err := sess.commit(token, res); err != nil {
		log.Info("Discarding superseded refresh", zap.String("mms_id", mmsID))
		return nil, err
	}

	log.Info("Record refreshed",
		zap.String("mms_id", mmsID),
		zap.Bool("needs_update", res.Decision.NeedsUpdate),
		zap.Bool("updated", res.Updated),
		zap.Bool("shared", shared),
	)
	return s.report(sess.ID, res), nil
}

// Apply persists the pending decision of the session's record.
func (s *Service) Apply(ctx context.Context, sessionID, mmsID string) (*Report, error) {
	return s.mutate(ctx, sessionID, mmsID, func(ctx context.Context, res *Result, current func() bool) error {
		return s.pipeline.Decide(ctx, res, reconcile.Options{Confirmed: true, Current: current})
	})
}

// Reset clears the session and discards operations still in flight.
func (s *Service) Reset(sessionID string) {
	s.Session(sessionID).reset(s.now())
	logger.WithSession(s.logger, sessionID).Info("Session reset")
}

// Current returns the report of the session's record, or ErrNoRecord.
func (s *Service) Current(sessionID string) (*Report, error) {
	res := s.Session(sessionID).State()
	if res == nil {
		return nil, ErrNoRecord
	}
	return s.report(sessionID, res), nil
}

// Upload sends a new cover for the session's record, then refetches the
// live set and reconciles with opts.
func (s *Service) Upload(ctx context.Context, sessionID, mmsID string, up Upload, opts reconcile.Options) (*Report, error) {
	contentType, err := DetectImage(up.Data)
	if err != nil {
		return nil, err
	}

	return s.mutate(ctx, sessionID, mmsID, func(ctx context.Context, res *Result, current func() bool) error {
		if res.Live.Has(s.schema.PrimarySource) && !up.Confirm {
			return ErrOverwriteNotConfirmed
		}
		if !current() {
			return ErrSuperseded
		}

		cover := loader.Cover{
			Type:        UploadType,
			Code:        res.Record.RecordID(),
			Filename:    up.Filename,
			ContentType: contentType,
			Data:        up.Data,
		}
		if err := s.covers.Upload(ctx, cover); err != nil {
			return err
		}
		opts.Current = current
		return s.pipeline.Reconcile(ctx, res, opts)
	})
}

// UploadStaged uploads an image from the staging bucket and removes it
// from the bucket afterwards.
func (s *Service) UploadStaged(ctx context.Context, sessionID, mmsID, key string, confirm bool, opts reconcile.Options) (*Report, error) {
	if s.store == nil {
		return nil, ErrStagingDisabled
	}

	data, err := storage.ReadObject(ctx, s.store, s.bucket, key, MaxCoverSize)
	if err != nil {
		return nil, err
	}

	report, err := s.Upload(ctx, sessionID, mmsID, Upload{Filename: key, Data: data, Confirm: confirm}, opts)
	if err != nil {
		return nil, err
	}

	if err := s.store.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		s.logger.Warn("Failed to remove staged cover", zap.String("key", key), zap.Error(err))
	}
	return report, nil
}

// Stage stores an image in the staging bucket.
func (s *Service) Stage(ctx context.Context, key string, data []byte) (*storage.StagedObject, error) {
	if s.store == nil {
		return nil, ErrStagingDisabled
	}

	contentType, err := DetectImage(data)
	if err != nil {
		return nil, err
	}

	stored, err := storage.Stage(ctx, s.store, s.bucket, key, data, contentType)
	if err != nil {
		return nil, err
	}
	return &storage.StagedObject{Key: stored, Size: int64(len(data)), ContentType: contentType}, nil
}

// Staged lists the staged images under prefix.
func (s *Service) Staged(ctx context.Context, prefix string) ([]storage.StagedObject, error) {
	if s.store == nil {
		return nil, ErrStagingDisabled
	}
	return storage.ListStaged(ctx, s.store, s.bucket, prefix)
}

// Delete removes a cover of the session's record, then refetches the live
// set and reconciles with opts.
func (s *Service) Delete(ctx context.Context, sessionID, mmsID, idType, idCode string, opts reconcile.Options) (*Report, error) {
	return s.mutate(ctx, sessionID, mmsID, func(ctx context.Context, res *Result, current func() bool) error {
		if !current() {
			return ErrSuperseded
		}
		if err := s.covers.Delete(ctx, idType, idCode); err != nil {
			return err
		}
		opts.Current = current
		return s.pipeline.Reconcile(ctx, res, opts)
	})
}

// Thumbnail fetches a single cover image.
func (s *Service) Thumbnail(ctx context.Context, source, coverCode string) (*resolver.Thumbnail, error) {
	return s.resolver.FetchOne(ctx, source, coverCode)
}

// mutate runs fn on a copy of the session state for mmsID and commits it.
// fn receives a check that turns false once the session moved on.
func (s *Service) mutate(ctx context.Context, sessionID, mmsID string, fn func(ctx context.Context, res *Result, current func() bool) error) (*Report, error) {
	sess := s.Session(sessionID)
	cur := sess.State()
	if cur == nil || cur.RequestedID != mmsID {
		return nil, fmt.Errorf("%w: %s", ErrNoRecord, mmsID)
	}
	token := sess.begin(s.now())

	unlock := s.locks.lock(mmsID)
	defer unlock()

	next := *cur
	current := func() bool { return sess.current(token) }
	if err := fn(ctx, &next, current); err != nil {
		logger.WithSession(s.logger, sessionID).Warn("Cover operation failed", zap.String("mms_id", mmsID), zap.Error(err))
		return nil, err
	}

	if err := sess.commit(token, &next); err != nil {
		return nil, err
	}
	return s.report(sess.ID, &next), nil
}

// join registers w as waiting on the refresh flight key and returns the
// function removing it again.
func (s *Service) join(key string, w *waiter) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	set, ok := s.waiters[key]
	if !ok {
		set = make(map[*waiter]struct{})
		s.waiters[key] = set
	}
	set[w] = struct{}{}

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(set, w)
		if len(set) == 0 {
			delete(s.waiters, key)
		}
	}
}

// anyCurrent reports whether a session waiting on key still wants its result.
func (s *Service) anyCurrent(key string) bool {
	s.mu.Lock()
	waiting := make([]*waiter, 0, len(s.waiters[key]))
	for w := range s.waiters[key] {
		waiting = append(waiting, w)
	}
	s.mu.Unlock()

	for _, w := range waiting {
		if w.sess.current(w.token) {
			return true
		}
	}
	return false
}
