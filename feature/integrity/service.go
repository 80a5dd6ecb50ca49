package integrity

import (
	"context"
	"errors"

	"cover-manager/core/clients/loader"
	"cover-manager/core/storage"
	"cover-manager/feature/covers"
	"cover-manager/feature/history"
	"cover-manager/feature/integrity/checks"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrDisabled is returned by checks whose backing store is not configured.
var ErrDisabled = errors.New("check disabled: not configured")

// Service handles integrity checks.
type Service struct {
	client  storage.Client
	bucket  string
	db      *gorm.DB
	catalog loader.InstitutionSource
	logger  *zap.Logger
}

// NewService creates a new integrity service. client and db may be nil.
func NewService(client storage.Client, bucket string, db *gorm.DB, catalog loader.InstitutionSource, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		client:  client,
		bucket:  bucket,
		db:      db,
		catalog: catalog,
		logger:  logger,
	}
}

// CheckStaging reports staged objects that cannot be uploaded.
func (s *Service) CheckStaging(ctx context.Context) (*checks.StagingReport, error) {
	if s.client == nil {
		return nil, ErrDisabled
	}
	return checks.CheckStaging(ctx, s.client, s.bucket, covers.MaxCoverSize)
}

// FixStaging removes the invalid staged objects.
func (s *Service) FixStaging(ctx context.Context, invalid []checks.InvalidObject) error {
	if s.client == nil {
		return ErrDisabled
	}
	return checks.FixStaging(ctx, s.client, s.bucket, s.logger, invalid)
}

// CheckHistory verifies the history table.
func (s *Service) CheckHistory() (*checks.SchemaReport, error) {
	if s.db == nil {
		return nil, ErrDisabled
	}
	return checks.CheckSchema(s.db, &history.Entry{})
}

// FixHistory migrates the history table.
func (s *Service) FixHistory() error {
	if s.db == nil {
		return ErrDisabled
	}
	return checks.FixSchema(s.db, &history.Entry{})
}

// CheckCatalog verifies that the catalog answers with the institution code.
func (s *Service) CheckCatalog(ctx context.Context) *checks.CatalogReport {
	return checks.CheckCatalog(ctx, s.catalog)
}

// Report runs every check and returns one entry per check.
func (s *Service) Report(ctx context.Context) map[string]any {
	report := make(map[string]any)

	if staging, err := s.CheckStaging(ctx); err != nil {
		report["staging"] = statusOf(err)
	} else {
		report["staging"] = staging
	}

	if schema, err := s.CheckHistory(); err != nil {
		report["history"] = statusOf(err)
	} else {
		report["history"] = schema
	}

	report["catalog"] = s.CheckCatalog(ctx)
	return report
}

func statusOf(err error) map[string]any {
	if errors.Is(err, ErrDisabled) {
		return map[string]any{"status": "disabled"}
	}
	return map[string]any{"status": "error", "error": err.Error()}
}
