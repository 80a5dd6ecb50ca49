package history

import (
	"context"
	"fmt"

	"cover-manager/core/reconcile"

	"github.com/segmentio/encoding/json"
	"gorm.io/gorm"
)

// DefaultLimit is the number of entries returned when no limit is given.
const DefaultLimit = 50

// Repository stores entries with gorm.
type Repository struct {
	db *gorm.DB
}

// NewRepository migrates the entry table and returns a repository.
func NewRepository(db *gorm.DB) (*Repository, error) {
	if err := db.AutoMigrate(&Entry{}); err != nil {
		return nil, fmt.Errorf("failed to migrate history: %w", err)
	}
	return &Repository{db: db}, nil
}

// Record stores a decision for recordID.
func (r *Repository) Record(ctx context.Context, recordID string, d reconcile.Decision, applied bool) error {
	payload, err := json.Marshal(d.Payload)
	if err != nil {
		return fmt.Errorf("failed to encode payload: %w", err)
	}
	reasons := d.Reasons
	if reasons == nil {
		reasons = []reconcile.Reason{}
	}
	encodedReasons, err := json.Marshal(reasons)
	if err != nil {
		return fmt.Errorf("failed to encode reasons: %w", err)
	}

	entry := Entry{
		RecordID:    recordID,
		NeedsUpdate: d.NeedsUpdate,
		Applied:     applied,
		Payload:     string(payload),
		Reasons:     string(encodedReasons),
	}
	if err := r.db.WithContext(ctx).Create(&entry).Error; err != nil {
		return fmt.Errorf("failed to store reconciliation of %s: %w", recordID, err)
	}
	return nil
}

// List returns the latest entries of recordID, newest first.
func (r *Repository) List(ctx context.Context, recordID string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	var entries []Entry
	err := r.db.WithContext(ctx).
		Where("record_id = ?", recordID).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list reconciliations of %s: %w", recordID, err)
	}
	return entries, nil
}
