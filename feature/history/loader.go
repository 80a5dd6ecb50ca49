package history

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	repo    *Repository
	handler *Handler
}

// NewFeature creates the history feature. Without a database the feature
// is disabled and Repository returns nil.
func NewFeature(db *gorm.DB, logger *zap.Logger) (*Feature, error) {
	if db == nil {
		return &Feature{}, nil
	}
	repo, err := NewRepository(db)
	if err != nil {
		return nil, err
	}
	return &Feature{repo: repo, handler: NewHandler(repo, logger)}, nil
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "history"
}

// IsEnabled checks if the feature is enabled.
func (f *Feature) IsEnabled() bool {
	return f.repo != nil
}

// Load registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	f.handler.RegisterRoutes(app)
	return nil
}

// Repository returns the entry store, or nil when disabled.
func (f *Feature) Repository() *Repository {
	return f.repo
}
