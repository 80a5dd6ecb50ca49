// Package loader provides the feature loading system.
//
// Each feature implements the Feature interface and registers its routes
// when loaded:
//
//	type Feature interface {
//	    Name() string
//	    IsEnabled() bool
//	    Load(app fiber.Router) error
//	}
//
// The Manager keeps the registered features and loads the enabled ones in
// registration order via LoadAll.
package loader
