// Package database handles the optional database connection.
//
// It wraps GORM and opens either MySQL or SQLite depending on the configured
// driver. The database only backs the reconciliation history, so an empty
// driver disables it and Connect returns ErrDisabled.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    logger.Warn("Optional database connection failed", zap.Error(err))
//	}
package database
