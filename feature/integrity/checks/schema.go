package checks

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// ErrNoDatabase is returned when a schema check runs without a connection.
var ErrNoDatabase = errors.New("database connection is nil")

// SchemaReport is the result of a table schema check.
type SchemaReport struct {
	Table          string   `json:"table"`
	Matched        bool     `json:"matched"`
	MissingTable   bool     `json:"missing_table"`
	MissingColumns []string `json:"missing_columns"`
}

// CheckSchema verifies that the table of model exists with every column
// the model maps.
func CheckSchema(db *gorm.DB, model any) (*SchemaReport, error) {
	if db == nil {
		return nil, ErrNoDatabase
	}

	stmt := &gorm.Statement{DB: db}
	if err := stmt.Parse(model); err != nil {
		return nil, fmt.Errorf("failed to parse model: %w", err)
	}

	report := &SchemaReport{
		Table:          stmt.Schema.Table,
		Matched:        true,
		MissingColumns: []string{},
	}

	migrator := db.Migrator()
	if !migrator.HasTable(model) {
		report.MissingTable = true
		report.Matched = false
		return report, nil
	}

	for _, column := range stmt.Schema.DBNames {
		if !migrator.HasColumn(model, column) {
			report.MissingColumns = append(report.MissingColumns, column)
			report.Matched = false
		}
	}
	return report, nil
}

// FixSchema creates the table of model or adds its missing columns.
func FixSchema(db *gorm.DB, model any) error {
	if db == nil {
		return ErrNoDatabase
	}
	if err := db.AutoMigrate(model); err != nil {
		return fmt.Errorf("failed to migrate %T: %w", model, err)
	}
	return nil
}
