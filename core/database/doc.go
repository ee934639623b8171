// Package database handles database connections and schema inspection.
//
// It wraps GORM and configures either a MySQL connection or a SQLite file (or
// ":memory:" database) from the application's configuration.
//
// # Schema Inspection
//
// GetTableColumns lists the columns of a table on either dialect. MissingColumns
// compares a table against the columns a feature expects; the import configuration
// backend uses it to refuse starting against an incompatible schema.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
//
//	missing, err := database.MissingColumns(db, "external_objects", []string{"ref"})
package database
