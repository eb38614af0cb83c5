package database

import (
	"fmt"
	"os"
	"path/filepath"

	"savehaven/internal/config"
	"savehaven/internal/haven"
)

// CatalogFileName is the name of the catalogue database inside data_dir.
const CatalogFileName = "catalog.db"

// NewDatabaseFromConfig creates a SQLiteDatabase based on the database config type
// and migrates it to the latest schema.
func NewDatabaseFromConfig(cfg config.DatabaseConfig, clock haven.Clock) (*SQLiteDatabase, error) {
	var path string
	switch cfg.Type {
	case "sqlite":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("data_dir required for sqlite database")
		}
		if err := os.MkdirAll(cfg.DataDir, 0700); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		path = filepath.Join(cfg.DataDir, CatalogFileName)
	case "memory":
		path = ":memory:"
	default:
		return nil, fmt.Errorf("unknown database type: %s", cfg.Type)
	}

	db, err := NewSQLiteDatabase(path, clock)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating %s: %w", path, err)
	}
	return db, nil
}
