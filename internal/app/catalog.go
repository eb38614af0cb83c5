package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"savehaven/internal/config"
	"savehaven/internal/database"
	"savehaven/internal/store"
	"savehaven/internal/transfer"
)

// RestoreCatalog replaces the local catalogue with the snapshot the store holds for hostID
// (the configured host when empty) and returns the path written. An existing catalogue is
// only replaced when force is set. The snapshot is migrated to the current schema before it
// is moved into place, so a file that is not a catalogue never replaces a good one.
func RestoreCatalog(ctx context.Context, cfg *config.Config, hostID string, force bool) (string, error) {
	if err := cfg.Validate(); err != nil {
		return "", fmt.Errorf("invalid config: %w", err)
	}
	if cfg.Database.Type != "sqlite" {
		return "", fmt.Errorf("database type %q has no catalogue file to restore", cfg.Database.Type)
	}
	if hostID == "" {
		hostID = cfg.HostID
	}

	dst := filepath.Join(cfg.Database.DataDir, database.CatalogFileName)
	if _, err := os.Stat(dst); err == nil && !force {
		return "", fmt.Errorf("catalogue already exists at %s", dst)
	}

	// Snapshots are written without the backup codec.
	st, err := store.NewStoreFromConfig(ctx, cfg.Store, transfer.NewCopier())
	if err != nil {
		return "", fmt.Errorf("creating store: %w", err)
	}
	if err := st.ValidateSetup(); err != nil {
		return "", fmt.Errorf("checking store: %w", err)
	}

	if err := os.MkdirAll(cfg.Database.DataDir, 0700); err != nil {
		return "", fmt.Errorf("creating data directory: %w", err)
	}
	tmp, err := os.CreateTemp(cfg.Database.DataDir, ".catalog-*.db")
	if err != nil {
		return "", fmt.Errorf("creating temp file for catalogue: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	err = st.GetCatalog(hostID, tmp)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return "", fmt.Errorf("fetching catalogue for host %s: %w", hostID, err)
	}

	if err := migrateSnapshot(tmpPath); err != nil {
		return "", err
	}
	if err := os.Rename(tmpPath, dst); err != nil {
		return "", fmt.Errorf("moving catalogue into place: %w", err)
	}
	return dst, nil
}

func migrateSnapshot(path string) error {
	db, err := database.NewSQLiteDatabase(path, nil)
	if err != nil {
		return fmt.Errorf("opening catalogue snapshot: %w", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		return fmt.Errorf("catalogue snapshot unusable: %w", err)
	}
	return nil
}
