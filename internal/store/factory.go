package store

import (
	"context"
	"fmt"

	"savehaven/internal/config"
	"savehaven/internal/haven"
	"savehaven/internal/transfer"
)

// NewStoreFromConfig creates a Store implementation based on the store config type.
// copier carries the codec and ignore rules every backend applies.
func NewStoreFromConfig(ctx context.Context, cfg config.StoreConfig, copier *transfer.Copier) (haven.Store, error) {
	switch cfg.Type {
	case "memory":
		return NewMemoryStore(copier), nil
	case "filesystem":
		if cfg.FSRoot == "" {
			return nil, fmt.Errorf("filesystem store requires fs_root to be set")
		}
		return NewFileSystemStore(cfg.FSRoot, copier)
	case "s3":
		if cfg.S3Bucket == "" {
			return nil, fmt.Errorf("s3 store requires s3_bucket to be set")
		}
		return NewS3StoreFromConfig(ctx, cfg, copier)
	default:
		return nil, fmt.Errorf("unknown store type: %s", cfg.Type)
	}
}
