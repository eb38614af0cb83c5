package testutil

import (
	"savehaven/internal/fs"
	"savehaven/internal/store"
	"savehaven/internal/transfer"
)

// NewTestStore creates a new in-memory store that applies the default ignore rules.
func NewTestStore(opts ...transfer.Option) *store.MemoryStore {
	opts = append([]transfer.Option{transfer.WithIgnore(fs.NewDefaultIgnoreMatcher(nil))}, opts...)
	return store.NewMemoryStore(transfer.NewCopier(opts...))
}
