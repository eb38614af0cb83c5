package store

import (
	"bytes"
	"fmt"
	"io"
	iofs "io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"sync"

	"savehaven/internal/haven"
	"savehaven/internal/transfer"
)

const memoryScheme = "memory://"

// memoryFile is one stored file of a backup.
type memoryFile struct {
	data []byte
	mode iofs.FileMode
}

// MemoryStore is an in-memory implementation of the Store interface.
// It keeps every backup in memory, making it useful for testing.
// This implementation is safe for concurrent use.
type MemoryStore struct {
	copier   *transfer.Copier
	backups  map[string]map[string]memoryFile // location -> rel path ("" for a single file) -> file
	catalogs map[string][]byte                // hostID -> snapshot
	mu       sync.RWMutex
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore(copier *transfer.Copier) *MemoryStore {
	return &MemoryStore{
		copier:   copier,
		backups:  make(map[string]map[string]memoryFile),
		catalogs: make(map[string][]byte),
	}
}

func (m *MemoryStore) Locate(key string) string {
	return memoryScheme + path.Clean(key)
}

func (m *MemoryStore) Put(srcPath string, location string) error {
	files := make(map[string]memoryFile)
	err := m.copier.Walk(srcPath, func(p, rel string, info iofs.FileInfo) error {
		var buf bytes.Buffer
		if err := m.copier.Encode(p, &buf); err != nil {
			return err
		}
		files[rel] = memoryFile{data: buf.Bytes(), mode: info.Mode().Perm()}
		return nil
	})
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.backups[location] = files
	return nil
}

func (m *MemoryStore) Get(location string, dstPath string) (string, error) {
	m.mu.RLock()
	files, ok := m.backups[location]
	m.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("%w: backup %s no longer exists", haven.ErrNotFound, location)
	}

	if single, ok := files[""]; ok {
		dstPath = transfer.IntoDirectory(dstPath, path.Base(location))
		return dstPath, m.copier.Decode(bytes.NewReader(single.data), dstPath, single.mode)
	}

	rels := make([]string, 0, len(files))
	for rel := range files {
		rels = append(rels, rel)
	}
	sort.Strings(rels)

	if err := os.MkdirAll(dstPath, 0755); err != nil {
		return "", fmt.Errorf("%w: creating %s: %w", haven.ErrIO, dstPath, err)
	}
	for _, rel := range rels {
		f := files[rel]
		if err := m.copier.Decode(bytes.NewReader(f.data), filepath.Join(dstPath, filepath.FromSlash(rel)), f.mode); err != nil {
			return "", err
		}
	}
	return dstPath, nil
}

func (m *MemoryStore) Remove(location string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.backups, location)
	return nil
}

func (m *MemoryStore) PutCatalog(hostID string, r io.Reader, size int64) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read catalogue: %w", err)
	}
	if int64(len(data)) != size {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", size, len(data))
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.catalogs[hostID] = data
	return nil
}

// GetCatalog copies the catalogue snapshot for hostID to w.
func (m *MemoryStore) GetCatalog(hostID string, w io.Writer) error {
	m.mu.RLock()
	data, ok := m.catalogs[hostID]
	m.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: no catalogue for host %s", haven.ErrNotFound, hostID)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write catalogue: %w", err)
	}
	return nil
}

// Files lists the stored relative paths of a backup, "" for a single-file backup.
func (m *MemoryStore) Files(location string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var rels []string
	for rel := range m.backups[location] {
		rels = append(rels, rel)
	}
	sort.Strings(rels)
	return rels
}

// Len returns the number of backups held.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.backups)
}

// ValidateSetup always succeeds for the in-memory store.
func (m *MemoryStore) ValidateSetup() error {
	return nil
}

// Compile-time check that MemoryStore implements haven.Store interface
var _ haven.Store = (*MemoryStore)(nil)
