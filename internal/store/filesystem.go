// Package store implements the managed locations that hold backup copies.
package store

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"savehaven/internal/haven"
	"savehaven/internal/transfer"
)

// FileSystemStore keeps backup copies in a directory tree:
//
//	<root>/
//	  saves/
//	    <title>/<platform>/<slot>/<name>   (managed copies)
//	  catalog/
//	    <hostID>.db                        (catalogue snapshots)
type FileSystemStore struct {
	root       string
	savesDir   string
	catalogDir string
	copier     *transfer.Copier
}

// NewFileSystemStore creates a filesystem store rooted at the given path.
func NewFileSystemStore(root string, copier *transfer.Copier) (*FileSystemStore, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving store root: %w", err)
	}
	savesDir := filepath.Join(absRoot, "saves")
	catalogDir := filepath.Join(absRoot, "catalog")

	for _, dir := range []string{savesDir, catalogDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create store directory: %w", err)
		}
	}

	return &FileSystemStore{
		root:       absRoot,
		savesDir:   savesDir,
		catalogDir: catalogDir,
		copier:     copier,
	}, nil
}

// Locate returns the absolute path the backup for key is written to.
func (s *FileSystemStore) Locate(key string) string {
	return filepath.Join(s.savesDir, filepath.FromSlash(key))
}

func (s *FileSystemStore) Put(srcPath string, location string) error {
	return s.copier.Backup(srcPath, location)
}

func (s *FileSystemStore) Get(location string, dstPath string) (string, error) {
	return s.copier.Restore(location, dstPath)
}

// Remove deletes the backup and its slot directory when that is left empty.
func (s *FileSystemStore) Remove(location string) error {
	if err := os.RemoveAll(location); err != nil {
		return fmt.Errorf("removing %s: %w", location, err)
	}
	// Fails harmlessly when the slot still holds something.
	_ = os.Remove(filepath.Dir(location))
	return nil
}

// PutCatalog writes the catalogue snapshot for hostID, replacing any previous one.
func (s *FileSystemStore) PutCatalog(hostID string, r io.Reader, size int64) error {
	dst := filepath.Join(s.catalogDir, hostID+".db")
	return transfer.WriteFile(dst, &sizeCheckReader{r: r, want: size}, 0600)
}

// GetCatalog copies the catalogue snapshot for hostID to w.
func (s *FileSystemStore) GetCatalog(hostID string, w io.Writer) error {
	f, err := os.Open(filepath.Join(s.catalogDir, hostID+".db"))
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: no catalogue for host %s", haven.ErrNotFound, hostID)
		}
		return fmt.Errorf("opening catalogue: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("reading catalogue: %w", err)
	}
	return nil
}

// ValidateSetup verifies that the store directories are accessible.
func (s *FileSystemStore) ValidateSetup() error {
	for _, dir := range []string{s.root, s.savesDir, s.catalogDir} {
		info, err := os.Stat(dir)
		if err != nil {
			return fmt.Errorf("store directory not accessible: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("store path is not a directory: %s", dir)
		}
	}
	return nil
}

// Compile-time check that FileSystemStore implements haven.Store interface
var _ haven.Store = (*FileSystemStore)(nil)
