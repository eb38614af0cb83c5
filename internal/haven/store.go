package haven

import "io"

// Store is the managed location that holds backup copies of save files.
// Locations returned by Locate are what the catalogue records in locations.location_path.
type Store interface {
	// Locate maps a slash-separated backup key to a location inside the store.
	Locate(key string) string

	// Put copies the save file or directory at srcPath to location.
	// Failures wrap ErrIO.
	Put(srcPath string, location string) error

	// Get copies the backup at location to dstPath and returns the path written.
	// A single-file backup restored into an existing directory keeps its file name.
	// A location that no longer exists wraps ErrNotFound and leaves dstPath untouched.
	Get(location string, dstPath string) (string, error)

	// Remove deletes the backup at location. Used to clean up after a failed add.
	Remove(location string) error

	// PutCatalog stores a snapshot of the catalogue database for a host.
	// size is the number of bytes that will be read from r.
	PutCatalog(hostID string, r io.Reader, size int64) error

	// GetCatalog copies the catalogue snapshot stored for hostID to w.
	// A host without a snapshot wraps ErrNotFound.
	GetCatalog(hostID string, w io.Writer) error

	// ValidateSetup verifies that the store is accessible and properly configured.
	ValidateSetup() error
}
