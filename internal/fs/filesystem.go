package fs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"savehaven/internal/haven"
)

// OSFilesystemManager is the real filesystem implementation of FilesystemManager.
type OSFilesystemManager struct {
	homeDir func() (string, error)
}

// NewOSFilesystemManager creates a new filesystem manager that operates on the real filesystem.
func NewOSFilesystemManager() *OSFilesystemManager {
	return &OSFilesystemManager{homeDir: os.UserHomeDir}
}

// Resolve validates a raw path and returns a Path object.
// A leading "~" is expanded to the user's home directory.
// Only regular files and directories are accepted.
func (m *OSFilesystemManager) Resolve(rawPath string) (*haven.Path, error) {
	expanded, err := m.expandHome(strings.TrimSpace(rawPath))
	if err != nil {
		return nil, err
	}
	if expanded == "" {
		return nil, fmt.Errorf("empty path")
	}

	absPath, err := filepath.Abs(expanded)
	if err != nil {
		return nil, fmt.Errorf("resolving absolute path: %w", err)
	}

	info, err := os.Lstat(absPath)
	if err != nil {
		return nil, fmt.Errorf("stat path: %w", err)
	}

	mode := info.Mode()
	switch {
	case mode&os.ModeSymlink != 0:
		return nil, fmt.Errorf("symlinks not supported: %s", absPath)
	case mode&os.ModeDevice != 0:
		return nil, fmt.Errorf("device files not supported: %s", absPath)
	case mode&os.ModeNamedPipe != 0:
		return nil, fmt.Errorf("named pipes not supported: %s", absPath)
	case mode&os.ModeSocket != 0:
		return nil, fmt.Errorf("sockets not supported: %s", absPath)
	}

	return haven.NewPath(absPath, info.IsDir(), info), nil
}

func (m *OSFilesystemManager) expandHome(p string) (string, error) {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p, nil
	}
	home, err := m.homeDir()
	if err != nil {
		return "", fmt.Errorf("expanding ~: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~")), nil
}

// Compile-time check that OSFilesystemManager implements haven.FilesystemManager interface
var _ haven.FilesystemManager = (*OSFilesystemManager)(nil)
