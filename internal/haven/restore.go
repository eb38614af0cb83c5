package haven

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Restore copies the managed backup of a save back to dst, the game's live save path.
// When dst is empty the path the save was originally copied from is used.
// Returns the absolute path written.
//
// If the managed copy has disappeared the error wraps ErrNotFound and dst is not touched.
func (s *Service) Restore(saveID int64, dst string) (string, error) {
	save, err := s.database.FindSaveByID(saveID)
	if err != nil {
		return "", fmt.Errorf("finding save: %w", err)
	}
	if save == nil {
		return "", fmt.Errorf("%w: no save with id %d", ErrNotFound, saveID)
	}

	location, err := s.database.FindLocationByID(save.LocationID)
	if err != nil {
		return "", fmt.Errorf("finding location: %w", err)
	}
	if location == nil {
		return "", fmt.Errorf("location %d of save %d is missing", save.LocationID, save.ID)
	}

	dst = strings.TrimSpace(dst)
	if dst == "" {
		dst = location.Description
	}
	if dst == "" {
		return "", fmt.Errorf("%w: no restore destination given and none recorded", ErrParse)
	}

	absDst, err := filepath.Abs(dst)
	if err != nil {
		return "", fmt.Errorf("%w: resolving destination: %w", ErrParse, err)
	}

	s.logger.Info("restore started", "save_id", save.ID, "location", location.LocationPath, "dst", absDst)
	written, err := s.store.Get(location.LocationPath, absDst)
	if err != nil {
		return "", fmt.Errorf("restoring save %d: %w", save.ID, err)
	}

	s.logger.Info("save restored", "save_id", save.ID, "dst", written)
	return written, nil
}
