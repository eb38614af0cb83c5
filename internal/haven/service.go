package haven

import (
	"database/sql"
	"fmt"
	"path"
	"path/filepath"
	"strings"
)

// Service is the orchestration layer that coordinates the catalogue, the managed
// store and the filesystem to perform the operations needed by the menu and CLI.
type Service struct {
	database Database
	store    Store
	fsmgr    FilesystemManager
	logger   Logger
	clock    Clock
	idgen    IDGenerator
}

// NewService creates a new Service with the provided dependencies.
func NewService(database Database, store Store, fsmgr FilesystemManager, logger Logger, clock Clock, idgen IDGenerator) *Service {
	return &Service{
		database: database,
		store:    store,
		fsmgr:    fsmgr,
		logger:   logger,
		clock:    clock,
		idgen:    idgen,
	}
}

// AddSaveRequest holds the fields collected by the add flow.
type AddSaveRequest struct {
	Title       string
	Publisher   string
	ReleaseDate sql.NullTime
	Platform    string
	SavePath    string
	Notes       string
}

// AddSave copies a save file (or save directory) into the managed store and catalogues it.
//
// The copy happens first; the game, platform, location and save rows are then written in
// one transaction. If either step fails the partial copy is removed again, so a failed add
// leaves neither rows nor files behind.
func (s *Service) AddSave(req AddSaveRequest) (*SaveRecord, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: game title is required", ErrParse)
	}
	if strings.TrimSpace(req.SavePath) == "" {
		return nil, fmt.Errorf("%w: save file location is required", ErrParse)
	}

	src, err := s.fsmgr.Resolve(strings.TrimSpace(req.SavePath))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}

	platform := strings.TrimSpace(req.Platform)
	key := backupKey(title, platform, s.idgen.New(), filepath.Base(src.String()))
	location := s.store.Locate(key)

	if err := s.store.Put(src.String(), location); err != nil {
		s.removeBackup(location)
		return nil, fmt.Errorf("backing up %s: %w", src.String(), err)
	}
	s.logger.Debug("save copied", "src", src.String(), "location", location)

	record, err := s.database.RecordSave(NewSave{
		Title:       title,
		Publisher:   strings.TrimSpace(req.Publisher),
		ReleaseDate: req.ReleaseDate,
		Platform:    platform,
		Location:    location,
		Description: src.String(),
		Metadata:    strings.TrimSpace(req.Notes),
		CreatedAt:   s.clock.Now(),
	})
	if err != nil {
		s.removeBackup(location)
		return nil, fmt.Errorf("recording save: %w", err)
	}

	s.logger.Info("save added", "title", title, "save_id", record.Save.ID, "location", location)
	return record, nil
}

// removeBackup deletes whatever a failed add left at location.
func (s *Service) removeBackup(location string) {
	if err := s.store.Remove(location); err != nil {
		s.logger.Warn("removing orphaned backup failed", "location", location, "error", err)
	}
}

// backupKey builds the store key for a new backup: <title>/<platform>/<slot>/<name>.
// name keeps the save's own file name so a restore into a directory recreates it.
func backupKey(title, platform, slot, name string) string {
	if platform == "" {
		platform = "any"
	}
	return path.Join(sanitize(title), sanitize(platform), slot, fileSegment(name))
}

// fileSegment returns name unchanged when it is usable as a single path segment.
func fileSegment(name string) string {
	switch {
	case name == "", name == ".", name == "..", strings.ContainsAny(name, `/\`):
		return sanitize(name)
	}
	return name
}

// sanitize reduces a name to characters that are safe in a path segment on every host OS.
func sanitize(name string) string {
	mapped := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, strings.TrimSpace(name))
	mapped = strings.Trim(mapped, ".")
	if mapped == "" {
		return "_"
	}
	return mapped
}
