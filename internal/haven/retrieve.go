package haven

import (
	"fmt"
	"strings"

	"savehaven/internal/database/sqlc"
)

// Retrieve looks up a game by exact title and returns it with all of its saves.
// An unknown title wraps ErrNotFound. Nothing is written to the catalogue.
func (s *Service) Retrieve(title string) (*GameSaves, error) {
	title = strings.TrimSpace(title)
	game, err := s.database.FindGameByTitle(title)
	if err != nil {
		return nil, fmt.Errorf("finding game: %w", err)
	}
	if game == nil {
		return nil, fmt.Errorf("%w: no game titled %q", ErrNotFound, title)
	}

	saves, err := s.database.FindSavesForGame(game.ID)
	if err != nil {
		return nil, fmt.Errorf("finding saves: %w", err)
	}

	result := &GameSaves{Game: game, Saves: make([]*SaveRecord, 0, len(saves))}
	for _, save := range saves {
		record, err := s.loadRecord(game, save)
		if err != nil {
			return nil, err
		}
		result.Saves = append(result.Saves, record)
	}
	return result, nil
}

// ListSaves returns the saves of the game with exactly this title, oldest first.
func (s *Service) ListSaves(title string) ([]*SaveRecord, error) {
	result, err := s.Retrieve(title)
	if err != nil {
		return nil, err
	}
	return result.Saves, nil
}

// ListGames returns every catalogued game.
func (s *Service) ListGames() ([]*sqlc.Game, error) {
	games, err := s.database.ListGames()
	if err != nil {
		return nil, fmt.Errorf("listing games: %w", err)
	}
	return games, nil
}

// loadRecord joins a save with its location and platform.
func (s *Service) loadRecord(game *sqlc.Game, save *sqlc.Save) (*SaveRecord, error) {
	location, err := s.database.FindLocationByID(save.LocationID)
	if err != nil {
		return nil, fmt.Errorf("finding location for save %d: %w", save.ID, err)
	}
	if location == nil {
		return nil, fmt.Errorf("location %d of save %d is missing", save.LocationID, save.ID)
	}

	record := &SaveRecord{Save: save, Game: game, Location: location}
	if save.PlatformID.Valid {
		platform, err := s.database.FindPlatformByID(save.PlatformID.Int64)
		if err != nil {
			return nil, fmt.Errorf("finding platform for save %d: %w", save.ID, err)
		}
		record.Platform = platform
	}
	return record, nil
}
