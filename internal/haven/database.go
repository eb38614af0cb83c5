package haven

import (
	"database/sql"
	"time"

	"savehaven/internal/database/sqlc"
)

// Database provides the catalogue repository.
// Lookups return (nil, nil) when nothing matches.
type Database interface {
	// Game operations

	// AddGame inserts a game. A title that is already catalogued fails with ErrDuplicateTitle.
	AddGame(title, publisher string, releaseDate sql.NullTime) (*sqlc.Game, error)

	// FindGameByTitle returns the game with exactly this title.
	FindGameByTitle(title string) (*sqlc.Game, error)

	// FindGameByID returns the game with the given id.
	FindGameByID(id int64) (*sqlc.Game, error)

	// ListGames returns every catalogued game ordered by title.
	ListGames() ([]*sqlc.Game, error)

	// Platform operations

	// AddPlatform inserts a platform by name.
	AddPlatform(name string) (*sqlc.Platform, error)

	// FindPlatformByName returns the platform with exactly this name.
	FindPlatformByName(name string) (*sqlc.Platform, error)

	// FindPlatformByID returns the platform with the given id.
	FindPlatformByID(id int64) (*sqlc.Platform, error)

	// Location operations

	// AddLocation records where a managed backup copy lives.
	AddLocation(path, description string) (*sqlc.Location, error)

	// FindLocationByID returns the location with the given id.
	FindLocationByID(id int64) (*sqlc.Location, error)

	// Save operations

	// AddSave inserts a save referencing an existing game and location.
	// Foreign key violations are returned as errors and nothing is inserted.
	AddSave(gameID, locationID int64, platformID sql.NullInt64, metadata string) (*sqlc.Save, error)

	// FindSaveByID returns the save with the given id.
	FindSaveByID(id int64) (*sqlc.Save, error)

	// FindSavesForGame returns every save of a game in insertion order.
	FindSavesForGame(gameID int64) ([]*sqlc.Save, error)

	// RecordSave atomically finds or creates the game and platform, then inserts
	// the location and the save. Nothing is written if any step fails.
	RecordSave(params NewSave) (*SaveRecord, error)

	// Operation history

	// CreateOperation records the start of a catalogue-changing operation.
	CreateOperation(operation string, parameters string) (*sqlc.Operation, error)

	// FinishOperation records the end of an operation with its final status.
	FinishOperation(id int64, status string) error

	// ListOperations returns the most recent operations, newest first.
	ListOperations(limit int) ([]*sqlc.Operation, error)

	// BackupTo writes a consistent copy of the catalogue to destPath.
	BackupTo(destPath string) error

	// Close closes the database connection.
	Close() error
}

// NewSave carries everything RecordSave needs to catalogue one backup.
type NewSave struct {
	Title       string
	Publisher   string
	ReleaseDate sql.NullTime
	Platform    string // empty means no platform
	Location    string
	Description string
	Metadata    string
	CreatedAt   time.Time
}

// SaveRecord is a save joined with the rows it references.
type SaveRecord struct {
	Save     *sqlc.Save
	Game     *sqlc.Game
	Location *sqlc.Location
	Platform *sqlc.Platform // nil when the save has no platform
}

// GameSaves is a game together with all of its saves.
type GameSaves struct {
	Game  *sqlc.Game
	Saves []*SaveRecord
}
