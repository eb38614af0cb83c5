package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/mattn/go-sqlite3"

	"savehaven/internal/database/migrations"
	"savehaven/internal/database/sqlc"
	"savehaven/internal/haven"
)

// SQLiteDatabase implements the Database interface using SQLite.
type SQLiteDatabase struct {
	db      *sql.DB
	queries *sqlc.Queries
	path    string
	clock   haven.Clock
}

// NewSQLiteDatabase creates a new SQLite database connection.
// path can be a file path or ":memory:" for in-memory database.
// A nil clock uses the wall clock.
func NewSQLiteDatabase(path string, clock haven.Clock) (*SQLiteDatabase, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}
	return NewSQLiteDatabaseFromDB(db, path, clock), nil
}

// NewSQLiteDatabaseFromDB wraps an existing database connection.
// The caller is responsible for ensuring the connection is properly configured.
func NewSQLiteDatabaseFromDB(db *sql.DB, path string, clock haven.Clock) *SQLiteDatabase {
	if clock == nil {
		clock = haven.RealClock{}
	}
	return &SQLiteDatabase{
		db:      db,
		queries: sqlc.New(db),
		path:    path,
		clock:   clock,
	}
}

// OpenConnection opens and configures a SQLite database connection with appropriate PRAGMAs.
// This is exported for use in tools and tests that need a properly configured SQLite connection.
// path can be a file path or ":memory:" for in-memory database.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Pragmas are per connection and ":memory:" is per connection too.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

// Migrate brings the schema up to the latest version.
func (s *SQLiteDatabase) Migrate() error {
	return migrations.MigrateUp(s.db)
}

// Game operations

func (s *SQLiteDatabase) AddGame(title, publisher string, releaseDate sql.NullTime) (*sqlc.Game, error) {
	game, err := s.queries.InsertGame(context.Background(), sqlc.InsertGameParams{
		Title:       title,
		Publisher:   publisher,
		ReleaseDate: releaseDate,
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: %q", haven.ErrDuplicateTitle, title)
		}
		return nil, fmt.Errorf("creating game: %w", err)
	}
	return &game, nil
}

func (s *SQLiteDatabase) FindGameByTitle(title string) (*sqlc.Game, error) {
	game, err := s.queries.GetGameByTitle(context.Background(), title)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("finding game by title: %w", err)
	}
	return &game, nil
}

func (s *SQLiteDatabase) FindGameByID(id int64) (*sqlc.Game, error) {
	game, err := s.queries.GetGameByID(context.Background(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("finding game by id: %w", err)
	}
	return &game, nil
}

func (s *SQLiteDatabase) ListGames() ([]*sqlc.Game, error) {
	games, err := s.queries.ListGames(context.Background())
	if err != nil {
		return nil, fmt.Errorf("listing games: %w", err)
	}

	result := make([]*sqlc.Game, len(games))
	for i := range games {
		result[i] = &games[i]
	}
	return result, nil
}

// Platform operations

func (s *SQLiteDatabase) AddPlatform(name string) (*sqlc.Platform, error) {
	platform, err := s.queries.InsertPlatform(context.Background(), name)
	if err != nil {
		return nil, fmt.Errorf("creating platform: %w", err)
	}
	return &platform, nil
}

func (s *SQLiteDatabase) FindPlatformByName(name string) (*sqlc.Platform, error) {
	platform, err := s.queries.GetPlatformByName(context.Background(), name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("finding platform by name: %w", err)
	}
	return &platform, nil
}

func (s *SQLiteDatabase) FindPlatformByID(id int64) (*sqlc.Platform, error) {
	platform, err := s.queries.GetPlatformByID(context.Background(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("finding platform by id: %w", err)
	}
	return &platform, nil
}

// Location operations

func (s *SQLiteDatabase) AddLocation(path, description string) (*sqlc.Location, error) {
	location, err := s.queries.InsertLocation(context.Background(), sqlc.InsertLocationParams{
		LocationPath: path,
		Description:  description,
	})
	if err != nil {
		return nil, fmt.Errorf("creating location: %w", err)
	}
	return &location, nil
}

func (s *SQLiteDatabase) FindLocationByID(id int64) (*sqlc.Location, error) {
	location, err := s.queries.GetLocationByID(context.Background(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("finding location by id: %w", err)
	}
	return &location, nil
}

// Save operations

func (s *SQLiteDatabase) AddSave(gameID, locationID int64, platformID sql.NullInt64, metadata string) (*sqlc.Save, error) {
	save, err := s.queries.InsertSave(context.Background(), sqlc.InsertSaveParams{
		GameID:     gameID,
		LocationID: locationID,
		PlatformID: platformID,
		Metadata:   metadata,
		CreatedAt:  s.clock.Now(),
	})
	if err != nil {
		return nil, fmt.Errorf("creating save: %w", err)
	}
	return &save, nil
}

func (s *SQLiteDatabase) FindSaveByID(id int64) (*sqlc.Save, error) {
	save, err := s.queries.GetSaveByID(context.Background(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("finding save by id: %w", err)
	}
	return &save, nil
}

func (s *SQLiteDatabase) FindSavesForGame(gameID int64) ([]*sqlc.Save, error) {
	saves, err := s.queries.GetSavesByGameID(context.Background(), gameID)
	if err != nil {
		return nil, fmt.Errorf("finding saves for game: %w", err)
	}

	result := make([]*sqlc.Save, len(saves))
	for i := range saves {
		result[i] = &saves[i]
	}
	return result, nil
}

// RecordSave writes the game (when new), platform (when new), location and save
// rows in a single transaction.
//
// An existing game keeps its publisher and release date; the values in params are
// only used when the game is created here.
func (s *SQLiteDatabase) RecordSave(params haven.NewSave) (*haven.SaveRecord, error) {
	ctx := context.Background()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	qtx := s.queries.WithTx(tx)

	game, err := qtx.GetGameByTitle(ctx, params.Title)
	if errors.Is(err, sql.ErrNoRows) {
		game, err = qtx.InsertGame(ctx, sqlc.InsertGameParams{
			Title:       params.Title,
			Publisher:   params.Publisher,
			ReleaseDate: params.ReleaseDate,
		})
	}
	if err != nil {
		return nil, fmt.Errorf("finding or creating game %q: %w", params.Title, err)
	}

	record := &haven.SaveRecord{Game: &game}

	var platformID sql.NullInt64
	if name := strings.TrimSpace(params.Platform); name != "" {
		platform, err := qtx.GetPlatformByName(ctx, name)
		if errors.Is(err, sql.ErrNoRows) {
			platform, err = qtx.InsertPlatform(ctx, name)
		}
		if err != nil {
			return nil, fmt.Errorf("finding or creating platform %q: %w", name, err)
		}
		platformID = sql.NullInt64{Int64: platform.ID, Valid: true}
		record.Platform = &platform
	}

	location, err := qtx.InsertLocation(ctx, sqlc.InsertLocationParams{
		LocationPath: params.Location,
		Description:  params.Description,
	})
	if err != nil {
		return nil, fmt.Errorf("creating location: %w", err)
	}
	record.Location = &location

	createdAt := params.CreatedAt
	if createdAt.IsZero() {
		createdAt = s.clock.Now()
	}
	save, err := qtx.InsertSave(ctx, sqlc.InsertSaveParams{
		GameID:     game.ID,
		LocationID: location.ID,
		PlatformID: platformID,
		Metadata:   params.Metadata,
		CreatedAt:  createdAt,
	})
	if err != nil {
		return nil, fmt.Errorf("creating save: %w", err)
	}
	record.Save = &save

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}

	return record, nil
}

// Operation tracking

func (s *SQLiteDatabase) CreateOperation(operation string, parameters string) (*sqlc.Operation, error) {
	op, err := s.queries.InsertOperation(context.Background(), sqlc.InsertOperationParams{
		StartedAt:  s.clock.Now(),
		Operation:  operation,
		Parameters: parameters,
	})
	if err != nil {
		return nil, fmt.Errorf("creating operation: %w", err)
	}
	return &op, nil
}

func (s *SQLiteDatabase) FinishOperation(id int64, status string) error {
	err := s.queries.UpdateOperationFinished(context.Background(), sqlc.UpdateOperationFinishedParams{
		FinishedAt: sql.NullTime{Time: s.clock.Now(), Valid: true},
		Status:     status,
		ID:         id,
	})
	if err != nil {
		return fmt.Errorf("finishing operation: %w", err)
	}
	return nil
}

func (s *SQLiteDatabase) ListOperations(limit int) ([]*sqlc.Operation, error) {
	ops, err := s.queries.GetOperations(context.Background(), int64(limit))
	if err != nil {
		return nil, fmt.Errorf("listing operations: %w", err)
	}

	result := make([]*sqlc.Operation, len(ops))
	for i := range ops {
		result[i] = &ops[i]
	}
	return result, nil
}

// Path returns the database file path (or ":memory:" for in-memory databases).
func (s *SQLiteDatabase) Path() string {
	return s.path
}

// CheckMigrations verifies the database schema is up-to-date.
func (s *SQLiteDatabase) CheckMigrations() error {
	return migrations.CheckDBMigrationStatus(s.db)
}

// BackupTo creates a complete copy of the database at destPath using VACUUM INTO.
func (s *SQLiteDatabase) BackupTo(destPath string) error {
	_, err := s.db.Exec("VACUUM INTO ?", destPath)
	if err != nil {
		return fmt.Errorf("backing up database: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteDatabase) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}

// Compile-time check that SQLiteDatabase implements haven.Database interface
var _ haven.Database = (*SQLiteDatabase)(nil)
