package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"savehaven/internal/config"
	"savehaven/internal/database"
	"savehaven/internal/database/sqlc"
	"savehaven/internal/encryption"
	"savehaven/internal/fs"
	"savehaven/internal/haven"
	"savehaven/internal/store"
	"savehaven/internal/transfer"
)

// Options tune how an App is built. The zero value is usable.
type Options struct {
	// Verbose copies log output to Stderr.
	Verbose bool
	Stderr  io.Writer

	// Passphrase unlocks the private key the first time an encrypted backup is restored.
	Passphrase encryption.PassphraseFunc

	Clock haven.Clock
	IDs   haven.IDGenerator
}

// App is the application layer between the menu/CLI and haven.Service.
// It constructs all dependencies from config, records catalogue-changing
// operations, and uploads a catalogue snapshot to the store on Close.
type App struct {
	cfg     *config.Config
	db      *database.SQLiteDatabase
	store   haven.Store
	service *haven.Service
	logger  haven.Logger
	logFile *os.File
	changed bool
}

// New creates a fully wired App from the given config. The caller must call Close when done.
func New(ctx context.Context, cfg *config.Config, opts Options) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if opts.Clock == nil {
		opts.Clock = haven.RealClock{}
	}
	if opts.IDs == nil {
		opts.IDs = haven.UUIDGenerator{}
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}

	sessionID := opts.Clock.Now().UTC().Format("20060102T150405Z")
	slogger, logFile, err := newLogger(cfg.LogDir, sessionID, opts.Verbose, opts.Stderr)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	logger := &slogAdapter{l: slogger}

	codec, err := encryption.NewCodecFromConfig(cfg.Encryption, opts.Passphrase)
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("creating codec: %w", err)
	}

	copierOpts := []transfer.Option{
		transfer.WithIgnore(fs.NewDefaultIgnoreMatcher(cfg.Filesystem.Ignore)),
		transfer.WithLogger(logger),
	}
	if codec != nil {
		copierOpts = append(copierOpts, transfer.WithCodec(codec))
	}

	st, err := store.NewStoreFromConfig(ctx, cfg.Store, transfer.NewCopier(copierOpts...))
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("creating store: %w", err)
	}
	if err := st.ValidateSetup(); err != nil {
		logFile.Close()
		return nil, fmt.Errorf("checking store: %w", err)
	}

	db, err := database.NewDatabaseFromConfig(cfg.Database, opts.Clock)
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("creating database: %w", err)
	}
	if err := db.CheckMigrations(); err != nil {
		db.Close()
		logFile.Close()
		return nil, fmt.Errorf("database schema out of date: %w", err)
	}

	svc := haven.NewService(db, st, fs.NewOSFilesystemManager(), logger, opts.Clock, opts.IDs)
	logger.Debug("session started", "host_id", cfg.HostID, "database", db.Path(), "store", cfg.Store.Type)

	return &App{
		cfg:     cfg,
		db:      db,
		store:   st,
		service: svc,
		logger:  logger,
		logFile: logFile,
	}, nil
}

// Logger returns the session logger.
func (a *App) Logger() haven.Logger {
	return a.logger
}

// track persists op, runs fn, and records how it ended.
// A failure to finish the record is only reported when fn itself succeeded.
func (a *App) track(op *Operation, fn func() error) error {
	dbOp, err := a.db.CreateOperation(op.Name, op.Parameters)
	if err != nil {
		return fmt.Errorf("recording operation: %w", err)
	}
	op.ID = dbOp.ID
	a.changed = true

	runErr := fn()
	if runErr != nil {
		op.Fail()
	}
	if err := a.db.FinishOperation(op.ID, op.Status); err != nil {
		if runErr != nil {
			a.logger.Warn("finishing operation failed", "operation_id", op.ID, "error", err)
			return runErr
		}
		return fmt.Errorf("finishing operation: %w", err)
	}
	return runErr
}

// AddSave copies a save into the store and catalogues it.
func (a *App) AddSave(req haven.AddSaveRequest) (*haven.SaveRecord, error) {
	op := NewOperation("add", Params("title", req.Title, "platform", req.Platform, "path", req.SavePath))

	var record *haven.SaveRecord
	err := a.track(op, func() error {
		var err error
		record, err = a.service.AddSave(req)
		return err
	})
	return record, err
}

// Retrieve returns the game with exactly this title and its saves.
func (a *App) Retrieve(title string) (*haven.GameSaves, error) {
	return a.service.Retrieve(title)
}

// Restore copies the backup of a save to dst, or to its original location when dst is empty.
func (a *App) Restore(saveID int64, dst string) (string, error) {
	op := NewOperation("restore", Params("save_id", strconv.FormatInt(saveID, 10), "dst", dst))

	var restored string
	err := a.track(op, func() error {
		var err error
		restored, err = a.service.Restore(saveID, dst)
		return err
	})
	return restored, err
}

// ListGames returns every catalogued game.
func (a *App) ListGames() ([]*sqlc.Game, error) {
	return a.service.ListGames()
}

// ListSaves returns the saves of the game with exactly this title.
func (a *App) ListSaves(title string) ([]*haven.SaveRecord, error) {
	return a.service.ListSaves(title)
}

// GetHistory returns the most recent catalogue-changing operations.
func (a *App) GetHistory(limit int) ([]*sqlc.Operation, error) {
	return a.service.GetHistory(limit)
}

// Close closes all resources. If the session changed the catalogue, a snapshot of it
// is written to the store first.
func (a *App) Close() error {
	var firstErr error
	keep := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	var snapshot string
	if a.changed {
		path, err := a.snapshotCatalog()
		keep(err)
		snapshot = path
	}

	if err := a.db.Close(); err != nil {
		keep(fmt.Errorf("closing database: %w", err))
	}

	if snapshot != "" {
		keep(a.uploadCatalog(snapshot))
		os.Remove(snapshot)
	}

	if a.logFile != nil {
		a.logFile.Close()
	}
	return firstErr
}

// snapshotCatalog writes a consistent copy of the catalogue to a temp file.
func (a *App) snapshotCatalog() (string, error) {
	tmp, err := os.CreateTemp("", "savehaven-catalog-*.db")
	if err != nil {
		return "", fmt.Errorf("creating temp file for catalogue snapshot: %w", err)
	}
	path := tmp.Name()
	tmp.Close()

	if err := a.db.BackupTo(path); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("snapshotting catalogue: %w", err)
	}
	return path, nil
}

func (a *App) uploadCatalog(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening catalogue snapshot: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat catalogue snapshot: %w", err)
	}

	if err := a.store.PutCatalog(a.cfg.HostID, f, info.Size()); err != nil {
		return fmt.Errorf("uploading catalogue snapshot: %w", err)
	}
	a.logger.Info("catalogue snapshot stored", "host_id", a.cfg.HostID, "size", info.Size())
	return nil
}
