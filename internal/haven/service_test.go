package haven_test

import (
	"database/sql"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"savehaven/internal/database"
	"savehaven/internal/fs"
	"savehaven/internal/haven"
	"savehaven/internal/store"
	"savehaven/internal/testutil"
	"savehaven/internal/transfer"
)

type fixture struct {
	svc   *haven.Service
	db    *database.SQLiteDatabase
	store *store.MemoryStore
	clock *testutil.StubClock
	dir   string
}

func setup(t *testing.T) *fixture {
	t.Helper()
	clock := testutil.FixedClock()
	db := testutil.NewTestDatabase(t, clock)
	st := testutil.NewTestStore()
	svc := haven.NewService(db, st, fs.NewOSFilesystemManager(), haven.NewNopLogger(), clock, testutil.NewStubIDGenerator())
	return &fixture{svc: svc, db: db, store: st, clock: clock, dir: t.TempDir()}
}

// addSave writes a live save file and adds it through the service.
func (f *fixture) addSave(t *testing.T, title, platform, name, content string) *haven.SaveRecord {
	t.Helper()
	src := filepath.Join(f.dir, "live", name)
	testutil.WriteFile(t, src, content)

	record, err := f.svc.AddSave(haven.AddSaveRequest{
		Title:    title,
		Platform: platform,
		SavePath: src,
	})
	if err != nil {
		t.Fatalf("AddSave() error = %v", err)
	}
	return record
}

func TestService_AddSave(t *testing.T) {
	t.Run("catalogues and copies a save file", func(t *testing.T) {
		f := setup(t)
		src := filepath.Join(f.dir, "Hades", "Profile1.sav")
		testutil.WriteFile(t, src, "run 42")
		release, err := haven.ParseReleaseDate("2020-09-17")
		if err != nil {
			t.Fatal(err)
		}

		record, err := f.svc.AddSave(haven.AddSaveRequest{
			Title:       "Hades",
			Publisher:   "Supergiant",
			ReleaseDate: release,
			Platform:    "PC",
			SavePath:    src,
			Notes:       "before final boss",
		})
		if err != nil {
			t.Fatalf("AddSave() error = %v", err)
		}

		if record.Game.Title != "Hades" || record.Game.Publisher != "Supergiant" {
			t.Errorf("game = %+v", record.Game)
		}
		if record.Platform == nil || record.Platform.PlatformName != "PC" {
			t.Errorf("platform = %+v, want PC", record.Platform)
		}
		if record.Save.Metadata != "before final boss" {
			t.Errorf("metadata = %q", record.Save.Metadata)
		}
		if !record.Save.CreatedAt.Equal(f.clock.Now()) {
			t.Errorf("created_at = %v, want %v", record.Save.CreatedAt, f.clock.Now())
		}
		if record.Location.Description != src {
			t.Errorf("location description = %q, want %q", record.Location.Description, src)
		}
		if want := "memory://Hades/PC/slot-1/Profile1.sav"; record.Location.LocationPath != want {
			t.Errorf("location path = %q, want %q", record.Location.LocationPath, want)
		}
		if f.store.Len() != 1 {
			t.Errorf("store holds %d backups, want 1", f.store.Len())
		}
	})

	t.Run("reuses an existing game", func(t *testing.T) {
		f := setup(t)
		first := f.addSave(t, "Celeste", "Switch", "a.sav", "A")
		f.clock.Advance(time.Hour)
		second := f.addSave(t, "Celeste", "Switch", "b.sav", "B")

		if first.Game.ID != second.Game.ID {
			t.Errorf("game ids differ: %d vs %d", first.Game.ID, second.Game.ID)
		}
		if first.Platform.ID != second.Platform.ID {
			t.Errorf("platform ids differ: %d vs %d", first.Platform.ID, second.Platform.ID)
		}
		if !second.Save.CreatedAt.After(first.Save.CreatedAt) {
			t.Errorf("created_at not advancing: %v then %v", first.Save.CreatedAt, second.Save.CreatedAt)
		}
		games, err := f.svc.ListGames()
		if err != nil {
			t.Fatal(err)
		}
		if len(games) != 1 {
			t.Errorf("got %d games, want 1", len(games))
		}
	})

	t.Run("without platform", func(t *testing.T) {
		f := setup(t)
		record := f.addSave(t, "Tetris", "", "t.sav", "lines")

		if record.Platform != nil {
			t.Errorf("platform = %+v, want nil", record.Platform)
		}
		if record.Save.PlatformID.Valid {
			t.Error("platform_id is set")
		}
		if !strings.Contains(record.Location.LocationPath, "/any/") {
			t.Errorf("location path = %q, want platform segment any", record.Location.LocationPath)
		}
	})

	t.Run("save directory", func(t *testing.T) {
		f := setup(t)
		src := filepath.Join(f.dir, "SaveData")
		testutil.WriteTree(t, src, map[string]string{
			"slot1.dat":       "1",
			"profiles/p1.dat": "p",
			".DS_Store":       "junk",
		})

		record, err := f.svc.AddSave(haven.AddSaveRequest{Title: "Stardew Valley", SavePath: src})
		if err != nil {
			t.Fatalf("AddSave() error = %v", err)
		}

		got := f.store.Files(record.Location.LocationPath)
		want := []string{"profiles/p1.dat", "slot1.dat"}
		if strings.Join(got, ",") != strings.Join(want, ",") {
			t.Errorf("stored files = %v, want %v", got, want)
		}
	})

	tests := []struct {
		name    string
		req     func(dir string) haven.AddSaveRequest
		wantErr error
	}{
		{
			name:    "empty title",
			req:     func(dir string) haven.AddSaveRequest { return haven.AddSaveRequest{Title: "  ", SavePath: dir} },
			wantErr: haven.ErrParse,
		},
		{
			name:    "empty save path",
			req:     func(dir string) haven.AddSaveRequest { return haven.AddSaveRequest{Title: "Doom"} },
			wantErr: haven.ErrParse,
		},
		{
			name: "missing save path",
			req: func(dir string) haven.AddSaveRequest {
				return haven.AddSaveRequest{Title: "Doom", SavePath: filepath.Join(dir, "nope.sav")}
			},
			wantErr: haven.ErrIO,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setup(t)

			_, err := f.svc.AddSave(tt.req(f.dir))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("AddSave() error = %v, want %v", err, tt.wantErr)
			}
			if !haven.IsRecoverable(err) {
				t.Errorf("IsRecoverable(%v) = false", err)
			}

			games, err := f.db.ListGames()
			if err != nil {
				t.Fatal(err)
			}
			if len(games) != 0 || f.store.Len() != 0 {
				t.Errorf("failed add left %d games and %d backups", len(games), f.store.Len())
			}
		})
	}

	t.Run("removes the copy when recording fails", func(t *testing.T) {
		f := setup(t)
		src := filepath.Join(f.dir, "x.sav")
		testutil.WriteFile(t, src, "x")
		f.db.Close()

		_, err := f.svc.AddSave(haven.AddSaveRequest{Title: "Broken", SavePath: src})
		if err == nil {
			t.Fatal("AddSave() expected error with closed database")
		}
		if haven.IsRecoverable(err) {
			t.Errorf("storage failure reported as recoverable: %v", err)
		}
		if f.store.Len() != 0 {
			t.Errorf("store holds %d backups after failed add, want 0", f.store.Len())
		}
	})
}

// failingCodec copies its first n inputs and fails on every later one.
type failingCodec struct {
	n     int
	calls int
}

func (c *failingCodec) Encode(r io.Reader, w io.Writer) error {
	c.calls++
	if c.calls > c.n {
		return errors.New("boom")
	}
	_, err := io.Copy(w, r)
	return err
}

func (c *failingCodec) Decode(r io.Reader, w io.Writer) error {
	_, err := io.Copy(w, r)
	return err
}

func TestService_AddSave_PartialCopy(t *testing.T) {
	clock := testutil.FixedClock()
	db := testutil.NewTestDatabase(t, clock)
	root := t.TempDir()
	st, err := store.NewFileSystemStore(root, transfer.NewCopier(transfer.WithCodec(&failingCodec{n: 1})))
	if err != nil {
		t.Fatalf("NewFileSystemStore() error = %v", err)
	}
	svc := haven.NewService(db, st, fs.NewOSFilesystemManager(), haven.NewNopLogger(), clock, testutil.NewStubIDGenerator())

	src := filepath.Join(t.TempDir(), "Saves")
	testutil.WriteTree(t, src, map[string]string{"a.sav": "A", "b.sav": "B"})

	if _, err := svc.AddSave(haven.AddSaveRequest{Title: "Hades", SavePath: src}); !errors.Is(err, haven.ErrIO) {
		t.Fatalf("AddSave() error = %v, want ErrIO", err)
	}

	games, err := db.ListGames()
	if err != nil {
		t.Fatal(err)
	}
	if len(games) != 0 {
		t.Errorf("failed add left %d games", len(games))
	}

	var left []string
	err = filepath.WalkDir(filepath.Join(root, "saves"), func(path string, d os.DirEntry, err error) error {
		if err == nil && !d.IsDir() {
			left = append(left, path)
		}
		return err
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(left) != 0 {
		t.Errorf("failed add left files in the store: %v", left)
	}
}

func TestService_Retrieve(t *testing.T) {
	t.Run("unknown title", func(t *testing.T) {
		f := setup(t)
		_, err := f.svc.Retrieve("Nothing")
		if !errors.Is(err, haven.ErrNotFound) {
			t.Errorf("Retrieve() error = %v, want ErrNotFound", err)
		}
		games, err := f.db.ListGames()
		if err != nil {
			t.Fatal(err)
		}
		if len(games) != 0 {
			t.Errorf("lookup created %d games", len(games))
		}
	})

	t.Run("title match is exact", func(t *testing.T) {
		f := setup(t)
		f.addSave(t, "Hollow Knight", "PC", "user1.dat", "x")

		if _, err := f.svc.Retrieve("hollow knight"); !errors.Is(err, haven.ErrNotFound) {
			t.Errorf("Retrieve() lowercase error = %v, want ErrNotFound", err)
		}
		if _, err := f.svc.Retrieve("  Hollow Knight "); err != nil {
			t.Errorf("Retrieve() with surrounding spaces error = %v", err)
		}
	})

	t.Run("returns saves in insertion order", func(t *testing.T) {
		f := setup(t)
		f.addSave(t, "Zelda", "NES", "1.sav", "one")
		f.addSave(t, "Other", "", "o.sav", "other")
		f.addSave(t, "Zelda", "", "2.sav", "two")

		got, err := f.svc.Retrieve("Zelda")
		if err != nil {
			t.Fatalf("Retrieve() error = %v", err)
		}
		if got.Game.Title != "Zelda" {
			t.Errorf("game = %q", got.Game.Title)
		}
		if len(got.Saves) != 2 {
			t.Fatalf("got %d saves, want 2", len(got.Saves))
		}
		if got.Saves[0].Save.ID >= got.Saves[1].Save.ID {
			t.Error("saves not in insertion order")
		}
		if got.Saves[0].Platform == nil || got.Saves[0].Platform.PlatformName != "NES" {
			t.Errorf("first save platform = %+v", got.Saves[0].Platform)
		}
		if got.Saves[1].Platform != nil {
			t.Errorf("second save platform = %+v, want nil", got.Saves[1].Platform)
		}
	})

	t.Run("game without saves", func(t *testing.T) {
		f := setup(t)
		if _, err := f.db.AddGame("Empty", "", sql.NullTime{}); err != nil {
			t.Fatal(err)
		}
		saves, err := f.svc.ListSaves("Empty")
		if err != nil {
			t.Fatalf("ListSaves() error = %v", err)
		}
		if len(saves) != 0 {
			t.Errorf("got %d saves, want 0", len(saves))
		}
	})
}

func TestService_Restore(t *testing.T) {
	t.Run("restores to the original location by default", func(t *testing.T) {
		f := setup(t)
		record := f.addSave(t, "Hades", "PC", "Profile1.sav", "good run")
		live := record.Location.Description
		testutil.WriteFile(t, live, "corrupted")

		got, err := f.svc.Restore(record.Save.ID, "")
		if err != nil {
			t.Fatalf("Restore() error = %v", err)
		}
		if got != live {
			t.Errorf("Restore() path = %q, want %q", got, live)
		}
		if testutil.FileSHA256(t, live) != testutil.SHA256Hex([]byte("good run")) {
			t.Errorf("restored content = %q", testutil.ReadFile(t, live))
		}
	})

	t.Run("restores to a chosen destination", func(t *testing.T) {
		f := setup(t)
		record := f.addSave(t, "Hades", "PC", "Profile1.sav", "good run")
		dst := filepath.Join(f.dir, "elsewhere", "copy.sav")

		if _, err := f.svc.Restore(record.Save.ID, dst); err != nil {
			t.Fatalf("Restore() error = %v", err)
		}
		if got := testutil.ReadFile(t, dst); got != "good run" {
			t.Errorf("restored content = %q", got)
		}
	})

	t.Run("restores into a directory under the original file name", func(t *testing.T) {
		f := setup(t)
		record := f.addSave(t, "Hades", "PC", "Slot 1 (auto).sav", "good run")
		live := record.Location.Description
		if err := os.Remove(live); err != nil {
			t.Fatal(err)
		}

		got, err := f.svc.Restore(record.Save.ID, filepath.Dir(live))
		if err != nil {
			t.Fatalf("Restore() error = %v", err)
		}
		if got != live {
			t.Errorf("Restore() path = %q, want %q", got, live)
		}
		if content := testutil.ReadFile(t, live); content != "good run" {
			t.Errorf("restored content = %q", content)
		}
	})

	t.Run("restores a directory", func(t *testing.T) {
		f := setup(t)
		src := filepath.Join(f.dir, "SaveData")
		files := map[string]string{"a.dat": "a", "sub/b.dat": "b"}
		testutil.WriteTree(t, src, files)
		record, err := f.svc.AddSave(haven.AddSaveRequest{Title: "Tree", SavePath: src})
		if err != nil {
			t.Fatal(err)
		}
		if err := os.RemoveAll(src); err != nil {
			t.Fatal(err)
		}

		if _, err := f.svc.Restore(record.Save.ID, ""); err != nil {
			t.Fatalf("Restore() error = %v", err)
		}
		got := testutil.ReadTree(t, src)
		for rel, want := range files {
			if got[rel] != want {
				t.Errorf("%s = %q, want %q", rel, got[rel], want)
			}
		}
	})

	t.Run("decodes an encoded backup", func(t *testing.T) {
		clock := testutil.FixedClock()
		db := testutil.NewTestDatabase(t, clock)
		st := testutil.NewTestStore(transfer.WithCodec(testutil.NewTestCodec()))
		svc := haven.NewService(db, st, fs.NewOSFilesystemManager(), haven.NewNopLogger(), clock, testutil.NewStubIDGenerator())

		src := filepath.Join(t.TempDir(), "slot.sav")
		testutil.WriteFile(t, src, "plain progress")
		record, err := svc.AddSave(haven.AddSaveRequest{Title: "Encoded", SavePath: src})
		if err != nil {
			t.Fatalf("AddSave() error = %v", err)
		}

		dst := filepath.Join(t.TempDir(), "out.sav")
		if _, err := svc.Restore(record.Save.ID, dst); err != nil {
			t.Fatalf("Restore() error = %v", err)
		}
		if testutil.FileSHA256(t, dst) != testutil.FileSHA256(t, src) {
			t.Errorf("restored = %q, want %q", testutil.ReadFile(t, dst), "plain progress")
		}
	})

	t.Run("unknown save", func(t *testing.T) {
		f := setup(t)
		_, err := f.svc.Restore(99, filepath.Join(f.dir, "x"))
		if !errors.Is(err, haven.ErrNotFound) {
			t.Errorf("Restore() error = %v, want ErrNotFound", err)
		}
	})

	t.Run("missing backup leaves destination untouched", func(t *testing.T) {
		f := setup(t)
		record := f.addSave(t, "Hades", "PC", "Profile1.sav", "backed up")
		live := record.Location.Description
		testutil.WriteFile(t, live, "current progress")
		if err := f.store.Remove(record.Location.LocationPath); err != nil {
			t.Fatal(err)
		}

		_, err := f.svc.Restore(record.Save.ID, "")
		if !errors.Is(err, haven.ErrNotFound) {
			t.Fatalf("Restore() error = %v, want ErrNotFound", err)
		}
		if got := testutil.ReadFile(t, live); got != "current progress" {
			t.Errorf("destination changed to %q", got)
		}
	})
}

func TestService_GetHistory(t *testing.T) {
	f := setup(t)
	for _, name := range []string{"add", "restore", "add"} {
		op, err := f.db.CreateOperation(name, "{}")
		if err != nil {
			t.Fatal(err)
		}
		if err := f.db.FinishOperation(op.ID, "success"); err != nil {
			t.Fatal(err)
		}
	}

	ops, err := f.svc.GetHistory(2)
	if err != nil {
		t.Fatalf("GetHistory() error = %v", err)
	}
	if len(ops) != 2 {
		t.Fatalf("got %d operations, want 2", len(ops))
	}
	if ops[0].ID <= ops[1].ID {
		t.Error("operations not newest first")
	}
}
