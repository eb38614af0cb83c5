package store

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"savehaven/internal/encryption"
	"savehaven/internal/fs"
	"savehaven/internal/haven"
	"savehaven/internal/transfer"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("creating dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return string(data)
}

// testStoreContract exercises the behaviour every haven.Store must share.
func testStoreContract(t *testing.T, newStore func(t *testing.T, copier *transfer.Copier) haven.Store) {
	t.Run("file round trip", func(t *testing.T) {
		s := newStore(t, transfer.NewCopier())
		dir := t.TempDir()
		src := filepath.Join(dir, "slot1.sav")
		writeFile(t, src, "world 4-2")

		loc := s.Locate("Mario/NES/slot-a/slot1.sav")
		if err := s.Put(src, loc); err != nil {
			t.Fatalf("Put() error = %v", err)
		}

		dst := filepath.Join(dir, "restored", "slot1.sav")
		if _, err := s.Get(loc, dst); err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if got := readFile(t, dst); got != "world 4-2" {
			t.Errorf("restored = %q, want %q", got, "world 4-2")
		}
	})

	t.Run("file restored into directory keeps its name", func(t *testing.T) {
		s := newStore(t, transfer.NewCopier())
		dir := t.TempDir()
		src := filepath.Join(dir, "Slot 1 (auto).sav")
		writeFile(t, src, "chapter 3")

		loc := s.Locate("Game/any/slot-n/Slot 1 (auto).sav")
		if err := s.Put(src, loc); err != nil {
			t.Fatalf("Put() error = %v", err)
		}

		liveDir := filepath.Join(dir, "live")
		if err := os.MkdirAll(liveDir, 0755); err != nil {
			t.Fatal(err)
		}
		written, err := s.Get(loc, liveDir)
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		want := filepath.Join(liveDir, "Slot 1 (auto).sav")
		if written != want {
			t.Errorf("Get() path = %q, want %q", written, want)
		}
		if got := readFile(t, want); got != "chapter 3" {
			t.Errorf("restored = %q, want chapter 3", got)
		}
	})

	t.Run("directory round trip with ignore rules", func(t *testing.T) {
		copier := transfer.NewCopier(transfer.WithIgnore(fs.NewDefaultIgnoreMatcher([]string{"*.log"})))
		s := newStore(t, copier)
		dir := t.TempDir()
		src := filepath.Join(dir, "Saves")
		writeFile(t, filepath.Join(src, "a.sav"), "A")
		writeFile(t, filepath.Join(src, "nested", "b.sav"), "B")
		writeFile(t, filepath.Join(src, "crash.log"), "noise")

		loc := s.Locate("Game/any/slot-b/Saves")
		if err := s.Put(src, loc); err != nil {
			t.Fatalf("Put() error = %v", err)
		}

		dst := filepath.Join(dir, "restored")
		if _, err := s.Get(loc, dst); err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if got := readFile(t, filepath.Join(dst, "nested", "b.sav")); got != "B" {
			t.Errorf("nested file = %q, want B", got)
		}
		if _, err := os.Stat(filepath.Join(dst, "crash.log")); !os.IsNotExist(err) {
			t.Error("ignored file was stored")
		}
	})

	t.Run("missing backup", func(t *testing.T) {
		s := newStore(t, transfer.NewCopier())
		dst := filepath.Join(t.TempDir(), "live.sav")
		writeFile(t, dst, "keep me")

		_, err := s.Get(s.Locate("Nope/any/slot/live.sav"), dst)
		if !errors.Is(err, haven.ErrNotFound) {
			t.Fatalf("Get() error = %v, want ErrNotFound", err)
		}
		if got := readFile(t, dst); got != "keep me" {
			t.Errorf("destination changed to %q", got)
		}
	})

	t.Run("missing source", func(t *testing.T) {
		s := newStore(t, transfer.NewCopier())
		err := s.Put(filepath.Join(t.TempDir(), "gone.sav"), s.Locate("X/any/slot/gone.sav"))
		if !errors.Is(err, haven.ErrIO) {
			t.Errorf("Put() error = %v, want ErrIO", err)
		}
	})

	t.Run("remove", func(t *testing.T) {
		s := newStore(t, transfer.NewCopier())
		dir := t.TempDir()
		src := filepath.Join(dir, "slot.sav")
		writeFile(t, src, "x")

		loc := s.Locate("G/any/slot-c/slot.sav")
		if err := s.Put(src, loc); err != nil {
			t.Fatalf("Put() error = %v", err)
		}
		if err := s.Remove(loc); err != nil {
			t.Fatalf("Remove() error = %v", err)
		}
		if _, err := s.Get(loc, filepath.Join(dir, "out.sav")); !errors.Is(err, haven.ErrNotFound) {
			t.Errorf("Get() after Remove error = %v, want ErrNotFound", err)
		}
	})

	t.Run("codec is applied", func(t *testing.T) {
		codec := encryption.NewCodec(encryption.NewTestEncryptor(), func() (string, error) { return "", nil })
		s := newStore(t, transfer.NewCopier(transfer.WithCodec(codec)))
		dir := t.TempDir()
		src := filepath.Join(dir, "slot.sav")
		writeFile(t, src, "secret progress")

		loc := s.Locate("G/any/slot-d/slot.sav")
		if err := s.Put(src, loc); err != nil {
			t.Fatalf("Put() error = %v", err)
		}
		dst := filepath.Join(dir, "out.sav")
		if _, err := s.Get(loc, dst); err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if got := readFile(t, dst); got != "secret progress" {
			t.Errorf("restored = %q", got)
		}
	})

	t.Run("catalog", func(t *testing.T) {
		s := newStore(t, transfer.NewCopier())
		if err := s.PutCatalog("host-1", bytes.NewReader([]byte("sqlite")), 6); err != nil {
			t.Fatalf("PutCatalog() error = %v", err)
		}
		if err := s.ValidateSetup(); err != nil {
			t.Errorf("ValidateSetup() error = %v", err)
		}
	})
}
