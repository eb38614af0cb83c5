// Package transfer copies save files and save directories between the live
// locations games use and the managed store.
package transfer

import (
	"errors"
	"fmt"
	"io"
	iofs "io/fs"
	"os"
	"path/filepath"

	"savehaven/internal/fs"
	"savehaven/internal/haven"
)

// Copier copies files and directory trees. Every file is written to a temporary
// file next to its destination and renamed into place, so a reader never sees
// a half-written save.
type Copier struct {
	codec  haven.Codec
	ignore *fs.IgnoreMatcher
	logger haven.Logger
}

// Option configures a Copier.
type Option func(*Copier)

// WithCodec transforms file contents: Encode on Backup, Decode on Restore.
func WithCodec(codec haven.Codec) Option {
	return func(c *Copier) { c.codec = codec }
}

// WithIgnore skips matching entries when a directory is backed up.
func WithIgnore(m *fs.IgnoreMatcher) Option {
	return func(c *Copier) { c.ignore = m }
}

// WithLogger sets the logger used for per-file debug output.
func WithLogger(logger haven.Logger) Option {
	return func(c *Copier) { c.logger = logger }
}

// NewCopier creates a Copier. With no options files are copied verbatim.
func NewCopier(opts ...Option) *Copier {
	c := &Copier{logger: haven.NewNopLogger()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WalkFunc is called for every regular file Walk visits.
// rel is the slash-separated path relative to the walk root, or "" when the root is a file.
type WalkFunc func(path, rel string, info iofs.FileInfo) error

// Backup copies the file or directory at src to dst, creating parent directories.
// Failures wrap haven.ErrIO.
func (c *Copier) Backup(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("%w: reading %s: %w", haven.ErrIO, src, err)
	}

	if !info.IsDir() {
		return c.copyFile(src, dst, info, c.encode)
	}
	if err := os.MkdirAll(dst, 0755); err != nil {
		return fmt.Errorf("%w: creating %s: %w", haven.ErrIO, dst, err)
	}

	return c.Walk(src, func(path, rel string, info iofs.FileInfo) error {
		return c.copyFile(path, filepath.Join(dst, filepath.FromSlash(rel)), info, c.encode)
	})
}

// Restore copies the backup at src back to dst.
//
// A missing src wraps haven.ErrNotFound and dst is not touched. If src is a file and
// dst an existing directory, the file is written into that directory. A directory
// backup is merged into dst: files in dst that the backup does not contain are kept.
// Returns the file or directory written.
func (c *Copier) Restore(src, dst string) (string, error) {
	info, err := os.Stat(src)
	if err != nil {
		if errors.Is(err, iofs.ErrNotExist) {
			return "", fmt.Errorf("%w: backup %s no longer exists", haven.ErrNotFound, src)
		}
		return "", fmt.Errorf("%w: reading %s: %w", haven.ErrIO, src, err)
	}

	if !info.IsDir() {
		dst = IntoDirectory(dst, filepath.Base(src))
		return dst, c.copyFile(src, dst, info, c.decode)
	}

	if err := os.MkdirAll(dst, 0755); err != nil {
		return "", fmt.Errorf("%w: creating %s: %w", haven.ErrIO, dst, err)
	}
	// Restore copies everything that was stored; ignore rules applied at backup time.
	err = c.walk(src, nil, func(path, rel string, info iofs.FileInfo) error {
		return c.copyFile(path, filepath.Join(dst, filepath.FromSlash(rel)), info, c.decode)
	})
	return dst, err
}

// IntoDirectory returns dst/name when dst is an existing directory, otherwise dst.
func IntoDirectory(dst, name string) string {
	if info, err := os.Stat(dst); err == nil && info.IsDir() {
		return filepath.Join(dst, name)
	}
	return dst
}

// Walk visits every regular file under root that the ignore rules keep.
// When root is a single file fn is called once with rel "".
// A per-directory ignore file in root extends the configured rules.
func (c *Copier) Walk(root string, fn WalkFunc) error {
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("%w: reading %s: %w", haven.ErrIO, root, err)
	}
	if !info.IsDir() {
		return fn(root, "", info)
	}

	matcher, err := c.ignore.ForDirectory(root)
	if err != nil {
		return fmt.Errorf("%w: %w", haven.ErrIO, err)
	}
	return c.walk(root, matcher, fn)
}

func (c *Copier) walk(root string, matcher *fs.IgnoreMatcher, fn WalkFunc) error {
	err := filepath.WalkDir(root, func(path string, d iofs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if matcher.Match(rel) {
			c.logger.Debug("skipping ignored path", "path", path)
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		return fn(path, filepath.ToSlash(rel), info)
	})
	if err != nil {
		if errors.Is(err, haven.ErrIO) || errors.Is(err, haven.ErrNotFound) {
			return err
		}
		return fmt.Errorf("%w: walking %s: %w", haven.ErrIO, root, err)
	}
	return nil
}

// Encode writes the stored form of the file at path to w.
func (c *Copier) Encode(path string, w io.Writer) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: opening %s: %w", haven.ErrIO, path, err)
	}
	defer f.Close()

	if err := c.encode(f, w); err != nil {
		return fmt.Errorf("%w: encoding %s: %w", haven.ErrIO, path, err)
	}
	return nil
}

// Decode writes the plaintext of the stored stream r to dst atomically with mode perm.
func (c *Copier) Decode(r io.Reader, dst string, perm iofs.FileMode) error {
	return writeAtomic(dst, perm, func(w io.Writer) error {
		return c.decode(r, w)
	})
}

// WriteFile atomically writes the contents of r to dst without any codec.
func WriteFile(dst string, r io.Reader, perm iofs.FileMode) error {
	return writeAtomic(dst, perm, func(w io.Writer) error {
		_, err := io.Copy(w, r)
		return err
	})
}

func (c *Copier) encode(r io.Reader, w io.Writer) error {
	if c.codec == nil {
		_, err := io.Copy(w, r)
		return err
	}
	return c.codec.Encode(r, w)
}

func (c *Copier) decode(r io.Reader, w io.Writer) error {
	if c.codec == nil {
		_, err := io.Copy(w, r)
		return err
	}
	return c.codec.Decode(r, w)
}

// copyFile streams src through transform into dst and carries over mode and mtime.
func (c *Copier) copyFile(src, dst string, info iofs.FileInfo, transform func(io.Reader, io.Writer) error) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("%w: opening %s: %w", haven.ErrIO, src, err)
	}
	defer in.Close()

	err = writeAtomic(dst, info.Mode().Perm(), func(w io.Writer) error {
		return transform(in, w)
	})
	if err != nil {
		return err
	}

	if err := os.Chtimes(dst, info.ModTime(), info.ModTime()); err != nil {
		return fmt.Errorf("%w: setting times on %s: %w", haven.ErrIO, dst, err)
	}
	c.logger.Debug("copied file", "src", src, "dst", dst, "size", info.Size())
	return nil
}

func writeAtomic(dst string, perm iofs.FileMode, write func(io.Writer) error) (err error) {
	dir := filepath.Dir(dst)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("%w: creating %s: %w", haven.ErrIO, dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(dst)+".tmp-*")
	if err != nil {
		return fmt.Errorf("%w: creating temp file in %s: %w", haven.ErrIO, dir, err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err := write(tmp); err != nil {
		return fmt.Errorf("%w: writing %s: %w", haven.ErrIO, dst, err)
	}
	if err := tmp.Chmod(perm); err != nil {
		return fmt.Errorf("%w: setting mode on %s: %w", haven.ErrIO, dst, err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("%w: syncing %s: %w", haven.ErrIO, dst, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: closing %s: %w", haven.ErrIO, dst, err)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return fmt.Errorf("%w: renaming into %s: %w", haven.ErrIO, dst, err)
	}
	return nil
}
