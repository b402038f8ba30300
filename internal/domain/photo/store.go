package photo

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"eventphotos/internal/pkg/fileutil"
)

// Store reads and writes photos in a single flat directory.
// A missing or unreadable directory is treated as an empty store.
type Store struct {
	dir    string
	logger *slog.Logger
}

func NewStore(dir string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{dir: dir, logger: logger}
}

// Dir returns the directory backing the store.
func (s *Store) Dir() string {
	return s.dir
}

// List returns every image in the directory in the requested order.
// Symlinks are followed. The error is always nil; a directory that cannot
// be read lists as empty.
func (s *Store) List(sortBy SortBy) ([]Photo, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("photo directory unreadable, listing as empty", "dir", s.dir, "error", err)
		}
		return []Photo{}, nil
	}

	photos := make([]Photo, 0, len(entries))
	for _, entry := range entries {
		if !IsAllowedImage(entry.Name()) {
			continue
		}
		var info fs.FileInfo
		switch {
		case entry.Type().IsRegular():
			info, err = entry.Info()
		case entry.Type()&fs.ModeSymlink != 0:
			info, err = os.Stat(filepath.Join(s.dir, entry.Name()))
		default:
			continue
		}
		// removed between ReadDir and Info, or a broken link
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		photos = append(photos, Photo{Filename: entry.Name(), UploadedAt: info.ModTime()})
	}

	switch sortBy {
	case SortByUploadTimeDesc:
		slices.SortStableFunc(photos, func(a, b Photo) int {
			if c := b.UploadedAt.Compare(a.UploadedAt); c != 0 {
				return c
			}
			return strings.Compare(a.Filename, b.Filename)
		})
	default:
		slices.SortStableFunc(photos, func(a, b Photo) int {
			return strings.Compare(a.Filename, b.Filename)
		})
	}
	return photos, nil
}

// Filenames is List reduced to the filenames.
func (s *Store) Filenames(sortBy SortBy) ([]string, error) {
	photos, err := s.List(sortBy)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(photos))
	for i, p := range photos {
		names[i] = p.Filename
	}
	return names, nil
}

// Exists reports whether filename is currently a listed photo.
func (s *Store) Exists(filename string) bool {
	_, err := s.ModTime(filename)
	return err == nil
}

// ModTime returns the upload time of a single photo.
func (s *Store) ModTime(filename string) (time.Time, error) {
	path, err := s.path(filename)
	if err != nil {
		return time.Time{}, err
	}
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return time.Time{}, ErrPhotoNotFound
		}
		return time.Time{}, fmt.Errorf("%w: stat %s: %w", ErrIOFailure, filename, err)
	}
	if !info.Mode().IsRegular() {
		return time.Time{}, ErrPhotoNotFound
	}
	return info.ModTime(), nil
}

// Remove deletes a photo. A filename that is not a listed photo yields
// ErrPhotoNotFound; any other failure wraps ErrIOFailure. A symlinked photo
// loses the link, never the target.
func (s *Store) Remove(filename string) error {
	path, err := s.path(filename)
	if err != nil {
		return ErrPhotoNotFound
	}
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrPhotoNotFound
		}
		return fmt.Errorf("%w: stat %s: %w", ErrIOFailure, filename, err)
	}
	if !info.Mode().IsRegular() {
		return ErrPhotoNotFound
	}
	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrPhotoNotFound
		}
		return fmt.Errorf("%w: remove %s: %w", ErrIOFailure, filename, err)
	}
	return nil
}

// Save writes a new photo. The caller supplies an already sanitised name;
// an existing photo is never overwritten (ErrPhotoExists).
func (s *Store) Save(filename string, r io.Reader) error {
	path, err := s.path(filename)
	if err != nil {
		return err
	}
	if err := fileutil.CreateAtomic(path, r, 0o644); err != nil {
		if errors.Is(err, fileutil.ErrExists) {
			return ErrPhotoExists
		}
		return fmt.Errorf("%w: save %s: %w", ErrIOFailure, filename, err)
	}
	return nil
}

func (s *Store) path(filename string) (string, error) {
	if filename == "" || filename == "." || filename == ".." ||
		strings.ContainsAny(filename, `/\`) || !IsAllowedImage(filename) {
		return "", ErrInvalidFilename
	}
	return filepath.Join(s.dir, filename), nil
}
