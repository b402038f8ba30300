package ranking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"eventphotos/internal/pkg/fileutil"
)

// Repository loads and saves the raw ranking document.
type Repository interface {
	// Read returns the stored document; a missing or unreadable document is empty.
	Read(ctx context.Context) (Config, error)
	// Write replaces the stored document atomically.
	Write(ctx context.Context, doc Config) error
}

type fileRepository struct {
	path   string
	logger *slog.Logger
}

// NewFileRepository stores the document as JSON at path.
func NewFileRepository(path string, logger *slog.Logger) Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &fileRepository{path: path, logger: logger}
}

func (r *fileRepository) Read(ctx context.Context) (Config, error) {
	if err := ctx.Err(); err != nil {
		return Config{}, err
	}

	data, found, err := fileutil.ReadFileIfExists(r.path)
	if err != nil {
		r.logger.Warn("ranking document unreadable, using defaults", "path", r.path, "error", err)
		return Config{}, nil
	}
	if !found {
		return Config{}, nil
	}

	doc, ok := decodeDocument(data)
	if !ok {
		r.logger.Warn("ranking document corrupt, using defaults", "path", r.path)
	}
	return doc, nil
}

// Write refuses to replace a document whose revision is not doc.Revision-1.
// The check runs just before the rename, so another process that saved in
// the meantime (the cleanup job, a second server) surfaces as ErrStaleRevision
// instead of being overwritten.
func (r *fileRepository) Write(ctx context.Context, doc Config) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	check := func() error {
		stored, err := r.storedRevision()
		if err != nil {
			return err
		}
		if stored != doc.Revision-1 {
			return fmt.Errorf("%w: file is at %d, writing %d", ErrStaleRevision, stored, doc.Revision)
		}
		return nil
	}
	if err := fileutil.WriteJSONAtomicIf(r.path, doc, check); err != nil {
		if errors.Is(err, ErrStaleRevision) {
			return err
		}
		return fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}
	return nil
}

// storedRevision is the revision currently on disk; missing or corrupt is 0.
func (r *fileRepository) storedRevision() (int64, error) {
	data, found, err := fileutil.ReadFileIfExists(r.path)
	if err != nil || !found {
		return 0, err
	}
	doc, _ := decodeDocument(data)
	return max(doc.Revision, 0), nil
}
