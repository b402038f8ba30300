package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"eventphotos/internal/domain/photo"
)

const (
	MaxFileSize     = 20 * 1024 * 1024 // 20 MB
	maxNameAttempts = 5
)

// AllowedMimeTypes maps accepted image types to the extension used when the
// uploaded name has none we accept.
var AllowedMimeTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// extensionTypes is the inverse of AllowedMimeTypes, including aliases.
var extensionTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// Notifier is told when a new photo landed.
type Notifier interface {
	PhotosChanged()
}

// Service turns an uploaded file into a photo in the store.
// The stored name is the sanitised original name; on collision a short random
// suffix is added so an earlier photo is never overwritten.
type Service struct {
	store      *photo.Store
	resolveURL photo.URLResolver
	maxSize    int64
	notifier   Notifier
	logger     *slog.Logger
}

func NewService(store *photo.Store, resolveURL photo.URLResolver, maxSize int64, notifier Notifier, logger *slog.Logger) *Service {
	if maxSize <= 0 {
		maxSize = MaxFileSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, resolveURL: resolveURL, maxSize: maxSize, notifier: notifier, logger: logger}
}

// Result describes a stored upload.
type Result struct {
	Filename string `json:"filename"`
	PhotoURL string `json:"photo_url"`
}

// Upload validates the file and saves it under a free name.
func (s *Service) Upload(ctx context.Context, fileHeader *multipart.FileHeader) (*Result, error) {
	if fileHeader.Size == 0 {
		return nil, ErrEmptyFile
	}
	if fileHeader.Size > s.maxSize {
		return nil, ErrFileTooLarge
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	// Detect MIME type from first 512 bytes
	buf := make([]byte, 512)
	n, err := io.ReadFull(file, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if n == 0 {
		return nil, ErrEmptyFile
	}
	mimeType := strings.Split(http.DetectContentType(buf[:n]), ";")[0]
	defaultExt, ok := AllowedMimeTypes[mimeType]
	if !ok {
		return nil, ErrInvalidMimeType
	}

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to rewind file: %w", err)
	}

	base := matchExtension(SanitizeName(fileHeader.Filename, defaultExt), mimeType)
	for attempt := 0; attempt < maxNameAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		name := base
		if attempt > 0 {
			name = withSuffix(base, uuid.NewString()[:8])
		}

		err := s.store.Save(name, file)
		if errors.Is(err, photo.ErrPhotoExists) {
			if _, serr := file.Seek(0, io.SeekStart); serr != nil {
				return nil, fmt.Errorf("failed to rewind file: %w", serr)
			}
			continue
		}
		if err != nil {
			return nil, err
		}

		s.logger.Info("photo uploaded", "filename", name, "size", fileHeader.Size, "mime_type", mimeType)
		if s.notifier != nil {
			s.notifier.PhotosChanged()
		}
		return &Result{Filename: name, PhotoURL: s.resolveURL(name)}, nil
	}
	return nil, ErrNameExhausted
}

// SanitizeName reduces an uploaded filename to [A-Za-z0-9_-] plus an allowed
// image extension. Names without an allowed extension get defaultExt.
func SanitizeName(name, defaultExt string) string {
	name = filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	ext := strings.ToLower(filepath.Ext(name))
	if !photo.AllowedExtensions[ext] {
		ext = defaultExt
	}
	name = strings.TrimSuffix(name, filepath.Ext(name))
	name = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			return r
		}
		return '_'
	}, name)
	name = strings.Trim(name, "_")
	if len(name) > 60 {
		name = name[:60]
	}
	if name == "" {
		name = "photo"
	}
	return name + ext
}

// matchExtension swaps the extension of a sanitised name for the one of the
// sniffed type when the two disagree, so JPEG bytes never land in x.png.
func matchExtension(name, mimeType string) string {
	ext := filepath.Ext(name)
	if extensionTypes[ext] == mimeType {
		return name
	}
	return strings.TrimSuffix(name, ext) + AllowedMimeTypes[mimeType]
}

func withSuffix(filename, suffix string) string {
	ext := filepath.Ext(filename)
	return strings.TrimSuffix(filename, ext) + "_" + suffix + ext
}
