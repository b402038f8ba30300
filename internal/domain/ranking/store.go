package ranking

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
)

// Store owns the ranking document. Writes are serialised and exclude readers;
// every returned Config is a copy.
type Store struct {
	mu         sync.RWMutex
	repo       Repository
	schema     Schema
	photos     PhotoIndex
	resolveURL URLResolver
	logger     *slog.Logger
}

func NewStore(repo Repository, schema Schema, photos PhotoIndex, resolveURL URLResolver, logger *slog.Logger) (*Store, error) {
	if err := schema.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		repo:       repo,
		schema:     schema,
		photos:     photos,
		resolveURL: resolveURL,
		logger:     logger,
	}, nil
}

// Schema returns the schema the store normalizes against.
func (s *Store) Schema() Schema {
	out := s.schema
	out.Categories = append([]CategoryDef(nil), s.schema.Categories...)
	return out
}

// Load returns the normalized document. Storage problems fall back to the
// schema defaults; only context cancellation is reported.
func (s *Store) Load(ctx context.Context) (Config, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.load(ctx)
}

func (s *Store) load(ctx context.Context) (Config, error) {
	raw, err := s.repo.Read(ctx)
	if err != nil {
		return Config{}, err
	}
	return Normalize(raw, s.schema).Clone(), nil
}

// Update validates and normalizes a full replacement and saves it. On any
// error the stored document is left untouched.
func (s *Store) Update(ctx context.Context, req UpdateRequest) (Config, error) {
	if req.Categories == nil {
		return Config{}, ErrCategoriesMissing
	}
	if len(req.Categories) != s.schema.Len() {
		return Config{}, fmt.Errorf("%w: got %d, want %d", ErrCategoryCount, len(req.Categories), s.schema.Len())
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.load(ctx)
	if err != nil {
		return Config{}, err
	}
	if req.Revision != nil && *req.Revision != current.Revision {
		return Config{}, fmt.Errorf("%w: have %d, got %d", ErrStaleRevision, current.Revision, *req.Revision)
	}

	next := s.fromRequest(req)
	next.Revision = current.Revision + 1

	if err := s.repo.Write(ctx, next); err != nil {
		return Config{}, err
	}
	s.logger.Info("ranking updated", "revision", next.Revision)
	return next.Clone(), nil
}

func (s *Store) fromRequest(req UpdateRequest) Config {
	byID := make(map[string]CategoryInput, len(req.Categories))
	for _, in := range req.Categories {
		if _, dup := byID[in.ID]; !dup {
			byID[in.ID] = in
		}
	}

	cfg := Config{Categories: make([]Category, 0, s.schema.Len())}
	for _, def := range s.schema.Categories {
		cat := Category{ID: def.ID, Name: def.DefaultName}
		if in, ok := byID[def.ID]; ok {
			if name := strings.TrimSpace(in.Name); name != "" {
				cat.Name = name
			}
			cat.Photo = normalizePhoto(in.Photo)
		}
		cfg.Categories = append(cfg.Categories, cat)
	}
	cfg.Order = normalizeOrder(req.Order, s.schema.IDs())
	return cfg
}

// ResolvedView walks the display order and attaches photo URLs. A photo that
// no longer exists resolves to no URL.
func (s *Store) ResolvedView(ctx context.Context) ([]ResolvedCategory, error) {
	cfg, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}

	view := make([]ResolvedCategory, 0, len(cfg.Order))
	for _, id := range cfg.Order {
		cat, ok := cfg.Category(id)
		if !ok {
			continue
		}
		item := ResolvedCategory{ID: cat.ID, Name: cat.Name, Photo: cat.Photo}
		if cat.Photo != nil && s.photoExists(*cat.Photo) {
			url := s.resolveURL(*cat.Photo)
			item.PhotoURL = &url
		}
		view = append(view, item)
	}
	return view, nil
}

// ClearPhoto unassigns filename from every category. It reports whether the
// document changed.
func (s *Store) ClearPhoto(ctx context.Context, filename string) (bool, error) {
	n, err := s.clearWhere(ctx, func(photo string) bool { return photo == filename })
	return n > 0, err
}

// ClearDangling unassigns every photo for which exists returns false and
// returns how many categories were cleared.
func (s *Store) ClearDangling(ctx context.Context, exists func(filename string) bool) (int, error) {
	return s.clearWhere(ctx, func(photo string) bool { return !exists(photo) })
}

func (s *Store) clearWhere(ctx context.Context, match func(photo string) bool) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, err := s.load(ctx)
	if err != nil {
		return 0, err
	}

	cleared := 0
	for i, cat := range cfg.Categories {
		if cat.Photo != nil && match(*cat.Photo) {
			cfg.Categories[i].Photo = nil
			cleared++
		}
	}
	if cleared == 0 {
		return 0, nil
	}

	cfg.Revision++
	if err := s.repo.Write(ctx, cfg); err != nil {
		return 0, err
	}
	s.logger.Info("cleared photo assignments", "count", cleared, "revision", cfg.Revision)
	return cleared, nil
}

func (s *Store) photoExists(filename string) bool {
	if s.photos == nil {
		return true
	}
	return s.photos.Exists(filename)
}
