package photo

import (
	"context"
	"errors"
	"log/slog"
	"slices"
)

// Notifier is told when the set of photos changes.
type Notifier interface {
	PhotosChanged()
}

// RankingNotifier is told when a deletion cleared ranking references.
type RankingNotifier interface {
	RankingChanged()
}

// ReferenceCleaner drops references to a deleted photo held elsewhere.
type ReferenceCleaner interface {
	ClearPhoto(ctx context.Context, filename string) (bool, error)
}

// Service builds the listing views on top of Store and IdentityMapper and
// carries out admin deletions.
type Service struct {
	store       *Store
	identities  *IdentityMapper
	resolveURL  URLResolver
	recentCount int
	topWindow   int
	notifier    Notifier
	cleaner     ReferenceCleaner
	ranking     RankingNotifier
	logger      *slog.Logger
}

type ServiceConfig struct {
	RecentCount int
	TopWindow   int
	Notifier    Notifier
	// Cleaner is optional; when set, deleting a photo also clears ranking references to it.
	Cleaner         ReferenceCleaner
	RankingNotifier RankingNotifier
	Logger          *slog.Logger
}

func NewService(store *Store, identities *IdentityMapper, resolveURL URLResolver, cfg ServiceConfig) *Service {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Service{
		store:       store,
		identities:  identities,
		resolveURL:  resolveURL,
		recentCount: cfg.RecentCount,
		topWindow:   cfg.TopWindow,
		notifier:    cfg.Notifier,
		cleaner:     cfg.Cleaner,
		ranking:     cfg.RankingNotifier,
		logger:      cfg.Logger,
	}
}

// Listing returns all photos in the requested order plus the recent/top lanes,
// which always follow upload time, newest first.
func (s *Service) Listing(sortBy SortBy) (*ListingResponse, error) {
	byTime, err := s.store.Filenames(SortByUploadTimeDesc)
	if err != nil {
		return nil, err
	}

	// one directory read serves both orders
	all := byTime
	if sortBy == SortByName {
		all = slices.Clone(byTime)
		slices.Sort(all)
	}

	lanes := Partition(byTime, s.recentCount, s.topWindow)
	return &ListingResponse{
		Photos:          all,
		PhotoURLs:       s.urls(all),
		RecentPhotos:    lanes.Recent,
		RecentPhotoURLs: s.urls(lanes.Recent),
		TopPhotos:       lanes.Top,
		TopPhotoURLs:    s.urls(lanes.Top),
	}, nil
}

// AdminPhotos lists photos newest first, each with its stable id.
func (s *Service) AdminPhotos() ([]AdminPhoto, error) {
	photos, err := s.store.List(SortByUploadTimeDesc)
	if err != nil {
		return nil, err
	}

	names := make([]string, len(photos))
	for i, p := range photos {
		names[i] = p.Filename
	}
	ids, err := s.identities.ResolveAll(names)
	if err != nil {
		return nil, err
	}

	items := make([]AdminPhoto, 0, len(photos))
	for _, p := range photos {
		items = append(items, AdminPhoto{
			ID:         ids[p.Filename],
			Filename:   p.Filename,
			URL:        s.resolveURL(p.Filename),
			UploadedAt: p.UploadedAt,
		})
	}
	return items, nil
}

// Delete removes the photo behind id and returns its filename.
func (s *Service) Delete(ctx context.Context, id string) (string, error) {
	filename, ok := s.identities.Lookup(id)
	if !ok {
		return "", ErrIdentityNotFound
	}

	if err := s.store.Remove(filename); err != nil {
		if errors.Is(err, ErrPhotoNotFound) {
			// already gone from disk; the id is useless now
			if ferr := s.identities.Forget(filename); ferr != nil {
				s.logger.Warn("forget identity failed", "filename", filename, "error", ferr)
			}
		}
		return filename, err
	}

	if err := s.identities.Forget(filename); err != nil {
		s.logger.Warn("forget identity failed", "filename", filename, "error", err)
	}

	if s.cleaner != nil {
		if cleared, err := s.cleaner.ClearPhoto(ctx, filename); err != nil {
			s.logger.Error("clear ranking references failed", "filename", filename, "error", err)
		} else if cleared {
			s.logger.Info("cleared ranking references", "filename", filename)
			if s.ranking != nil {
				s.ranking.RankingChanged()
			}
		}
	}

	if s.notifier != nil {
		s.notifier.PhotosChanged()
	}
	s.logger.Info("photo deleted", "filename", filename)
	return filename, nil
}

func (s *Service) urls(filenames []string) []string {
	out := make([]string, len(filenames))
	for i, f := range filenames {
		out[i] = s.resolveURL(f)
	}
	return out
}
