package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"time"

	"eventphotos/internal/config"
	"eventphotos/internal/domain/photo"
	"eventphotos/internal/domain/ranking"
	"eventphotos/internal/logger"
)

const maxAttempts = 3

func main() {
	dryRun := flag.Bool("dry-run", false, "report dangling assignments without changing the ranking")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logger.New(logger.Config{}).Error("config", "error", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Format: cfg.LogFormat, ProdLike: cfg.IsProdLike(), Level: logger.ParseLevel(cfg.LogLevel)})

	schema, err := ranking.LoadSchemaOrDefault(cfg.RankingSchemaFile)
	if err != nil {
		log.Error("load schema", "error", err)
		os.Exit(1)
	}

	photos := photo.NewStore(cfg.UploadDir, log)
	store, err := ranking.NewStore(ranking.NewFileRepository(cfg.RankingPath(), log), schema, photos,
		ranking.URLResolver(photo.StaticURLResolver(cfg.StaticURLBase)), log)
	if err != nil {
		log.Error("open ranking", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if *dryRun {
		doc, err := store.Load(ctx)
		if err != nil {
			log.Error("load ranking", "error", err)
			os.Exit(1)
		}
		dangling := 0
		for _, cat := range doc.Categories {
			if cat.Photo != nil && !photos.Exists(*cat.Photo) {
				log.Info("dangling assignment", "category", cat.ID, "photo", *cat.Photo)
				dangling++
			}
		}
		log.Info("ranking cleanup dry run completed", "dangling", dangling)
		return
	}

	var cleared int
	for attempt := 1; ; attempt++ {
		cleared, err = store.ClearDangling(ctx, photos.Exists)
		// the server saved in between; reload and try again
		if errors.Is(err, ranking.ErrStaleRevision) && attempt < maxAttempts {
			log.Warn("ranking changed during cleanup, retrying", "attempt", attempt)
			continue
		}
		break
	}
	if err != nil {
		log.Error("ranking cleanup failed", "error", err)
		os.Exit(1)
	}

	identities, err := photo.NewPersistentIdentityMapper(photo.NewFileIdentityPersister(cfg.IdentitiesPath(), log))
	if err != nil {
		log.Error("open identities", "error", err)
		os.Exit(1)
	}
	pruned, err := identities.Prune(photos.Exists)
	if err != nil {
		log.Error("identity prune failed", "error", err)
		os.Exit(1)
	}

	log.Info("ranking cleanup completed", "cleared", cleared, "identities_pruned", pruned)
}
