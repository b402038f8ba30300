package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"eventphotos/internal/config"
	"eventphotos/internal/domain/live"
	"eventphotos/internal/domain/photo"
	"eventphotos/internal/domain/ranking"
	"eventphotos/internal/logger"
	"eventphotos/internal/server"
	"eventphotos/internal/watcher"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config", "error", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{
		Format:   cfg.LogFormat,
		ProdLike: cfg.IsProdLike(),
		Level:    logger.ParseLevel(cfg.LogLevel),
	})
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		return err
	}
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return err
	}

	schema, err := ranking.LoadSchemaOrDefault(cfg.RankingSchemaFile)
	if err != nil {
		return err
	}
	log.Info("ranking schema loaded", "version", schema.Version, "categories", schema.Len())

	photos := photo.NewStore(cfg.UploadDir, log)

	identities, err := photo.NewPersistentIdentityMapper(photo.NewFileIdentityPersister(cfg.IdentitiesPath(), log))
	if err != nil {
		return err
	}
	pruned, err := identities.Prune(photos.Exists)
	if err != nil {
		return err
	}
	if pruned > 0 {
		log.Info("pruned identities of missing photos", "count", pruned)
	}

	rankings, err := ranking.NewStore(
		ranking.NewFileRepository(cfg.RankingPath(), log),
		schema,
		photos,
		ranking.URLResolver(photo.StaticURLResolver(cfg.StaticURLBase)),
		log,
	)
	if err != nil {
		return err
	}

	hub := live.NewHub(log)
	defer hub.Close()

	if cfg.WatchUploads {
		w := watcher.New(cfg.UploadDir, hub.PhotosChanged, log)
		go func() {
			if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("upload watcher stopped", "error", err)
			}
		}()
	}

	srv, err := server.New(server.Deps{
		Config:     cfg,
		Logger:     log,
		Photos:     photos,
		Identities: identities,
		Ranking:    rankings,
		Hub:        hub,
	})
	if err != nil {
		return err
	}
	return srv.Run(ctx)
}
