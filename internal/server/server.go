// Package server assembles the gin engine from the domain packages.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"eventphotos/internal/config"
	"eventphotos/internal/domain/admin"
	"eventphotos/internal/domain/live"
	"eventphotos/internal/domain/photo"
	"eventphotos/internal/domain/ranking"
	"eventphotos/internal/domain/upload"
	"eventphotos/internal/middleware"
	"eventphotos/internal/pkg/jwt"
	"eventphotos/internal/pkg/ratelimit"
	"eventphotos/internal/pkg/response"
)

type Deps struct {
	Config     *config.Config
	Logger     *slog.Logger
	Photos     *photo.Store
	Identities *photo.IdentityMapper
	Ranking    *ranking.Store
	Hub        *live.Hub
}

type Server struct {
	cfg    *config.Config
	logger *slog.Logger
	engine *gin.Engine
}

func New(d Deps) (*Server, error) {
	cfg := d.Config
	if d.Logger == nil {
		d.Logger = slog.Default()
	}

	hash, err := cfg.AdminHash()
	if err != nil {
		return nil, err
	}
	if cfg.UsesDefaultAdminPassword() {
		d.Logger.Warn("admin password is the shipped default, set ADMIN_PASSWORD_HASH")
	}

	resolveURL := photo.StaticURLResolver(cfg.StaticURLBase)

	photoCfg := photo.ServiceConfig{
		RecentCount: cfg.RecentLaneSize,
		TopWindow:   cfg.TopLaneSize,
		Notifier:    d.Hub,
		Logger:      d.Logger,
	}
	if cfg.RankingClearOnDelete {
		photoCfg.Cleaner = d.Ranking
		photoCfg.RankingNotifier = d.Hub
	}
	photoService := photo.NewService(d.Photos, d.Identities, resolveURL, photoCfg)
	uploadService := upload.NewService(d.Photos, resolveURL, cfg.MaxUploadSize, d.Hub, d.Logger)

	tokens := jwt.New(cfg.JWTSecret, cfg.JWTTTL)
	adminService := admin.NewService(cfg.AdminUsername, hash, tokens)
	authHandler := admin.NewAuthHandler(adminService, ratelimit.PerMinute(cfg.LoginRatePerMin), cfg.CookieSecure, d.Logger)

	photoHandler := photo.NewHandler(photoService)
	uploadHandler := upload.NewHandler(uploadService)
	rankingHandler := ranking.NewHandler(d.Ranking, d.Hub)
	liveHandler := live.NewHandler(d.Hub, cfg.CORSAllowedOrigins)

	if cfg.IsProdLike() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.MaxMultipartMemory = 8 << 20
	r.Use(
		middleware.RequestID(),
		middleware.Recovery(d.Logger),
		middleware.RequestLogger(d.Logger),
		middleware.CORS(cfg.CORSAllowedOrigins, cfg.IsProdLike()),
	)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if strings.HasPrefix(cfg.StaticURLBase, "/") {
		r.Static(cfg.StaticURLBase, cfg.UploadDir)
	}
	r.NoRoute(func(c *gin.Context) {
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Route not found")
	})

	photo.RegisterRoutes(r, photoHandler)
	upload.RegisterRoutes(r, uploadHandler)
	ranking.RegisterRoutes(r, rankingHandler)
	live.RegisterRoutes(r, liveHandler)

	adminGroup := admin.RegisterRoutes(r, authHandler, adminService)
	photo.RegisterAdminRoutes(adminGroup, photoHandler)
	ranking.RegisterAdminRoutes(adminGroup, rankingHandler)

	return &Server{cfg: cfg, logger: d.Logger, engine: r}, nil
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled and then shuts down gracefully within
// the configured timeout.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.HTTPAddr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", s.cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down http server", "timeout", s.cfg.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
