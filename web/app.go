package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"blog/internal/config"
	"blog/internal/database"
)

type app struct {
	logger    zerolog.Logger
	cfg       *config.Config
	templates *templateCache

	Database        *database.Database
	UserService     *database.UserService
	SessionService  *database.SessionService
	PostService     *database.PostService
	CategoryService *database.CategoryService
}

func newApp(cfg *config.Config, db *database.Database, logger zerolog.Logger) (*app, error) {
	templates, err := newTemplateCache(cfg.Templates, logger)
	if err != nil {
		return nil, err
	}

	return &app{
		logger:          logger,
		cfg:             cfg,
		templates:       templates,
		Database:        db,
		UserService:     database.NewUserService(db),
		SessionService:  database.NewSessionService(db, cfg.Session.Lifetime.Duration),
		PostService:     database.NewPostService(db, reservedSlugs...),
		CategoryService: database.NewCategoryService(db),
	}, nil
}

func (app *app) Close() error {
	return app.templates.Close()
}

// RunApp opens the database, serves the blog on cfg.Server.Addr and shuts
// down gracefully on SIGINT or SIGTERM.
func RunApp(ctx context.Context, cfg *config.Config, logger zerolog.Logger) error {
	db, err := database.Open(ctx, cfg.Database.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	logger.Info().Str("path", cfg.Database.Path).Msg("SQLite database ready")

	app, err := newApp(cfg, db, logger)
	if err != nil {
		return err
	}
	defer app.Close()

	if removed, err := app.SessionService.CleanupExpiredSessions(ctx); err != nil {
		logger.Warn().Err(err).Msg("failed to clean up expired sessions")
	} else if removed > 0 {
		logger.Info().Int64("removed", removed).Msg("expired sessions cleaned up")
	}

	srv := &http.Server{
		Addr:     cfg.Server.Addr,
		ErrorLog: stdLogger(logger),
		Handler:  app.routes(),

		IdleTimeout:  cfg.Server.IdleTimeout.Duration,
		ReadTimeout:  cfg.Server.ReadTimeout.Duration,
		WriteTimeout: cfg.Server.WriteTimeout.Duration,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.Server.Addr).Msg("starting server")
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout.Duration)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
