package main // entry point of the catalog API

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/rmdb/internal/config"
	"github.com/iliyamo/rmdb/internal/database"
	"github.com/iliyamo/rmdb/internal/handler"
	"github.com/iliyamo/rmdb/internal/logging"
	"github.com/iliyamo/rmdb/internal/middleware"
	"github.com/iliyamo/rmdb/internal/queue"
	"github.com/iliyamo/rmdb/internal/repository"
	"github.com/iliyamo/rmdb/internal/router"
	"github.com/iliyamo/rmdb/internal/service"
	"github.com/iliyamo/rmdb/internal/validator"
)

func main() {
	_ = godotenv.Load() // a missing .env is fine; real env vars win

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	log := logging.New(cfg.LogLevel, cfg.Env)

	if err := run(cfg, log); err != nil {
		log.Error("api stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := database.Migrate(ctx, db); err != nil {
		return err
	}
	log.Info("database ready", "driver", cfg.DBDriver)

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Warn("redis unavailable; cache off, rate limiting per process")
	} else {
		defer rdb.Close()
	}

	verifier, err := newVerifier(ctx, cfg)
	if err != nil {
		return err
	}

	var (
		events service.EventPublisher
		wg     sync.WaitGroup
	)
	if cfg.Events.Enabled {
		events = queue.NewPublisher(cfg.Events.URL, cfg.Events.Queue)
		if cfg.Events.Consumer {
			c := queue.NewConsumer(cfg.Events.URL, cfg.Events.Queue, cfg.Events.LogDir, log)
			wg.Add(1)
			go func() {
				defer wg.Done()
				if err := c.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
					log.Error("event consumer stopped", "error", err)
				}
			}()
		}
	}

	movies := repository.NewMovieRepo(db)
	actors := repository.NewActorRepo(db)

	e := echo.New()
	e.HideBanner = true
	e.Validator = validator.New()
	e.HTTPErrorHandler = handler.ErrorHandler(log)
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(log))
	e.Use(echomw.Gzip())

	router.RegisterRoutes(e, db)
	router.RegisterCatalog(e, router.CatalogDeps{
		Movies:          handler.NewMovieHandler(service.NewMovieService(movies, actors, events, log), log),
		Actors:          handler.NewActorHandler(service.NewActorService(actors, events, log), log),
		Verifier:        verifier,
		RequiredCountry: cfg.RequiredCountry,
		RateLimit:       config.LoadRateLimitConfig(),
		Cache:           config.LoadCacheConfig(),
		Redis:           rdb,
		Log:             log,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       time.Minute,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", srv.Addr, "auth", cfg.AuthMode)
		if err := e.StartServer(srv); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err = e.Shutdown(shutdownCtx)
	wg.Wait()
	return err
}

// newVerifier returns nil when AUTH_MODE=none.
func newVerifier(ctx context.Context, cfg config.Config) (middleware.TokenVerifier, error) {
	switch cfg.AuthMode {
	case config.AuthHS256:
		return middleware.NewHS256Verifier(cfg.JWTSecret), nil
	case config.AuthOIDC:
		return middleware.DiscoverOIDCVerifier(ctx, cfg.OIDCAuthority, cfg.OIDCAudience)
	}
	return nil, nil
}
