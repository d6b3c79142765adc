package main // entry point of the MVC web client

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/rmdb/internal/client/api"
	"github.com/iliyamo/rmdb/internal/client/auth"
	"github.com/iliyamo/rmdb/internal/client/session"
	"github.com/iliyamo/rmdb/internal/client/web"
	"github.com/iliyamo/rmdb/internal/config"
	"github.com/iliyamo/rmdb/internal/logging"
	"github.com/iliyamo/rmdb/internal/middleware"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadClient()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	log := logging.New(cfg.LogLevel, cfg.Env)

	if err := run(cfg, log); err != nil {
		log.Error("web client stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.ClientConfig, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var store session.Store
	if rdb := config.NewRedisClient(); rdb != nil {
		defer rdb.Close()
		store = session.NewRedisStore(rdb, "rmdb:session", cfg.Session.TTL)
	} else {
		log.Warn("redis unavailable; sessions kept in memory")
		store = session.NewMemoryStore(cfg.Session.TTL)
	}

	authn, err := auth.New(ctx, cfg.OIDC, cfg.Session, store, log)
	if err != nil {
		return err
	}
	client, err := api.New(cfg.APIBaseURL, cfg.APITimeout, &auth.BearerTransport{Refresher: authn.Refresher()})
	if err != nil {
		return err
	}
	renderer, err := web.NewRenderer()
	if err != nil {
		return err
	}

	e := echo.New()
	e.HideBanner = true
	e.Renderer = renderer
	e.HTTPErrorHandler = web.ErrorHandler(log)
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(log))

	authn.Register(e)
	web.NewHandler(client.Movies, client.Actors, log).Register(e, authn.RequireAuth(), web.CSRF(cfg.Session.Secure))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       time.Minute,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", srv.Addr, "api", cfg.APIBaseURL)
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
	return e.Shutdown(shutdownCtx)
}
