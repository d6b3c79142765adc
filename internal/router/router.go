package router // package router wires handlers and middleware onto echo

import (
	"database/sql"
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/rmdb/internal/config"
	"github.com/iliyamo/rmdb/internal/handler"
	"github.com/iliyamo/rmdb/internal/middleware"
)

// RegisterRoutes registers routes that never require authentication.
func RegisterRoutes(e *echo.Echo, db *sql.DB) {
	e.GET("/healthz", handler.Health(db))
}

// CatalogDeps carries what the /api group needs.  A nil Verifier leaves
// the catalog open; a nil Redis client turns the cache off and makes the
// rate limiter fall back to per-process buckets.
type CatalogDeps struct {
	Movies          *handler.MovieHandler
	Actors          *handler.ActorHandler
	Verifier        middleware.TokenVerifier
	RequiredCountry string
	RateLimit       config.RateLimitConfig
	Cache           config.CacheConfig
	Redis           *redis.Client
	Log             *slog.Logger
}

// RegisterCatalog mounts the movie and actor endpoints under /api.
func RegisterCatalog(e *echo.Echo, d CatalogDeps) {
	api := e.Group("/api")
	limit := middleware.NewTokenBucket(d.RateLimit, d.Redis, d.Log)
	// user-keyed buckets need the token subject; the others also cover
	// requests that fail authentication
	if !d.RateLimit.KeysByUser() {
		api.Use(limit)
	}
	if d.Verifier != nil {
		api.Use(middleware.JWTAuth(d.Verifier))
		if d.RequiredCountry != "" {
			api.Use(middleware.MustLiveInCountry(d.RequiredCountry))
		}
	}
	if d.RateLimit.KeysByUser() {
		api.Use(limit)
	}
	// Cached responses are shared by every caller, so caching sits after
	// authentication.
	api.Use(middleware.NewRedisCache(d.Cache, d.Redis))
	api.Use(middleware.InvalidateCache(d.Cache, d.Redis, d.Log))

	registerMovies(api, d.Movies)
	registerActors(api, d.Actors)
}

func registerMovies(api *echo.Group, h *handler.MovieHandler) {
	plain := middleware.Produces(handler.MIMEJSON)
	body := middleware.Consumes(handler.MIMEJSON)

	g := api.Group("/movies")
	g.GET("", h.List, plain)
	g.GET("/:id", h.Get, middleware.Produces(handler.MIMEJSON, handler.MIMEMovieWithActors, handler.MIMEMovie))
	g.POST("", h.Create, plain, body)
	g.PUT("/:id", h.Update, plain, body)
	g.PATCH("/:id", h.Patch, plain, middleware.Consumes(handler.MIMEJSONPatch, handler.MIMEJSON))
	g.DELETE("/:id", h.Delete)

	g.POST("/:id/actors", h.AddActor, plain, body)
	g.PUT("/:id/actors", h.AddActor, plain, body)
}

func registerActors(api *echo.Group, h *handler.ActorHandler) {
	produces := middleware.Produces(handler.MIMEJSON, handler.MIMEActor)

	g := api.Group("/actors")
	g.GET("", h.List, produces)
	g.GET("/:id", h.Get, produces)
	g.POST("", h.Create, produces, middleware.Consumes(handler.MIMEJSON, handler.MIMEActorToAdd))
	g.PUT("/:id", h.Update, produces, middleware.Consumes(handler.MIMEJSON, handler.MIMEActorToEdit))
	g.DELETE("/:id", h.Delete)
}
