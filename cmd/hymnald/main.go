// Command hymnald serves the hymnal catalog over HTTP.
//
// @title       Hymnal API
// @version     1.0
// @description Stores hymnal XML documents and serves full-text search, faceted categories and per-context selections.
// @BasePath    /api/v1
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-hymnal-backend/internal/config"
	httpapi "github.com/tbourn/go-hymnal-backend/internal/http"
	"github.com/tbourn/go-hymnal-backend/internal/observability"
	"github.com/tbourn/go-hymnal-backend/internal/services"
	"github.com/tbourn/go-hymnal-backend/internal/sysutil"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.MustLoad()
	sysutil.SetupLogger(os.Stderr, cfg.LogLevel, cfg.LogPretty, "hymnald")
	ver := sysutil.FirstNonEmpty(os.Getenv("APP_VERSION"), version)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, ver); err != nil {
		log.Fatal().Err(err).Msg("hymnald stopped")
	}
}

func run(ctx context.Context, cfg config.Config, ver string) error {
	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, ver,
		observability.StoreBackendKey.String(cfg.Store.Backend))
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := shutdownOTel(sctx); err != nil {
			log.Warn().Err(err).Msg("otel shutdown")
		}
	}()

	st, err := openStore(cfg.Store)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(); err != nil {
			log.Warn().Err(err).Msg("store close")
		}
	}()

	cat, err := services.NewCatalog(st, nil, services.CatalogOptions{
		ParseCacheEntries:  cfg.Catalog.ParseCacheEntries,
		WarmupWorkers:      cfg.Catalog.WarmupWorkers,
		MaxDocumentBytes:   cfg.Catalog.MaxDocumentBytes,
		SkipDeletedVerses:  cfg.Catalog.SkipDeletedVerses,
		SkipDeletedEntries: cfg.Catalog.SkipDeletedEntries,
	})
	if err != nil {
		return err
	}
	defer cat.Close()

	if cfg.Store.SeedPath != "" {
		id, err := seed(ctx, cat, cfg.Store.SeedPath, cfg.Catalog.MaxDocumentBytes)
		if err != nil {
			return err
		}
		log.Info().Str("document_id", id).Str("path", cfg.Store.SeedPath).Msg("seeded document")
	}
	if _, err := cat.Warmup(ctx); err != nil {
		return err
	}

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	httpapi.RegisterRoutes(r, cat, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("version", ver).Str("store", cfg.Store.Backend).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(sctx)
}
