package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	server "luxe_residences/internal/adapters/http_server"
	"luxe_residences/internal/adapters/observability"
	"luxe_residences/internal/adapters/stores"
	"luxe_residences/internal/app"
	"luxe_residences/internal/shared"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// store
	store, err := stores.Open(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.StoreDriver).Msg("store open failed")
	}
	defer store.Close()
	log.Info().Str("driver", cfg.StoreDriver).Str("collection", cfg.StoreCollection).Msg("store ready")

	// deps
	catalog := app.NewCatalogService(store)
	views := app.NewViewLoader(catalog, cfg.MapsEmbedKey)
	reservations := app.NewReservationService()
	pages, err := server.NewPages()
	if err != nil {
		log.Fatal().Err(err).Msg("parse templates failed")
	}

	// http
	srv := server.New(cfg.RequestTimeout)
	reg := observability.InitRegistry()
	metricsSrv := observability.MetricsServer(cfg.MetricsAddr, reg)
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{
		Views:        views,
		Reservations: reservations,
		Pages:        pages,
		CORSOrigins:  cfg.CORSOrigins,
		StaticDir:    cfg.StaticDir,
	})

	httpSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Mux(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("web listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	if metricsSrv != nil {
		g.Go(func() error {
			log.Info().Str("addr", cfg.MetricsAddr).Msg("metrics server listening")
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if metricsSrv != nil {
			_ = metricsSrv.Shutdown(sctx)
		}
		return httpSrv.Shutdown(sctx)
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("http server failed")
		os.Exit(1)
	}
	log.Info().Msg("bye")
}
