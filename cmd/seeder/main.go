package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"luxe_residences/internal/adapters/observability"
	"luxe_residences/internal/adapters/stores"
	"luxe_residences/internal/app"
	"luxe_residences/internal/domain"
	"luxe_residences/internal/shared"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		file    string
		driver  string
		workers int
	)

	cmd := &cobra.Command{
		Use:   "seeder",
		Short: "Load residence documents into the configured store",
		Long: `Writes residences into the store named by STORE_DRIVER (or --driver).
Without --file the built-in sample collection is used.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := shared.Load()
			log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)
			if driver != "" {
				cfg.StoreDriver = driver
			}
			if workers <= 0 {
				workers = cfg.SeedWorkers
			}
			return run(cmd.Context(), cfg, file, workers)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML file with residences (default: built-in samples)")
	cmd.Flags().StringVar(&driver, "driver", "", "store driver override (mongo, redis, mysql)")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "concurrent writes (default: SEED_WORKERS)")
	return cmd
}

func run(ctx context.Context, cfg shared.Config, file string, workers int) error {
	items, err := loadItems(file)
	if err != nil {
		return err
	}

	log.Info().
		Str("driver", cfg.StoreDriver).
		Str("collection", cfg.StoreCollection).
		Int("items", len(items)).
		Int("workers", workers).
		Msg("seeder starting")

	store, err := stores.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := stores.Ready(store); err != nil {
		return err
	}
	w, ok := stores.Writer(store)
	if !ok {
		return fmt.Errorf("store driver %q is read-only", cfg.StoreDriver)
	}
	if err := stores.Migrate(ctx, store); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	n, err := app.NewSeedService(w).Seed(ctx, items, workers)
	if err != nil {
		log.Warn().Err(err).Int("written", n).Msg("seeding finished with errors")
		return err
	}
	log.Info().Int("written", n).Msg("seeding completed")
	return nil
}

func loadItems(file string) ([]domain.Residence, error) {
	if file == "" {
		return app.FallbackResidences(), nil
	}
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	items, err := app.DecodeResidencesYAML(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}
	if len(items) == 0 {
		return nil, errors.New(file + ": no residences")
	}
	return items, nil
}
