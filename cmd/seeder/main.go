// Command seeder imports or deletes the sample data set.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tazhibayda/bootcamp-service/internal/config"
	"github.com/tazhibayda/bootcamp-service/internal/geocode"
	"github.com/tazhibayda/bootcamp-service/internal/log"
	"github.com/tazhibayda/bootcamp-service/internal/repo"
	"github.com/tazhibayda/bootcamp-service/internal/seed"
	"github.com/tazhibayda/bootcamp-service/internal/service"
)

var (
	dataDir string
	timeout time.Duration
)

var rootCmd = &cobra.Command{
	Use:           "seeder",
	Short:         "Load or remove the sample bootcamp data",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var importCmd = &cobra.Command{
	Use:     "import",
	Aliases: []string{"i"},
	Short:   "Insert users, bootcamps, courses and reviews from the data directory",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withSeeder(cmd.Context(), func(ctx context.Context, s *seed.Seeder) error {
			_, err := s.Import(ctx, dataDir)
			return err
		})
	},
}

var deleteCmd = &cobra.Command{
	Use:     "delete",
	Aliases: []string{"d"},
	Short:   "Empty every collection",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withSeeder(cmd.Context(), func(ctx context.Context, s *seed.Seeder) error {
			return s.Purge(ctx)
		})
	},
}

func init() {
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", time.Minute, "Deadline for the whole run.")
	importCmd.Flags().StringVar(&dataDir, "dir", "data/seed", "Directory holding the seed JSON files.")
	rootCmd.AddCommand(importCmd, deleteCmd)
}

func withSeeder(ctx context.Context, fn func(context.Context, *seed.Seeder) error) error {
	cfg := config.Load()
	logger, err := log.Init(cfg.IsProd())
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	store, err := repo.NewStore(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		return err
	}
	defer store.Close(context.Background()) //nolint:errcheck
	if err := store.EnsureIndexes(ctx); err != nil {
		return err
	}

	var geo geocode.Geocoder
	if cfg.GeocoderAPIKey != "" {
		if geo, err = geocode.New(cfg.GeocoderProvider, cfg.GeocoderAPIKey); err != nil {
			return err
		}
	}
	s := &seed.Seeder{Store: store, Svc: service.New(store, geo, nil, logger), Geo: geo, Log: logger}
	if err := fn(ctx, s); err != nil {
		logger.Error("seeder failed", zap.Error(err))
		return err
	}
	return nil
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
