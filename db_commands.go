package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"movieweb/database"
	"movieweb/services"
)

func newMigrateCommand(ctx *commandContext) *cobra.Command {
	var down bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if cfg.UseMemoryStore() {
				return errors.New("migrate needs a PostgreSQL DATABASE_URL")
			}
			if down {
				return database.MigrateDown(cfg.DatabaseURL, ctx.logger)
			}
			if err := database.Migrate(cfg.DatabaseURL, ctx.logger); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Database is up to date")
			return nil
		},
	}
	cmd.Flags().BoolVar(&down, "down", false, "Roll back every migration (drops all data)")
	return cmd
}

func newSeedCommand(ctx *commandContext) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Populate demo movies, users and reviews",
		Long:  "Populate demo movies, users and reviews. Existing records are skipped, so running it twice is harmless.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if file == "" {
				file = cfg.SeedFile
			}
			data, err := services.LoadSeedData(file)
			if err != nil {
				return err
			}

			store, err := ctx.ensureStore(cmd.Context())
			if err != nil {
				return err
			}
			fetcher, err := ctx.ensureFetcher()
			if err != nil {
				return err
			}
			users := services.NewUserService(store, ctx.logger)
			seeder := services.NewSeeder(store, fetcher, users, ctx.logger)

			report, err := seeder.Populate(cmd.Context(), data)
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"", "Created", "Skipped"},
				[][]string{
					{"Movies", fmt.Sprint(report.MoviesCreated), fmt.Sprint(report.MoviesSkipped)},
					{"Users", fmt.Sprint(report.UsersCreated), fmt.Sprint(report.UsersSkipped)},
					{"Reviews", fmt.Sprint(report.ReviewsCreated), fmt.Sprint(report.ReviewsSkipped)},
				},
				[]columnAlignment{alignLeft, alignRight, alignRight},
			))
			if err != nil {
				return fmt.Errorf("some seed data could not be stored: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "Seed YAML file (default: SEED_FILE or the built-in data)")
	return cmd
}
