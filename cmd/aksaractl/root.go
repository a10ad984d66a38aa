package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"aksara-bali-backend/internal/config"
	"aksara-bali-backend/internal/domains/aksara/repository"
	"aksara-bali-backend/internal/infrastructure/database"
	"aksara-bali-backend/pkg/container"
	"aksara-bali-backend/pkg/logger"
)

// containerFactory is swapped in tests
var containerFactory = container.NewContainer

func rootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "aksaractl",
		Short:         "Maintenance commands for the Aksara Bali API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		migrateCommand(),
		seedCommand(),
		reconcileCommand(),
	)
	return rootCmd
}

// ========================================
// MIGRATE
// ========================================
func migrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dbConfig, err := config.LoadDatabaseConfig()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
			defer cancel()

			db := database.NewPostgresDB(dbConfig)
			if err := db.Connect(ctx); err != nil {
				return fmt.Errorf("connect: %w", err)
			}
			defer db.Close()

			return database.Migrate(ctx, db.SQLDB())
		},
	}
}

// ========================================
// SEED
// ========================================
func seedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert sample aksara when the table is empty",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := containerFactory()
			if err != nil {
				return err
			}
			defer c.Cleanup()

			n, err := repository.Seed(cmd.Context(), c.AksaraRepo)
			if err != nil {
				return err
			}

			if n == 0 {
				logger.Info("Table not empty, seed skipped", nil)
			} else {
				logger.Info("Sample aksara inserted", map[string]interface{}{"count": n})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "inserted %d rows\n", n)
			return nil
		},
	}
}

// ========================================
// RECONCILE
// ========================================
func reconcileCommand() *cobra.Command {
	var prune bool

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Compare model files with aksara entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := containerFactory()
			if err != nil {
				return err
			}
			defer c.Cleanup()

			report, err := c.AksaraService.Reconcile(cmd.Context(), prune)
			if err != nil {
				logger.Error("Reconcile failed", err)
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "store files:           %d\n", report.StoreFiles)
			fmt.Fprintf(out, "entries:               %d\n", report.Entries)
			fmt.Fprintf(out, "entries with model:    %d\n", report.EntriesWithModel)
			fmt.Fprintf(out, "entries without model: %d\n", report.EntriesWithoutModel)
			fmt.Fprintf(out, "orphan files:          %d\n", len(report.OrphanFiles))
			for _, key := range report.OrphanFiles {
				fmt.Fprintf(out, "  %s\n", key)
			}
			for _, se := range report.PruneResults {
				fmt.Fprintf(out, "prune %s: %s %s\n", se.Key, se.Status, se.Error)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&prune, "prune", false, "delete orphan model files")
	return cmd
}
