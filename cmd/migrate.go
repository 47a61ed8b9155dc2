package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/paperscope/paperscope/internal/catalog"
	"github.com/paperscope/paperscope/internal/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the catalogue schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("migrate"); err != nil {
			return err
		}

		ctx := cmd.Context()
		pool, err := db.Connect(ctx, cfg.Store.DatabaseURL, &cfg.Store.Pool)
		if err != nil {
			return err
		}
		defer pool.Close()

		if err := catalog.NewStore(pool).Migrate(ctx); err != nil {
			return err
		}
		zap.L().Info("migration complete")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
