package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/paperscope/paperscope/internal/db"
	"github.com/paperscope/paperscope/internal/importer"
)

var importPath string

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import scored papers from a pipeline SQLite database",
	RunE: func(cmd *cobra.Command, args []string) error {
		if importPath != "" {
			cfg.Import.SQLitePath = importPath
		}
		if err := cfg.Validate("import"); err != nil {
			return err
		}

		ctx := cmd.Context()
		pool, err := db.Connect(ctx, cfg.Store.DatabaseURL, &cfg.Store.Pool)
		if err != nil {
			return err
		}
		defer pool.Close()

		sum, err := importer.New(pool, cfg.Import.BatchSize).Run(ctx, cfg.Import.SQLitePath)
		if err != nil {
			return err
		}
		zap.L().Info("import finished",
			zap.String("run_id", sum.RunID),
			zap.Int("read", sum.Read),
			zap.Int64("upserted", sum.Upserted),
		)
		return nil
	},
}

func init() {
	importCmd.Flags().StringVar(&importPath, "sqlite", "", "path to the pipeline SQLite database (default from config)")
	rootCmd.AddCommand(importCmd)
}
