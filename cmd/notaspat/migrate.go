package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/notaspat/notaspat/pkg/migrate"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Migrate the legacy single-blob layout to granular keys",
	Long: `Migrate rewrites the legacy "notes" blob as one key per note. Safe to run
repeatedly; storage without the legacy key is left untouched. The daemon runs
this automatically on startup.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		app := openApp()
		defer app.Close()

		if err := migrate.New(app.Storage(), slog.Default()).Run(context.Background()); err != nil {
			fatal("Error migrating", err)
		}
		fmt.Println("migration complete")
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
