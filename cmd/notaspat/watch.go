package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run the background daemon",
	Long: `Watch runs the full background service: legacy migration, default seeding,
alarm rebuild, then the change reactor and reminder handler until interrupted.
With the fs adapter, edits made to the storage directory by other processes
are picked up too.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		app := openApp()
		defer app.Close()

		if err := app.Start(ctx); err != nil {
			fatal("Error starting daemon", err)
		}
		if watcher, ok := app.Storage().(interface {
			StartExternalWatch(context.Context) error
		}); ok {
			if err := watcher.StartExternalWatch(ctx); err != nil {
				fatal("Error starting external watch", err)
			}
		}

		fmt.Println("notaspat daemon running, ctrl-c to stop")
		<-ctx.Done()
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
