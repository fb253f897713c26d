package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var statsJSON bool

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show aggregate note statistics",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		app := openApp()
		defer app.Close()

		ctx := context.Background()
		stats, err := app.Notes().Stats(ctx)
		if err != nil {
			fatal("Error computing stats", err)
		}
		health, err := app.Notes().CountAndHealth(ctx)
		if err != nil {
			fatal("Error checking health", err)
		}

		if statsJSON {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(map[string]any{"stats": stats, "health": health}); err != nil {
				fatal("Error encoding JSON", err)
			}
			return
		}

		fmt.Printf("total:          %d\n", stats.Total)
		fmt.Printf("this week:      %d\n", stats.ThisWeek)
		fmt.Printf("with reminders: %d\n", stats.WithReminders)
		for color, n := range stats.ByColor {
			fmt.Printf("  color %s: %d\n", color, n)
		}
		for tag, n := range stats.ByTag {
			fmt.Printf("  tag %s: %d\n", tag, n)
		}
		if health.Warning != "" {
			fmt.Printf("warning: %s\n", health.Warning)
		}
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "Output in JSON format")
}
