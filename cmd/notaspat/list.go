package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/notaspat/notaspat/pkg/core"
)

var (
	listJSON  bool
	filterTag string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all saved notes",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		app := openApp()
		defer app.Close()

		all, err := app.Notes().GetAll(context.Background())
		if err != nil {
			fatal("Error listing notes", err)
		}

		var filtered []core.Note
		for _, note := range all {
			if filterTag != "" && !slices.Contains(note.Tags, filterTag) {
				continue
			}
			filtered = append(filtered, note)
		}
		slices.SortFunc(filtered, func(a, b core.Note) int {
			return b.UpdatedAt.Compare(a.UpdatedAt)
		})

		if listJSON {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(filtered); err != nil {
				fatal("Error encoding JSON", err)
			}
			return
		}

		for _, note := range filtered {
			fmt.Printf("%s  %s\n", note.ID, note.Text)
		}
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
	listCmd.Flags().StringVar(&filterTag, "tag", "", "Filter notes by tag")
}
