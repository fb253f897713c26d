package main

import (
	"context"
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/notaspat/notaspat/pkg/core"
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search notes by protocol, text or tag",
	Long: `Search matches case- and accent-insensitively, so "pendencia" finds notes
tagged "pendência".`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		app := openApp()
		defer app.Close()

		results, err := app.Notes().Search(context.Background(), args[0])
		if err != nil {
			fatal("Error searching notes", err)
		}

		notes := make([]core.Note, 0, len(results))
		for _, note := range results {
			notes = append(notes, note)
		}
		slices.SortFunc(notes, func(a, b core.Note) int {
			return b.UpdatedAt.Compare(a.UpdatedAt)
		})

		for _, note := range notes {
			fmt.Printf("%s  %s\n", note.ID, note.Text)
		}
		if len(notes) == 0 {
			fmt.Println("no matches")
		}
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)
}
