package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var (
	saveColor    string
	saveTags     []string
	saveReminder string
)

var saveCmd = &cobra.Command{
	Use:   "save <protocol> <text>",
	Short: "Create or update the note for a protocol",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		app := openApp()
		defer app.Close()

		var reminder *time.Time
		if saveReminder != "" {
			when, err := time.Parse(time.RFC3339, saveReminder)
			if err != nil {
				fatal("Error parsing reminder (want RFC3339)", err)
			}
			reminder = &when
		}

		note, err := app.Notes().Save(context.Background(), args[0], args[1], saveColor, saveTags, reminder)
		if err != nil {
			fatal("Error saving note", err)
		}
		fmt.Printf("saved %s (%s)\n", note.ID, note.Color)
	},
}

func init() {
	rootCmd.AddCommand(saveCmd)
	saveCmd.Flags().StringVar(&saveColor, "color", "", "Note color (hex, defaults to the palette default)")
	saveCmd.Flags().StringSliceVar(&saveTags, "tag", nil, "Tags (repeatable)")
	saveCmd.Flags().StringVar(&saveReminder, "reminder", "", "Reminder instant in RFC3339")
}
