package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var remindersCmd = &cobra.Command{
	Use:   "reminders",
	Short: "List pending reminders",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		app := openApp()
		defer app.Close()

		pending, err := app.Notes().PendingReminders(context.Background())
		if err != nil {
			fatal("Error listing reminders", err)
		}
		if len(pending) == 0 {
			fmt.Println("no pending reminders")
			return
		}
		for _, note := range pending {
			fmt.Printf("%s  %s  %s\n", note.Reminder.Format(time.RFC3339), note.ID, note.Text)
		}
	},
}

func init() {
	rootCmd.AddCommand(remindersCmd)
}
