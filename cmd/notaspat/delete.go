package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <protocol>",
	Short: "Delete the note for a protocol",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		app := openApp()
		defer app.Close()

		existed, err := app.Notes().Delete(context.Background(), args[0])
		if err != nil {
			fatal("Error deleting note", err)
		}
		if !existed {
			fmt.Printf("no note for %s\n", args[0])
			os.Exit(1)
		}
		fmt.Printf("deleted %s\n", args[0])
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}
