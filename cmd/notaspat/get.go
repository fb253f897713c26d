package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var getCmd = &cobra.Command{
	Use:   "get <protocol>",
	Short: "Show the note for a protocol",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		app := openApp()
		defer app.Close()

		note, err := app.Notes().Get(context.Background(), args[0])
		if err != nil {
			fatal("Error reading note", err)
		}
		if note == nil {
			fmt.Printf("no note for %s\n", args[0])
			os.Exit(1)
		}

		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(note); err != nil {
			fatal("Error encoding JSON", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(getCmd)
}
