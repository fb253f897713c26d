package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Import a JSON snapshot, merging into the saved notes",
	Long: `Import merges the snapshot into storage: imported notes overwrite notes
with the same protocol, everything else is left alone. Reads stdin when no
file is given.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		var data []byte
		var err error
		if len(args) == 1 {
			data, err = os.ReadFile(args[0])
		} else {
			data, err = io.ReadAll(os.Stdin)
		}
		if err != nil {
			fatal("Error reading snapshot", err)
		}

		app := openApp()
		defer app.Close()

		imported, err := app.Notes().ImportAll(context.Background(), data)
		if err != nil {
			fatal("Error importing notes", err)
		}
		fmt.Printf("imported %d notes\n", len(imported))
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
}
