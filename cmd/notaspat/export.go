package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export all notes as a JSON snapshot",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		app := openApp()
		defer app.Close()

		data, err := app.Notes().ExportAll(context.Background())
		if err != nil {
			fatal("Error exporting notes", err)
		}

		if exportOut == "" {
			fmt.Println(string(data))
			return
		}
		if err := os.WriteFile(exportOut, data, 0644); err != nil {
			fatal("Error writing snapshot", err)
		}
		fmt.Printf("exported to %s\n", exportOut)
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Write the snapshot to a file instead of stdout")
}
