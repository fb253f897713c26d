package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/notaspat/notaspat/pkg/notaspat"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of notaspat",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("notaspat version %s\n", notaspat.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
