package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/notaspat/notaspat/pkg/core"
)

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "Manage note templates",
}

var templatesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List templates",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		app := openApp()
		defer app.Close()

		templates, err := app.Notes().Templates(context.Background())
		if err != nil {
			fatal("Error listing templates", err)
		}
		for _, tpl := range templates {
			fmt.Printf("%s  %s\n    %s\n", tpl.ID, tpl.Name, tpl.Body)
		}
	},
}

var templatesAddCmd = &cobra.Command{
	Use:   "add <name> <body>",
	Short: "Add a template",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		app := openApp()
		defer app.Close()

		tpl, err := app.Notes().AddTemplate(context.Background(), core.Template{
			Name: args[0],
			Body: args[1],
		})
		if err != nil {
			fatal("Error adding template", err)
		}
		fmt.Printf("added %s\n", tpl.ID)
	},
}

var templatesRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Remove a template",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		app := openApp()
		defer app.Close()

		removed, err := app.Notes().RemoveTemplate(context.Background(), args[0])
		if err != nil {
			fatal("Error removing template", err)
		}
		if !removed {
			fmt.Printf("no template %s\n", args[0])
			os.Exit(1)
		}
		fmt.Printf("removed %s\n", args[0])
	},
}

func init() {
	rootCmd.AddCommand(templatesCmd)
	templatesCmd.AddCommand(templatesListCmd)
	templatesCmd.AddCommand(templatesAddCmd)
	templatesCmd.AddCommand(templatesRemoveCmd)
}
