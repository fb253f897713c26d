package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/notaspat/notaspat/pkg/notaspat"
)

var (
	verbose bool
	dataDir string
	adapter string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "notaspat",
	Short: "Sticky notes for benefit protocols",
	Long: `Notaspat keeps per-protocol sticky notes in granular key-value storage.
Each note lives under its own key, so lookups and writes stay cheap no matter
how many notes pile up.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}

		opts := &slog.HandlerOptions{
			Level: level,
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, opts))
		slog.SetDefault(logger)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&dataDir, "dir", "", "Data directory (defaults to the user config dir)")
	rootCmd.PersistentFlags().StringVar(&adapter, "adapter", "", "Storage adapter: fs, bolt or memory")
}

// openApp wires an App from the persistent flags and the optional config
// file in the data directory.
func openApp() *notaspat.App {
	opts := []notaspat.Option{
		notaspat.WithLogger(slog.Default()),
	}
	if dataDir != "" {
		opts = append(opts, notaspat.WithPath(dataDir))
	}
	if adapter != "" {
		opts = append(opts, notaspat.WithAdapter(adapter))
	}

	app, err := notaspat.New(opts...)
	if err != nil {
		fatal("Error initializing notaspat", err)
	}
	return app
}
