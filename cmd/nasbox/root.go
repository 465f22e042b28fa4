package main

import (
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

var (
	serverURL  string
	jsonOutput bool
)

var rootCmd = &cobra.Command{
	Use:   "nasbox",
	Short: "CLI client for the nasbox file and download helper",
	Long: `nasbox - CLI client for the nasbox daemon

Submit magnet links to the NAS download manager and tidy media
folders: list, gather, batch-rename and prune.

Mutating commands preview by default; pass --apply to change files.
Run 'nasboxd' to start the server daemon.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:5000", "Server URL")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	rootCmd.Version = version
	rootCmd.SetVersionTemplate("nasbox {{.Version}}\n")
}
