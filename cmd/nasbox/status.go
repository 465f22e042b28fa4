package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show server status",
	Args:  cobra.NoArgs,
	RunE:  runStatusCmd,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatusCmd(cmd *cobra.Command, _ []string) error {
	client := NewClient(serverURL)
	status, err := client.Status()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, status)
	}

	browser := "disabled"
	if status.BrowserEnabled {
		browser = "enabled"
	}
	roots := "(unrestricted)"
	if len(status.AllowedRoots) > 0 {
		roots = strings.Join(status.AllowedRoots, ", ")
	}
	_, _ = fmt.Fprintln(out, renderTable(
		[]string{"Setting", "Value"},
		[][]string{
			{"Server", serverURL},
			{"Version", status.Version},
			{"Browser", browser},
			{"Allowed roots", roots},
		},
		nil,
	))
	return nil
}
