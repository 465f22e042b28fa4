package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var downloadCmd = &cobra.Command{
	Use:   "download <server-addr> [magnet-link...]",
	Short: "Submit magnet links to the NAS download manager",
	Long: `Submit magnet links to the NAS download manager through the daemon's browser.

Links are read from the arguments, or one per line from --file ("-" for stdin).

Examples:
  nasbox download http://192.168.1.10:5000 "magnet:?xt=urn:btih:..."
  nasbox download http://nas:5000 --file links.txt`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDownloadCmd,
}

func init() {
	rootCmd.AddCommand(downloadCmd)
	downloadCmd.Flags().StringP("file", "f", "", "Read magnet links from file (- for stdin)")
}

func runDownloadCmd(cmd *cobra.Command, args []string) error {
	links := args[1:]
	if file, _ := cmd.Flags().GetString("file"); file != "" {
		fromFile, err := readLinks(file)
		if err != nil {
			return err
		}
		links = append(links, fromFile...)
	}
	if len(links) == 0 {
		return fmt.Errorf("no magnet links given")
	}

	client := NewClient(serverURL)
	resp, err := client.Download(&DownloadRequest{MagnetLinks: links, ServerAddr: args[0]})
	return writeLogsResult(cmd, resp, err)
}

func readLinks(path string) ([]string, error) {
	f := os.Stdin
	if path != "-" {
		var err error
		f, err = os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open links file: %w", err)
		}
		defer func() { _ = f.Close() }()
	}

	var links []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" && !strings.HasPrefix(line, "#") {
			links = append(links, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read links file: %w", err)
	}
	return links, nil
}

// writeLogsResult prints an operation's log lines, including the partial log
// the server returns with an error.
func writeLogsResult(cmd *cobra.Command, resp *LogsResponse, err error) error {
	out := cmd.OutOrStdout()
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && len(apiErr.Logs) > 0 && !jsonOutput {
			printLogs(out, apiErr.Logs)
		}
		return err
	}
	if jsonOutput {
		return printJSON(out, resp)
	}
	printLogs(out, resp.Logs)
	return nil
}
