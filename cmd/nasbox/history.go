package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show executed operations",
	Long: `Show operations the server executed (previews are not recorded).

Examples:
  nasbox history
  nasbox history --kind rename --limit 5
  nasbox history --show 12            # print the full log of entry 12`,
	Args: cobra.NoArgs,
	RunE: runHistoryCmd,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().String("kind", "", "Filter by kind (rename, move, delete_empty, download)")
	historyCmd.Flags().IntP("limit", "n", 20, "Maximum entries")
	historyCmd.Flags().Int64("show", 0, "Print the log lines of one entry")
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	kind, _ := cmd.Flags().GetString("kind")
	limit, _ := cmd.Flags().GetInt("limit")
	show, _ := cmd.Flags().GetInt64("show")

	client := NewClient(serverURL)
	out := cmd.OutOrStdout()
	if show > 0 {
		resp, err := client.HistoryEntry(show)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(out, resp.Item)
		}
		printLogs(out, resp.Item.Logs)
		return nil
	}

	resp, err := client.History(kind, limit)
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(out, resp)
	}
	if len(resp.Items) == 0 {
		_, _ = fmt.Fprintln(out, "No history.")
		return nil
	}

	rows := make([][]string, len(resp.Items))
	for i, item := range resp.Items {
		result := "ok"
		if !item.OK {
			result = "failed"
		}
		rows[i] = []string{
			strconv.FormatInt(item.ID, 10),
			item.CreatedAt.Local().Format("2006-01-02 15:04"),
			item.Kind,
			result,
			item.Path,
			item.Summary,
		}
	}
	_, _ = fmt.Fprintln(out, renderTable(
		[]string{"ID", "When", "Kind", "Result", "Path", "Summary"},
		rows,
		[]columnAlignment{alignRight},
	))
	return nil
}
