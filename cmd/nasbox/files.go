package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/vmunix/nasbox/internal/rename"
)

var subfoldersCmd = &cobra.Command{
	Use:   "subfolders <root>",
	Short: "List the first-level folders of a directory",
	Args:  cobra.ExactArgs(1),
	RunE:  runSubfoldersCmd,
}

var moveCmd = &cobra.Command{
	Use:   "move <root> <keyword> <target>",
	Short: "Gather files from keyword folders into a target folder",
	Long: `Move the files of every folder under <root> whose name contains <keyword>
into <target>. Existing files in the target are never replaced.

Examples:
  nasbox move /DataBase/dl "Season 1" /DataBase/Show/S1           # preview
  nasbox move /DataBase/dl "Season 1" /DataBase/Show/S1 --apply   # move`,
	Args: cobra.ExactArgs(3),
	RunE: runMoveCmd,
}

var renameCmd = &cobra.Command{
	Use:   "rename <folder>",
	Short: "Batch-rename files to <prefix><episode><ext>",
	Long: `Rename the files of <folder> to <prefix><number><ext>. The number comes from
--pattern's first capture group when it matches, then the digits after "EP",
then the first digit run. Files matching nothing are skipped.

Examples:
  nasbox rename /DataBase/Show/S1 --prefix "Show S01E"
  nasbox rename /DataBase/Show/S1 --prefix "Show S01E" --pattern 'E(\d+)' --apply
  nasbox rename ./downloads --local                     # run without the daemon`,
	Args: cobra.ExactArgs(1),
	RunE: runRenameCmd,
}

var cleanCmd = &cobra.Command{
	Use:   "clean <root> <keyword>",
	Short: "Delete empty folders whose name contains a keyword",
	Args:  cobra.ExactArgs(2),
	RunE:  runCleanCmd,
}

func init() {
	rootCmd.AddCommand(subfoldersCmd, moveCmd, renameCmd, cleanCmd)

	moveCmd.Flags().Bool("apply", false, "Move files (default is preview)")
	moveCmd.Flags().BoolP("recursive", "r", false, "Match folders at any depth")
	moveCmd.Flags().Bool("no-create", false, "Fail instead of creating a missing target")

	renameCmd.Flags().Bool("apply", false, "Rename files (default is preview)")
	renameCmd.Flags().StringP("prefix", "p", "", "Name prefix (default: server's default_prefix)")
	renameCmd.Flags().String("pattern", "", "Custom regex; capture group 1 is the number")
	renameCmd.Flags().Bool("overwrite", false, "Allow replacing files that already exist")
	renameCmd.Flags().Bool("local", false, "Run in-process instead of calling the server")

	cleanCmd.Flags().Bool("apply", false, "Delete folders (default is preview)")
	cleanCmd.Flags().BoolP("recursive", "r", false, "Match folders at any depth")
}

func runSubfoldersCmd(cmd *cobra.Command, args []string) error {
	client := NewClient(serverURL)
	resp, err := client.Subfolders(args[0])
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, resp)
	}
	if len(resp.Subfolders) == 0 {
		_, _ = fmt.Fprintln(out, "No subfolders.")
		return nil
	}
	rows := make([][]string, len(resp.Subfolders))
	for i, name := range resp.Subfolders {
		rows[i] = []string{strconv.Itoa(i + 1), name}
	}
	_, _ = fmt.Fprintln(out, renderTable([]string{"#", "Folder"}, rows, []columnAlignment{alignRight, alignLeft}))
	return nil
}

func runMoveCmd(cmd *cobra.Command, args []string) error {
	apply, _ := cmd.Flags().GetBool("apply")
	recursive, _ := cmd.Flags().GetBool("recursive")
	noCreate, _ := cmd.Flags().GetBool("no-create")

	client := NewClient(serverURL)
	resp, err := client.Move(&MoveRequest{
		RootFolder:        args[0],
		Keyword:           args[1],
		TargetFolder:      args[2],
		CreateIfNotExists: !noCreate,
		Recursive:         recursive,
		Preview:           !apply,
	})
	return writeLogsResult(cmd, resp, err)
}

func runRenameCmd(cmd *cobra.Command, args []string) error {
	apply, _ := cmd.Flags().GetBool("apply")
	pattern, _ := cmd.Flags().GetString("pattern")
	overwrite, _ := cmd.Flags().GetBool("overwrite")
	local, _ := cmd.Flags().GetBool("local")

	var prefix *string
	if cmd.Flags().Changed("prefix") {
		p, _ := cmd.Flags().GetString("prefix")
		prefix = &p
	}

	if local {
		opts := rename.Options{
			Folder:         args[0],
			Prefix:         "NewFile_",
			CustomPattern:  pattern,
			Preview:        !apply,
			AllowOverwrite: overwrite,
		}
		if prefix != nil {
			opts.Prefix = *prefix
		}
		report, err := rename.Run(opts)
		if err != nil {
			if report != nil && !jsonOutput {
				printLogs(cmd.OutOrStdout(), report.Lines)
			}
			return err
		}
		return writeLogsResult(cmd, &LogsResponse{Success: true, Logs: report.Lines}, nil)
	}

	client := NewClient(serverURL)
	resp, err := client.Rename(&RenameRequest{
		FolderPath:     args[0],
		Prefix:         prefix,
		CustomPattern:  pattern,
		Preview:        !apply,
		AllowOverwrite: overwrite,
	})
	return writeLogsResult(cmd, resp, err)
}

func runCleanCmd(cmd *cobra.Command, args []string) error {
	apply, _ := cmd.Flags().GetBool("apply")
	recursive, _ := cmd.Flags().GetBool("recursive")

	client := NewClient(serverURL)
	resp, err := client.DeleteEmpty(&DeleteEmptyRequest{
		RootFolder: args[0],
		Keyword:    args[1],
		Recursive:  recursive,
		Preview:    !apply,
	})
	return writeLogsResult(cmd, resp, err)
}
