package cmd

import (
	"github.com/spf13/cobra"

	"github.com/bob-takuya/notionsync/internal/store"
	"github.com/bob-takuya/notionsync/internal/tui"
)

func init() {
	rootCmd.AddCommand(browseCmd)
}

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse tracked files interactively",
	Args:  cobra.NoArgs,
	RunE:  runBrowse,
}

func runBrowse(cmd *cobra.Command, _ []string) error {
	root, err := workspaceRoot()
	if err != nil {
		return err
	}
	return tui.Browse(root, store.New())
}
