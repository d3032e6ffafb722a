package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bob-takuya/notionsync/internal/styles"
)

func init() {
	rootCmd.AddCommand(pullCmd)
}

var pullCmd = &cobra.Command{
	Use:   "pull",
	Short: "Fetch remote pages into local markdown files",
	Args:  cobra.NoArgs,
	RunE:  runPull,
}

func runPull(cmd *cobra.Command, _ []string) error {
	root, err := workspaceRoot()
	if err != nil {
		return err
	}
	engine, err := newEngine(root)
	if err != nil {
		return err
	}

	res, err := engine.Pull(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Printf("%s pulled %d page(s)\n", styles.CheckMark, res.Pages)
	if res.Failed > 0 {
		fmt.Printf("%s %d page(s) could not be converted\n", styles.CrossMark, res.Failed)
	}
	return nil
}
