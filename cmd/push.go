package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bob-takuya/notionsync/internal/styles"
)

func init() {
	rootCmd.AddCommand(pushCmd)
}

var pushCmd = &cobra.Command{
	Use:   "push",
	Short: "Send the workspace to Notion",
	Args:  cobra.NoArgs,
	RunE:  runPush,
}

func runPush(cmd *cobra.Command, _ []string) error {
	root, err := workspaceRoot()
	if err != nil {
		return err
	}
	engine, err := newEngine(root)
	if err != nil {
		return err
	}

	res, err := engine.Push(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Printf("%s pushed %d page(s)", styles.CheckMark, res.Pushed)
	if res.Skipped > 0 {
		fmt.Printf(", skipped %d", res.Skipped)
	}
	if res.Archived > 0 {
		fmt.Printf(", archived %d", res.Archived)
	}
	fmt.Println()
	return nil
}
