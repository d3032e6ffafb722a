package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bob-takuya/notionsync/internal/diff"
	"github.com/bob-takuya/notionsync/internal/store"
	"github.com/bob-takuya/notionsync/internal/styles"
)

func init() {
	rootCmd.AddCommand(diffCmd)
}

var diffCmd = &cobra.Command{
	Use:   "diff [file]",
	Short: "Show changes against the last commit",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runDiff,
}

func runDiff(cmd *cobra.Command, args []string) error {
	root, err := workspaceRoot()
	if err != nil {
		return err
	}
	last, err := store.New().LastCommit()
	if err != nil {
		return err
	}

	var unified string
	if len(args) == 1 {
		unified, err = diff.File(root, args[0], last)
	} else {
		unified, err = diff.WorkingTree(root, last)
	}
	if err != nil {
		return err
	}
	if unified == "" {
		fmt.Println(styles.DimStyle.Render("no changes"))
		return nil
	}

	fmt.Print(diff.Render(unified))
	return nil
}
