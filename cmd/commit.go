package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bob-takuya/notionsync/internal/store"
	"github.com/bob-takuya/notionsync/internal/styles"
)

var commitMessage string

func init() {
	commitCmd.Flags().StringVarP(&commitMessage, "message", "m", "", "commit message")
	_ = commitCmd.MarkFlagRequired("message")
	rootCmd.AddCommand(commitCmd)
}

var commitCmd = &cobra.Command{
	Use:   "commit",
	Short: "Snapshot every tracked markdown file",
	Args:  cobra.NoArgs,
	RunE:  runCommit,
}

func runCommit(cmd *cobra.Command, _ []string) error {
	root, err := workspaceRoot()
	if err != nil {
		return err
	}
	st := store.New()

	changes, err := st.Changes(root)
	if err != nil {
		return err
	}
	if changes.Clean() {
		fmt.Println(styles.DimStyle.Render("nothing to commit, workspace unchanged"))
		return nil
	}

	commit, err := st.Commit(root, commitMessage)
	if err != nil {
		return err
	}
	fmt.Printf("%s committed %d file(s) as %s\n",
		styles.CheckMark, len(commit.Files), styles.HighlightStyle.Render(commit.Stamp()))
	return nil
}
