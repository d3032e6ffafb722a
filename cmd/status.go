package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bob-takuya/notionsync/internal/daemon"
	"github.com/bob-takuya/notionsync/internal/store"
	"github.com/bob-takuya/notionsync/internal/styles"
)

func init() {
	rootCmd.AddCommand(statusCmd)
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show workspace changes since the last commit",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, _ []string) error {
	root, err := workspaceRoot()
	if err != nil {
		return err
	}
	st := store.New()

	last, err := st.LastCommit()
	if err != nil {
		return err
	}
	if last == nil {
		fmt.Println(styles.DimStyle.Render("no commits yet"))
	} else {
		fmt.Printf("last commit: %s %s\n",
			styles.HighlightStyle.Render(last.Stamp()), styles.DimStyle.Render(last.Message))
	}

	changes, err := st.Changes(root)
	if err != nil {
		return err
	}
	if changes.Clean() {
		fmt.Printf("%s workspace clean\n", styles.CheckMark)
	} else {
		for _, rel := range changes.Added {
			fmt.Println(styles.SuccessStyle.Render("  + " + rel))
		}
		for _, rel := range changes.Modified {
			fmt.Println(styles.WarningStyle.Render("  ~ " + rel))
		}
		for _, rel := range changes.Deleted {
			fmt.Println(styles.ErrorStyle.Render("  - " + rel))
		}
	}

	if running, pid := daemon.IsRunning(); running {
		fmt.Printf("%s watcher running (pid %d)\n", styles.CheckMark, pid)
	} else {
		fmt.Println(styles.DimStyle.Render("watcher not running"))
	}
	return nil
}
