package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bob-takuya/notionsync/internal/store"
	"github.com/bob-takuya/notionsync/internal/styles"
)

func init() {
	rootCmd.AddCommand(logCmd)
}

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "List commits, newest first",
	Args:  cobra.NoArgs,
	RunE:  runLog,
}

func runLog(cmd *cobra.Command, _ []string) error {
	commits, err := store.New().Log()
	if err != nil {
		return err
	}
	if len(commits) == 0 {
		fmt.Println(styles.DimStyle.Render("no commits yet"))
		return nil
	}

	fmt.Println(styles.HeaderStyle.Render(fmt.Sprintf("%-22s %-8s %s", "TIMESTAMP", "FILES", "MESSAGE")))
	for _, c := range commits {
		stamp := styles.HighlightStyle.Render(fmt.Sprintf("%-22s", c.Stamp()))
		fmt.Printf("%s %-8d %s\n", stamp, len(c.Files), c.Message)
	}
	return nil
}
