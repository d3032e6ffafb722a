package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/bob-takuya/notionsync/internal/config"
	"github.com/bob-takuya/notionsync/internal/styles"
	syncpkg "github.com/bob-takuya/notionsync/internal/sync"
)

func init() {
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Scaffold a notionsync workspace in the current directory",
	Args:  cobra.NoArgs,
	RunE:  runInit,
}

const starterIndex = `# My Notes

Welcome to your notionsync workspace. This file maps to your Notion
page; every other markdown file here becomes a child page.
`

func runInit(cmd *cobra.Command, _ []string) error {
	root, err := workspaceRoot()
	if err != nil {
		return err
	}

	path, err := config.WriteTemplate(root)
	switch {
	case err == nil:
		fmt.Printf("%s wrote %s — fill in your Notion credentials\n", styles.CheckMark, path)
	case os.IsExist(err):
		fmt.Printf("%s .env already present\n", styles.CheckMark)
	default:
		return err
	}

	indexPath := filepath.Join(root, syncpkg.MainFile)
	if _, err := os.Stat(indexPath); os.IsNotExist(err) {
		if err := os.WriteFile(indexPath, []byte(starterIndex), 0o644); err != nil {
			return err
		}
		fmt.Printf("%s created %s\n", styles.CheckMark, syncpkg.MainFile)
	} else if err == nil {
		fmt.Printf("%s %s already present\n", styles.CheckMark, syncpkg.MainFile)
	} else {
		return err
	}

	if err := os.MkdirAll(config.DataDir(), 0o755); err != nil {
		return err
	}
	fmt.Printf("%s commit store ready at %s\n", styles.CheckMark, config.DataDir())
	return nil
}
