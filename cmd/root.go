package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/bob-takuya/notionsync/internal/config"
	"github.com/bob-takuya/notionsync/internal/logger"
	"github.com/bob-takuya/notionsync/internal/notion"
	"github.com/bob-takuya/notionsync/internal/store"
	syncpkg "github.com/bob-takuya/notionsync/internal/sync"
)

const version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:   "notionsync",
	Short: "Version control and sync for Notion pages, in markdown",
	Long: `notionsync keeps a local folder of markdown files in sync with a
Notion page or database.

Examples:
  notionsync init                  # scaffold .env and index.md
  notionsync commit -m "draft"     # snapshot the workspace
  notionsync push                  # send the workspace to Notion
  notionsync pull                  # fetch remote pages into markdown
  notionsync watch --push          # auto-commit and push on change`,
	Version:           version,
	CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func workspaceRoot() (string, error) {
	return os.Getwd()
}

// newEngine wires the sync engine from the workspace configuration. The
// page/database credentials must be present and valid.
func newEngine(root string) (*syncpkg.Engine, error) {
	cfg, err := config.Load(root)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	client := notion.NewClient(cfg.BaseURL, cfg.APIKey, cfg.APIVersion)
	return syncpkg.New(client, cfg, store.New(), logger.New(os.Stderr), root), nil
}
