package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/bob-takuya/notionsync/internal/daemon"
	"github.com/bob-takuya/notionsync/internal/logger"
	"github.com/bob-takuya/notionsync/internal/store"
	syncpkg "github.com/bob-takuya/notionsync/internal/sync"
)

var (
	watchInterval time.Duration
	watchPush     bool
)

func init() {
	watchCmd.Flags().DurationVar(&watchInterval, "interval", 30*time.Second, "how often to re-check the workspace")
	watchCmd.Flags().BoolVar(&watchPush, "push", false, "push to Notion after each auto-commit")
	rootCmd.AddCommand(watchCmd)
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Auto-commit workspace changes on an interval",
	Args:  cobra.NoArgs,
	RunE:  runWatch,
}

func runWatch(cmd *cobra.Command, _ []string) error {
	root, err := workspaceRoot()
	if err != nil {
		return err
	}
	st := store.New()
	lg := logger.New(os.Stderr)

	var engine *syncpkg.Engine
	if watchPush {
		engine, err = newEngine(root)
		if err != nil {
			return err
		}
	}

	w := &daemon.Watcher{
		Store:    st,
		Root:     root,
		Interval: watchInterval,
		Log:      lg,
		OnChanges: func(ctx context.Context, _ store.Changes) error {
			commit, err := st.Commit(root, "auto: watch")
			if err != nil {
				return fmt.Errorf("auto-commit: %w", err)
			}
			lg.CommitRecorded(commit.Stamp(), commit.Message, len(commit.Files))
			if engine == nil {
				return nil
			}
			if _, err := engine.Push(ctx); err != nil {
				return fmt.Errorf("auto-push: %w", err)
			}
			return nil
		},
	}
	return w.Run(cmd.Context())
}
