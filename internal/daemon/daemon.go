// Package daemon keeps the watch-mode bookkeeping: a PID file so only
// one watcher runs per machine, and the interval loop that re-checks the
// workspace for changes.
package daemon

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/bob-takuya/notionsync/internal/config"
	"github.com/bob-takuya/notionsync/internal/logger"
	"github.com/bob-takuya/notionsync/internal/store"
)

// PIDFile returns the path of the watcher PID file.
func PIDFile() string {
	return filepath.Join(config.StateDir(), "watch.pid")
}

// WritePID records the current process in the PID file.
func WritePID() error {
	path := PIDFile()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}
	content := fmt.Sprintf("%d\n", os.Getpid())
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	return nil
}

// ReadPID reads the recorded watcher PID.
func ReadPID() (int, error) {
	content, err := os.ReadFile(PIDFile())
	if err != nil {
		if os.IsNotExist(err) {
			return 0, fmt.Errorf("no watcher running (pid file not found)")
		}
		return 0, fmt.Errorf("read pid file: %w", err)
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(content)))
	if err != nil {
		return 0, fmt.Errorf("invalid pid file: %w", err)
	}
	return pid, nil
}

// RemovePID deletes the PID file. A missing file is not an error.
func RemovePID() error {
	if err := os.Remove(PIDFile()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove pid file: %w", err)
	}
	return nil
}

// IsRunning reports whether a live watcher holds the PID file. A stale
// file left by a dead process is cleaned up along the way.
func IsRunning() (bool, int) {
	pid, err := ReadPID()
	if err != nil {
		return false, 0
	}
	process, err := os.FindProcess(pid)
	if err != nil {
		return false, 0
	}
	// Signal 0 probes liveness without touching the process.
	if err := process.Signal(syscall.Signal(0)); err != nil {
		_ = RemovePID()
		return false, 0
	}
	return true, pid
}

// Watcher is the foreground interval loop behind watch mode. Every tick
// it diffs the workspace against the last commit; when something changed
// the OnChanges hook runs (the CLI wires auto-commit and push there).
type Watcher struct {
	Store    *store.Store
	Root     string
	Interval time.Duration
	Log      *logger.Logger

	// OnChanges handles a dirty workspace. Errors are logged and the
	// loop keeps running.
	OnChanges func(ctx context.Context, changes store.Changes) error
}

// Run loops until the context is cancelled or the process receives
// SIGINT/SIGTERM. The PID file is held for the duration.
func (w *Watcher) Run(ctx context.Context) error {
	if running, pid := IsRunning(); running {
		return fmt.Errorf("watcher already running with pid %d", pid)
	}
	if err := WritePID(); err != nil {
		return err
	}
	defer func() {
		if err := RemovePID(); err != nil {
			w.Log.Error("cleanup failed", "err", err)
		}
	}()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	w.Log.Info("watching for changes", "interval", w.Interval)

	ticker := time.NewTicker(w.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.Log.Info("watcher stopped")
			return nil
		case <-ticker.C:
			w.tick(ctx)
		}
	}
}

func (w *Watcher) tick(ctx context.Context) {
	changes, err := w.Store.Changes(w.Root)
	if err != nil {
		w.Log.Error("change scan failed", "err", err)
		return
	}
	if changes.Clean() {
		return
	}

	w.Log.Info("workspace changed",
		"added", len(changes.Added),
		"modified", len(changes.Modified),
		"deleted", len(changes.Deleted))

	if w.OnChanges != nil {
		if err := w.OnChanges(ctx, changes); err != nil {
			w.Log.Error("change handler failed", "err", err)
		}
	}
}
