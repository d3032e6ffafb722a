package daemon

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bob-takuya/notionsync/internal/config"
	"github.com/bob-takuya/notionsync/internal/logger"
	"github.com/bob-takuya/notionsync/internal/store"
)

func stateDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	orig := config.StateDir
	config.StateDir = func() string { return dir }
	t.Cleanup(func() { config.StateDir = orig })
	return dir
}

func TestPIDRoundTrip(t *testing.T) {
	stateDir(t)

	require.NoError(t, WritePID())
	pid, err := ReadPID()
	require.NoError(t, err)
	assert.Equal(t, os.Getpid(), pid)

	running, got := IsRunning()
	assert.True(t, running)
	assert.Equal(t, os.Getpid(), got)

	require.NoError(t, RemovePID())
	_, err = ReadPID()
	assert.Error(t, err)
}

func TestIsRunningCleansStalePID(t *testing.T) {
	dir := stateDir(t)

	// A pid near the default kernel maximum is very unlikely to be live.
	require.NoError(t, os.WriteFile(PIDFile(), []byte("4194000\n"), 0o644))

	running, _ := IsRunning()
	if running {
		t.Skip("pid happens to be live on this machine")
	}
	_, err := os.Stat(filepath.Join(dir, "watch.pid"))
	assert.True(t, os.IsNotExist(err))
}

func TestRemovePIDMissingFile(t *testing.T) {
	stateDir(t)
	assert.NoError(t, RemovePID())
}

func TestWatcherFiresOnChanges(t *testing.T) {
	stateDir(t)
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "note.md"), []byte("hi\n"), 0o644))

	fired := make(chan store.Changes, 1)
	w := &Watcher{
		Store:    store.NewAt(t.TempDir()),
		Root:     root,
		Interval: 10 * time.Millisecond,
		Log:      logger.Discard(),
		OnChanges: func(_ context.Context, c store.Changes) error {
			select {
			case fired <- c:
			default:
			}
			return nil
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	select {
	case c := <-fired:
		assert.Equal(t, []string{"note.md"}, c.Added)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher never reported changes")
	}

	cancel()
	require.NoError(t, <-done)
}

func TestWatcherRefusesSecondInstance(t *testing.T) {
	stateDir(t)
	require.NoError(t, WritePID())
	defer RemovePID()

	w := &Watcher{
		Store:    store.NewAt(t.TempDir()),
		Root:     t.TempDir(),
		Interval: time.Second,
		Log:      logger.Discard(),
	}
	err := w.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already running")
}
