package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type collector struct {
	mu    sync.Mutex
	paths []string
}

func (c *collector) handle(_ context.Context, path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.paths = append(c.paths, path)
}

func (c *collector) snapshot() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.paths...)
}

func startWatcher(t *testing.T, dir string, c *collector) (context.CancelFunc, chan error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- New(dir, 50*time.Millisecond, nil).Run(ctx, c.handle)
	}()
	// Give fsnotify a moment to register the folder.
	time.Sleep(100 * time.Millisecond)
	return cancel, done
}

func TestWatcherDebouncesAndFilters(t *testing.T) {
	dir := t.TempDir()
	c := &collector{}
	cancel, done := startWatcher(t, dir, c)

	target := filepath.Join(dir, "new.png")
	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(target, []byte{byte(i)}, 0o600))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".hidden.png"), []byte("x"), 0o600))

	assert.Eventually(t, func() bool {
		return len(c.snapshot()) == 1
	}, 2*time.Second, 20*time.Millisecond)

	// No further calls once the burst has settled.
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, []string{target}, c.snapshot())

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop after cancel")
	}
}

func TestWatcherMissingFolder(t *testing.T) {
	err := New(filepath.Join(t.TempDir(), "missing"), 0, nil).Run(context.Background(), func(context.Context, string) {})
	assert.Error(t, err)
}

func TestRelevant(t *testing.T) {
	cases := []struct {
		event fsnotify.Event
		want  bool
	}{
		{fsnotify.Event{Name: "/in/a.png", Op: fsnotify.Create}, true},
		{fsnotify.Event{Name: "/in/a.JPG", Op: fsnotify.Write}, true},
		{fsnotify.Event{Name: "/in/a.png", Op: fsnotify.Remove}, false},
		{fsnotify.Event{Name: "/in/a.png", Op: fsnotify.Chmod}, false},
		{fsnotify.Event{Name: "/in/a.gif", Op: fsnotify.Create}, false},
		{fsnotify.Event{Name: "/in/.a.png.123.tmp", Op: fsnotify.Create}, false},
		{fsnotify.Event{Name: "/in/.a.png", Op: fsnotify.Create}, false},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, relevant(c.event), "%v", c.event)
	}
}
