package watch_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/currentlycurrently/acidtest/watch"
)

func TestWatcherDebouncesBurstIntoOneBatch(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(root, "handler.js")
	require.NoError(t, os.WriteFile(target, []byte("x"), 0o644))

	batches := make(chan []watch.Change, 8)
	w, err := watch.New(root, func(changes []watch.Change) {
		batches <- changes
	}, watch.Options{Debounce: 50 * time.Millisecond})
	require.NoError(t, err)
	defer w.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(target, []byte("y"), 0o644))
		time.Sleep(5 * time.Millisecond)
	}

	select {
	case batch := <-batches:
		assert.NotEmpty(t, batch)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a debounced batch")
	}
}

func TestWatcherIgnoresConfiguredPatterns(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".git"), 0o755))

	batches := make(chan []watch.Change, 8)
	w, err := watch.New(root, func(changes []watch.Change) {
		batches <- changes
	}, watch.Options{Debounce: 30 * time.Millisecond, Ignore: []string{".git"}})
	require.NoError(t, err)
	defer w.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))

	require.NoError(t, os.WriteFile(filepath.Join(root, ".git", "HEAD"), []byte("ref"), 0o644))

	select {
	case <-batches:
		t.Fatal("expected no batch for an ignored path")
	case <-time.After(200 * time.Millisecond):
	}
}
