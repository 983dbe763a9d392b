package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDebouncer_BatchesPaths(t *testing.T) {
	var mu sync.Mutex
	var batches [][]string

	d := NewDebouncer(30*time.Millisecond, func(paths []string) {
		mu.Lock()
		defer mu.Unlock()
		batches = append(batches, paths)
	})
	defer d.Stop()

	d.Add("b.yaml")
	d.Add("a.yaml")
	d.Add("b.yaml")

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(batches) == 1
	}, time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"a.yaml", "b.yaml"}, batches[0])
}

func TestDebouncer_StopDiscardsPending(t *testing.T) {
	called := make(chan struct{}, 1)
	d := NewDebouncer(20*time.Millisecond, func([]string) { called <- struct{}{} })

	d.Add("a.yaml")
	d.Stop()
	d.Add("b.yaml")

	select {
	case <-called:
		t.Fatal("callback fired after Stop")
	case <-time.After(80 * time.Millisecond):
	}
}

func TestMergePaths(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, mergePaths([]string{"c", "a"}, []string{"b", "a"}))
}

func TestNewFileWatcher_NoFiles(t *testing.T) {
	_, err := NewFileWatcher(nil, 0, nil)
	assert.Error(t, err)
}

func TestFileWatcher_Run(t *testing.T) {
	dir := t.TempDir()
	snapshot := filepath.Join(dir, "graph.yaml")
	other := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(snapshot, []byte("types: []\n"), 0o644))

	fw, err := NewFileWatcher([]string{snapshot}, 20*time.Millisecond, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan []string, 4)
	done := make(chan error, 1)
	go func() {
		done <- fw.Run(ctx, func(paths []string) error {
			got <- paths
			return nil
		})
	}()

	// Let the watcher register its directories.
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, os.WriteFile(other, []byte("ignored"), 0o644))
	require.NoError(t, os.WriteFile(snapshot, []byte("types: [] # changed\n"), 0o644))

	select {
	case paths := <-got:
		abs, _ := filepath.Abs(snapshot)
		assert.Equal(t, []string{abs}, paths)
	case <-time.After(2 * time.Second):
		t.Fatal("no change reported")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
