package dataset

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWatchReloadsOnWrite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping filesystem watcher test in short mode")
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "nrel_data.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloaded := make(chan string, 4)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, 20*time.Millisecond, func(p string) { reloaded <- p })
	}()

	// give the watcher time to register the directory
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV+"Tandem,,,,30,2024-01-01\n"), 0644))

	select {
	case p := <-reloaded:
		abs, _ := filepath.Abs(path)
		require.Equal(t, abs, p)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not fire")
	}

	cancel()
	require.NoError(t, <-done)
}
