package dataset

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce groups the burst of events editors and uploads produce.
const DefaultDebounce = 250 * time.Millisecond

// Watch calls reload each time the file at path is written, created or renamed
// into place. It blocks until ctx is done. The parent directory is watched so
// atomic replace-by-rename is picked up.
func Watch(ctx context.Context, path string, debounce time.Duration, reload func(path string)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	target, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(target), err)
	}
	log.Debugf("Watching dataset file %s", target)

	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			fire = time.After(debounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Errorf("Dataset watcher error: %v", err)
		case <-fire:
			fire = nil
			reload(target)
		}
	}
}
