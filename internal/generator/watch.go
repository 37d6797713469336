package generator

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/1broseidon/hlbar/internal/bar"
)

// WatchFile requests a redraw whenever path is written, created, removed or
// renamed. The parent directory is watched so the file may come and go.
func WatchFile(ctx context.Context, path string, sig bar.Signaler, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	target := filepath.Clean(path)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("%w: file watcher: %v", ErrSpawn, err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("%w: watch %s: %v", ErrSpawn, filepath.Dir(target), err)
	}
	logger.Debug("watching file", "path", target)

	const relevant = fsnotify.Write | fsnotify.Create | fsnotify.Remove | fsnotify.Rename
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target || event.Op&relevant == 0 {
				continue
			}
			sig.RequestRedraw()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("file watcher error", "path", target, "error", err)
		}
	}
}
