package cmd

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/go-drift/weft/cmd/weft/internal/config"
)

// watchConfig signals on the returned channel whenever weft.yaml or
// weft.toml in dir is written, created, removed, or renamed. Bursts of
// events collapse into one signal. The watcher stops when ctx is done.
func watchConfig(ctx context.Context, dir string, logger *slog.Logger) (<-chan struct{}, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	// Watch the directory, not the file: editors often replace files by
	// renaming over them.
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, err
	}

	changes := make(chan struct{}, 1)
	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				name := filepath.Base(event.Name)
				if name != config.YAMLFile && name != config.TOMLFile {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
					continue
				}
				select {
				case changes <- struct{}{}:
				default:
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Error("project file watcher error", "err", err)
			}
		}
	}()
	return changes, nil
}
