package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// reloadDebounce coalesces the burst of events editors produce on save.
const reloadDebounce = 100 * time.Millisecond

// Watch reloads the config at path whenever it changes and passes the result
// to fn. A file that fails to load is reported through err and the previous
// config stays in effect with the caller. Watching stops when ctx is done.
//
// The parent directory is watched rather than the file so that editors that
// save by renaming a temporary file are picked up.
func Watch(ctx context.Context, path string, fn func(cfg *UserConfig, err error)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create config watcher: %w", err)
	}
	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	name := filepath.Clean(path)
	go func() {
		defer func() { _ = watcher.Close() }()

		var pending <-chan time.Time
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != name {
					continue
				}
				if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
					pending = time.After(reloadDebounce)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Warn("config watcher error", "err", err)
			case <-pending:
				pending = nil
				cfg, err := LoadFromPath(path)
				if err != nil {
					fn(nil, err)
					continue
				}
				log.Info("config reloaded", "path", path)
				fn(cfg, nil)
			}
		}
	}()
	return nil
}
