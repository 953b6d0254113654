package match

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// WatchAliases watches the alias-group file and swaps the provider's index
// when the file changes, until ctx is cancelled. Reload failures keep the
// previous index in effect.
//
// The parent directory is watched rather than the file itself so that
// editors which replace the file via rename keep triggering events.
func WatchAliases(ctx context.Context, path string, provider *AliasProvider, logger *slog.Logger) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	dir := filepath.Dir(path)
	if err := w.Add(dir); err != nil {
		return err
	}
	target := filepath.Clean(path)

	logger.Info("alias watcher: started", slog.String("path", target))

	// Debounce bursts of write events from editors.
	var reloadTimer *time.Timer
	var reloadCh <-chan time.Time
	scheduleReload := func() {
		if reloadTimer == nil {
			reloadTimer = time.NewTimer(200 * time.Millisecond)
			reloadCh = reloadTimer.C
		} else {
			reloadTimer.Reset(200 * time.Millisecond)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if reloadTimer != nil {
				reloadTimer.Stop()
			}
			logger.Info("alias watcher: stopped")
			return nil

		case <-reloadCh:
			groups, err := LoadAliasGroups(target)
			if err != nil {
				logger.Warn("alias watcher: reload failed, keeping previous index",
					slog.String("error", err.Error()))
				continue
			}
			provider.Swap(NewAliasIndex(groups))
			logger.Info("alias watcher: alias groups reloaded",
				slog.Int("groups", len(groups)))

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				scheduleReload()
			}

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("alias watcher: error", slog.String("error", err.Error()))
		}
	}
}
