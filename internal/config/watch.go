package config

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	appLog "tasktimer/internal/log"
)

const watchDebounce = 250 * time.Millisecond

// Watch calls onChange whenever the file at path is written or replaced.
// It watches the parent directory, since editors and Save replace the file
// by rename. Bursts of events within watchDebounce fire once. Watching
// stops when ctx is cancelled.
func Watch(ctx context.Context, path string, onChange func()) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		w.Close()
		return err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return err
	}

	go func() {
		defer w.Close()
		var last time.Time
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != abs {
					continue
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
					continue
				}
				if time.Since(last) < watchDebounce {
					appLog.Debug("config change debounced", "path", abs)
					continue
				}
				last = time.Now()
				appLog.Info("config file changed", "path", abs)
				onChange()
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				appLog.Error("config watcher error", err, "path", abs)
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}
