package logtree

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads the [file] section of the TOML file at path whenever it
// changes and applies it through Reconfigure. The directory is watched
// rather than the file so editors that save by rename are followed.
// onReload, when not nil, receives the outcome of every reload attempt.
// Watching stops when ctx is done.
func (t *FileTransport) Watch(ctx context.Context, path string, onReload func(error)) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmtErrorf("failed to resolve config path %s: %w", path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmtErrorf("failed to create config watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		_ = watcher.Close()
		return fmtErrorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}

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
				if filepath.Clean(event.Name) != abs {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				err := t.reloadFrom(abs)
				if err != nil {
					internalLog(t.cfg.Load().InternalErrorsToStderr, "config reload from %s failed: %v", abs, err)
				}
				if onReload != nil {
					onReload(err)
				}

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				internalLog(t.cfg.Load().InternalErrorsToStderr, "config watcher error: %v", err)
			}
		}
	}()

	return nil
}

// reloadFrom layers the file over the active configuration, so keys the file
// omits keep their current values.
func (t *FileTransport) reloadFrom(path string) error {
	cfg := t.Config()
	if err := loadSection(path, fileSection, cfg); err != nil {
		return err
	}
	return t.Reconfigure(cfg)
}
