package storage

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ChangeCallback is called with the scalar key whose file was changed
// by another writer.
type ChangeCallback func(key string)

const watchDebounce = 200 * time.Millisecond

// Watch starts an fsnotify watcher on the data root and reports external
// edits of the scalar files until ctx is cancelled. Events produced by the
// store's own saves are filtered out via Scalar.Stale.
//
// Editors commonly replace a file through a rename, so events are debounced
// per key and only inspected once the burst settles.
func Watch(ctx context.Context, s *Scalar, logger *slog.Logger, cb ChangeCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	root := s.provider.Root()
	if err := w.Add(root); err != nil {
		return err
	}

	byFile := make(map[string]string, len(Keys))
	for _, k := range Keys {
		byFile[FileName(k)] = k
	}

	logger.Info("watcher: started", slog.String("root", root))

	pending := make(map[string]struct{})
	var timer *time.Timer
	var timerCh <-chan time.Time

	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(watchDebounce)
			timerCh = timer.C
		} else {
			timer.Reset(watchDebounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-timerCh:
			for key := range pending {
				delete(pending, key)
				if !s.Stale(key) {
					continue
				}
				logger.Debug("watcher: external change", slog.String("key", key))
				if cb != nil {
					cb(key)
				}
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			key, known := byFile[filepath.Base(ev.Name)]
			if !known {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			pending[key] = struct{}{}
			schedule()

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}
