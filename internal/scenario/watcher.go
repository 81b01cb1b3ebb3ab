package scenario

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const debounce = 200 * time.Millisecond

// ChangeFunc is called with the path of a scenario file that changed, as it
// was passed to Watch.
type ChangeFunc func(path string)

// Watch watches the scenario files at paths until ctx is cancelled and calls
// fn once per burst of changes to a file. The parent directories are watched
// rather than the files, so editors that save by replacing the file are seen.
func Watch(ctx context.Context, paths []string, logger *slog.Logger, fn ChangeFunc) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	targets := make(map[string]string, len(paths))
	dirs := make(map[string]struct{})
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return err
		}
		targets[abs] = p
		dirs[filepath.Dir(abs)] = struct{}{}
	}
	for d := range dirs {
		if err := w.Add(d); err != nil {
			return err
		}
	}

	logger.Info("watcher: started", slog.Int("files", len(targets)))

	pending := make(map[string]struct{})
	var timer *time.Timer
	var timerCh <-chan time.Time

	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(debounce)
			timerCh = timer.C
		} else {
			timer.Reset(debounce)
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
			for abs := range pending {
				logger.Debug("watcher: changed", slog.String("path", targets[abs]))
				fn(targets[abs])
			}
			clear(pending)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			abs := filepath.Clean(ev.Name)
			if _, watched := targets[abs]; !watched {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			pending[abs] = struct{}{}
			schedule()

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}
