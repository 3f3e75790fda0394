package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const debounceInterval = 300 * time.Millisecond

// rebuildFunc reruns the session and returns the paths whose changes call for another run.
type rebuildFunc func() ([]string, error)

// watchAndRebuild calls rebuild once, then again whenever one of the paths it returned
// changes, until ctx is done. Changes arriving within debounceInterval of each other
// cause a single rebuild.
func watchAndRebuild(ctx context.Context, rebuild rebuildFunc, logger *zap.Logger) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	files, err := rebuild()
	if err != nil {
		return err
	}
	t := newTracker(watcher, logger)
	t.track(files)

	var debounceTimer *time.Timer
	pending := make(chan struct{}, 1)
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isRelevantChange(event) || !t.files[filepath.Clean(event.Name)] {
				continue
			}
			logger.Debug("tracked file changed", zap.String("file", event.Name), zap.Stringer("op", event.Op))

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(debounceInterval, func() {
				select {
				case pending <- struct{}{}:
				default:
				}
			})

		case <-pending:
			files, err := rebuild()
			if err != nil {
				logger.Warn("rebuild failed", zap.Error(err))
				continue
			}
			t.track(files)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", zap.Error(err))
		}
	}
}

func isRelevantChange(event fsnotify.Event) bool {
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
		event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)
}

// tracker watches the directories of the session's files. Watching directories rather
// than files keeps working when editors replace a file by renaming over it.
type tracker struct {
	watcher *fsnotify.Watcher
	logger  *zap.Logger
	files   map[string]bool
	dirs    map[string]bool
}

func newTracker(watcher *fsnotify.Watcher, logger *zap.Logger) *tracker {
	return &tracker{
		watcher: watcher,
		logger:  logger,
		files:   make(map[string]bool),
		dirs:    make(map[string]bool),
	}
}

func (t *tracker) track(files []string) {
	t.files = make(map[string]bool, len(files))
	for _, file := range files {
		file = filepath.Clean(file)
		t.files[file] = true

		dir := filepath.Dir(file)
		if t.dirs[dir] {
			continue
		}
		if err := t.watcher.Add(dir); err != nil {
			t.logger.Warn("unable to watch directory", zap.String("dir", dir), zap.Error(err))
			continue
		}
		t.dirs[dir] = true
	}
}
