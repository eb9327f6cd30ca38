package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// reloadDelay coalesces the burst of events editors produce when saving.
const reloadDelay = 200 * time.Millisecond

// Watcher reports changes to the config file.
type Watcher struct {
	watcher  *fsnotify.Watcher
	filePath string
	logger   zerolog.Logger
}

// NewWatcher watches the directory containing filePath, which is more
// reliable than watching the file across atomic renames.
func NewWatcher(filePath string, logger zerolog.Logger) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	dir := filepath.Dir(filePath)
	if err := w.Add(dir); err != nil {
		w.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}
	return &Watcher{watcher: w, filePath: filePath, logger: logger}, nil
}

// Run calls onChange after the file is written, created, or replaced, until
// ctx is done. It closes the underlying watcher on return.
func (fw *Watcher) Run(ctx context.Context, onChange func()) error {
	defer fw.watcher.Close()

	filename := filepath.Base(fw.filePath)
	var pending <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return nil
			}
			// Only care about our file
			if filepath.Base(event.Name) != filename {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				pending = time.After(reloadDelay)
			}

		case <-pending:
			pending = nil
			fw.logger.Debug().Str("file", fw.filePath).Msg("config file changed")
			onChange()

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return nil
			}
			fw.logger.Warn().Err(err).Msg("config watcher error")
		}
	}
}
