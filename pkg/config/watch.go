package config

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher re-loads the configuration whenever the config file changes and
// hands the fresh Config to the registered callback. Adding an API key to
// the file enables the matching provider without a restart.
type Watcher struct {
	path    string
	logger  *zap.Logger
	watcher *fsnotify.Watcher
	done    chan struct{}
}

// Watch starts watching path. onChange is called from the watch goroutine
// with every successfully re-loaded Config; load failures are logged and
// the previous configuration stays in effect.
func Watch(path string, logger *zap.Logger, onChange func(Config)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	// Watch the directory: editors typically replace the file, which
	// drops a watch registered on the file itself.
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		fsw.Close()
		return nil, err
	}

	w := &Watcher{
		path:    path,
		logger:  logger,
		watcher: fsw,
		done:    make(chan struct{}),
	}

	go w.run(onChange)
	return w, nil
}

func (w *Watcher) run(onChange func(Config)) {
	defer close(w.done)

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			cfg, err := Load(w.path)
			if err != nil {
				w.logger.Warn("config reload failed, keeping previous config",
					zap.String("path", w.path),
					zap.Error(err),
				)
				continue
			}

			w.logger.Info("config reloaded", zap.String("path", w.path))
			onChange(cfg)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("config watch error", zap.Error(err))
		}
	}
}

// Close stops watching and waits for the watch goroutine to exit.
func (w *Watcher) Close() error {
	err := w.watcher.Close()
	<-w.done
	return err
}
