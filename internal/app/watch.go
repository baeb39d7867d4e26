package app

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watch re-renders the input files whenever one of them or the config file
// changes, until ctx is done. Parent directories are watched rather than
// the files themselves so that editors which save by renaming a temporary
// file are still noticed. Bursts of events within WatchDelay are coalesced.
func (app *Application) Watch(ctx context.Context) error {
	if len(app.opts.Files) == 0 {
		return ErrNoInput
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return NewOperationError("watch", "", err)
	}
	defer w.Close()

	targets := make(map[string]string) // absolute path -> path as given
	add := func(path string) error {
		abs, err := filepath.Abs(path)
		if err != nil {
			return err
		}
		targets[abs] = path
		return nil
	}
	for _, f := range app.opts.Files {
		if err := add(f); err != nil {
			return NewOperationError("watch", f, err)
		}
	}
	configPath := ""
	if app.opts.ConfigPath != "" {
		if err := add(app.opts.ConfigPath); err != nil {
			return NewOperationError("watch", app.opts.ConfigPath, err)
		}
		configPath, _ = filepath.Abs(app.opts.ConfigPath)
	}

	dirs := make(map[string]bool)
	for abs := range targets {
		dir := filepath.Dir(abs)
		if dirs[dir] {
			continue
		}
		if err := w.Add(dir); err != nil {
			return NewOperationError("watch", dir, err)
		}
		dirs[dir] = true
	}

	log := app.logger.WithComponent("watch")
	log.Info("watching %d files", len(targets))

	pending := make(map[string]bool)
	timer := time.NewTimer(app.opts.WatchDelay)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !relevant(ev.Op) {
				continue
			}
			abs, err := filepath.Abs(ev.Name)
			if err != nil {
				continue
			}
			if _, ok := targets[abs]; !ok {
				continue
			}
			log.Debug("%s %s", ev.Op, ev.Name)
			pending[abs] = true
			timer.Reset(app.opts.WatchDelay)

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn("watcher error: %v", err)

		case <-timer.C:
			app.handleChanges(ctx, pending, configPath, targets)
			clear(pending)
		}
	}
}

func relevant(op fsnotify.Op) bool {
	return op.Has(fsnotify.Write) || op.Has(fsnotify.Create) || op.Has(fsnotify.Rename)
}

// handleChanges reloads the configuration if it changed and re-renders the
// affected files. A config change re-renders every file.
func (app *Application) handleChanges(ctx context.Context, changed map[string]bool, configPath string, targets map[string]string) {
	all := false
	if configPath != "" && changed[configPath] {
		if err := app.Reload(ctx); err != nil {
			app.logComponentError("config", err)
		} else {
			all = true
		}
	}

	var paths []string
	for _, f := range app.opts.Files {
		abs, _ := filepath.Abs(f)
		if all || changed[abs] {
			paths = append(paths, targets[abs])
		}
	}
	if len(paths) == 0 {
		return
	}
	app.logComponentError("render", app.renderFiles(paths))
}
