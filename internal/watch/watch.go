// Package watch reruns a build when its inputs change.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/locationtech/geogig-manpages/internal/logging"
)

const DefaultDebounce = 300 * time.Millisecond

// Watcher calls Build after its paths stop changing for Debounce.
// Directories are watched recursively; for files the parent directory
// is watched so editors that replace files by rename are seen.
type Watcher struct {
	Paths []string
	// Ignore holds directories whose changes never trigger a build,
	// such as the build output.
	Ignore   []string
	Debounce time.Duration
	Build    func(ctx context.Context) error
	Logger   *slog.Logger

	files map[string]bool
	dirs  map[string]bool
}

// Run watches until ctx is canceled. Build failures are logged and do
// not stop the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	if w.Build == nil {
		return errors.New("watcher needs a build function")
	}
	logger := w.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	debounce := w.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() { _ = fsw.Close() }()

	w.files = make(map[string]bool)
	w.dirs = make(map[string]bool)
	for _, p := range w.Paths {
		if err := w.add(fsw, p); err != nil {
			return err
		}
	}
	logger.Info("watching for changes", "paths", w.Paths)

	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", "error", err)
		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(ev) {
				continue
			}
			logger.Debug("change detected", "path", ev.Name, "op", ev.Op.String())
			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() && w.watchedTree(ev.Name) {
					if err := w.addTree(fsw, ev.Name); err != nil {
						logger.Warn("watch new directory", "path", ev.Name, "error", err)
					}
				}
			}
			timer.Reset(debounce)
		case <-timer.C:
			logger.Info("rebuilding")
			if err := w.Build(ctx); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				logger.Error("rebuild failed", "error", err)
			}
		}
	}
}

func (w *Watcher) add(fsw *fsnotify.Watcher, p string) error {
	abs, err := filepath.Abs(p)
	if err != nil {
		return err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return fmt.Errorf("watch %s: %w", p, err)
	}
	if info.IsDir() {
		w.dirs[abs] = true
		return w.addTree(fsw, abs)
	}
	w.files[abs] = true
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", p, err)
	}
	return nil
}

func (w *Watcher) addTree(fsw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != root && (hidden(d.Name()) || w.ignored(p)) {
			return filepath.SkipDir
		}
		if err := fsw.Add(p); err != nil {
			return fmt.Errorf("watch %s: %w", p, err)
		}
		return nil
	})
}

// relevant reports whether ev may change the build.
func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if ev.Op == fsnotify.Chmod {
		return false
	}
	abs, err := filepath.Abs(ev.Name)
	if err != nil {
		return false
	}
	if w.files[abs] {
		return true
	}
	base := filepath.Base(abs)
	if hidden(base) || strings.HasSuffix(base, "~") || w.ignored(abs) {
		return false
	}
	return w.watchedTree(abs)
}

func (w *Watcher) watchedTree(abs string) bool {
	for dir := range w.dirs {
		if abs == dir || strings.HasPrefix(abs, dir+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

func (w *Watcher) ignored(p string) bool {
	for _, dir := range w.Ignore {
		abs, err := filepath.Abs(dir)
		if err != nil {
			continue
		}
		if p == abs || strings.HasPrefix(p, abs+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

func hidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
