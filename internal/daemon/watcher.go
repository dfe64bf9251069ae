package daemon

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/docnav/internal/logfields"
)

// Watcher turns file changes below the content root, and writes to the
// configuration file, into debounced rebuild requests.
type Watcher struct {
	watcher     *fsnotify.Watcher
	contentRoot string
	configPath  string
	debouncer   *Debouncer
}

// NewWatcher watches contentRoot recursively and, when configPath is set,
// the configuration file. request receives TriggerWatch or TriggerConfig.
func NewWatcher(contentRoot, configPath string, debounce time.Duration, request func(trigger string)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	w := &Watcher{watcher: fw, debouncer: NewDebouncer(debounce, 0, request)}

	if w.contentRoot, err = filepath.Abs(contentRoot); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("failed to resolve content root: %w", err)
	}
	if err := w.addTree(w.contentRoot); err != nil {
		_ = fw.Close()
		return nil, err
	}

	if configPath != "" {
		if w.configPath, err = filepath.Abs(configPath); err != nil {
			_ = fw.Close()
			return nil, fmt.Errorf("failed to resolve config path: %w", err)
		}
		// The directory survives editors that replace the file on save.
		if err := fw.Add(filepath.Dir(w.configPath)); err != nil {
			_ = fw.Close()
			return nil, fmt.Errorf("failed to watch config directory: %w", err)
		}
	}
	slog.Info("Watching for changes",
		logfields.Path(w.contentRoot),
		slog.String("config", w.configPath))
	return w, nil
}

// addTree watches dir and every non-hidden directory below it.
func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && hidden(d.Name()) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
		return nil
	})
}

// Run forwards file events until ctx is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handle(ev)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Error("File watcher error", logfields.Error(err))
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	if ev.Has(fsnotify.Create) && w.within(ev.Name) {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() && !hidden(info.Name()) {
			if err := w.addTree(ev.Name); err != nil {
				slog.Warn("Failed to watch new directory", logfields.Path(ev.Name), logfields.Error(err))
			}
		}
	}
	trigger, ok := w.classify(ev)
	if !ok {
		return
	}
	slog.Debug("Change detected", logfields.Path(ev.Name), slog.String("op", ev.Op.String()), logfields.Trigger(trigger))
	w.debouncer.Trigger(trigger)
}

// classify maps an event to a trigger. Chmod-only events, hidden files and
// files other than Markdown are ignored; directory changes count since they
// move whole sections.
func (w *Watcher) classify(ev fsnotify.Event) (string, bool) {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
		return "", false
	}
	name := filepath.Clean(ev.Name)
	if w.configPath != "" && name == w.configPath {
		return TriggerConfig, true
	}
	if !w.within(name) || hidden(filepath.Base(name)) {
		return "", false
	}
	ext := strings.ToLower(filepath.Ext(name))
	if ext == ".md" || ext == "" {
		return TriggerWatch, true
	}
	return "", false
}

func (w *Watcher) within(path string) bool {
	rel, err := filepath.Rel(w.contentRoot, path)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func hidden(name string) bool {
	return strings.HasPrefix(name, ".")
}

// Close stops watching and drops pending triggers.
func (w *Watcher) Close() error {
	w.debouncer.Stop()
	return w.watcher.Close()
}
