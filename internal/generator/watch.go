package generator

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/gantt/internal/source"
)

// Event kinds passed to an EventCallback.
const (
	EventCreated = "created"
	EventUpdated = "updated"
	EventDeleted = "deleted"
)

// DebounceInterval is how long a file must stay quiet before it is rendered.
const DebounceInterval = 200 * time.Millisecond

// EventCallback is called after a watcher-driven render or removal.
type EventCallback func(kind string, path string)

// Watch renders export files as they change below the profiles' CSV
// directories until ctx is cancelled. Bursts of writes to one file collapse
// into a single render once the file has been quiet for DebounceInterval.
func (g *Generator) Watch(ctx context.Context, cb EventCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	root, err := g.store.Abs(".")
	if err != nil {
		return err
	}
	for _, dir := range g.dispatcher.Dirs() {
		abs, err := g.store.Abs(dir)
		if err != nil {
			return err
		}
		if err := os.MkdirAll(abs, 0o755); err != nil {
			return err
		}
		if err := addDirsRecursive(w, abs); err != nil {
			return err
		}
	}
	g.logger.Info("watcher: started", slog.String("root", root))

	pending := make(map[string]string)
	var (
		timer   *time.Timer
		timerCh <-chan time.Time
	)
	schedule := func(rel, kind string) {
		if prev, ok := pending[rel]; ok && prev == EventCreated && kind == EventUpdated {
			kind = EventCreated
		}
		pending[rel] = kind
		if timer == nil {
			timer = time.NewTimer(DebounceInterval)
			timerCh = timer.C
		} else {
			timer.Reset(DebounceInterval)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			g.logger.Info("watcher: stopped")
			return nil

		case <-timerCh:
			batch := pending
			pending = make(map[string]string)
			for rel, kind := range batch {
				g.apply(ctx, rel, kind, cb)
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			abs := ev.Name

			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(abs); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, abs); addErr != nil {
						g.logger.Warn("watcher: add new dir failed",
							slog.String("path", abs),
							slog.String("error", addErr.Error()))
						continue
					}
					g.logger.Debug("watcher: watching new dir", slog.String("path", abs))
					for _, rel := range exportsBelow(root, abs) {
						schedule(rel, EventCreated)
					}
					continue
				}
			}

			if !source.Supported(abs) || strings.HasPrefix(filepath.Base(abs), ".") {
				continue
			}
			rel, relErr := filepath.Rel(root, abs)
			if relErr != nil {
				continue
			}
			rel = filepath.ToSlash(rel)

			switch {
			case ev.Op&fsnotify.Create != 0:
				schedule(rel, EventCreated)
			case ev.Op&fsnotify.Write != 0:
				schedule(rel, EventUpdated)
			case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				// Rename fires on the old path; the new path arrives as Create.
				schedule(rel, EventDeleted)
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			g.logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

func (g *Generator) apply(ctx context.Context, rel, kind string, cb EventCallback) {
	if kind != EventDeleted {
		if _, err := g.store.Read(rel); err != nil {
			// Gone again before the debounce fired.
			kind = EventDeleted
		}
	}

	if kind == EventDeleted {
		if err := g.Remove(rel); err != nil {
			g.logger.Warn("watcher: remove failed", slog.String("path", rel), slog.String("error", err.Error()))
			return
		}
		if cb != nil {
			cb(kind, rel)
		}
		return
	}

	if _, err := g.dispatcher.Match(rel); err != nil {
		g.logger.Debug("watcher: no profile", slog.String("path", rel))
		return
	}
	// Failures are already logged and recorded by Generate.
	_, _ = g.Generate(ctx, rel)
	g.logger.Debug("watcher: rendered", slog.String("path", rel), slog.String("op", kind))
	if cb != nil {
		cb(kind, rel)
	}
}

// exportsBelow lists the export files already present in a new directory.
func exportsBelow(root, dir string) []string {
	var out []string
	_ = filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !source.Supported(p) || strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		if rel, relErr := filepath.Rel(root, p); relErr == nil {
			out = append(out, filepath.ToSlash(rel))
		}
		return nil
	})
	return out
}

// addDirsRecursive adds root and all its subdirectories to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
}
