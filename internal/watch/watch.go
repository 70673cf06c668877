// Package watch re-runs compilation when documents, the schema or the rc
// file change.
package watch

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/hanpama/qlc/internal/compile"
	"github.com/hanpama/qlc/internal/config"
)

// DefaultDebounce is how long events are coalesced before a run.
const DefaultDebounce = 100 * time.Millisecond

// Watcher runs a callback once and again after every relevant change
// under the root directory.
type Watcher struct {
	cfg      *config.Config
	run      func(context.Context)
	debounce time.Duration
}

// New returns a watcher calling run. run is never called concurrently.
func New(cfg *config.Config, run func(context.Context)) *Watcher {
	return &Watcher{cfg: cfg, run: run, debounce: DefaultDebounce}
}

// WithDebounce sets the coalescing window.
func (w *Watcher) WithDebounce(d time.Duration) *Watcher {
	w.debounce = d
	return w
}

// Run blocks until ctx is done. It returns nil on cancellation.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	log := zerolog.Ctx(ctx)
	if err := w.addTree(fw, w.cfg.RootDir); err != nil {
		return err
	}
	for _, f := range []string{w.cfg.SchemaFile, w.cfg.ConfigFile} {
		if f != "" && !w.within(f) {
			if err := fw.Add(filepath.Dir(f)); err != nil {
				log.Warn().Err(err).Str("path", f).Msg("cannot watch file")
			}
		}
	}

	w.run(ctx)

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(w.debounce)
		} else {
			timer.Reset(w.debounce)
		}
		fire = timer.C
	}
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			log.Warn().Err(err).Msg("watch error")
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Create) && w.within(ev.Name) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() && !compile.SkipDir(info.Name()) {
					if err := w.addTree(fw, ev.Name); err != nil {
						log.Warn().Err(err).Str("path", ev.Name).Msg("cannot watch directory")
					}
					// Files may have landed before the watch was added.
					schedule()
					continue
				}
			}
			if w.Relevant(ev.Name) {
				log.Debug().Str("path", ev.Name).Str("op", ev.Op.String()).Msg("change")
				schedule()
			}
		case <-fire:
			fire = nil
			w.run(ctx)
		}
	}
}

// Relevant reports whether a change to path triggers a run.
func (w *Watcher) Relevant(path string) bool {
	clean := filepath.Clean(path)
	if clean == filepath.Clean(w.cfg.SchemaFile) {
		return true
	}
	if w.cfg.ConfigFile != "" && clean == filepath.Clean(w.cfg.ConfigFile) {
		return true
	}
	if clean == filepath.Clean(w.cfg.GlobalsFile()) {
		return false
	}
	return strings.HasSuffix(clean, ".graphql")
}

func (w *Watcher) within(path string) bool {
	rel, err := filepath.Rel(w.cfg.RootDir, path)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// addTree watches dir and its searched subdirectories.
func (w *Watcher) addTree(fw *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && compile.SkipDir(d.Name()) {
			return filepath.SkipDir
		}
		return fw.Add(path)
	})
}
