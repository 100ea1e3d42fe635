package notify

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/constellation/internal/constellation"
)

// DefaultDebounce is the quiet period after the last file event before a
// rebuild.
const DefaultDebounce = 250 * time.Millisecond

// ErrWatcherFailed indicates the filesystem watcher failed to initialize.
var ErrWatcherFailed = errors.New("failed to initialize filesystem watcher")

// Builder produces the current view.
type Builder interface {
	Build(ctx context.Context) *constellation.View
}

// WatcherConfig locates the files to observe.
type WatcherConfig struct {
	GardensDir  string
	LettersPath string
	Debounce    time.Duration
}

// Watcher rebuilds and publishes the view when garden or letter files
// change. Bursts of events collapse into one rebuild.
type Watcher struct {
	cfg      WatcherConfig
	builder  Builder
	notifier Notifier
	logger   *zap.Logger
	metrics  *Metrics
	watcher  *fsnotify.Watcher

	lettersName string
	watched     []string
}

// NewWatcher creates a watcher and registers the directories to observe.
// Directories that do not exist are skipped with a warning. Call Run to
// start processing events.
func NewWatcher(cfg WatcherConfig, builder Builder, notifier Notifier, logger *zap.Logger) (*Watcher, error) {
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWatcherFailed, err)
	}

	w := &Watcher{
		cfg:      cfg,
		builder:  builder,
		notifier: notifier,
		logger:   logger,
		metrics:  NewMetrics(),
		watcher:  fw,
	}
	if cfg.LettersPath != "" {
		w.lettersName = filepath.Base(cfg.LettersPath)
	}

	for _, dir := range w.dirs() {
		if err := fw.Add(dir); err != nil {
			w.logger.Warn("cannot watch directory", zap.String("dir", dir), zap.Error(err))
			continue
		}
		w.watched = append(w.watched, dir)
	}
	logger.Info("watching for constellation changes",
		zap.Strings("directories", w.watched),
		zap.Duration("debounce", cfg.Debounce))

	return w, nil
}

// Watched returns the directories being observed.
func (w *Watcher) Watched() []string {
	return w.watched
}

// Run processes events until ctx is done, then releases the watcher.
// Watcher errors are logged and never stop Run.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	timer := time.NewTimer(w.cfg.Debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			w.metrics.FileEvents.Inc()
			timer.Reset(w.cfg.Debounce)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.metrics.WatchErrors.Inc()
			w.logger.Warn("file watcher error", zap.Error(err))

		case <-timer.C:
			w.publish(ctx)
		}
	}
}

func (w *Watcher) publish(ctx context.Context) {
	v := w.builder.Build(ctx)
	if err := w.notifier.Publish(ctx, v); err != nil {
		if ctx.Err() != nil {
			return
		}
		w.logger.Warn("publishing view failed", zap.Error(err))
	}
}

// dirs returns the distinct directories to watch.
func (w *Watcher) dirs() []string {
	var dirs []string
	seen := map[string]bool{}
	add := func(d string) {
		if d == "" {
			return
		}
		d = filepath.Clean(d)
		if seen[d] {
			return
		}
		if _, err := os.Stat(d); err != nil {
			w.logger.Warn("watch directory unavailable", zap.String("dir", d), zap.Error(err))
			return
		}
		seen[d] = true
		dirs = append(dirs, d)
	}
	add(w.cfg.GardensDir)
	if w.cfg.LettersPath != "" {
		add(filepath.Dir(w.cfg.LettersPath))
	}
	return dirs
}

// relevant reports whether an event touches a garden file or the letters
// file. Chmod-only events and hidden temp files are ignored.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	base := filepath.Base(event.Name)
	if strings.HasPrefix(base, ".") {
		return false
	}
	if w.lettersName != "" && base == w.lettersName &&
		filepath.Clean(filepath.Dir(event.Name)) == filepath.Clean(filepath.Dir(w.cfg.LettersPath)) {
		return true
	}
	return filepath.Ext(base) == ".json" &&
		filepath.Clean(filepath.Dir(event.Name)) == filepath.Clean(w.cfg.GardensDir)
}
