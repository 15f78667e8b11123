package rules

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"slices"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/rerades/ai-rules-cli/pkg/log"
)

// DefaultDebounce is the default quiet period of a [Watcher].
const DefaultDebounce = 200 * time.Millisecond

// Watcher notifies about changes to rule documents in a set of directories.
// Bursts of file system events are coalesced into a single notification.
type Watcher struct {
	watcher  *fsnotify.Watcher
	changes  chan []string
	debounce time.Duration
}

// WatcherOpt configures a [Watcher].
type WatcherOpt func(*Watcher)

// WithDebounce sets the quiet period after the last event before a change
// is reported.
func WithDebounce(d time.Duration) WatcherOpt {
	return func(w *Watcher) {
		w.debounce = d
	}
}

// NewWatcher watches dirs, and all directories below them.
func NewWatcher(dirs []string, opts ...WatcherOpt) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	w := &Watcher{
		watcher:  fw,
		debounce: DefaultDebounce,
		changes:  make(chan []string),
	}
	for _, opt := range opts {
		opt(w)
	}

	for _, dir := range dirs {
		err := w.addTree(dir)
		if err != nil {
			_ = fw.Close()

			return nil, err
		}
	}

	return w, nil
}

func (w *Watcher) addTree(root string) error {
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}

		err = w.watcher.Add(path)
		if err != nil {
			return fmt.Errorf("add path to watcher: %w", err)
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("watch %q: %w", root, err)
	}

	return nil
}

// Changes returns the channel on which the changed files of each burst are
// delivered. It is closed when [Watcher.Run] returns.
func (w *Watcher) Changes() <-chan []string {
	return w.changes
}

// Run processes file system events until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	defer close(w.changes)

	logger := log.WithContext(ctx)

	var (
		pending []string
		timer   = time.NewTimer(w.debounce)
		fire    <-chan time.Time
	)

	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			timer.Stop()

			return nil

		case evt, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}

			// Ignore events that are not related to file content changes.
			if evt.Has(fsnotify.Chmod) {
				continue
			}

			if evt.Has(fsnotify.Create) {
				w.maybeAddDir(ctx, evt.Name)
			}

			if !isRuleFile(evt.Name) {
				continue
			}

			logger.DebugContext(ctx, "rule file changed", slog.String("event", evt.String()))

			pending = appendUnique(pending, evt.Name)
			timer.Reset(w.debounce)
			fire = timer.C

		case <-fire:
			fire = nil

			select {
			case w.changes <- pending:
			case <-ctx.Done():
				return nil
			}

			pending = nil

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}

			logger.ErrorContext(ctx, "watch rules", slog.Any("err", err))
		}
	}
}

// maybeAddDir starts watching newly created directories.
func (w *Watcher) maybeAddDir(ctx context.Context, path string) {
	err := w.addTree(path)
	if err != nil {
		log.WithContext(ctx).DebugContext(ctx, "not watching new path",
			slog.String("path", path),
			slog.Any("err", err),
		)
	}
}

// Close stops watching.
func (w *Watcher) Close() error {
	err := w.watcher.Close()
	if err != nil {
		return fmt.Errorf("close watcher: %w", err)
	}

	return nil
}

func appendUnique(s []string, v string) []string {
	if slices.Contains(s, v) {
		return s
	}

	return append(s, v)
}
