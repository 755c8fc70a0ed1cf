// Package watch re-invokes a scan whenever a bundle's files change, for
// `acidtest scan --watch`-style iterative development. It wraps
// github.com/fsnotify/fsnotify with a debounce window so a burst of
// editor saves triggers one re-scan, not one per file.
//
// Grounded on the file-watcher idiom used across the retrieval pack
// (recursive fsnotify.Add over a directory tree, a buffered channel
// plus a debounce timer loop): ignore patterns, dedup-by-path, and
// cooperative shutdown via context cancellation.
package watch

import (
	"context"
	"io/fs"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long to wait for more changes before
// triggering a re-scan.
const DefaultDebounce = 300 * time.Millisecond

// DefaultIgnore lists directory/file names never worth re-scanning on.
var DefaultIgnore = []string{".git", "node_modules", ".DS_Store"}

// Change describes one detected filesystem event inside the bundle.
type Change struct {
	Path string
	Time time.Time
}

// Handler is called with a deduplicated batch of changes once the
// debounce window has elapsed without further activity.
type Handler func(changes []Change)

// Watcher watches a bundle directory tree and debounces changes before
// calling a Handler, so a re-scan runs once per edit burst rather than
// once per saved file.
type Watcher struct {
	root     string
	handler  Handler
	debounce time.Duration
	ignore   []string

	fsw     *fsnotify.Watcher
	changes chan Change
	done    chan struct{}
	once    sync.Once
}

// Options configures a Watcher. The zero value uses DefaultDebounce and
// DefaultIgnore.
type Options struct {
	Debounce time.Duration
	Ignore   []string
}

// New creates a Watcher over root, calling handler after each debounced
// batch of changes. The caller must call Start to begin watching and
// Stop to release the underlying fsnotify handle.
func New(root string, handler Handler, opts Options) (*Watcher, error) {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Ignore == nil {
		opts.Ignore = DefaultIgnore
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		root:     root,
		handler:  handler,
		debounce: opts.Debounce,
		ignore:   opts.Ignore,
		fsw:      fsw,
		changes:  make(chan Change, 256),
		done:     make(chan struct{}),
	}, nil
}

// Start watches root and every subdirectory, and runs until ctx is
// canceled or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.addRecursive(w.root); err != nil {
		return err
	}

	go w.drainEvents()
	go w.debounceLoop(ctx)

	return nil
}

// Stop releases the underlying fsnotify watch and stops both loops.
func (w *Watcher) Stop() {
	w.once.Do(func() {
		close(w.done)
		w.fsw.Close()
	})
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if w.shouldIgnore(path) {
			return filepath.SkipDir
		}
		return w.fsw.Add(path)
	})
}

func (w *Watcher) shouldIgnore(path string) bool {
	base := filepath.Base(path)
	for _, pattern := range w.ignore {
		if base == pattern {
			return true
		}
		if matched, _ := filepath.Match(pattern, base); matched {
			return true
		}
	}
	return false
}

func (w *Watcher) drainEvents() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if w.shouldIgnore(event.Name) {
				continue
			}
			if event.Has(fsnotify.Create) {
				w.addRecursive(event.Name)
			}
			select {
			case w.changes <- Change{Path: event.Name, Time: time.Now()}:
			default:
			}
		case _, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
		}
	}
}

func (w *Watcher) debounceLoop(ctx context.Context) {
	var batch []Change
	var timer *time.Timer
	var timerC <-chan time.Time

	flush := func() {
		if timer != nil {
			timer.Stop()
			timer, timerC = nil, nil
		}
		if len(batch) == 0 {
			return
		}
		deduped := dedup(batch)
		batch = batch[:0]
		if w.handler != nil {
			w.handler(deduped)
		}
	}

	for {
		select {
		case <-ctx.Done():
			flush()
			return
		case <-w.done:
			flush()
			return
		case change := <-w.changes:
			batch = append(batch, change)
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				timer.Reset(w.debounce)
			}
		case <-timerC:
			flush()
		}
	}
}

// dedup keeps only the most recent Change per path, preserving the
// order paths first appeared in.
func dedup(changes []Change) []Change {
	index := make(map[string]int, len(changes))
	out := make([]Change, 0, len(changes))
	for _, c := range changes {
		if i, ok := index[c.Path]; ok {
			out[i] = c
			continue
		}
		index[c.Path] = len(out)
		out = append(out, c)
	}
	return out
}
