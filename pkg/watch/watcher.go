// Package watch re-extracts saved gazette pages when they change on disk.
package watch

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"gopkg.in/fsnotify.v1"

	"github.com/coolbeans/boelex/pkg/extract"
)

// DefaultDebounce is how long a file must be quiet before it is re-extracted.
// Browsers and editors write saved pages in several chunks.
const DefaultDebounce = 300 * time.Millisecond

// Handler receives the articles extracted from a changed page.
type Handler func(path string, records []extract.ArticleRecord)

// Option configures a Watcher.
type Option func(*Watcher)

// WithLogger sets the logger used for watch errors.
func WithLogger(logger *log.Logger) Option {
	return func(w *Watcher) { w.logger = logger }
}

// WithDebounce sets the quiet period before a changed file is processed.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

// Watcher re-extracts saved gazette pages in a directory whenever they change.
type Watcher struct {
	dir       string
	handler   Handler
	logger    *log.Logger
	debounce  time.Duration
	extractor *extract.Extractor

	mu       sync.Mutex
	watcher  *fsnotify.Watcher
	pending  map[string]*time.Timer
	stopChan chan struct{}
	done     chan struct{}
	running  bool
}

// New creates a Watcher for dir. It does nothing until Start.
func New(dir string, handler Handler, options ...Option) *Watcher {
	w := &Watcher{
		dir:       dir,
		handler:   handler,
		logger:    log.New(io.Discard, "", 0),
		debounce:  DefaultDebounce,
		extractor: extract.NewExtractor(),
		pending:   make(map[string]*time.Timer),
	}
	for _, option := range options {
		option(w)
	}
	return w
}

// IsPage reports whether path has a page extension (.html or .htm).
func IsPage(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return true
	}
	return false
}

// ProcessFile extracts the articles of one page and passes them to the handler.
func (w *Watcher) ProcessFile(path string) ([]extract.ArticleRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	records := w.extractor.Extract(string(data))
	if w.handler != nil {
		w.handler(path, records)
	}
	return records, nil
}

// Scan processes every page already in the directory, in name order.
func (w *Watcher) Scan() (int, error) {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return 0, fmt.Errorf("reading directory %s: %w", w.dir, err)
	}

	processed := 0
	for _, entry := range entries {
		if entry.IsDir() || !IsPage(entry.Name()) {
			continue
		}
		if _, err := w.ProcessFile(filepath.Join(w.dir, entry.Name())); err != nil {
			w.logger.Printf("watch: %v", err)
			continue
		}
		processed++
	}
	return processed, nil
}

// Start begins watching the directory.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return fmt.Errorf("watcher already running")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	if err := watcher.Add(w.dir); err != nil {
		watcher.Close()
		return fmt.Errorf("watching directory %s: %w", w.dir, err)
	}

	w.watcher = watcher
	w.stopChan = make(chan struct{})
	w.done = make(chan struct{})
	w.running = true

	go w.watchLoop(watcher, w.stopChan, w.done)
	return nil
}

// Stop ends watching and cancels pending work. It is safe to call more than once.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = false
	close(w.stopChan)
	for path, timer := range w.pending {
		timer.Stop()
		delete(w.pending, path)
	}
	watcher, done := w.watcher, w.done
	w.mu.Unlock()

	err := watcher.Close()
	<-done
	if err != nil {
		return fmt.Errorf("closing watcher: %w", err)
	}
	return nil
}

func (w *Watcher) watchLoop(watcher *fsnotify.Watcher, stopChan <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	for {
		select {
		case <-stopChan:
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !IsPage(event.Name) {
				continue
			}
			if event.Op&fsnotify.Create == fsnotify.Create || event.Op&fsnotify.Write == fsnotify.Write {
				w.schedule(event.Name)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			w.logger.Printf("watch: %v", err)
		}
	}
}

// schedule (re)starts the debounce timer for path.
func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return
	}
	if timer, ok := w.pending[path]; ok {
		timer.Reset(w.debounce)
		return
	}
	w.pending[path] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.pending, path)
		running := w.running
		w.mu.Unlock()

		if !running {
			return
		}
		if _, err := w.ProcessFile(path); err != nil {
			w.logger.Printf("watch: %v", err)
		}
	})
}
