package vitrine

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchDebounce coalesces bursts of filesystem events (editors write, rename,
// and chmod in quick succession) into a single refresh.
const watchDebounce = 500 * time.Millisecond

// ContentWatcher reacts to out-of-band edits of the content tree. The admin
// API invalidates caches itself; the watcher covers direct edits over SSH,
// git pulls, and sync tools.
type ContentWatcher struct {
	watcher   *fsnotify.Watcher
	dirs      []string
	onChange  func()
	cancelFun context.CancelFunc
}

// NewContentWatcher creates a watcher over the given directories. onChange
// fires after the debounce window closes.
func NewContentWatcher(dirs []string, onChange func()) (*ContentWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	return &ContentWatcher{
		watcher:  watcher,
		dirs:     dirs,
		onChange: onChange,
	}, nil
}

// Start registers the watched directories and runs the event loop until the
// context is canceled or Close is called.
func (w *ContentWatcher) Start(ctx context.Context) error {
	for _, dir := range w.dirs {
		if err := w.watcher.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
	}
	ctx, cancel := context.WithCancel(ctx)
	w.cancelFun = cancel
	go w.loop(ctx)
	return nil
}

func (w *ContentWatcher) loop(ctx context.Context) {
	debounce := time.NewTimer(watchDebounce)
	if !debounce.Stop() {
		<-debounce.C
	}
	pending := false

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if ignoreContentEvent(event) {
				continue
			}
			if pending {
				debounce.Reset(watchDebounce)
				continue
			}
			pending = true
			debounce.Reset(watchDebounce)
		case <-debounce.C:
			pending = false
			w.onChange()
		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
		}
	}
}

// ignoreContentEvent filters events that cannot affect served content:
// chmods, hidden files, and editor droppings.
func ignoreContentEvent(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return true
	}
	name := filepath.Base(event.Name)
	if strings.HasPrefix(name, ".") {
		return true
	}
	if strings.HasSuffix(name, "~") || strings.HasSuffix(name, ".swp") || strings.HasSuffix(name, ".tmp") {
		return true
	}
	return false
}

// Close stops the event loop and releases the underlying watcher.
func (w *ContentWatcher) Close() error {
	if w.cancelFun != nil {
		w.cancelFun()
	}
	return w.watcher.Close()
}
