package watcher

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/contre95/autoimport/src/features/importing"
	"github.com/fsnotify/fsnotify"
)

// Watcher monitors one folder, non-recursively, and emits an event for every
// file created in it. Each Start opens a fresh fsnotify watcher and bumps the
// session so stale events can be told apart.
type Watcher struct {
	mu         sync.Mutex
	fsw        *fsnotify.Watcher
	watchPath  string
	session    uint64
	extensions map[string]bool
	stopChan   chan struct{}
	done       chan struct{}
	eventChan  chan<- importing.FileEvent
}

// NewWatcher creates a new file system watcher. An empty extension list accepts every file.
func NewWatcher(eventChan chan<- importing.FileEvent, extensions []string) *Watcher {
	exts := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		exts[strings.ToLower(ext)] = true
	}
	return &Watcher{
		eventChan:  eventChan,
		extensions: exts,
	}
}

// Start begins watching watchPath, stopping any previous watch first
func (w *Watcher) Start(ctx context.Context, watchPath string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.stopLocked()

	slog.Info("Starting file watcher", "path", watchPath)
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := fsw.Add(watchPath); err != nil {
		fsw.Close()
		return err
	}

	w.session++
	w.fsw = fsw
	w.watchPath = watchPath
	w.stopChan = make(chan struct{})
	w.done = make(chan struct{})

	go w.watchLoop(ctx, fsw, w.session, w.stopChan, w.done)

	slog.Info("File watcher started successfully", "path", watchPath, "session", w.session)
	return nil
}

// Stop stops the file watcher and waits for its goroutine to exit
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stopLocked()
}

func (w *Watcher) stopLocked() {
	if w.fsw == nil {
		return
	}
	slog.Info("Stopping file watcher", "path", w.watchPath)
	close(w.stopChan)
	if err := w.fsw.Close(); err != nil {
		slog.Warn("Failed to close file watcher", "error", err)
	}
	<-w.done
	w.fsw = nil
	w.watchPath = ""
}

// Session identifies the current watch; it changes on every Start.
func (w *Watcher) Session() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.session
}

// Running reports whether a folder is being watched.
func (w *Watcher) Running() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.fsw != nil
}

// watchLoop processes file system events
func (w *Watcher) watchLoop(ctx context.Context, fsw *fsnotify.Watcher, session uint64, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	for {
		select {
		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(event, session, stop)

		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			slog.Error("File watcher error", "error", err)

		case <-stop:
			return

		case <-ctx.Done():
			return
		}
	}
}

// handleEvent forwards creation of regular files, everything else is dropped
func (w *Watcher) handleEvent(event fsnotify.Event, session uint64, stop <-chan struct{}) {
	if !event.Has(fsnotify.Create) {
		return
	}
	if !w.isSupportedFile(event.Name) {
		return
	}
	info, err := os.Stat(event.Name)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			slog.Warn("Cannot stat new entry", "path", event.Name, "error", err)
		}
		return
	}
	if info.IsDir() {
		return
	}

	fileEvent := importing.FileEvent{
		Path:      event.Name,
		EventType: importing.FileCreated,
		Timestamp: time.Now(),
		Session:   session,
	}
	select {
	case w.eventChan <- fileEvent:
		slog.Debug("Emitted file event", "path", event.Name, "session", session)
	case <-stop:
	}
}

// isSupportedFile checks the extension filter
func (w *Watcher) isSupportedFile(filePath string) bool {
	if len(w.extensions) == 0 {
		return true
	}
	return w.extensions[strings.ToLower(filepath.Ext(filePath))]
}
