package importing

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/contre95/autoimport/src/features/config"
	"github.com/contre95/autoimport/src/features/metrics"
	"github.com/google/uuid"
)

type command struct {
	fn   func(ctx context.Context)
	done chan struct{}
}

// Service is the controller of the importing feature. Every piece of mutable
// state below the channels is owned by the Run goroutine; the watcher and the
// surfaces talk to it by message only.
type Service struct {
	config   *config.Manager
	watcher  Watcher
	editor   Editor
	trash    Trasher
	settings SettingsStore
	history  History
	surfaces []Surface

	events   <-chan FileEvent
	commands chan command
	stopped  chan struct{}

	folder  string
	session uint64
	seen    map[string]struct{}
	pending map[string]*PendingFile
	order   []string
}

// NewService creates a new importing controller. events must be the channel
// the watcher was built with.
func NewService(cfg *config.Manager, watcher Watcher, editor Editor, trash Trasher, settings SettingsStore, history History, events <-chan FileEvent, surfaces ...Surface) *Service {
	return &Service{
		config:   cfg,
		watcher:  watcher,
		editor:   editor,
		trash:    trash,
		settings: settings,
		history:  history,
		surfaces: surfaces,
		events:   events,
		commands: make(chan command),
		stopped:  make(chan struct{}),
		seen:     make(map[string]struct{}),
		pending:  make(map[string]*PendingFile),
	}
}

// AddSurface registers another presentation surface. It must be called before Run.
func (s *Service) AddSurface(surface Surface) {
	s.surfaces = append(s.surfaces, surface)
}

// Run is the controller loop. It connects to the editor once, resumes the last
// folder when configured to, and then serves watcher events and user commands
// until ctx is done.
func (s *Service) Run(ctx context.Context) error {
	defer close(s.stopped)
	defer s.watcher.Stop()

	s.checkConnection(ctx)

	if s.config.Get().Watch.AutoResume {
		if last := s.settings.GetLastFolder(); last != "" {
			slog.Info("Resuming last watched folder", "folder", last)
			if err := s.selectFolder(ctx, last); err != nil {
				slog.Warn("Could not resume last watched folder", "folder", last, "error", err)
			}
		}
	}

	for {
		select {
		case <-ctx.Done():
			slog.Info("Stopping importing controller")
			return ctx.Err()
		case event := <-s.events:
			s.handleEvent(event)
		case cmd := <-s.commands:
			cmd.fn(ctx)
			close(cmd.done)
		}
	}
}

// do runs fn on the controller goroutine and waits until it returns.
func (s *Service) do(ctx context.Context, fn func(ctx context.Context)) error {
	cmd := command{fn: fn, done: make(chan struct{})}
	select {
	case s.commands <- cmd:
	case <-ctx.Done():
		return ctx.Err()
	case <-s.stopped:
		return ErrStopped
	}
	<-cmd.done
	return nil
}

// handleEvent turns a creation notification into a pending file, once per path.
func (s *Service) handleEvent(event FileEvent) {
	if event.EventType != FileCreated {
		return
	}
	if s.folder == "" || event.Session != s.session {
		slog.Debug("Dropping event from a previous watch", "path", event.Path, "session", event.Session)
		return
	}
	if _, seen := s.seen[event.Path]; seen {
		metrics.DuplicateEvents.Inc()
		slog.Debug("Ignoring repeated notification", "path", event.Path)
		return
	}
	s.seen[event.Path] = struct{}{}

	file := &PendingFile{
		ID:           uuid.New().String(),
		Path:         event.Path,
		Name:         filepath.Base(event.Path),
		Folder:       s.folder,
		DiscoveredAt: event.Timestamp,
		State:        StateDiscovered,
	}
	s.pending[file.ID] = file
	s.order = append(s.order, file.ID)
	metrics.FilesDiscovered.Inc()
	metrics.PendingFiles.Set(float64(len(s.pending)))

	slog.Info("New file detected", "file", file.Path, "id", file.ID)
	for _, surface := range s.surfaces {
		surface.FileDiscovered(*file)
	}
}

// SelectFolder stops the current watch, if any, and starts watching path.
// It returns the absolute path now being watched.
func (s *Service) SelectFolder(ctx context.Context, path string) (string, error) {
	var err error
	var folder string
	if doErr := s.do(ctx, func(ctx context.Context) {
		err = s.selectFolder(ctx, path)
		folder = s.folder
	}); doErr != nil {
		return "", doErr
	}
	return folder, err
}

func (s *Service) selectFolder(ctx context.Context, path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("invalid folder %s: %w", path, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return fmt.Errorf("cannot watch %s: %w", abs, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("cannot watch %s: %w", abs, ErrNotDirectory)
	}

	// Stop blocks until the previous notifier is gone, nothing from it can arrive later
	s.watcher.Stop()
	s.folder = ""
	if err := s.watcher.Start(ctx, abs); err != nil {
		s.publishWatching("")
		return fmt.Errorf("failed to start watching %s: %w", abs, err)
	}
	s.folder = abs
	s.session = s.watcher.Session()

	if err := s.settings.SaveLastFolder(abs); err != nil {
		slog.Warn("Failed to persist last folder", "folder", abs, "error", err)
	}
	slog.Info("Monitoring folder", "folder", abs)
	s.publishWatching(abs)
	return nil
}

// CheckConnection asks the editor adapter to connect again and refreshes the status indicator.
func (s *Service) CheckConnection(ctx context.Context) (Connection, error) {
	var conn Connection
	err := s.do(ctx, func(ctx context.Context) {
		conn = s.checkConnection(ctx)
	})
	return conn, err
}

func (s *Service) checkConnection(ctx context.Context) Connection {
	conn := Connection{Connected: s.editor.Connect(ctx)}
	if conn.Connected {
		conn.Project = s.editor.Project()
	}
	metrics.EditorConnected.Set(metrics.Bool(conn.Connected))
	for _, surface := range s.surfaces {
		surface.ConnectionChanged(conn)
	}
	return conn
}

// Decide applies a user decision to a pending file.
func (s *Service) Decide(ctx context.Context, id string, action Action) (Resolution, error) {
	switch action {
	case ActionImport:
		return s.Import(ctx, id)
	case ActionDiscard:
		return s.Discard(ctx, id)
	default:
		return Resolution{}, fmt.Errorf("%w: %s", ErrInvalidAction, action)
	}
}

// Import hands the file to the editor. The entry is resolved whatever the outcome.
func (s *Service) Import(ctx context.Context, id string) (Resolution, error) {
	var res Resolution
	var err error
	doErr := s.do(ctx, func(ctx context.Context) {
		file, ok := s.pending[id]
		if !ok {
			err = fmt.Errorf("%w: %s", ErrNotFound, id)
			return
		}
		file.State = StateImporting
		slog.Info("Importing file", "file", file.Path)

		var detail string
		imported := s.editor.ImportFile(ctx, file.Path)
		switch {
		case imported:
			detail = "Imported into " + s.editor.Project()
		case !s.editor.IsConnected():
			detail = "Editor not connected"
		default:
			detail = "Rejected by editor, see logs"
		}
		res = s.resolve(ctx, file, ActionImport, imported, detail)
	})
	if doErr != nil {
		return Resolution{}, doErr
	}
	return res, err
}

// Discard moves the file to the trash. When the trash refuses it, the entry
// goes back to discovered so the user can try again.
func (s *Service) Discard(ctx context.Context, id string) (Resolution, error) {
	var res Resolution
	var err error
	doErr := s.do(ctx, func(ctx context.Context) {
		file, ok := s.pending[id]
		if !ok {
			err = fmt.Errorf("%w: %s", ErrNotFound, id)
			return
		}
		file.State = StateDiscarding

		if _, statErr := os.Stat(file.Path); errors.Is(statErr, fs.ErrNotExist) {
			slog.Warn("File vanished before it could be discarded", "file", file.Path)
			res = s.resolve(ctx, file, ActionDiscard, false, "File no longer exists")
			return
		}

		if trashErr := s.trash.Trash(file.Path); trashErr != nil {
			slog.Error("Error moving file to trash", "file", file.Path, "error", trashErr)
			file.State = StateDiscovered
			metrics.Resolutions.WithLabelValues(string(ActionDiscard), metrics.Result(false)).Inc()
			s.record(ctx, Resolution{
				ID:         uuid.New().String(),
				Path:       file.Path,
				Action:     ActionDiscard,
				Success:    false,
				Detail:     trashErr.Error(),
				ResolvedAt: time.Now(),
			})
			err = fmt.Errorf("%w: %v", ErrDiscardFailed, trashErr)
			return
		}
		slog.Info("Moved file to trash", "file", file.Path)
		res = s.resolve(ctx, file, ActionDiscard, true, "Moved to trash")
	})
	if doErr != nil {
		return Resolution{}, doErr
	}
	return res, err
}

// resolve removes the file from the pending set and tells every surface.
// The path stays in the seen set for the rest of the run.
func (s *Service) resolve(ctx context.Context, file *PendingFile, action Action, success bool, detail string) Resolution {
	file.State = StateResolved
	delete(s.pending, file.ID)
	for i, id := range s.order {
		if id == file.ID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	metrics.Resolutions.WithLabelValues(string(action), metrics.Result(success)).Inc()
	metrics.PendingFiles.Set(float64(len(s.pending)))

	res := Resolution{
		ID:         uuid.New().String(),
		Path:       file.Path,
		Action:     action,
		Success:    success,
		Detail:     detail,
		ResolvedAt: time.Now(),
	}
	s.record(ctx, res)

	for _, surface := range s.surfaces {
		surface.FileResolved(*file)
	}
	return res
}

func (s *Service) record(ctx context.Context, res Resolution) {
	if s.history == nil {
		return
	}
	if err := s.history.Record(ctx, res); err != nil {
		slog.Warn("Failed to record resolution", "path", res.Path, "error", err)
	}
}

func (s *Service) publishWatching(folder string) {
	for _, surface := range s.surfaces {
		surface.WatchingChanged(folder)
	}
}

// Pending returns the files waiting for a decision in discovery order.
func (s *Service) Pending(ctx context.Context) ([]PendingFile, error) {
	var files []PendingFile
	err := s.do(ctx, func(ctx context.Context) {
		files = make([]PendingFile, 0, len(s.order))
		for _, id := range s.order {
			files = append(files, *s.pending[id])
		}
	})
	return files, err
}

// Status returns the last known editor connection and the watched folder.
func (s *Service) Status(ctx context.Context) (Connection, string, error) {
	var conn Connection
	var folder string
	err := s.do(ctx, func(ctx context.Context) {
		conn = Connection{Connected: s.editor.IsConnected()}
		if conn.Connected {
			conn.Project = s.editor.Project()
		}
		folder = s.folder
	})
	return conn, folder, err
}

// Recent returns the latest resolutions, newest first.
func (s *Service) Recent(ctx context.Context, limit int) ([]Resolution, error) {
	if s.history == nil {
		return []Resolution{}, nil
	}
	return s.history.Recent(ctx, limit)
}
