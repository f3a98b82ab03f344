package resolve

import (
	"context"
	"log/slog"
	"sync"
)

// DefaultTimelineName is used when a project has no current timeline.
const DefaultTimelineName = "Timeline 1"

// Adapter binds the importing controller to a Resolve host. It never returns
// host errors to the caller; every failure is logged and folded into false.
type Adapter struct {
	host         Host
	timelineName string

	mu        sync.RWMutex
	connected bool
	project   string
}

// NewAdapter creates an adapter over host. It does not connect.
func NewAdapter(host Host, timelineName string) *Adapter {
	if timelineName == "" {
		timelineName = DefaultTimelineName
	}
	return &Adapter{host: host, timelineName: timelineName}
}

// Connect binds to the running editor and its current project.
func (a *Adapter) Connect(ctx context.Context) bool {
	project, err := a.host.Connect(ctx)

	a.mu.Lock()
	defer a.mu.Unlock()
	if err != nil {
		slog.Warn("Failed to connect to DaVinci Resolve", "error", err)
		a.connected = false
		a.project = ""
		return false
	}
	slog.Info("Connected to DaVinci Resolve", "project", project)
	a.connected = true
	a.project = project
	return true
}

// IsConnected reports the result of the last Connect.
func (a *Adapter) IsConnected() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.connected
}

// Project returns the project bound by the last successful Connect.
func (a *Adapter) Project() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.project
}

// ImportFile adds path to the media pool and puts the new clips on the
// current timeline, creating one when the project has none.
func (a *Adapter) ImportFile(ctx context.Context, path string) bool {
	if !a.IsConnected() {
		slog.Warn("Not connected to DaVinci Resolve, skipping import", "file", path)
		return false
	}

	clips, err := a.host.AddItemListToMediaPool(ctx, []string{path})
	if err != nil {
		slog.Error("Failed to add file to media pool", "file", path, "error", err)
		return false
	}
	if len(clips) == 0 {
		slog.Error("Media pool accepted no clips", "file", path)
		return false
	}
	slog.Info("Added file to media pool", "file", path, "clips", len(clips))

	timeline, found, err := a.host.CurrentTimeline(ctx)
	if err != nil {
		slog.Error("Failed to read current timeline", "file", path, "error", err)
		return false
	}

	if !found {
		name, err := a.host.CreateTimelineFromClips(ctx, a.timelineName, clips)
		if err != nil {
			slog.Error("Failed to create timeline", "file", path, "timeline", a.timelineName, "error", err)
			return false
		}
		slog.Info("Created timeline from clip", "file", path, "timeline", name)
		return true
	}

	if err := a.host.AppendToTimeline(ctx, clips); err != nil {
		slog.Error("Failed to append clip to timeline", "file", path, "timeline", timeline, "error", err)
		return false
	}
	slog.Info("Appended clip to timeline", "file", path, "timeline", timeline)
	return true
}

// Close shuts the host down.
func (a *Adapter) Close() error {
	a.mu.Lock()
	a.connected = false
	a.mu.Unlock()
	return a.host.Close()
}
