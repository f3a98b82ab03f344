package importing

import (
	"context"
	"time"
)

// Watcher defines the interface for file system watchers
type Watcher interface {
	// Start subscribes to one directory, non-recursively. Events are tagged with
	// the session returned by Session until the next Start.
	Start(ctx context.Context, watchPath string) error
	// Stop unsubscribes and returns only once no further event can be emitted.
	Stop()
	Session() uint64
}

// FileEventType represents the type of file system event
type FileEventType string

const (
	FileCreated  FileEventType = "created"
	FileRemoved  FileEventType = "removed"
	FileModified FileEventType = "modified"
)

// FileEvent represents a file system event
type FileEvent struct {
	Path      string
	EventType FileEventType
	Timestamp time.Time
	Session   uint64
}
