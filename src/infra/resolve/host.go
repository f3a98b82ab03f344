package resolve

import (
	"context"
	"errors"
)

var (
	// ErrHostUnavailable means the scripting host or the editor cannot be reached.
	ErrHostUnavailable = errors.New("resolve host unavailable")
	// ErrNoProject means the editor is running but no project is open.
	ErrNoProject = errors.New("no project open in resolve")
	// ErrRejected means the editor refused an operation.
	ErrRejected = errors.New("resolve rejected the operation")
	// ErrBridge covers protocol and script failures inside the bridge itself.
	ErrBridge = errors.New("resolve bridge failure")
)

// Host is the subset of the DaVinci Resolve scripting API used for imports.
// Clips are opaque handles that only mean something to the host that returned them.
type Host interface {
	Connect(ctx context.Context) (project string, err error)
	AddItemListToMediaPool(ctx context.Context, paths []string) (clips []string, err error)
	CurrentTimeline(ctx context.Context) (name string, found bool, err error)
	CreateTimelineFromClips(ctx context.Context, name string, clips []string) (string, error)
	AppendToTimeline(ctx context.Context, clips []string) error
	Close() error
}
