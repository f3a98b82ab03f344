package importing

import "context"

// Editor is the narrow view the controller has of the video editor. All host
// failures are folded into booleans; the reason only shows up in the logs.
type Editor interface {
	Connect(ctx context.Context) bool
	IsConnected() bool
	Project() string
	ImportFile(ctx context.Context, path string) bool
}

// Connection is what surfaces show in the status indicator.
type Connection struct {
	Connected bool   `json:"connected"`
	Project   string `json:"project,omitempty"`
}
