package importing

import (
	"errors"
	"time"
)

var (
	ErrNotFound      = errors.New("pending file not found")
	ErrNotDirectory  = errors.New("not a directory")
	ErrStopped       = errors.New("controller is not running")
	ErrDiscardFailed = errors.New("could not move file to trash")
	ErrInvalidAction = errors.New("invalid action")
)

// FileState is the lifecycle position of a pending file.
type FileState string

const (
	StateDiscovered FileState = "discovered"
	StateImporting  FileState = "importing"
	StateDiscarding FileState = "discarding"
	StateResolved   FileState = "resolved"
)

// PendingFile is a discovered file waiting for the user to import or discard it.
type PendingFile struct {
	ID           string    `json:"id"`
	Path         string    `json:"path"`
	Name         string    `json:"name"`
	Folder       string    `json:"folder"`
	DiscoveredAt time.Time `json:"discovered_at"`
	State        FileState `json:"state"`
}
