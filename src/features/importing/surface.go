package importing

import (
	"sync"
)

// Surface is anything that presents pending files to the user. Methods are
// called from the controller goroutine and must not block on user input.
type Surface interface {
	FileDiscovered(file PendingFile)
	FileResolved(file PendingFile)
	ConnectionChanged(conn Connection)
	WatchingChanged(folder string)
}

// Board is the view state behind the web UI. It only mirrors what the
// controller tells it; HTTP handlers read it concurrently.
type Board struct {
	mu         sync.RWMutex
	entries    []PendingFile
	connection Connection
	folder     string
}

// NewBoard creates an empty board.
func NewBoard() *Board {
	return &Board{entries: []PendingFile{}}
}

func (b *Board) FileDiscovered(file PendingFile) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries = append(b.entries, file)
}

func (b *Board) FileResolved(file PendingFile) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, entry := range b.entries {
		if entry.ID == file.ID {
			b.entries = append(b.entries[:i], b.entries[i+1:]...)
			return
		}
	}
}

func (b *Board) ConnectionChanged(conn Connection) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.connection = conn
}

func (b *Board) WatchingChanged(folder string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.folder = folder
}

// Entries returns the visible entries in discovery order.
func (b *Board) Entries() []PendingFile {
	b.mu.RLock()
	defer b.mu.RUnlock()
	entries := make([]PendingFile, len(b.entries))
	copy(entries, b.entries)
	return entries
}

// Entry returns a visible entry by ID.
func (b *Board) Entry(id string) (PendingFile, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, entry := range b.entries {
		if entry.ID == id {
			return entry, true
		}
	}
	return PendingFile{}, false
}

// Status returns the connection indicator and the watched folder.
func (b *Board) Status() (Connection, string) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.connection, b.folder
}
