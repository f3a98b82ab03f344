package trash

import (
	"fmt"

	"github.com/Bios-Marcel/wastebasket/v2"
)

// Bin moves files to the platform trash (freedesktop trash, Recycle Bin or Finder).
type Bin struct{}

// NewBin creates a new Bin.
func NewBin() *Bin {
	return &Bin{}
}

// Trash moves path to the trash so the user can still restore it.
func (b *Bin) Trash(path string) error {
	if err := wastebasket.Trash(path); err != nil {
		return fmt.Errorf("failed to move %s to trash: %w", path, err)
	}
	return nil
}
