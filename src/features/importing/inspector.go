package importing

import "time"

// MediaInfo holds best-effort details about a pending file.
type MediaInfo struct {
	Size     int64
	Modified time.Time
	Kind     string // video, audio, image or other
	Title    string
	Artist   string
	Album    string
	Format   string
	HasThumb bool
}

// MediaInspector reads details and thumbnails of files on disk.
type MediaInspector interface {
	Inspect(path string) (MediaInfo, error)
	Thumbnail(path string, maxWidth, maxHeight uint) ([]byte, error)
}
