package media

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/contre95/autoimport/src/features/importing"
	"github.com/dhowden/tag"
	"github.com/nfnt/resize"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

const (
	KindVideo = "video"
	KindAudio = "audio"
	KindImage = "image"
	KindOther = "other"
)

var kinds = map[string]string{
	".mov": KindVideo, ".mp4": KindVideo, ".m4v": KindVideo, ".mxf": KindVideo, ".avi": KindVideo,
	".mkv": KindVideo, ".mts": KindVideo, ".m2ts": KindVideo, ".webm": KindVideo, ".braw": KindVideo, ".r3d": KindVideo,
	".wav": KindAudio, ".mp3": KindAudio, ".flac": KindAudio, ".aac": KindAudio, ".m4a": KindAudio,
	".aif": KindAudio, ".aiff": KindAudio, ".ogg": KindAudio,
	".jpg": KindImage, ".jpeg": KindImage, ".png": KindImage, ".gif": KindImage, ".bmp": KindImage,
	".tif": KindImage, ".tiff": KindImage, ".webp": KindImage, ".dng": KindImage, ".exr": KindImage,
}

// Extensions we can decode into a thumbnail.
var decodable = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".bmp": true,
	".tif": true, ".tiff": true, ".webp": true,
}

// Containers dhowden/tag knows how to read.
var tagged = map[string]bool{
	".mp3": true, ".flac": true, ".m4a": true, ".ogg": true, ".mp4": true, ".m4v": true, ".mov": true,
}

// Inspector reads file details with dhowden/tag and builds thumbnails with nfnt/resize.
type Inspector struct{}

// NewInspector creates a new Inspector.
func NewInspector() *Inspector {
	return &Inspector{}
}

// Inspect returns what can be learned about path without decoding it fully.
// Missing tags are not an error.
func (i *Inspector) Inspect(path string) (importing.MediaInfo, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return importing.MediaInfo{}, fmt.Errorf("failed to stat file: %w", err)
	}
	if stat.IsDir() {
		return importing.MediaInfo{}, fmt.Errorf("%s is a directory", path)
	}

	ext := strings.ToLower(filepath.Ext(path))
	info := importing.MediaInfo{
		Size:     stat.Size(),
		Modified: stat.ModTime(),
		Kind:     kindOf(ext),
		Format:   strings.ToUpper(strings.TrimPrefix(ext, ".")),
		HasThumb: decodable[ext],
	}

	if tagged[ext] {
		i.readTags(path, &info)
	}
	return info, nil
}

func (i *Inspector) readTags(path string, info *importing.MediaInfo) {
	file, err := os.Open(path)
	if err != nil {
		return
	}
	defer file.Close()

	tags, err := tag.ReadFrom(file)
	if err != nil {
		slog.Debug("No tags found", "file", path, "error", err)
		return
	}
	info.Title = tags.Title()
	info.Artist = tags.Artist()
	info.Album = tags.Album()
	if format := tags.Format(); format != tag.UnknownFormat {
		info.Format = string(format)
	}
}

// Thumbnail decodes a still image and scales it to fit maxWidth x maxHeight,
// keeping the aspect ratio. The result is JPEG encoded.
func (i *Inspector) Thumbnail(path string, maxWidth, maxHeight uint) ([]byte, error) {
	if !decodable[strings.ToLower(filepath.Ext(path))] {
		return nil, fmt.Errorf("no thumbnail for %s", filepath.Base(path))
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	thumb := resize.Thumbnail(maxWidth, maxHeight, img, resize.Lanczos3)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, thumb, &jpeg.Options{Quality: 85}); err != nil {
		return nil, fmt.Errorf("failed to encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}

func kindOf(ext string) string {
	if kind, ok := kinds[ext]; ok {
		return kind
	}
	return KindOther
}
