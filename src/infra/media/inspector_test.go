package media

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func TestInspector_ThumbnailFitsBounds(t *testing.T) {
	path := filepath.Join(t.TempDir(), "still.png")
	writePNG(t, path, 640, 480)

	data, err := NewInspector().Thumbnail(path, 320, 180)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("expected a jpeg, got %v", err)
	}
	b := img.Bounds()
	if b.Dx() > 320 || b.Dy() > 180 {
		t.Errorf("thumbnail %dx%d exceeds 320x180", b.Dx(), b.Dy())
	}
	if b.Dy() != 180 {
		t.Errorf("expected height 180, got %d", b.Dy())
	}
}

func TestInspector_ThumbnailRejectsVideo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clip.mov")
	if err := os.WriteFile(path, []byte("not really a movie"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewInspector().Thumbnail(path, 320, 180); err == nil {
		t.Error("expected an error for a video file")
	}
}

func TestInspector_Inspect(t *testing.T) {
	dir := t.TempDir()
	still := filepath.Join(dir, "still.PNG")
	writePNG(t, still, 16, 16)
	clip := filepath.Join(dir, "clip.mov")
	os.WriteFile(clip, []byte("0123456789"), 0644)
	song := filepath.Join(dir, "song.mp3")
	os.WriteFile(song, []byte("no tags here"), 0644)
	notes := filepath.Join(dir, "notes.txt")
	os.WriteFile(notes, []byte("x"), 0644)

	tests := []struct {
		path     string
		kind     string
		hasThumb bool
	}{
		{still, KindImage, true},
		{clip, KindVideo, false},
		{song, KindAudio, false},
		{notes, KindOther, false},
	}
	for _, tt := range tests {
		info, err := NewInspector().Inspect(tt.path)
		if err != nil {
			t.Fatalf("%s: expected no error, got %v", tt.path, err)
		}
		if info.Kind != tt.kind {
			t.Errorf("%s: expected kind %s, got %s", tt.path, tt.kind, info.Kind)
		}
		if info.HasThumb != tt.hasThumb {
			t.Errorf("%s: expected HasThumb %v", tt.path, tt.hasThumb)
		}
	}

	info, _ := NewInspector().Inspect(clip)
	if info.Size != 10 {
		t.Errorf("expected size 10, got %d", info.Size)
	}
	if info.Format != "MOV" {
		t.Errorf("expected format MOV, got %s", info.Format)
	}
}

func TestInspector_InspectErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := NewInspector().Inspect(dir); err == nil {
		t.Error("expected an error for a directory")
	}
	if _, err := NewInspector().Inspect(filepath.Join(dir, "missing.mov")); err == nil {
		t.Error("expected an error for a missing file")
	}
}
