package settings

import (
	"os"
	"path/filepath"
	"testing"
)

func TestJSONStore_MissingFileHasNoFolder(t *testing.T) {
	store := NewJSONStore(filepath.Join(t.TempDir(), "settings.json"))
	if got := store.GetLastFolder(); got != "" {
		t.Errorf("expected no folder, got %q", got)
	}
}

func TestJSONStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	store := NewJSONStore(path)
	if err := store.SaveLastFolder("/a/b"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got := store.GetLastFolder(); got != "/a/b" {
		t.Errorf("expected /a/b, got %q", got)
	}

	reloaded := NewJSONStore(path)
	if got := reloaded.GetLastFolder(); got != "/a/b" {
		t.Errorf("expected /a/b after reload, got %q", got)
	}
}

func TestJSONStore_CorruptFileHasNoFolder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	store := NewJSONStore(path)
	if got := store.GetLastFolder(); got != "" {
		t.Errorf("expected no folder, got %q", got)
	}

	// Saving over a corrupt file still works
	if err := store.SaveLastFolder("/c"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got := NewJSONStore(path).GetLastFolder(); got != "/c" {
		t.Errorf("expected /c, got %q", got)
	}
}

func TestJSONStore_NullFolder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	if err := os.WriteFile(path, []byte(`{"last_folder": null}`), 0644); err != nil {
		t.Fatal(err)
	}
	if got := NewJSONStore(path).GetLastFolder(); got != "" {
		t.Errorf("expected no folder, got %q", got)
	}
}

func TestJSONStore_WritesExpectedRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	if err := NewJSONStore(path).SaveLastFolder("/watch"); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"last_folder":"/watch"}` {
		t.Errorf("unexpected settings content %s", data)
	}
}
