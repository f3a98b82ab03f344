package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/contre95/autoimport/src/features/importing"
)

func newTestHistory(t *testing.T) *SqliteHistory {
	t.Helper()
	h, err := NewSqliteHistory(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("failed to open history: %v", err)
	}
	t.Cleanup(func() { h.Close() })
	return h
}

func TestSqliteHistory_RecordAndRecent(t *testing.T) {
	h := newTestHistory(t)
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	entries := []importing.Resolution{
		{ID: "1", Path: "/in/a.mov", Action: importing.ActionImport, Success: true, Detail: "Imported into P", ResolvedAt: base},
		{ID: "2", Path: "/in/b.mov", Action: importing.ActionDiscard, Success: true, Detail: "Moved to trash", ResolvedAt: base.Add(time.Minute)},
		{ID: "3", Path: "/in/c.mov", Action: importing.ActionImport, Success: false, Detail: "Editor not connected", ResolvedAt: base.Add(2 * time.Minute)},
	}
	for _, e := range entries {
		if err := h.Record(ctx, e); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	}

	got, err := h.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 resolutions, got %d", len(got))
	}
	if got[0].ID != "3" || got[2].ID != "1" {
		t.Errorf("expected newest first, got %s, %s, %s", got[0].ID, got[1].ID, got[2].ID)
	}
	if got[0].Success || got[0].Detail != "Editor not connected" || got[0].Action != importing.ActionImport {
		t.Errorf("unexpected resolution %+v", got[0])
	}
	if !got[1].ResolvedAt.Equal(base.Add(time.Minute)) {
		t.Errorf("expected %v, got %v", base.Add(time.Minute), got[1].ResolvedAt)
	}
}

func TestSqliteHistory_RecentLimit(t *testing.T) {
	h := newTestHistory(t)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		if err := h.Record(ctx, importing.Resolution{Path: "/in/x.mov", Action: importing.ActionImport}); err != nil {
			t.Fatal(err)
		}
	}

	got, err := h.Recent(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Errorf("expected 2 resolutions, got %d", len(got))
	}
	if got[0].ID == "" {
		t.Error("expected a generated ID")
	}
}

func TestSqliteHistory_EmptyRecent(t *testing.T) {
	h := newTestHistory(t)
	got, err := h.Recent(context.Background(), 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("expected no resolutions, got %d", len(got))
	}
}
