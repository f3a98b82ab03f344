package importing

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/template/html/v2"
)

func newTestApp(board *Board) *fiber.App {
	app := fiber.New()
	RegisterRoutes(app, nil, board, nil)
	return app
}

func TestHandler_ListPending(t *testing.T) {
	board := NewBoard()
	board.FileDiscovered(PendingFile{ID: "a", Path: "/in/a.mov", Name: "a.mov", State: StateDiscovered})
	app := newTestApp(board)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/pending", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var files []PendingFile
	if err := json.NewDecoder(resp.Body).Decode(&files); err != nil {
		t.Fatal(err)
	}
	if len(files) != 1 || files[0].Name != "a.mov" {
		t.Errorf("unexpected files %v", files)
	}
}

func TestHandler_GetStatus(t *testing.T) {
	board := NewBoard()
	board.ConnectionChanged(Connection{Connected: true, Project: "Holiday"})
	board.WatchingChanged("/in")
	app := newTestApp(board)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/status", nil))
	if err != nil {
		t.Fatal(err)
	}
	var body struct {
		Connection Connection `json:"connection"`
		Folder     string     `json:"folder"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if !body.Connection.Connected || body.Connection.Project != "Holiday" || body.Folder != "/in" {
		t.Errorf("unexpected status %+v", body)
	}
}

func TestHandler_PendingCount(t *testing.T) {
	board := NewBoard()
	board.FileDiscovered(PendingFile{ID: "a"})
	board.FileDiscovered(PendingFile{ID: "b"})
	app := newTestApp(board)

	resp, err := app.Test(httptest.NewRequest("GET", "/import/pending/count", nil))
	if err != nil {
		t.Fatal(err)
	}
	buf := make([]byte, 16)
	n, _ := resp.Body.Read(buf)
	if string(buf[:n]) != "(2)" {
		t.Errorf("expected (2), got %q", buf[:n])
	}
}

func TestHandler_ProcessPendingRejectsUnknownAction(t *testing.T) {
	app := newTestApp(NewBoard())

	resp, err := app.Test(httptest.NewRequest("POST", "/import/pending/a/rename", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("expected 400, got %d", resp.StatusCode)
	}
}

func TestHandler_ThumbnailUnknownEntry(t *testing.T) {
	app := newTestApp(NewBoard())

	resp, err := app.Test(httptest.NewRequest("GET", "/ui/importing/pending/missing/thumb", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusNotFound {
		t.Errorf("expected 404, got %d", resp.StatusCode)
	}
}

func TestListFolders(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b", "A", ".hidden"} {
		if err := mkdir(dir, name); err != nil {
			t.Fatal(err)
		}
	}
	createFile(t, dir, "file.mov")

	dirs, err := listFolders(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(dirs) != 2 || dirs[0].Name != "A" || dirs[1].Name != "b" {
		t.Errorf("unexpected folders %v", dirs)
	}
}

func mkdir(parent, name string) error {
	return os.Mkdir(filepath.Join(parent, name), 0755)
}

// newActionApp serves the importing routes against a running controller.
// Toasts render as "<kind>: <message>".
func newActionApp(t *testing.T) (*fiber.App, *harness, *Board) {
	t.Helper()
	board := NewBoard()
	h := newHarness(t, false, nil, board)
	engine := html.NewFileSystem(http.FS(fstest.MapFS{
		"toast/toastOk.html":   {Data: []byte(`ok: {{ .Msg }}`)},
		"toast/toastErr.html":  {Data: []byte(`err: {{ .Msg }}`)},
		"toast/toastInfo.html": {Data: []byte(`info: {{ .Msg }}`)},
	}), ".html")
	app := fiber.New(fiber.Config{Views: engine})
	RegisterRoutes(app, h.service, board, nil)
	return app, h, board
}

func send(t *testing.T, app *fiber.App, req *http.Request) (*http.Response, string) {
	t.Helper()
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp, string(body)
}

func postFolder(t *testing.T, app *fiber.App, path string) string {
	t.Helper()
	form := url.Values{"path": {path}}
	req := httptest.NewRequest("POST", "/import/folder", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	_, body := send(t, app, req)
	return body
}

func TestHandler_SelectedFolderSurvivesLaterRequests(t *testing.T) {
	app, h, board := newActionApp(t)
	base := t.TempDir()
	folder := filepath.Join(base, "dirA")
	if err := os.Mkdir(folder, 0755); err != nil {
		t.Fatal(err)
	}
	notFolder := createFile(t, base, "fileB")

	if body := postFolder(t, app, folder); body != "ok: Monitoring "+folder {
		t.Fatalf("unexpected response %q", body)
	}
	if body := postFolder(t, app, notFolder); !strings.HasPrefix(body, "err: ") {
		t.Fatalf("expected an error toast, got %q", body)
	}
	// Unrelated requests reuse the same buffers
	send(t, app, httptest.NewRequest("GET", "/api/status?padding=xxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxx", nil))

	if _, got := board.Status(); got != folder {
		t.Errorf("expected board to show %q, got %q", folder, got)
	}
	_, got, err := h.service.Status(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if got != folder {
		t.Errorf("expected controller to watch %q, got %q", folder, got)
	}
	if calls := h.watcher.Calls(); calls[len(calls)-1] != "start:"+folder {
		t.Errorf("expected watcher to be started on %q, got %v", folder, calls)
	}
}

func TestHandler_SelectFolderRequiresPath(t *testing.T) {
	app, h, _ := newActionApp(t)

	if body := postFolder(t, app, "  "); body != "err: Please select a folder" {
		t.Errorf("unexpected response %q", body)
	}
	if calls := h.watcher.Calls(); len(calls) != 0 {
		t.Errorf("expected the watcher to be untouched, got %v", calls)
	}
}

func TestHandler_ImportRemovesEntry(t *testing.T) {
	app, h, board := newActionApp(t)
	dir := h.watch(t)
	h.emit(createFile(t, dir, "a.mov"))
	id := h.pending(t)[0].ID

	resp, body := send(t, app, httptest.NewRequest("POST", "/import/pending/"+id+"/import", nil))
	if body != "ok: a.mov: Imported into Holiday" {
		t.Errorf("unexpected response %q", body)
	}
	if trigger := resp.Header.Get("HX-Trigger"); !strings.Contains(trigger, "pendingUpdated") {
		t.Errorf("expected a pendingUpdated trigger, got %q", trigger)
	}
	if len(board.Entries()) != 0 {
		t.Error("expected the board to drop the entry")
	}
	if len(h.pending(t)) != 0 {
		t.Error("expected no pending files")
	}

	// A second click finds nothing to do
	_, body = send(t, app, httptest.NewRequest("POST", "/import/pending/"+id+"/import", nil))
	if body != "info: File is no longer pending" {
		t.Errorf("unexpected response %q", body)
	}
	if len(h.editor.imports) != 1 {
		t.Errorf("expected a single import, got %v", h.editor.imports)
	}
}

func TestHandler_FailedDiscardKeepsEntry(t *testing.T) {
	app, h, board := newActionApp(t)
	h.trash.err = errors.New("permission denied")
	dir := h.watch(t)
	h.emit(createFile(t, dir, "a.mov"))
	id := h.pending(t)[0].ID

	_, body := send(t, app, httptest.NewRequest("POST", "/import/pending/"+id+"/discard", nil))
	if body != "err: Could not move file to trash, it is still pending" {
		t.Errorf("unexpected response %q", body)
	}
	if entries := board.Entries(); len(entries) != 1 || entries[0].ID != id {
		t.Errorf("expected the board to keep the entry, got %v", entries)
	}

	h.trash.err = nil
	_, body = send(t, app, httptest.NewRequest("POST", "/import/pending/"+id+"/discard", nil))
	if body != "ok: a.mov: Moved to trash" {
		t.Errorf("unexpected response %q", body)
	}
	if len(board.Entries()) != 0 {
		t.Error("expected the entry to be gone after a successful retry")
	}
}

func TestHandler_CheckConnection(t *testing.T) {
	app, h, board := newActionApp(t)
	h.editor.reachable = false

	_, body := send(t, app, httptest.NewRequest("POST", "/import/connection/check", nil))
	if body != "err: DaVinci Resolve is not reachable" {
		t.Errorf("unexpected response %q", body)
	}
	if conn, _ := board.Status(); conn.Connected {
		t.Error("expected the board to show disconnected")
	}

	h.editor.reachable = true
	_, body = send(t, app, httptest.NewRequest("POST", "/import/connection/check", nil))
	if body != "ok: Connected to Holiday" {
		t.Errorf("unexpected response %q", body)
	}
	if conn, _ := board.Status(); !conn.Connected || conn.Project != "Holiday" {
		t.Errorf("unexpected connection %+v", conn)
	}
}
