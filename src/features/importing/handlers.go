package importing

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
)

const (
	thumbWidth   = 320
	thumbHeight  = 180
	historyLimit = 20
)

// Handler is the handler for the importing feature.
type Handler struct {
	service   *Service
	board     *Board
	inspector MediaInspector
}

// NewHandler creates a new handler for the importing feature.
func NewHandler(service *Service, board *Board, inspector MediaInspector) *Handler {
	return &Handler{service: service, board: board, inspector: inspector}
}

// ProcessPending handles import/discard actions for individual pending files
func (h *Handler) ProcessPending(c *fiber.Ctx) error {
	id := c.Params("id")
	action, err := ParseAction(c.Params("action"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "action should be one of import,discard",
		})
	}

	c.Set("HX-Trigger", "pendingUpdated, historyUpdated")
	res, err := h.service.Decide(c.Context(), id, action)
	switch {
	case errors.Is(err, ErrNotFound):
		return c.Render("toast/toastInfo", fiber.Map{
			"Msg": "File is no longer pending",
		})
	case errors.Is(err, ErrDiscardFailed):
		return c.Render("toast/toastErr", fiber.Map{
			"Msg": "Could not move file to trash, it is still pending",
		})
	case err != nil:
		slog.Error("Failed to process pending file", "error", err, "id", id, "action", action)
		return c.Render("toast/toastErr", fiber.Map{
			"Msg": "Failed to process file",
		})
	}

	name := filepath.Base(res.Path)
	if !res.Success {
		return c.Render("toast/toastErr", fiber.Map{
			"Msg": fmt.Sprintf("%s: %s", name, res.Detail),
		})
	}
	return c.Render("toast/toastOk", fiber.Map{
		"Msg": fmt.Sprintf("%s: %s", name, res.Detail),
	})
}

// SelectFolder starts watching the folder picked by the user.
func (h *Handler) SelectFolder(c *fiber.Ctx) error {
	// Form values alias the request buffer; the folder outlives this request
	path := strings.TrimSpace(utils.CopyString(c.FormValue("path")))
	if path == "" {
		return c.Render("toast/toastErr", fiber.Map{
			"Msg": "Please select a folder",
		})
	}
	folder, err := h.service.SelectFolder(c.Context(), path)
	if err != nil {
		slog.Error("Failed to select folder", "path", path, "error", err)
		c.Set("HX-Trigger", "watcherStatusChanged")
		return c.Render("toast/toastErr", fiber.Map{
			"Msg": "Cannot watch " + path,
		})
	}
	c.Set("HX-Trigger", "watcherStatusChanged")
	return c.Render("toast/toastOk", fiber.Map{
		"Msg": "Monitoring " + folder,
	})
}

// CheckConnection retries the connection to the editor.
func (h *Handler) CheckConnection(c *fiber.Ctx) error {
	conn, err := h.service.CheckConnection(c.Context())
	if err != nil {
		slog.Error("Failed to check connection", "error", err)
		return c.Render("toast/toastErr", fiber.Map{
			"Msg": "Failed to check connection",
		})
	}
	c.Set("HX-Trigger", "connectionChanged")
	if !conn.Connected {
		return c.Render("toast/toastErr", fiber.Map{
			"Msg": "DaVinci Resolve is not reachable",
		})
	}
	return c.Render("toast/toastOk", fiber.Map{
		"Msg": "Connected to " + conn.Project,
	})
}

// PendingCount returns the current pending count formatted as "(X)"
func (h *Handler) PendingCount(c *fiber.Ctx) error {
	return c.SendString(fmt.Sprintf("(%d)", len(h.board.Entries())))
}

// UI Handlers

// RenderPendingItems renders the pending file cards for HTMX
func (h *Handler) RenderPendingItems(c *fiber.Ctx) error {
	return c.Render("importing/pending_items", fiber.Map{
		"Items": h.board.Entries(),
	})
}

// RenderStatus renders the connection indicator and the watched folder.
func (h *Handler) RenderStatus(c *fiber.Ctx) error {
	conn, folder := h.board.Status()
	return c.Render("importing/status", fiber.Map{
		"Connection": conn,
		"Folder":     folder,
	})
}

// RenderHistory renders the recent activity list.
func (h *Handler) RenderHistory(c *fiber.Ctx) error {
	items, err := h.service.Recent(c.Context(), historyLimit)
	if err != nil {
		slog.Error("Failed to load history", "error", err)
		return c.Status(fiber.StatusInternalServerError).SendString("Error loading history")
	}
	return c.Render("importing/history", fiber.Map{
		"Items": items,
	})
}

// RenderDetails renders size, kind and tags of a pending file.
func (h *Handler) RenderDetails(c *fiber.Ctx) error {
	file, ok := h.board.Entry(c.Params("id"))
	if !ok {
		return c.SendString("")
	}
	info, err := h.inspector.Inspect(file.Path)
	if err != nil {
		slog.Debug("Could not inspect file", "file", file.Path, "error", err)
	}
	return c.Render("importing/details", fiber.Map{
		"File":  file,
		"Info":  info,
		"Error": err,
	})
}

// Thumbnail serves a small JPEG preview of a pending still image.
func (h *Handler) Thumbnail(c *fiber.Ctx) error {
	file, ok := h.board.Entry(c.Params("id"))
	if !ok {
		return c.SendStatus(fiber.StatusNotFound)
	}
	data, err := h.inspector.Thumbnail(file.Path, thumbWidth, thumbHeight)
	if err != nil {
		slog.Debug("No thumbnail", "file", file.Path, "error", err)
		return c.SendStatus(fiber.StatusNotFound)
	}
	c.Type("jpg")
	return c.Send(data)
}

type folderEntry struct {
	Name string
	Path string
}

// RenderFolderBrowser renders the folder picker, one directory level at a time.
func (h *Handler) RenderFolderBrowser(c *fiber.Ctx) error {
	path := c.Query("path")
	if path == "" {
		_, path = h.board.Status()
	}
	if path == "" {
		path, _ = os.UserHomeDir()
	}
	path = filepath.Clean(path)

	dirs, err := listFolders(path)
	if err != nil {
		slog.Debug("Cannot list folder", "path", path, "error", err)
	}
	parent := filepath.Dir(path)
	if parent == path {
		parent = ""
	}
	return c.Render("importing/folder_browser", fiber.Map{
		"Path":   path,
		"Parent": parent,
		"Dirs":   dirs,
		"Error":  err,
	})
}

func listFolders(path string) ([]folderEntry, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	dirs := make([]folderEntry, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		dirs = append(dirs, folderEntry{Name: entry.Name(), Path: filepath.Join(path, entry.Name())})
	}
	sort.Slice(dirs, func(i, j int) bool {
		return strings.ToLower(dirs[i].Name) < strings.ToLower(dirs[j].Name)
	})
	return dirs, nil
}

// API handlers

// ListPending returns the visible pending files as JSON.
func (h *Handler) ListPending(c *fiber.Ctx) error {
	return c.JSON(h.board.Entries())
}

// GetStatus returns the connection state and watched folder as JSON.
func (h *Handler) GetStatus(c *fiber.Ctx) error {
	conn, folder := h.board.Status()
	return c.JSON(fiber.Map{
		"connection": conn,
		"folder":     folder,
	})
}
