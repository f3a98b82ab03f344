package importing

import (
	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes registers the routes for the importing feature.
func RegisterRoutes(app *fiber.App, service *Service, board *Board, inspector MediaInspector) {
	handler := NewHandler(service, board, inspector)

	ui := app.Group("/ui")
	// UI endpoints
	ui.Get("/importing/pending", handler.RenderPendingItems)
	ui.Get("/importing/pending/:id/details", handler.RenderDetails)
	ui.Get("/importing/pending/:id/thumb", handler.Thumbnail)
	ui.Get("/importing/status", handler.RenderStatus)
	ui.Get("/importing/history", handler.RenderHistory)
	ui.Get("/importing/folders", handler.RenderFolderBrowser)

	// Action endpoints
	app.Post("/import/pending/:id/:action", handler.ProcessPending)
	app.Post("/import/folder", handler.SelectFolder)
	app.Post("/import/connection/check", handler.CheckConnection)
	app.Get("/import/pending/count", handler.PendingCount)

	api := app.Group("/api")
	api.Get("/pending", handler.ListPending)
	api.Get("/status", handler.GetStatus)
}
