package ui

import (
	"log/slog"

	"github.com/contre95/autoimport/src/features/config"
	"github.com/gofiber/fiber/v2"
)

// Handler is the handler for the UI feature.
type Handler struct {
	configManager *config.Manager
}

// NewHandler creates a new handler for the UI feature.
func NewHandler(configManager *config.Manager) *Handler {
	return &Handler{
		configManager: configManager,
	}
}

// RenderDashboard renders the main dashboard page.
func (h *Handler) RenderDashboard(c *fiber.Ctx) error {
	slog.Debug("RenderDashboard handler called")
	data := fiber.Map{
		"Title":           "Monitor",
		"TelegramEnabled": h.configManager.Get().Telegram.Enabled,
		"Extensions":      h.configManager.Get().Watch.Extensions,
	}
	if c.Get("HX-Request") != "true" {
		data["Section"] = "dashboard"
		return c.Render("main", data)
	}
	return c.Render("sections/dashboard", data)
}

// RenderActivitySection renders the recent activity page.
func (h *Handler) RenderActivitySection(c *fiber.Ctx) error {
	slog.Debug("RenderActivitySection handler called")
	data := fiber.Map{
		"Title": "Activity",
	}
	if c.Get("HX-Request") != "true" {
		data["Section"] = "activity"
		return c.Render("main", data)
	}
	return c.Render("sections/activity", data)
}

// RenderSettingsSection renders the read-only configuration page.
func (h *Handler) RenderSettingsSection(c *fiber.Ctx) error {
	slog.Debug("RenderSettingsSection handler called")
	data := fiber.Map{
		"Title":  "Settings",
		"Config": h.configManager.GetYAML(),
	}
	if c.Get("HX-Request") != "true" {
		data["Section"] = "settings"
		return c.Render("main", data)
	}
	return c.Render("sections/settings", data)
}
