package hosting

import (
	"fmt"
	"log/slog"
	"net/url"
	"path/filepath"
	"time"

	"github.com/contre95/autoimport/src/features/config"
	"github.com/contre95/autoimport/src/features/importing"
	"github.com/contre95/autoimport/src/features/metrics"
	"github.com/contre95/autoimport/src/features/ui"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/template/html/v2"
)

// Server is the HTTP server for the application.
type Server struct {
	app  *fiber.App
	port uint32
}

// NewServer creates a new HTTP server.
func NewServer(cfg *config.Manager, importingService *importing.Service, board *importing.Board, inspector importing.MediaInspector) *Server {
	engine := newEngine(cfg)

	app := fiber.New(fiber.Config{
		Views: engine,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			slog.Error("Internal Server Error", "error", err)
			return c.Status(fiber.StatusInternalServerError).SendString(err.Error())
		},
		AppName:               "AutoImport",
		DisableStartupMessage: true,
		EnablePrintRoutes:     cfg.Get().Server.PrintRoutes,
	})

	// Add middleware
	app.Use(HTMXMiddleware())
	if cfg.Get().Logger.HTMXDebug {
		app.Use(HTMXDebugMiddleware())
	}
	app.Use(LogAllRequestsMiddleware())

	app.Static("/", cfg.Get().Server.Public)
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.SendString("OK")
	})

	uiHandler := ui.NewHandler(cfg)

	importing.RegisterRoutes(app, importingService, board, inspector)
	ui.RegisterRoutes(app, uiHandler)
	config.RegisterRoutes(app, cfg)
	metrics.RegisterRoutes(app)

	return &Server{app: app, port: cfg.Get().Server.Port}
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	return s.app.Listen(":" + fmt.Sprint(s.port))
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// newEngine loads the templates from the views directory with the helper funcs they use.
func newEngine(cfg *config.Manager) *html.Engine {
	engine := html.New(cfg.Get().Server.Views, ".html")
	engine.Debug(cfg.Get().Logger.Level == "debug")
	// Add custom template functions
	engine.AddFunc("isDebug", func() bool {
		return cfg.Get().Logger.HTMXDebug
	})
	engine.AddFunc("base", filepath.Base)
	engine.AddFunc("humanSize", func(size int64) string {
		const unit = 1024
		if size < unit {
			return fmt.Sprintf("%d B", size)
		}
		div, exp := int64(unit), 0
		for n := size / unit; n >= unit; n /= unit {
			div *= unit
			exp++
		}
		return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
	})
	engine.AddFunc("since", func(t time.Time) string {
		return time.Since(t).Round(time.Second).String()
	})
	engine.AddFunc("clock", func(t time.Time) string {
		return t.Local().Format("15:04:05")
	})
	// hx-get is not a URL attribute for html/template, so query values are escaped by hand
	engine.AddFunc("queryEscape", url.QueryEscape)
	return engine
}
