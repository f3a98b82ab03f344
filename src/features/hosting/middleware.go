package hosting

import (
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

// pollingPaths are hit by htmx every couple of seconds; successful calls are not logged.
var pollingPaths = []string{
	"/ui/importing/pending",
	"/ui/importing/status",
	"/import/pending/count",
	"/metrics",
	"/health",
}

var htmxRequestHeaders = []string{
	"HX-Request",
	"HX-Trigger",
	"HX-Trigger-Name",
	"HX-Target",
	"HX-Current-URL",
	"HX-Boosted",
}

var htmxResponseHeaders = []string{
	"HX-Location",
	"HX-Push-Url",
	"HX-Redirect",
	"HX-Refresh",
	"HX-Reswap",
	"HX-Retarget",
	"HX-Trigger",
}

func isHTMX(c *fiber.Ctx) bool {
	return c.Get("HX-Request") == "true"
}

func isPolling(path string) bool {
	for _, p := range pollingPaths {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

// HTMXMiddleware creates middleware for logging HTMX requests
func HTMXMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !isHTMX(c) || isPolling(c.Path()) {
			return c.Next()
		}
		start := time.Now()
		err := c.Next()
		slog.Debug("HTMX request",
			"method", c.Method(),
			"path", c.Path(),
			"status", c.Response().StatusCode(),
			"duration", time.Since(start).String(),
			"hx_trigger", c.Get("HX-Trigger"),
			"hx_target", c.Get("HX-Target"),
		)
		return err
	}
}

// HTMXDebugMiddleware dumps the HTMX headers of every request and response
func HTMXDebugMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !isHTMX(c) {
			return c.Next()
		}
		in := make(map[string]string)
		for _, header := range htmxRequestHeaders {
			if value := c.Get(header); value != "" {
				in[header] = value
			}
		}
		slog.Debug("HTMX request received", "method", c.Method(), "path", c.Path(), "headers", in)

		err := c.Next()
		if err != nil {
			return err
		}

		out := make(map[string]string)
		for _, header := range htmxResponseHeaders {
			if value := c.Response().Header.Peek(header); len(value) > 0 {
				out[header] = string(value)
			}
		}
		slog.Debug("HTMX response sent", "status", c.Response().StatusCode(), "headers", out)
		return nil
	}
}

// LogAllRequestsMiddleware logs every request, errors always and the rest at debug level
func LogAllRequestsMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		requestType := "normal"
		if isHTMX(c) {
			requestType = "htmx"
		}
		switch {
		case status >= 400:
			slog.Error("HTTP request",
				"type", requestType,
				"method", c.Method(),
				"path", c.Path(),
				"status", status,
				"duration", time.Since(start).String(),
				"error", err,
			)
		case !isPolling(c.Path()):
			slog.Debug("HTTP request",
				"type", requestType,
				"method", c.Method(),
				"path", c.Path(),
				"status", status,
				"duration", time.Since(start).String(),
			)
		}
		return err
	}
}
