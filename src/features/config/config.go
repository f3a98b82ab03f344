package config

// Config holds the application configuration.
type Config struct {
	SettingsPath string   `yaml:"settingsPath" validate:"required"`
	Logger       Logger   `yaml:"logger"`
	Server       Server   `yaml:"server"`
	Database     Database `yaml:"database"`
	Watch        Watch    `yaml:"watch"`
	Resolve      Resolve  `yaml:"resolve"`
	Telegram     Telegram `yaml:"telegram"`
}

// Watch holds the folder watcher configuration.
type Watch struct {
	AutoResume bool     `yaml:"auto_resume"`
	Extensions []string `yaml:"extensions"` // Empty means every file
}

// Resolve holds the configuration for the DaVinci Resolve scripting bridge.
type Resolve struct {
	Python       string `yaml:"python" validate:"required"`
	ModulesPath  string `yaml:"modules_path"` // Empty picks the platform default
	TimelineName string `yaml:"timeline_name" validate:"required"`
	TimeoutSecs  int    `yaml:"timeout_secs" validate:"gte=1"`
}

// Database holds the configuration for the database
type Database struct {
	Path string `yaml:"path" validate:"required"`
}

// Server hold the configuration for the Fiber server Config
type Server struct {
	PrintRoutes bool   `yaml:"show_routes"`
	Port        uint32 `yaml:"port" validate:"required"`
	Views       string `yaml:"views"`
	Public      string `yaml:"public"`
}

// Logger holds the configuration for the app logging
type Logger struct {
	Enabled   bool   `yaml:"enabled"`
	Level     string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	Format    string `yaml:"format" validate:"omitempty,oneof=text json logfmt"`
	HTMXDebug bool   `yaml:"htmx_debug"`
}

// Telegram holds the configuration for the Telegram surface.
type Telegram struct {
	Enabled      bool     `yaml:"enabled"`
	Token        string   `yaml:"token"`
	AllowedUsers []string `yaml:"allowedUsers"`
	ChatID       int64    `yaml:"chat_id"` // Where new files are announced
}
