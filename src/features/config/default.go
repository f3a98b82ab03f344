package config

// createDefaultConfig creates a new Config with sensible default values
func createDefaultConfig() *Config {
	return &Config{
		SettingsPath: "./settings.json",
		Logger: Logger{
			Enabled:   true,
			Level:     "info",
			Format:    "text",
			HTMXDebug: false,
		},
		Server: Server{
			PrintRoutes: false,
			Port:        3636,
			Views:       "./views",
			Public:      "./public",
		},
		Database: Database{
			Path: "./history.db",
		},
		Watch: Watch{
			AutoResume: true,
			Extensions: []string{},
		},
		Resolve: Resolve{
			Python:       "python3",
			ModulesPath:  "",
			TimelineName: "Timeline 1",
			TimeoutSecs:  30,
		},
		Telegram: Telegram{
			Enabled:      false,
			Token:        "",                                   // Can be obtained with https://t.me/BotFather
			AllowedUsers: []string{"<your_telegram_username>"}, // No @
			ChatID:       0,
		},
	}
}
