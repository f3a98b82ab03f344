package config

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramHandler handles Telegram commands for the config feature
type TelegramHandler struct {
	configManager *Manager
}

// NewTelegramHandler creates a new Telegram handler for the config feature
func NewTelegramHandler(configManager *Manager) *TelegramHandler {
	return &TelegramHandler{configManager: configManager}
}

// HandleCommand processes config-related Telegram commands
func (h *TelegramHandler) HandleCommand(bot *tgbotapi.BotAPI, chatID int64, command string, args string) error {
	if command != "config" {
		msg := tgbotapi.NewMessage(chatID, "❌ Unknown config command. Use /config")
		bot.Send(msg)
		return nil
	}
	message := fmt.Sprintf("⚙️ *Configuration*\n\n```yaml\n%s\n```", h.configManager.GetYAML())
	msg := tgbotapi.NewMessage(chatID, message)
	msg.ParseMode = tgbotapi.ModeMarkdown
	_, err := bot.Send(msg)
	return err
}

// GetCommands returns the available commands for this handler
func (h *TelegramHandler) GetCommands() map[string]string {
	return map[string]string{
		"config": "Show configuration",
	}
}

// HandleCallback handles callback queries for this feature (config has no callbacks)
func (h *TelegramHandler) HandleCallback(bot *tgbotapi.BotAPI, callback *tgbotapi.CallbackQuery) bool {
	return false
}
