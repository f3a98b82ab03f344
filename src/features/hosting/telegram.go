package hosting

import (
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"strings"

	"github.com/contre95/autoimport/src/features/config"
	"github.com/contre95/autoimport/src/features/importing"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramCommandHandler interface that each feature implements
type TelegramCommandHandler interface {
	HandleCommand(bot *tgbotapi.BotAPI, chatID int64, command string, args string) error
	GetCommands() map[string]string                                             // Returns command -> description mapping
	HandleCallback(bot *tgbotapi.BotAPI, callback *tgbotapi.CallbackQuery) bool // Handle feature-specific callbacks
}

// TelegramBot handles Telegram bot operations
type TelegramBot struct {
	bot      *tgbotapi.BotAPI
	config   *config.Manager
	handlers map[string]TelegramCommandHandler
	commands map[string]string // command -> feature
	updates  tgbotapi.UpdatesChannel
	stopChan chan struct{}
}

// NewTelegramBot creates a new Telegram bot instance
func NewTelegramBot(cfg *config.Manager, importingHandler *importing.TelegramHandler) (*TelegramBot, error) {
	telegramConfig := cfg.Get().Telegram

	if !telegramConfig.Enabled {
		return nil, fmt.Errorf("telegram bot is disabled in configuration")
	}

	if telegramConfig.Token == "" {
		return nil, fmt.Errorf("telegram bot token is not configured")
	}

	bot, err := tgbotapi.NewBotAPI(telegramConfig.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	slog.Info("Telegram bot initialized", "username", bot.Self.UserName)

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 30

	telegramBot := &TelegramBot{
		bot:      bot,
		config:   cfg,
		handlers: make(map[string]TelegramCommandHandler),
		commands: make(map[string]string),
		updates:  bot.GetUpdatesChan(updateConfig),
		stopChan: make(chan struct{}),
	}

	// Register feature handlers
	telegramBot.RegisterHandler("importing", importingHandler)
	telegramBot.RegisterHandler("config", config.NewTelegramHandler(cfg))

	return telegramBot, nil
}

// API exposes the underlying client for surfaces that push notifications.
func (t *TelegramBot) API() *tgbotapi.BotAPI {
	return t.bot
}

// RegisterHandler registers a feature's command handler
func (t *TelegramBot) RegisterHandler(feature string, handler TelegramCommandHandler) {
	t.handlers[feature] = handler
	for command := range handler.GetCommands() {
		t.commands[command] = feature
	}
	slog.Debug("Registered Telegram handler", "feature", feature)
}

// Start begins listening for Telegram updates
func (t *TelegramBot) Start() {
	slog.Info("Starting Telegram bot listener")

	for {
		select {
		case update := <-t.updates:
			if update.Message != nil {
				go t.handleMessage(update.Message)
			}
			if update.CallbackQuery != nil {
				go t.handleCallbackQuery(update.CallbackQuery)
			}
		case <-t.stopChan:
			slog.Info("Stopping Telegram bot listener")
			t.bot.StopReceivingUpdates()
			return
		}
	}
}

// Stop gracefully stops the bot
func (t *TelegramBot) Stop() {
	close(t.stopChan)
}

// authorized checks the sender against the allowed users list
func (t *TelegramBot) authorized(user *tgbotapi.User) bool {
	if user == nil {
		return false
	}
	username := user.UserName
	if username == "" {
		username = strings.TrimSpace(user.FirstName + " " + user.LastName)
	}
	return slices.Contains(t.config.Get().Telegram.AllowedUsers, username)
}

// handleMessage processes incoming messages
func (t *TelegramBot) handleMessage(message *tgbotapi.Message) {
	chatID := message.Chat.ID

	if len(t.config.Get().Telegram.AllowedUsers) == 0 {
		slog.Warn("No allowed users configured", "chat_id", chatID)
		t.sendMessage(chatID, "❌ Access denied: No users configured. Please add users to the config.")
		return
	}
	if !t.authorized(message.From) {
		slog.Warn("Unauthorized user", "chat_id", chatID)
		t.sendMessage(chatID, "Unknown user, please add your user to the config")
		return
	}

	if !message.IsCommand() {
		t.sendMessage(chatID, "🤖 Send /help to see available commands")
		return
	}

	command := message.Command()
	args := message.CommandArguments()
	slog.Debug("Processing command", "command", command, "args", args, "chat_id", chatID)

	switch command {
	case "help", "start", "menu":
		t.handleHelp(chatID)
		return
	}

	feature, exists := t.commands[command]
	if !exists {
		t.sendMessage(chatID, "❌ Unknown command. Send /help to see available commands.")
		return
	}
	if err := t.handlers[feature].HandleCommand(t.bot, chatID, command, args); err != nil {
		slog.Error("Failed to handle command", "command", command, "error", err)
		t.sendMessage(chatID, "❌ Failed to process command")
	}
}

// handleCallbackQuery handles callback queries from inline keyboards
func (t *TelegramBot) handleCallbackQuery(callback *tgbotapi.CallbackQuery) {
	// Answer callback to remove loading state
	defer t.bot.Request(tgbotapi.NewCallback(callback.ID, ""))

	if !t.authorized(callback.From) || callback.Message == nil {
		slog.Warn("Ignoring callback from unauthorized user")
		return
	}

	for _, handler := range t.handlers {
		if handler.HandleCallback(t.bot, callback) {
			return
		}
	}
	slog.Debug("Unhandled callback", "data", callback.Data)
}

// handleHelp lists every registered command
func (t *TelegramBot) handleHelp(chatID int64) {
	var lines []string
	for _, handler := range t.handlers {
		for command, description := range handler.GetCommands() {
			lines = append(lines, fmt.Sprintf("/%s - %s", command, description))
		}
	}
	sort.Strings(lines)
	t.sendMessage(chatID, "🤖 AutoImport\n\n"+strings.Join(lines, "\n"))
}

// sendMessage sends a message to the specified chat
func (t *TelegramBot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := t.bot.Send(msg); err != nil {
		slog.Error("Failed to send message", "error", err, "chat_id", chatID)
	}
}
