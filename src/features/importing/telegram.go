package importing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/contre95/autoimport/src/features/config"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	callbackImport  = "pending_import_"
	callbackDiscard = "pending_discard_"
	outboxSize      = 64
)

// TelegramHandler handles Telegram commands for importing. It is also a
// Surface: every discovered file is announced in the configured chat with
// Import and Discard buttons, and the message is deleted once resolved.
type TelegramHandler struct {
	service *Service
	config  *config.Manager
	outbox  chan func(bot *tgbotapi.BotAPI)

	mu       sync.Mutex
	messages map[string]int // pending file ID -> message ID
}

// NewTelegramHandler creates a new Telegram handler for importing
func NewTelegramHandler(service *Service, config *config.Manager) *TelegramHandler {
	return &TelegramHandler{
		service:  service,
		config:   config,
		outbox:   make(chan func(bot *tgbotapi.BotAPI), outboxSize),
		messages: make(map[string]int),
	}
}

// Run delivers queued notifications until ctx is done.
func (h *TelegramHandler) Run(ctx context.Context, bot *tgbotapi.BotAPI) {
	for {
		select {
		case send := <-h.outbox:
			send(bot)
		case <-ctx.Done():
			return
		}
	}
}

// post queues a notification. It never blocks the controller.
func (h *TelegramHandler) post(send func(bot *tgbotapi.BotAPI)) {
	if h.config.Get().Telegram.ChatID == 0 {
		return
	}
	select {
	case h.outbox <- send:
	default:
		slog.Warn("Telegram outbox full, dropping notification")
	}
}

func (h *TelegramHandler) FileDiscovered(file PendingFile) {
	chatID := h.config.Get().Telegram.ChatID
	h.post(func(bot *tgbotapi.BotAPI) {
		msg := tgbotapi.NewMessage(chatID, fmt.Sprintf("🎬 *New file*\n%s", h.escapeMarkdown(file.Name)))
		msg.ParseMode = tgbotapi.ModeMarkdown
		msg.ReplyMarkup = h.createPendingKeyboard(file.ID)
		sent, err := bot.Send(msg)
		if err != nil {
			slog.Error("Failed to announce file", "error", err, "file", file.Path)
			return
		}
		h.mu.Lock()
		h.messages[file.ID] = sent.MessageID
		h.mu.Unlock()
	})
}

func (h *TelegramHandler) FileResolved(file PendingFile) {
	chatID := h.config.Get().Telegram.ChatID
	h.post(func(bot *tgbotapi.BotAPI) {
		h.mu.Lock()
		messageID, ok := h.messages[file.ID]
		delete(h.messages, file.ID)
		h.mu.Unlock()
		if !ok {
			return
		}
		if _, err := bot.Request(tgbotapi.NewDeleteMessage(chatID, messageID)); err != nil {
			slog.Debug("Failed to delete resolved file message", "error", err, "file", file.Path)
		}
	})
}

func (h *TelegramHandler) ConnectionChanged(conn Connection) {
	chatID := h.config.Get().Telegram.ChatID
	h.post(func(bot *tgbotapi.BotAPI) {
		bot.Send(tgbotapi.NewMessage(chatID, h.formatConnection(conn)))
	})
}

func (h *TelegramHandler) WatchingChanged(folder string) {
	chatID := h.config.Get().Telegram.ChatID
	h.post(func(bot *tgbotapi.BotAPI) {
		bot.Send(tgbotapi.NewMessage(chatID, h.formatFolder(folder)))
	})
}

// HandleCommand processes importing-related Telegram commands
func (h *TelegramHandler) HandleCommand(bot *tgbotapi.BotAPI, chatID int64, command string, args string) error {
	ctx := context.Background()
	switch command {
	case "pending":
		return h.handlePending(ctx, bot, chatID)
	case "status":
		conn, folder, err := h.service.Status(ctx)
		if err != nil {
			return err
		}
		_, err = bot.Send(tgbotapi.NewMessage(chatID, h.formatConnection(conn)+"\n"+h.formatFolder(folder)))
		return err
	case "connect":
		conn, err := h.service.CheckConnection(ctx)
		if err != nil {
			return err
		}
		_, err = bot.Send(tgbotapi.NewMessage(chatID, h.formatConnection(conn)))
		return err
	case "watch":
		path := strings.TrimSpace(args)
		if path == "" {
			bot.Send(tgbotapi.NewMessage(chatID, "📁 Usage: /watch <folder>"))
			return nil
		}
		folder, err := h.service.SelectFolder(ctx, path)
		if err != nil {
			slog.Error("Failed to select folder from Telegram", "path", path, "error", err)
			bot.Send(tgbotapi.NewMessage(chatID, "❌ Cannot watch "+path))
			return nil
		}
		// Other surfaces hear about it through WatchingChanged; reply only when the chat isn't the announce chat
		if chatID != h.config.Get().Telegram.ChatID {
			bot.Send(tgbotapi.NewMessage(chatID, h.formatFolder(folder)))
		}
		return nil
	default:
		bot.Send(tgbotapi.NewMessage(chatID, "❌ Unknown importing command"))
		return nil
	}
}

// handlePending sends every pending file with its keyboard.
func (h *TelegramHandler) handlePending(ctx context.Context, bot *tgbotapi.BotAPI, chatID int64) error {
	files, err := h.service.Pending(ctx)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		msg := tgbotapi.NewMessage(chatID, "📭 *Pending files*\n\nNothing waiting for a decision")
		msg.ParseMode = tgbotapi.ModeMarkdown
		bot.Send(msg)
		return nil
	}
	for _, file := range files {
		msg := tgbotapi.NewMessage(chatID, fmt.Sprintf("🎬 %s", h.escapeMarkdown(file.Name)))
		msg.ParseMode = tgbotapi.ModeMarkdown
		msg.ReplyMarkup = h.createPendingKeyboard(file.ID)
		if _, err := bot.Send(msg); err != nil {
			return err
		}
	}
	return nil
}

// GetCommands returns the available commands for this handler
func (h *TelegramHandler) GetCommands() map[string]string {
	return map[string]string{
		"pending": "List files waiting for a decision",
		"status":  "Show editor connection and watched folder",
		"connect": "Check the connection to DaVinci Resolve",
		"watch":   "Watch a folder: /watch <path>",
	}
}

// HandleCallback handles the Import and Discard buttons
func (h *TelegramHandler) HandleCallback(bot *tgbotapi.BotAPI, callback *tgbotapi.CallbackQuery) bool {
	var action Action
	var id string
	switch {
	case strings.HasPrefix(callback.Data, callbackImport):
		action, id = ActionImport, strings.TrimPrefix(callback.Data, callbackImport)
	case strings.HasPrefix(callback.Data, callbackDiscard):
		action, id = ActionDiscard, strings.TrimPrefix(callback.Data, callbackDiscard)
	default:
		return false
	}

	chatID := callback.Message.Chat.ID
	res, err := h.service.Decide(context.Background(), id, action)
	switch {
	case errors.Is(err, ErrNotFound):
		bot.Send(tgbotapi.NewMessage(chatID, "ℹ️ File is no longer pending"))
	case errors.Is(err, ErrDiscardFailed):
		bot.Send(tgbotapi.NewMessage(chatID, "❌ Could not move file to trash, it is still pending"))
	case err != nil:
		slog.Error("Failed to process Telegram decision", "error", err, "id", id, "action", action)
		bot.Send(tgbotapi.NewMessage(chatID, "❌ Failed to process file"))
	case res.Success:
		bot.Send(tgbotapi.NewMessage(chatID, "✅ "+res.Detail))
	default:
		bot.Send(tgbotapi.NewMessage(chatID, "⚠️ "+res.Detail))
	}
	return true
}

// createPendingKeyboard creates the inline keyboard for a pending file
func (h *TelegramHandler) createPendingKeyboard(id string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Import", callbackImport+id),
			tgbotapi.NewInlineKeyboardButtonData("🗑️ Discard", callbackDiscard+id),
		),
	)
}

func (h *TelegramHandler) formatConnection(conn Connection) string {
	if conn.Connected {
		return "🟢 Connected to DaVinci Resolve: " + conn.Project
	}
	return "🔴 Not connected to DaVinci Resolve"
}

func (h *TelegramHandler) formatFolder(folder string) string {
	if folder == "" {
		return "📁 No folder selected"
	}
	return "👀 Monitoring: " + folder
}

// escapeMarkdown escapes the characters legacy Markdown treats specially
func (h *TelegramHandler) escapeMarkdown(text string) string {
	replacer := strings.NewReplacer("_", "\\_", "*", "\\*", "`", "\\`", "[", "\\[")
	return replacer.Replace(text)
}
