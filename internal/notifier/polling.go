package notifier

import (
	"context"
	"strings"

	"MarketSim/internal/logger"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// CommandHandler is called when a user command is received.
type CommandHandler func(command string) string

// ListenForCommands polls for updates in a goroutine and answers messages
// from the configured chat. It returns immediately; polling stops when ctx
// is cancelled.
func (t *TelegramNotifier) ListenForCommands(ctx context.Context, handler CommandHandler) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := t.bot.GetUpdatesChan(u)

	go func() {
		for {
			select {
			case <-ctx.Done():
				t.bot.StopReceivingUpdates()
				logger.Info("Telegram polling stopped")
				return
			case update, ok := <-updates:
				if !ok {
					return
				}
				t.handleUpdate(update, handler)
			}
		}
	}()
}

func (t *TelegramNotifier) handleUpdate(update tgbotapi.Update, handler CommandHandler) {
	msg := update.Message
	if msg == nil || msg.Text == "" {
		return
	}
	if msg.Chat == nil || msg.Chat.ID != t.chatID {
		logger.Debug("ignoring message from chat outside configuration")
		return
	}
	text := strings.TrimSpace(msg.Text)
	logger.Info("received command: %s", text)
	if reply := handler(text); reply != "" {
		if err := t.Send(reply); err != nil {
			logger.Error("send reply: %v", err)
		}
	}
}
