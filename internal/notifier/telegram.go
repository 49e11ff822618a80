package notifier

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"MarketSim/internal/logger"
	"MarketSim/internal/model"
	"MarketSim/internal/render"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Config configures a TelegramNotifier.
type Config struct {
	BotToken       string
	ChatID         string
	APIEndpoint    string // defaults to the public Bot API
	MaxRetries     int
	RetryDelayBase time.Duration
	Options        render.Options
}

// TelegramNotifier sends simulation reports via the Telegram Bot API.
type TelegramNotifier struct {
	bot            *tgbotapi.BotAPI
	chatID         int64
	maxRetries     int
	retryDelayBase time.Duration
	opts           render.Options
}

// NewTelegramNotifier connects to the Bot API and resolves the chat.
func NewTelegramNotifier(cfg Config) (*TelegramNotifier, error) {
	endpoint := cfg.APIEndpoint
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}
	bot, err := tgbotapi.NewBotAPIWithAPIEndpoint(cfg.BotToken, endpoint)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	chatID, err := strconv.ParseInt(cfg.ChatID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid chat ID: %w", err)
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryDelayBase <= 0 {
		cfg.RetryDelayBase = time.Second
	}
	return &TelegramNotifier{
		bot:            bot,
		chatID:         chatID,
		maxRetries:     cfg.MaxRetries,
		retryDelayBase: cfg.RetryDelayBase,
		opts:           cfg.Options,
	}, nil
}

// Send sends an HTML message to the configured chat.
func (t *TelegramNotifier) Send(text string) error {
	msg := tgbotapi.NewMessage(t.chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	if _, err := t.bot.Send(msg); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

// SendWithRetry sends a message with exponential backoff retry.
func (t *TelegramNotifier) SendWithRetry(ctx context.Context, text string, maxRetries int) error {
	var lastErr error
	for i := 0; i <= maxRetries; i++ {
		if lastErr = t.Send(text); lastErr == nil {
			return nil
		}
		if i == maxRetries {
			break
		}
		backoff := t.retryDelayBase * time.Duration(1<<uint(i))
		logger.Warn("Telegram send failed (attempt %d/%d): %v, retrying in %v", i+1, maxRetries+1, lastErr, backoff)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}
	return fmt.Errorf("all %d attempts exhausted: %w", maxRetries+1, lastErr)
}

// Render sends the HTML report for res.
func (t *TelegramNotifier) Render(ctx context.Context, res *model.SimulationResult) error {
	return t.SendWithRetry(ctx, FormatReport(res, t.opts), t.maxRetries)
}
