// Package telegram delivers interactive authorization prompts to an
// operator over Telegram.
package telegram

import (
	"fmt"
	"log/slog"

	"github.com/go-telegram/bot"

	"github.com/edgard/vkbot/internal/logger"
)

// NewTelegramBot creates a new Telegram bot instance using the go-telegram/bot library.
func NewTelegramBot(token string, log *slog.Logger, opts ...bot.Option) (*bot.Bot, error) {
	if token == "" {
		return nil, fmt.Errorf("telegram bot token cannot be empty")
	}
	if log == nil {
		log = slog.Default()
	}
	log = log.With("component", "telegram_bot")

	b, err := bot.New(token, opts...)
	if err != nil {
		log.Error("Failed to create Telegram bot instance", "error", err)
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	log.Info("Telegram bot instance created successfully", "token", logger.MaskToken(token))
	return b, nil
}

// NewPromptBot builds a Telegram bot whose default handler feeds p and binds
// p to it. The token is not checked against Telegram until the bot starts
// polling, so a cached VK token never needs Telegram to be reachable.
func NewPromptBot(token string, p *Prompter, log *slog.Logger) (*bot.Bot, error) {
	if log == nil {
		log = slog.Default()
	}
	b, err := NewTelegramBot(token, log,
		bot.WithMiddlewares(logger.Middleware(log)),
		bot.WithDefaultHandler(p.HandleUpdate),
		bot.WithSkipGetMe(),
	)
	if err != nil {
		return nil, err
	}
	p.Bind(b)
	return b, nil
}
