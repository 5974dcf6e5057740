// Package bot is the Telegram side of mediagrab: it connects to the Bot API,
// turns chat messages into media requests and sends replies.
package bot

import (
	"fmt"
	"log/slog"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/iconidentify/mediagrab/internal/config"
)

// Connect authenticates against the Bot API and returns the client.
// Library logs are routed through logger.
func Connect(cfg config.TelegramConfig, logger *slog.Logger) (*tgbotapi.BotAPI, error) {
	if err := tgbotapi.SetLogger(&slogBotLogger{log: logger.With("component", "tgbotapi")}); err != nil {
		return nil, fmt.Errorf("set bot logger: %w", err)
	}

	endpoint := cfg.APIEndpoint
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}

	// inline uploads of ~49MB need far more than the default client timeout
	client := &http.Client{Timeout: cfg.RequestTimeout}

	api, err := tgbotapi.NewBotAPIWithClient(cfg.Token, endpoint, client)
	if err != nil {
		return nil, fmt.Errorf("connect to telegram: %w", err)
	}
	api.Debug = cfg.Debug

	logger.Info("connected to telegram", "username", api.Self.UserName)
	return api, nil
}

// Updates starts long polling for message updates.
func Updates(api *tgbotapi.BotAPI, pollTimeout int) tgbotapi.UpdatesChannel {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = pollTimeout
	u.AllowedUpdates = []string{"message"}
	return api.GetUpdatesChan(u)
}
