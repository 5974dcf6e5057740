package bot

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/iconidentify/mediagrab/internal/domain"
	"github.com/iconidentify/mediagrab/pkg/ffmpeg"
)

// Sender is the part of *tgbotapi.BotAPI the messenger uses.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Prober reads media metadata from a local file.
type Prober interface {
	Probe(ctx context.Context, path string) (*ffmpeg.MediaInfo, error)
}

// Messenger sends pipeline messages to Telegram chats.
// The Bot API client takes no context, so ctx is checked before each call.
type Messenger struct {
	api    Sender
	prober Prober
	logger *slog.Logger
}

// NewMessenger creates a messenger. prober may be nil.
func NewMessenger(api Sender, prober Prober, logger *slog.Logger) *Messenger {
	return &Messenger{
		api:    api,
		prober: prober,
		logger: logger,
	}
}

// SendText replies with plain text and returns the new message ID.
func (m *Messenger) SendText(ctx context.Context, chatID int64, replyTo int, text string) (int, error) {
	return m.send(ctx, chatID, replyTo, text, "")
}

// SendHTML replies with HTML formatted text.
func (m *Messenger) SendHTML(ctx context.Context, chatID int64, replyTo int, text string) (int, error) {
	return m.send(ctx, chatID, replyTo, text, tgbotapi.ModeHTML)
}

func (m *Messenger) send(ctx context.Context, chatID int64, replyTo int, text, parseMode string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = parseMode
	if replyTo > 0 {
		msg.ReplyToMessageID = replyTo
	}
	sent, err := m.api.Send(msg)
	if err != nil {
		return 0, fmt.Errorf("send message: %w", err)
	}
	return sent.MessageID, nil
}

// EditText replaces the text of a message sent earlier.
func (m *Messenger) EditText(ctx context.Context, chatID int64, messageID int, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := m.api.Send(tgbotapi.NewEditMessageText(chatID, messageID, text)); err != nil {
		return fmt.Errorf("edit message: %w", err)
	}
	return nil
}

// Delete removes a message.
func (m *Messenger) Delete(ctx context.Context, chatID int64, messageID int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := m.api.Request(tgbotapi.NewDeleteMessage(chatID, messageID)); err != nil {
		return fmt.Errorf("delete message: %w", err)
	}
	return nil
}

// SendMedia uploads the artifact as an audio track or a streamable video.
func (m *Messenger) SendMedia(ctx context.Context, chatID int64, replyTo int, mode domain.Mode, artifact *domain.Artifact) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	file := tgbotapi.FilePath(artifact.Path)
	duration := m.duration(ctx, artifact)

	var c tgbotapi.Chattable
	switch mode {
	case domain.ModeAudio:
		audio := tgbotapi.NewAudio(chatID, file)
		audio.Title = artifact.Title
		audio.Duration = duration
		audio.ReplyToMessageID = replyTo
		c = audio
	default:
		video := tgbotapi.NewVideo(chatID, file)
		video.Duration = duration
		video.SupportsStreaming = true
		video.ReplyToMessageID = replyTo
		c = video
	}

	if _, err := m.api.Send(c); err != nil {
		return fmt.Errorf("send %s: %w", mode, err)
	}
	return nil
}

// duration prefers the engine's metadata and falls back to probing the file.
func (m *Messenger) duration(ctx context.Context, artifact *domain.Artifact) int {
	if artifact.Duration > 0 {
		return int(math.Round(artifact.Duration))
	}
	if m.prober == nil {
		return 0
	}
	info, err := m.prober.Probe(ctx, artifact.Path)
	if err != nil {
		m.logger.Debug("media probe failed", "path", artifact.Path, "error", err)
		return 0
	}
	return int(math.Round(info.Duration))
}
