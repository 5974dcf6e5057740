package bot

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"

	"github.com/iconidentify/mediagrab/internal/domain"
)

const greetingHTML = `Hello, %s!

I can download media from %s.

Just send me a link. 🎬

Files under 50MB are sent straight to the chat, larger ones as a download link.

To get audio (mp3) from YouTube use:
<code>/audio &lt;youtube_link&gt;</code>`

// Deliverer runs a media request to completion.
type Deliverer interface {
	Deliver(ctx context.Context, req domain.MediaRequest) domain.Outcome
}

// Replier sends formatted text replies.
type Replier interface {
	SendHTML(ctx context.Context, chatID int64, replyTo int, text string) (int, error)
}

// Handler routes chat messages to commands.
type Handler struct {
	deliverer Deliverer
	replier   Replier
	logger    *slog.Logger
}

// NewHandler creates a new update handler.
func NewHandler(deliverer Deliverer, replier Replier, logger *slog.Logger) *Handler {
	return &Handler{
		deliverer: deliverer,
		replier:   replier,
		logger:    logger,
	}
}

// HandleUpdate processes one update. Anything that is not a message with
// text, and unknown commands, are ignored.
func (h *Handler) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || msg.Chat == nil || strings.TrimSpace(msg.Text) == "" {
		return
	}

	if !msg.IsCommand() {
		h.deliver(ctx, msg, domain.ModeVideo, strings.TrimSpace(msg.Text))
		return
	}

	switch msg.Command() {
	case "start", "help":
		h.greet(ctx, msg)
	case "audio":
		h.deliver(ctx, msg, domain.ModeAudio, firstArgument(msg.CommandArguments()))
	default:
		h.logger.Debug("ignoring unknown command", "command", msg.Command(), "chat_id", msg.Chat.ID)
	}
}

func (h *Handler) deliver(ctx context.Context, msg *tgbotapi.Message, mode domain.Mode, url string) {
	req := newRequest(msg, mode, url)

	h.logger.Info("request received",
		"request_id", req.ID,
		"chat_id", req.ChatID,
		"requester", req.Requester,
		"mode", req.Mode,
		"url", req.URL,
	)

	out := h.deliverer.Deliver(ctx, req)

	h.logger.Info("request finished",
		"request_id", req.ID,
		"outcome", out.Kind,
		"duration", time.Since(req.ReceivedAt).Round(time.Millisecond),
	)
}

func (h *Handler) greet(ctx context.Context, msg *tgbotapi.Message) {
	text := fmt.Sprintf(greetingHTML, mentionHTML(msg.From), domain.SiteNames(domain.SupportedSites))
	if _, err := h.replier.SendHTML(ctx, msg.Chat.ID, msg.MessageID, text); err != nil {
		h.logger.Error("failed to send greeting", "chat_id", msg.Chat.ID, "error", err)
	}
}

func newRequest(msg *tgbotapi.Message, mode domain.Mode, url string) domain.MediaRequest {
	return domain.MediaRequest{
		ID:         domain.RequestID("req_" + uuid.New().String()[:8]),
		URL:        url,
		Mode:       mode,
		ChatID:     msg.Chat.ID,
		MessageID:  msg.MessageID,
		Requester:  displayName(msg.From),
		ReceivedAt: time.Now(),
	}
}

// firstArgument returns the first whitespace separated word of args.
func firstArgument(args string) string {
	fields := strings.Fields(args)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

func displayName(u *tgbotapi.User) string {
	if u == nil {
		return ""
	}
	if name := strings.TrimSpace(u.FirstName + " " + u.LastName); name != "" {
		return name
	}
	return u.UserName
}

// mentionHTML links the user's name to their profile.
func mentionHTML(u *tgbotapi.User) string {
	name := displayName(u)
	if name == "" {
		return "there"
	}
	return fmt.Sprintf(`<a href="tg://user?id=%d">%s</a>`, u.ID, html.EscapeString(name))
}
