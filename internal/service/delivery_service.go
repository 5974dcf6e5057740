package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/iconidentify/mediagrab/internal/config"
	"github.com/iconidentify/mediagrab/internal/domain"
	"github.com/iconidentify/mediagrab/internal/extractor"
	"github.com/iconidentify/mediagrab/pkg/gofile"
)

// Status texts shown while a request is in flight.
const (
	statusDownloading = "⏳ Downloading %s, please wait..."
	statusSending     = "📤 Sending file..."
	statusUploading   = "📦 File is large (%s).\n📤 Uploading to GoFile..."
	replyLink         = "✅ File uploaded successfully!\n\nDownload link:\n%s"
)

// terminalTimeout bounds the final chat calls, which run even after ctx is done.
const terminalTimeout = 30 * time.Second

// Messenger sends chat messages on behalf of the pipeline.
type Messenger interface {
	// SendText replies to replyTo and returns the new message ID.
	SendText(ctx context.Context, chatID int64, replyTo int, text string) (int, error)
	EditText(ctx context.Context, chatID int64, messageID int, text string) error
	Delete(ctx context.Context, chatID int64, messageID int) error
	// SendMedia uploads the artifact as audio or video depending on mode.
	SendMedia(ctx context.Context, chatID int64, replyTo int, mode domain.Mode, artifact *domain.Artifact) error
}

// Extractor downloads the media behind a URL.
type Extractor interface {
	Extract(ctx context.Context, url string, mode domain.Mode, destDir string) (*domain.Artifact, error)
}

// Recorder keeps finished deliveries.
type Recorder interface {
	Record(ctx context.Context, d *domain.Delivery) error
}

// DeliveryService runs a media request from validation to the terminal reply.
type DeliveryService struct {
	messenger Messenger
	extractor Extractor
	uploader  gofile.Uploader
	recorder  Recorder
	storage   config.StorageConfig
	cfg       config.DeliveryConfig
	logger    *slog.Logger
}

// NewDeliveryService creates a new delivery service.
func NewDeliveryService(
	messenger Messenger,
	ext Extractor,
	uploader gofile.Uploader,
	recorder Recorder,
	storageCfg config.StorageConfig,
	deliveryCfg config.DeliveryConfig,
	logger *slog.Logger,
) *DeliveryService {
	return &DeliveryService{
		messenger: messenger,
		extractor: ext,
		uploader:  uploader,
		recorder:  recorder,
		storage:   storageCfg,
		cfg:       deliveryCfg,
		logger:    logger,
	}
}

// Deliver processes req and returns its outcome. The requester gets exactly
// one terminal message, and any downloaded file is gone when Deliver returns.
func (s *DeliveryService) Deliver(ctx context.Context, req domain.MediaRequest) (out domain.Outcome) {
	startedAt := time.Now()
	logger := s.logger.With(
		"request_id", req.ID,
		"chat_id", req.ChatID,
		"url", req.URL,
		"mode", req.Mode,
	)

	statusID := 0
	defer func() {
		s.finish(ctx, req, statusID, out, logger)
		s.record(ctx, req, out, startedAt, logger)
	}()

	if err := req.Validate(); err != nil {
		logger.Info("request rejected", "reason", err)
		return domain.Failure(err)
	}

	statusID = s.sendStatus(ctx, req, fmt.Sprintf(statusDownloading, req.Mode), logger)

	artifact, err := s.extractor.Extract(ctx, req.URL, req.Mode, s.sessionDir(req.ChatID))
	if err != nil {
		logger.Error("extraction failed", "error", err)
		return domain.Failure(asKind(domain.KindExtraction, "extract", err))
	}
	if artifact == nil {
		logger.Error("extractor returned no artifact")
		return domain.Failure(domain.NewError(domain.KindExtraction, "extract", extractor.ErrArtifactNotFound))
	}
	defer s.cleanup(artifact.Path, logger)

	logger = logger.With("path", artifact.Path, "size", humanize.IBytes(uint64(artifact.Size)))

	if artifact.Size <= s.cfg.InlineLimit {
		s.editStatus(ctx, req, statusID, statusSending, logger)
		if err := s.messenger.SendMedia(ctx, req.ChatID, req.MessageID, req.Mode, artifact); err != nil {
			logger.Error("inline send failed", "error", err)
			return domain.Failure(domain.NewError(domain.KindDelivery, "send", err))
		}
		logger.Info("media delivered inline")
		return domain.InlineFile(artifact)
	}

	s.editStatus(ctx, req, statusID, fmt.Sprintf(statusUploading, humanize.IBytes(uint64(artifact.Size))), logger)
	result, err := s.uploader.Upload(ctx, artifact.Path)
	if err != nil {
		logger.Error("remote upload failed", "error", err)
		return domain.Failure(domain.NewError(domain.KindUpload, "upload", err))
	}

	logger.Info("media delivered as link", "link", result.DownloadPage)
	return domain.RemoteLink(result.DownloadPage)
}

func (s *DeliveryService) sessionDir(chatID int64) string {
	return filepath.Join(s.storage.DownloadPath, strconv.FormatInt(chatID, 10))
}

// sendStatus posts the first status message. A failure only costs the
// progress display, so it is logged and 0 is returned.
func (s *DeliveryService) sendStatus(ctx context.Context, req domain.MediaRequest, text string, logger *slog.Logger) int {
	id, err := s.messenger.SendText(ctx, req.ChatID, req.MessageID, text)
	if err != nil {
		logger.Warn("failed to send status message", "error", err)
		return 0
	}
	return id
}

func (s *DeliveryService) editStatus(ctx context.Context, req domain.MediaRequest, statusID int, text string, logger *slog.Logger) {
	if statusID == 0 {
		return
	}
	if err := s.messenger.EditText(ctx, req.ChatID, statusID, text); err != nil {
		logger.Warn("failed to update status message", "error", err)
	}
}

// finish sends the terminal message for out.
func (s *DeliveryService) finish(ctx context.Context, req domain.MediaRequest, statusID int, out domain.Outcome, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), terminalTimeout)
	defer cancel()

	switch out.Kind {
	case domain.OutcomeInline:
		s.deleteStatus(ctx, req, statusID, logger)
	case domain.OutcomeRemoteLink:
		if _, err := s.messenger.SendText(ctx, req.ChatID, req.MessageID, fmt.Sprintf(replyLink, out.Link)); err != nil {
			logger.Error("failed to send download link", "error", err)
		}
		s.deleteStatus(ctx, req, statusID, logger)
	case domain.OutcomeFailure:
		text := domain.UserMessage(out.Err)
		if statusID != 0 {
			err := s.messenger.EditText(ctx, req.ChatID, statusID, text)
			if err == nil {
				return
			}
			logger.Warn("failed to replace status with error", "error", err)
		}
		if _, err := s.messenger.SendText(ctx, req.ChatID, req.MessageID, text); err != nil {
			logger.Error("failed to send error reply", "error", err)
		}
	default:
		logger.Error("unknown outcome kind", "kind", out.Kind)
	}
}

func (s *DeliveryService) deleteStatus(ctx context.Context, req domain.MediaRequest, statusID int, logger *slog.Logger) {
	if statusID == 0 {
		return
	}
	if err := s.messenger.Delete(ctx, req.ChatID, statusID); err != nil {
		logger.Warn("failed to delete status message", "error", err)
	}
}

func (s *DeliveryService) record(ctx context.Context, req domain.MediaRequest, out domain.Outcome, startedAt time.Time, logger *slog.Logger) {
	if s.recorder == nil {
		return
	}
	if err := s.recorder.Record(context.WithoutCancel(ctx), domain.NewDelivery(req, out, startedAt)); err != nil {
		logger.Warn("failed to record delivery", "error", err)
	}
}

func (s *DeliveryService) cleanup(path string, logger *slog.Logger) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warn("failed to remove downloaded file", "error", err)
		return
	}
	logger.Debug("downloaded file removed")
}

// asKind keeps an already classified error and tags anything else with kind.
func asKind(kind domain.ErrorKind, op string, err error) error {
	var de *domain.Error
	if errors.As(err, &de) {
		return err
	}
	return domain.NewError(kind, op, err)
}
