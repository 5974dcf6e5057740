package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/iconidentify/mediagrab/internal/bot"
	"github.com/iconidentify/mediagrab/internal/config"
	"github.com/iconidentify/mediagrab/internal/extractor"
	"github.com/iconidentify/mediagrab/internal/repository"
	"github.com/iconidentify/mediagrab/pkg/ffmpeg"
	"github.com/iconidentify/mediagrab/pkg/gofile"
)

// services are the collaborators that do not need a Telegram connection.
type services struct {
	extractor  *extractor.Extractor
	uploader   *gofile.Client
	deliveries *repository.InMemoryDeliveryRepository
	prober     bot.Prober // nil when ffprobe is unavailable
}

// buildServices prepares the filesystem and creates every adapter from cfg.
func buildServices(cfg *config.Config, logger *slog.Logger) (*services, error) {
	if err := os.MkdirAll(cfg.Storage.DownloadPath, 0755); err != nil {
		return nil, fmt.Errorf("create download directory: %w", err)
	}

	cookieFile, err := extractor.MaterializeCookies(cfg.Storage.CookieFile, cfg.Extractor.CookieData, logger)
	if err != nil {
		return nil, err
	}

	engine := extractor.NewYTDLPEngine(cfg.Extractor.Binary, cfg.Extractor.Timeout, logger.With("component", "ytdlp"))
	x, err := extractor.New(engine, extractorOptions(cfg.Extractor, cookieFile), logger.With("component", "extractor"))
	if err != nil {
		return nil, err
	}

	uploader := gofile.NewClient(gofile.Config{
		BaseURL:          cfg.Upload.BaseURL,
		UploadURL:        cfg.Upload.UploadURL,
		Token:            cfg.Upload.Token,
		DiscoveryTimeout: cfg.Upload.DiscoveryTimeout,
		UploadTimeout:    cfg.Upload.UploadTimeout,
	})
	if cfg.Upload.Token == "" {
		logger.Info("GOFILE_TOKEN not set, large files are uploaded anonymously")
	}

	s := &services{
		extractor:  x,
		uploader:   uploader,
		deliveries: repository.NewInMemoryDeliveryRepository(cfg.Delivery.HistorySize),
	}

	if p, err := ffmpeg.NewProber(cfg.Extractor.FFprobePath); err != nil {
		logger.Warn("ffprobe not available, media is sent without probed duration", "error", err)
	} else {
		s.prober = p
	}

	return s, nil
}

func extractorOptions(cfg config.ExtractorConfig, cookieFile string) extractor.Options {
	opts := extractor.DefaultOptions()
	opts.VideoFormat = cfg.VideoFormat
	opts.VideoContainer = cfg.VideoContainer
	opts.AudioFormat = cfg.AudioFormat
	opts.AudioCodec = cfg.AudioCodec
	opts.AudioQuality = cfg.AudioQuality
	opts.MaxFileSize = cfg.MaxFileSize
	opts.CookieFile = cookieFile
	return opts
}
