// Package extractor turns a media page URL into a file on local disk using yt-dlp.
package extractor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/iconidentify/mediagrab/internal/domain"
)

// Extractor downloads media into a caller-chosen directory.
type Extractor struct {
	engine Engine
	opts   Options
	logger *slog.Logger
}

// New creates an Extractor. Options are validated here and never again.
func New(engine Engine, opts Options, logger *slog.Logger) (*Extractor, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("extractor options: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{
		engine: engine,
		opts:   opts,
		logger: logger,
	}, nil
}

// Extract downloads url in the given mode into destDir and returns the
// resulting artifact. Every error is a *domain.Error of kind extraction.
func (x *Extractor) Extract(ctx context.Context, url string, mode domain.Mode, destDir string) (*domain.Artifact, error) {
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return nil, domain.NewError(domain.KindExtraction, "prepare", fmt.Errorf("create download directory: %w", err))
	}

	job := Job{
		Mode:           mode,
		OutputTemplate: filepath.Join(destDir, "%(id)s.%(ext)s"),
		Options:        x.opts,
	}
	logger := x.logger.With("url", url, "mode", mode)

	// Step 1: metadata only, to learn the ID the file will be named after
	info, err := x.engine.Probe(ctx, url, job)
	if err != nil {
		logger.Error("metadata lookup failed", "error", err)
		return nil, domain.NewError(domain.KindExtraction, "probe", classify(ctx, err))
	}
	if info == nil {
		return nil, domain.NewError(domain.KindExtraction, "probe", ErrNoMetadata)
	}
	if !validMediaID(info.ID) {
		return nil, domain.NewError(domain.KindExtraction, "probe", ErrNoIdentifier)
	}

	logger = logger.With("media_id", info.ID)
	logger.Info("downloading media")

	// Step 2: download
	if err := x.engine.Fetch(ctx, url, job); err != nil {
		logger.Error("download failed", "error", err)
		removeByPrefix(destDir, info.ID)
		return nil, domain.NewError(domain.KindExtraction, "download", classify(ctx, err))
	}

	// Step 3: find what the engine actually wrote
	path, err := locate(destDir, info.ID, x.expectedExt(mode))
	if err != nil {
		logger.Error("downloaded file missing", "dir", destDir)
		removeByPrefix(destDir, info.ID)
		return nil, domain.NewError(domain.KindExtraction, "locate", err)
	}

	stat, err := os.Stat(path)
	if err != nil {
		removeByPrefix(destDir, info.ID)
		return nil, domain.NewError(domain.KindExtraction, "locate", fmt.Errorf("stat artifact: %w", err))
	}

	logger.Info("media downloaded", "path", path, "size", stat.Size())

	return &domain.Artifact{
		Path:     path,
		Size:     stat.Size(),
		MediaID:  info.ID,
		Title:    info.Title,
		Duration: info.Duration,
	}, nil
}

func (x *Extractor) expectedExt(mode domain.Mode) string {
	if mode == domain.ModeAudio {
		return x.opts.AudioCodec
	}
	return x.opts.VideoContainer
}

// classify reduces an engine error to the sentinel shown to the user and
// keeps the engine's text as detail for the delivery log.
func classify(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	sentinel := ErrEngine
	switch {
	case errors.Is(err, ErrFileTooLarge):
		sentinel = ErrFileTooLarge
	case errors.Is(err, ErrNoMetadata):
		sentinel = ErrNoMetadata
	}

	detail := strings.TrimPrefix(err.Error(), sentinel.Error())
	detail = strings.TrimPrefix(detail, ": ")
	return domain.WithDetail(sentinel, detail)
}

func validMediaID(id string) bool {
	if strings.TrimSpace(id) == "" || id == "." || id == ".." {
		return false
	}
	return !strings.ContainsAny(id, `/\`)
}

// locate returns <id>.<ext> when present, otherwise the first finished file
// named <id>.* in dir. The engine may pick a different extension than asked.
func locate(dir, id, ext string) (string, error) {
	expected := filepath.Join(dir, id+"."+ext)
	if fi, err := os.Stat(expected); err == nil && fi.Mode().IsRegular() {
		return expected, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrArtifactNotFound, err)
	}
	for _, e := range entries {
		name := e.Name()
		if !e.Type().IsRegular() || isPartial(name) {
			continue
		}
		if strings.HasPrefix(name, id+".") {
			return filepath.Join(dir, name), nil
		}
	}
	return "", ErrArtifactNotFound
}

func isPartial(name string) bool {
	return strings.HasSuffix(name, ".part") || strings.HasSuffix(name, ".ytdl")
}

// removeByPrefix deletes leftovers of a failed download.
func removeByPrefix(dir, id string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), id+".") {
			os.Remove(filepath.Join(dir, e.Name()))
		}
	}
}
