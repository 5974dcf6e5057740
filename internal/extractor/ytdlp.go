package extractor

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/lrstanley/go-ytdlp"

	"github.com/iconidentify/mediagrab/internal/domain"
)

// YTDLPEngine implements Engine by running the yt-dlp binary.
type YTDLPEngine struct {
	binary  string
	timeout time.Duration
	logger  *slog.Logger
}

// NewYTDLPEngine creates an engine. An empty binary uses yt-dlp from PATH.
func NewYTDLPEngine(binary string, timeout time.Duration, logger *slog.Logger) *YTDLPEngine {
	if logger == nil {
		logger = slog.Default()
	}
	return &YTDLPEngine{
		binary:  binary,
		timeout: timeout,
		logger:  logger,
	}
}

// Probe runs yt-dlp without downloading and parses the printed info JSON.
func (e *YTDLPEngine) Probe(ctx context.Context, url string, job Job) (*MediaInfo, error) {
	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	result, err := e.command(job).SkipDownload().PrintJSON().Run(ctx, url)
	if err != nil {
		return nil, engineError(result, err)
	}
	return parseInfo(result.Stdout)
}

// Fetch runs the actual download.
func (e *YTDLPEngine) Fetch(ctx context.Context, url string, job Job) error {
	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	result, err := e.command(job).Run(ctx, url)
	if err != nil {
		return engineError(result, err)
	}
	// yt-dlp exits 0 when it skips a file over --max-filesize
	if isSizeLimitText(result.Stdout) || isSizeLimitText(result.Stderr) {
		return fmt.Errorf("%w: %s", ErrFileTooLarge, lastLine(result.Stdout))
	}
	return nil
}

func (e *YTDLPEngine) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, e.timeout)
}

func (e *YTDLPEngine) command(job Job) *ytdlp.Command {
	o := job.Options

	cmd := ytdlp.New().Output(job.OutputTemplate)
	if e.binary != "" {
		cmd = cmd.SetExecutable(e.binary)
	}
	if o.NoPlaylist {
		cmd = cmd.NoPlaylist()
	}
	if o.NoCheckCertificates {
		cmd = cmd.NoCheckCertificates()
	}
	if o.CookieFile != "" {
		cmd = cmd.Cookies(o.CookieFile)
	}
	if o.MaxFileSize > 0 {
		cmd = cmd.MaxFileSize(strconv.FormatInt(o.MaxFileSize, 10))
	}

	switch job.Mode {
	case domain.ModeAudio:
		cmd = cmd.Format(o.AudioFormat).
			ExtractAudio().
			AudioFormat(o.AudioCodec).
			AudioQuality(o.AudioQuality)
	default:
		cmd = cmd.Format(o.VideoFormat).
			RecodeVideo(o.VideoContainer)
	}
	return cmd
}

// parseInfo reads the first JSON object yt-dlp printed.
func parseInfo(stdout string) (*MediaInfo, error) {
	scanner := bufio.NewScanner(strings.NewReader(stdout))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "{") {
			continue
		}
		var info MediaInfo
		if err := json.Unmarshal([]byte(line), &info); err != nil {
			return nil, fmt.Errorf("%w: parse info json: %v", ErrNoMetadata, err)
		}
		return &info, nil
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read info json: %w", err)
	}
	return nil, nil
}

func engineError(result *ytdlp.Result, err error) error {
	detail := err.Error()
	if result != nil {
		if stderr := lastLine(result.Stderr); stderr != "" {
			detail = stderr
		}
	}
	if isSizeLimitText(detail) {
		return fmt.Errorf("%w: %s", ErrFileTooLarge, detail)
	}
	return fmt.Errorf("%w: %s", ErrEngine, detail)
}

func isSizeLimitText(s string) bool {
	s = strings.ToLower(s)
	return strings.Contains(s, "larger than max-filesize") ||
		strings.Contains(s, "file is larger than the maximum")
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndex(s, "\n"); i >= 0 {
		return strings.TrimSpace(s[i+1:])
	}
	return s
}
