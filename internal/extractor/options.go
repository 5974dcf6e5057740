package extractor

import (
	"fmt"
	"os"
)

// Containers yt-dlp can recode video into.
var videoContainers = map[string]bool{
	"mp4": true, "mkv": true, "webm": true, "mov": true, "avi": true, "flv": true,
}

// Codecs yt-dlp can extract audio into.
var audioCodecs = map[string]bool{
	"mp3": true, "m4a": true, "aac": true, "opus": true, "vorbis": true, "flac": true, "wav": true,
}

// Options is the engine configuration shared by every extraction.
type Options struct {
	VideoFormat         string
	VideoContainer      string
	AudioFormat         string
	AudioCodec          string
	AudioQuality        string
	NoPlaylist          bool
	NoCheckCertificates bool
	CookieFile          string
	MaxFileSize         int64 // bytes; 0 leaves size checks to the caller
}

// DefaultOptions returns a single best-quality stream: mp4 for video,
// 192K mp3 for audio, playlists never expanded.
func DefaultOptions() Options {
	return Options{
		VideoFormat:         "bestvideo[ext=mp4]+bestaudio[ext=m4a]/best[ext=mp4]/best",
		VideoContainer:      "mp4",
		AudioFormat:         "bestaudio/best",
		AudioCodec:          "mp3",
		AudioQuality:        "192",
		NoPlaylist:          true,
		NoCheckCertificates: true,
	}
}

// Validate checks the options once, before any extraction runs.
func (o Options) Validate() error {
	if o.VideoFormat == "" {
		return fmt.Errorf("video format is required")
	}
	if o.AudioFormat == "" {
		return fmt.Errorf("audio format is required")
	}
	if !videoContainers[o.VideoContainer] {
		return fmt.Errorf("unsupported video container %q", o.VideoContainer)
	}
	if !audioCodecs[o.AudioCodec] {
		return fmt.Errorf("unsupported audio codec %q", o.AudioCodec)
	}
	if o.MaxFileSize < 0 {
		return fmt.Errorf("max file size must not be negative")
	}
	if o.CookieFile != "" {
		if _, err := os.Stat(o.CookieFile); err != nil {
			return fmt.Errorf("cookie file: %w", err)
		}
	}
	return nil
}
