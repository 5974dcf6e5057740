// Package ffmpeg reads media stream metadata with ffprobe.
package ffmpeg

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// MediaInfo contains metadata about a media file.
type MediaInfo struct {
	Duration   float64 // Duration in seconds
	Width      int
	Height     int
	HasVideo   bool
	HasAudio   bool
	VideoCodec string
	AudioCodec string
}

// Prober runs ffprobe against local files.
type Prober struct {
	ffprobePath string
}

// NewProber looks up ffprobe. An empty path searches PATH.
func NewProber(path string) (*Prober, error) {
	if path == "" {
		path = "ffprobe"
	}
	resolved, err := exec.LookPath(path)
	if err != nil {
		return nil, fmt.Errorf("ffprobe not found: %w", err)
	}
	return &Prober{ffprobePath: resolved}, nil
}

// Probe extracts stream metadata from a media file.
func (p *Prober) Probe(ctx context.Context, path string) (*MediaInfo, error) {
	cmd := exec.CommandContext(ctx, p.ffprobePath,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	)

	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("ffprobe: %w", err)
	}
	return parseProbeOutput(output)
}

type ffprobeFormat struct {
	Duration string `json:"duration"`
}

type ffprobeStream struct {
	CodecType string `json:"codec_type"`
	CodecName string `json:"codec_name"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Duration  string `json:"duration"`
}

type ffprobeOutput struct {
	Format  ffprobeFormat   `json:"format"`
	Streams []ffprobeStream `json:"streams"`
}

func parseProbeOutput(output []byte) (*MediaInfo, error) {
	var parsed ffprobeOutput
	if err := json.Unmarshal(output, &parsed); err != nil {
		return nil, fmt.Errorf("parse ffprobe output: %w", err)
	}

	info := &MediaInfo{
		Duration: parseSeconds(parsed.Format.Duration),
	}

	for _, s := range parsed.Streams {
		switch s.CodecType {
		case "audio":
			info.HasAudio = true
			if info.AudioCodec == "" {
				info.AudioCodec = s.CodecName
			}
		case "video":
			// cover art in audio containers shows up as an attached picture stream
			if s.CodecName == "mjpeg" || s.CodecName == "png" {
				continue
			}
			info.HasVideo = true
			if info.VideoCodec == "" {
				info.VideoCodec = s.CodecName
			}
			if info.Width == 0 && s.Width > 0 {
				info.Width = s.Width
			}
			if info.Height == 0 && s.Height > 0 {
				info.Height = s.Height
			}
		}
		if info.Duration == 0 {
			info.Duration = parseSeconds(s.Duration)
		}
	}

	return info, nil
}

func parseSeconds(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" || s == "N/A" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}
