package ffmpeg

import (
	"testing"
)

func TestParseProbeOutput_Video(t *testing.T) {
	output := []byte(`{
		"streams": [
			{"codec_type": "video", "codec_name": "h264", "width": 1280, "height": 720},
			{"codec_type": "audio", "codec_name": "aac"}
		],
		"format": {"duration": "61.500000"}
	}`)

	info, err := parseProbeOutput(output)
	if err != nil {
		t.Fatalf("parseProbeOutput failed: %v", err)
	}
	if info.Duration != 61.5 {
		t.Errorf("Duration = %v, want 61.5", info.Duration)
	}
	if info.Width != 1280 || info.Height != 720 {
		t.Errorf("dimensions = %dx%d, want 1280x720", info.Width, info.Height)
	}
	if !info.HasVideo || !info.HasAudio {
		t.Errorf("HasVideo=%v HasAudio=%v, want both", info.HasVideo, info.HasAudio)
	}
	if info.VideoCodec != "h264" || info.AudioCodec != "aac" {
		t.Errorf("codecs = %q/%q", info.VideoCodec, info.AudioCodec)
	}
}

func TestParseProbeOutput_AudioWithCoverArt(t *testing.T) {
	output := []byte(`{
		"streams": [
			{"codec_type": "audio", "codec_name": "mp3", "duration": "200.1"},
			{"codec_type": "video", "codec_name": "mjpeg", "width": 500, "height": 500}
		],
		"format": {"duration": "N/A"}
	}`)

	info, err := parseProbeOutput(output)
	if err != nil {
		t.Fatalf("parseProbeOutput failed: %v", err)
	}
	if info.HasVideo {
		t.Error("cover art should not count as a video stream")
	}
	if info.Width != 0 {
		t.Errorf("Width = %d, want 0", info.Width)
	}
	if info.Duration != 200.1 {
		t.Errorf("Duration = %v, want stream duration 200.1", info.Duration)
	}
}

func TestParseProbeOutput_Invalid(t *testing.T) {
	if _, err := parseProbeOutput([]byte("not json")); err == nil {
		t.Error("expected error for invalid output")
	}
}

func TestParseSeconds(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"", 0},
		{"N/A", 0},
		{"abc", 0},
		{"-3", 0},
		{" 12.25 ", 12.25},
	}
	for _, tt := range tests {
		if got := parseSeconds(tt.in); got != tt.want {
			t.Errorf("parseSeconds(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewProber_Missing(t *testing.T) {
	if _, err := NewProber("/nonexistent/ffprobe"); err == nil {
		t.Error("expected error for missing binary")
	}
}
