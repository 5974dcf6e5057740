package bot

import (
	"context"
	"errors"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/iconidentify/mediagrab/internal/domain"
	"github.com/iconidentify/mediagrab/pkg/ffmpeg"
)

type mockSender struct {
	sent      []tgbotapi.Chattable
	requested []tgbotapi.Chattable
	err       error
}

func (m *mockSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if m.err != nil {
		return tgbotapi.Message{}, m.err
	}
	m.sent = append(m.sent, c)
	return tgbotapi.Message{MessageID: 500 + len(m.sent)}, nil
}

func (m *mockSender) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.requested = append(m.requested, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

type mockProber struct {
	info  *ffmpeg.MediaInfo
	err   error
	calls int
}

func (m *mockProber) Probe(ctx context.Context, path string) (*ffmpeg.MediaInfo, error) {
	m.calls++
	return m.info, m.err
}

func TestMessenger_SendText(t *testing.T) {
	sender := &mockSender{}
	m := NewMessenger(sender, nil, testLogger())

	id, err := m.SendText(context.Background(), 42, 7, "⏳ Downloading")
	if err != nil {
		t.Fatalf("SendText failed: %v", err)
	}
	if id != 501 {
		t.Errorf("id = %d, want 501", id)
	}

	msg, ok := sender.sent[0].(tgbotapi.MessageConfig)
	if !ok {
		t.Fatalf("sent %T, want MessageConfig", sender.sent[0])
	}
	if msg.ChatID != 42 || msg.ReplyToMessageID != 7 || msg.Text != "⏳ Downloading" {
		t.Errorf("unexpected message: %+v", msg)
	}
	if msg.ParseMode != "" {
		t.Errorf("ParseMode = %q, want plain text", msg.ParseMode)
	}
}

func TestMessenger_SendHTML(t *testing.T) {
	sender := &mockSender{}
	m := NewMessenger(sender, nil, testLogger())

	if _, err := m.SendHTML(context.Background(), 42, 0, "<b>hi</b>"); err != nil {
		t.Fatalf("SendHTML failed: %v", err)
	}
	msg := sender.sent[0].(tgbotapi.MessageConfig)
	if msg.ParseMode != tgbotapi.ModeHTML {
		t.Errorf("ParseMode = %q, want HTML", msg.ParseMode)
	}
	if msg.ReplyToMessageID != 0 {
		t.Errorf("ReplyToMessageID = %d, want 0", msg.ReplyToMessageID)
	}
}

func TestMessenger_EditAndDelete(t *testing.T) {
	sender := &mockSender{}
	m := NewMessenger(sender, nil, testLogger())
	ctx := context.Background()

	if err := m.EditText(ctx, 42, 501, "📤 Sending file..."); err != nil {
		t.Fatalf("EditText failed: %v", err)
	}
	edit, ok := sender.sent[0].(tgbotapi.EditMessageTextConfig)
	if !ok {
		t.Fatalf("sent %T, want EditMessageTextConfig", sender.sent[0])
	}
	if edit.MessageID != 501 || edit.Text != "📤 Sending file..." {
		t.Errorf("unexpected edit: %+v", edit)
	}

	if err := m.Delete(ctx, 42, 501); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	del, ok := sender.requested[0].(tgbotapi.DeleteMessageConfig)
	if !ok {
		t.Fatalf("requested %T, want DeleteMessageConfig", sender.requested[0])
	}
	if del.ChatID != 42 || del.MessageID != 501 {
		t.Errorf("unexpected delete: %+v", del)
	}
}

func TestMessenger_SendMedia(t *testing.T) {
	t.Run("video", func(t *testing.T) {
		sender := &mockSender{}
		m := NewMessenger(sender, nil, testLogger())
		artifact := &domain.Artifact{Path: "/tmp/abc123.mp4", Duration: 61.6}

		if err := m.SendMedia(context.Background(), 42, 7, domain.ModeVideo, artifact); err != nil {
			t.Fatalf("SendMedia failed: %v", err)
		}
		video, ok := sender.sent[0].(tgbotapi.VideoConfig)
		if !ok {
			t.Fatalf("sent %T, want VideoConfig", sender.sent[0])
		}
		if !video.SupportsStreaming {
			t.Error("video should support streaming")
		}
		if video.Duration != 62 {
			t.Errorf("Duration = %d, want 62", video.Duration)
		}
		if video.ReplyToMessageID != 7 {
			t.Errorf("ReplyToMessageID = %d, want 7", video.ReplyToMessageID)
		}
		if video.File != tgbotapi.FilePath("/tmp/abc123.mp4") {
			t.Errorf("File = %v", video.File)
		}
	})

	t.Run("audio probes missing duration", func(t *testing.T) {
		sender := &mockSender{}
		prober := &mockProber{info: &ffmpeg.MediaInfo{Duration: 200.2}}
		m := NewMessenger(sender, prober, testLogger())
		artifact := &domain.Artifact{Path: "/tmp/abc123.mp3", Title: "Song"}

		if err := m.SendMedia(context.Background(), 42, 7, domain.ModeAudio, artifact); err != nil {
			t.Fatalf("SendMedia failed: %v", err)
		}
		audio, ok := sender.sent[0].(tgbotapi.AudioConfig)
		if !ok {
			t.Fatalf("sent %T, want AudioConfig", sender.sent[0])
		}
		if audio.Title != "Song" {
			t.Errorf("Title = %q, want Song", audio.Title)
		}
		if audio.Duration != 200 {
			t.Errorf("Duration = %d, want 200", audio.Duration)
		}
		if prober.calls != 1 {
			t.Errorf("prober calls = %d, want 1", prober.calls)
		}
	})

	t.Run("probe failure is not fatal", func(t *testing.T) {
		sender := &mockSender{}
		prober := &mockProber{err: errors.New("ffprobe: exit status 1")}
		m := NewMessenger(sender, prober, testLogger())

		err := m.SendMedia(context.Background(), 42, 7, domain.ModeVideo, &domain.Artifact{Path: "/tmp/x.mp4"})
		if err != nil {
			t.Fatalf("SendMedia failed: %v", err)
		}
		if sender.sent[0].(tgbotapi.VideoConfig).Duration != 0 {
			t.Error("Duration should stay unset")
		}
	})
}

func TestMessenger_Errors(t *testing.T) {
	sendErr := errors.New("Bad Request: message to edit not found")
	m := NewMessenger(&mockSender{err: sendErr}, nil, testLogger())
	ctx := context.Background()

	if _, err := m.SendText(ctx, 1, 0, "x"); !errors.Is(err, sendErr) {
		t.Errorf("SendText error = %v", err)
	}
	if err := m.EditText(ctx, 1, 2, "x"); !errors.Is(err, sendErr) {
		t.Errorf("EditText error = %v", err)
	}
	if err := m.Delete(ctx, 1, 2); !errors.Is(err, sendErr) {
		t.Errorf("Delete error = %v", err)
	}
	if err := m.SendMedia(ctx, 1, 2, domain.ModeVideo, &domain.Artifact{Path: "x"}); !errors.Is(err, sendErr) {
		t.Errorf("SendMedia error = %v", err)
	}
}

func TestMessenger_CanceledContext(t *testing.T) {
	sender := &mockSender{}
	m := NewMessenger(sender, nil, testLogger())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := m.SendText(ctx, 1, 0, "x"); !errors.Is(err, context.Canceled) {
		t.Errorf("SendText error = %v, want context.Canceled", err)
	}
	if err := m.SendMedia(ctx, 1, 0, domain.ModeAudio, &domain.Artifact{Path: "x"}); !errors.Is(err, context.Canceled) {
		t.Errorf("SendMedia error = %v, want context.Canceled", err)
	}
	if len(sender.sent) != 0 {
		t.Errorf("nothing should be sent, got %d", len(sender.sent))
	}
}
