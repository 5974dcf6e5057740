package config

import (
	"fmt"
	"os"
	"reflect"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Telegram  TelegramConfig  `yaml:"telegram"`
	Storage   StorageConfig   `yaml:"storage"`
	Extractor ExtractorConfig `yaml:"extractor"`
	Upload    UploadConfig    `yaml:"upload"`
	Delivery  DeliveryConfig  `yaml:"delivery"`
	Worker    WorkerConfig    `yaml:"worker"`
	Server    ServerConfig    `yaml:"server"`
	Log       LogConfig       `yaml:"log"`
}

// TelegramConfig holds bot API configuration.
type TelegramConfig struct {
	Token          string        `yaml:"token" envconfig:"BOT_TOKEN"`
	APIEndpoint    string        `yaml:"api_endpoint" envconfig:"TELEGRAM_API_ENDPOINT" default:"https://api.telegram.org/bot%s/%s"`
	PollTimeout    int           `yaml:"poll_timeout" envconfig:"TELEGRAM_POLL_TIMEOUT" default:"30"`
	RequestTimeout time.Duration `yaml:"request_timeout" envconfig:"TELEGRAM_REQUEST_TIMEOUT" default:"5m"`
	Debug          bool          `yaml:"debug" envconfig:"TELEGRAM_DEBUG" default:"false"`
}

// StorageConfig holds local filesystem configuration.
type StorageConfig struct {
	DownloadPath string `yaml:"download_path" envconfig:"DOWNLOAD_PATH" default:"downloads"`
	CookieFile   string `yaml:"cookie_file" envconfig:"COOKIE_FILE" default:"cookies.txt"`
}

// ExtractorConfig holds yt-dlp configuration.
type ExtractorConfig struct {
	Binary         string        `yaml:"binary" envconfig:"YTDLP_PATH" default:"yt-dlp"`
	FFprobePath    string        `yaml:"ffprobe_path" envconfig:"FFPROBE_PATH" default:"ffprobe"`
	CookieData     string        `yaml:"-" envconfig:"COOKIE_DATA"`
	Timeout        time.Duration `yaml:"timeout" envconfig:"EXTRACT_TIMEOUT" default:"15m"`
	VideoFormat    string        `yaml:"video_format" envconfig:"VIDEO_FORMAT" default:"bestvideo[ext=mp4]+bestaudio[ext=m4a]/best[ext=mp4]/best"`
	VideoContainer string        `yaml:"video_container" envconfig:"VIDEO_CONTAINER" default:"mp4"`
	AudioFormat    string        `yaml:"audio_format" envconfig:"AUDIO_FORMAT" default:"bestaudio/best"`
	AudioCodec     string        `yaml:"audio_codec" envconfig:"AUDIO_CODEC" default:"mp3"`
	AudioQuality   string        `yaml:"audio_quality" envconfig:"AUDIO_QUALITY" default:"192"`
	MaxFileSize    int64         `yaml:"max_file_size" envconfig:"EXTRACT_MAX_FILE_SIZE" default:"0"` // 0 = engine does not enforce
}

// UploadConfig holds GoFile configuration.
type UploadConfig struct {
	BaseURL          string        `yaml:"base_url" envconfig:"GOFILE_BASE_URL" default:"https://api.gofile.io"`
	UploadURL        string        `yaml:"upload_url" envconfig:"GOFILE_UPLOAD_URL" default:"https://{server}.gofile.io/uploadFile"`
	Token            string        `yaml:"-" envconfig:"GOFILE_TOKEN"`
	DiscoveryTimeout time.Duration `yaml:"discovery_timeout" envconfig:"GOFILE_DISCOVERY_TIMEOUT" default:"10s"`
	UploadTimeout    time.Duration `yaml:"upload_timeout" envconfig:"GOFILE_UPLOAD_TIMEOUT" default:"30m"`
}

// DeliveryConfig holds the inline vs link decision settings.
type DeliveryConfig struct {
	InlineLimit int64 `yaml:"inline_limit" envconfig:"INLINE_LIMIT" default:"51380224"` // 49MiB
	HistorySize int   `yaml:"history_size" envconfig:"DELIVERY_HISTORY_SIZE" default:"500"`
}

// WorkerConfig holds update dispatcher configuration.
type WorkerConfig struct {
	Count int `yaml:"count" envconfig:"WORKER_COUNT" default:"4"`
}

// ServerConfig holds admin HTTP server configuration.
type ServerConfig struct {
	Enabled      bool          `yaml:"enabled" envconfig:"SERVER_ENABLED" default:"true"`
	Host         string        `yaml:"host" envconfig:"SERVER_HOST" default:"0.0.0.0"`
	Port         int           `yaml:"port" envconfig:"SERVER_PORT" default:"8080"`
	APIKey       string        `yaml:"api_key" envconfig:"API_KEY"`
	ReadTimeout  time.Duration `yaml:"read_timeout" envconfig:"SERVER_READ_TIMEOUT" default:"30s"`
	WriteTimeout time.Duration `yaml:"write_timeout" envconfig:"SERVER_WRITE_TIMEOUT" default:"30s"`
}

// LogConfig holds logger configuration.
type LogConfig struct {
	Level  string `yaml:"level" envconfig:"LOG_LEVEL" default:"info"`
	Format string `yaml:"format" envconfig:"LOG_FORMAT" default:"json"`
}

// Load reads configuration from file and environment variables.
// Precedence is default tag, then file, then environment. A zero value in
// the file leaves the default in place.
func Load(configPath string) (*Config, error) {
	cfg := &Config{}

	// Defaults and environment variables
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}

	// Layer the YAML file under the environment if provided
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		file := &Config{}
		if err := yaml.Unmarshal(data, file); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
		mergeFile(reflect.ValueOf(cfg).Elem(), reflect.ValueOf(file).Elem())
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// mergeFile copies non-zero values from file into dst unless the field's
// environment variable is set.
func mergeFile(dst, file reflect.Value) {
	t := dst.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		d, f := dst.Field(i), file.Field(i)

		if field.Type.Kind() == reflect.Struct {
			mergeFile(d, f)
			continue
		}
		if key := field.Tag.Get("envconfig"); key != "" {
			if _, ok := os.LookupEnv(key); ok {
				continue
			}
		}
		if !f.IsZero() {
			d.Set(f)
		}
	}
}

// Validate checks that required configuration values are set.
func (c *Config) Validate() error {
	if c.Telegram.Token == "" {
		return fmt.Errorf("BOT_TOKEN is required")
	}
	if c.Storage.DownloadPath == "" {
		return fmt.Errorf("DOWNLOAD_PATH is required")
	}
	if c.Delivery.InlineLimit <= 0 {
		return fmt.Errorf("INLINE_LIMIT must be positive")
	}
	if c.Worker.Count <= 0 {
		return fmt.Errorf("WORKER_COUNT must be positive")
	}
	switch c.Log.Format {
	case "json", "text":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or text, got %q", c.Log.Format)
	}
	return nil
}

// Address returns the server address in host:port format.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
