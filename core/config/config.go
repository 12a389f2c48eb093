package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// TelegramConfig holds Telegram bot related settings.
type TelegramConfig struct {
	Token   string `yaml:"token" envconfig:"BOT_TOKEN"`
	AdminID int64  `yaml:"admin_id" envconfig:"TELEGRAM_ADMIN_ID"`
	RunMode string `yaml:"run_mode" envconfig:"TELEGRAM_RUN_MODE"`
	// LongPollTimeoutSeconds defines long polling timeout; 0 -> default
	LongPollTimeoutSeconds int `yaml:"longpoll_timeout_seconds" envconfig:"TELEGRAM_LONGPOLL_TIMEOUT_SECONDS"`
}

// WebhookConfig specifies webhook settings.
type WebhookConfig struct {
	URL    string `yaml:"url" envconfig:"WEBHOOK_URL"`
	Listen string `yaml:"listen" envconfig:"WEBHOOK_LISTEN"`
	Port   int    `yaml:"port" envconfig:"WEBHOOK_PORT"`
}

// LoggingConfig defines logging related configuration.
type LoggingConfig struct {
	Level       string `yaml:"level"`
	Format      string `yaml:"format"`
	KeysOrder   string `yaml:"keys_order"`
	DebugSample string `yaml:"debug_sample"`
	Dir         string `yaml:"dir"`
	BotFile     string `yaml:"bot_file"`
	// Profile indicates environment profile such as "debug" or "prod".
	Profile string `yaml:"profile"`
}

const (
	// RunModeWebhook selects webhook mode for Telegram updates.
	RunModeWebhook = "webhook"
	// RunModeLongpoll selects long-polling mode for Telegram updates.
	RunModeLongpoll = "longpoll"
)

// RateLimitConfig holds settings for per-user rate limiting.
type RateLimitConfig struct {
	IntervalMS int `yaml:"interval_ms" envconfig:"RATE_LIMIT_INTERVAL_MS"`
}

// BotConfig carries the conversion limits and session policy.
type BotConfig struct {
	// MaxImages bounds how many images a session may buffer at once.
	MaxImages int `yaml:"max_images" envconfig:"BOT_MAX_IMAGES"`
	// MaxDocumentMB bounds the assembled PDF size in MiB.
	MaxDocumentMB int `yaml:"max_document_mb" envconfig:"BOT_MAX_DOCUMENT_MB"`
	// SessionTTLHours is the idle window after which a session expires.
	SessionTTLHours int `yaml:"session_ttl_hours" envconfig:"BOT_SESSION_TTL_HOURS"`
	// ImageBoundPx caps the longer side of a stored image.
	ImageBoundPx int `yaml:"image_bound_px" envconfig:"BOT_IMAGE_BOUND_PX"`
	// JPEGQuality is the re-encode quality for stored images.
	JPEGQuality int `yaml:"jpeg_quality" envconfig:"BOT_JPEG_QUALITY"`
	// PageDPI converts image pixels to physical page units.
	PageDPI int `yaml:"page_dpi" envconfig:"BOT_PAGE_DPI"`
	// SweepSchedule optionally enables a periodic session sweep
	// (standard cron expression). Empty keeps lazy per-access expiry only.
	SweepSchedule string `yaml:"sweep_schedule" envconfig:"BOT_SWEEP_SCHEDULE"`
	// HealthListen is the listen address of the liveness endpoint.
	HealthListen string `yaml:"health_listen" envconfig:"BOT_HEALTH_LISTEN"`
}

// Config aggregates the configuration of the bot process.
type Config struct {
	Telegram  TelegramConfig  `yaml:"telegram"`
	Webhook   WebhookConfig   `yaml:"webhook"`
	Logging   LoggingConfig   `yaml:"logging"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Bot       BotConfig       `yaml:"bot"`
}

// Load reads configuration from a YAML file and environment variables.
// An empty path skips the file and relies on environment only.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env: %w", err)
	}

	if err := Normalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize performs basic validation of required configuration fields and adjusts defaults.
func Normalize(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}

	if cfg.Telegram.Token == "" {
		return fmt.Errorf("telegram token is required")
	}

	rm := strings.ToLower(strings.TrimSpace(cfg.Telegram.RunMode))
	if rm == "" {
		rm = RunModeLongpoll
	}
	if rm == "polling" { // accept alias
		rm = RunModeLongpoll
	}
	switch rm {
	case RunModeWebhook:
		if strings.TrimSpace(cfg.Webhook.URL) == "" {
			return fmt.Errorf("webhook.url is required when telegram.run_mode is 'webhook'")
		}
		if strings.TrimSpace(cfg.Webhook.Listen) == "" {
			return fmt.Errorf("webhook.listen is required when telegram.run_mode is 'webhook'")
		}
		if cfg.Webhook.Port <= 0 {
			return fmt.Errorf("webhook.port must be > 0 when telegram.run_mode is 'webhook'")
		}
	case RunModeLongpoll:
		if cfg.Telegram.LongPollTimeoutSeconds < 0 {
			return fmt.Errorf("telegram.longpoll_timeout_seconds must be >= 0")
		}
	default:
		return fmt.Errorf("invalid telegram.run_mode %q; allowed: webhook, longpoll", cfg.Telegram.RunMode)
	}
	cfg.Telegram.RunMode = rm

	if cfg.RateLimit.IntervalMS < 0 {
		return fmt.Errorf("rate_limit.interval_ms must be >= 0")
	}

	if cfg.Bot.MaxImages < 0 || cfg.Bot.MaxDocumentMB < 0 || cfg.Bot.SessionTTLHours < 0 {
		return fmt.Errorf("bot limits must be >= 0")
	}
	if cfg.Bot.MaxImages == 0 {
		cfg.Bot.MaxImages = 50
	}
	if cfg.Bot.MaxDocumentMB == 0 {
		cfg.Bot.MaxDocumentMB = 45
	}
	if cfg.Bot.SessionTTLHours == 0 {
		cfg.Bot.SessionTTLHours = 24
	}
	if cfg.Bot.ImageBoundPx <= 0 {
		cfg.Bot.ImageBoundPx = 1200
	}
	if cfg.Bot.JPEGQuality <= 0 || cfg.Bot.JPEGQuality > 100 {
		cfg.Bot.JPEGQuality = 85
	}
	if cfg.Bot.PageDPI <= 0 {
		cfg.Bot.PageDPI = 96
	}
	if strings.TrimSpace(cfg.Bot.HealthListen) == "" {
		cfg.Bot.HealthListen = ":8081"
	}
	return nil
}
