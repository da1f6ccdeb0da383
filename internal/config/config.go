package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the recognized option surface of the chat client. Values are
// read from the environment, optionally seeded from a .env file (see
// cmd.LoadEnvFile). Defaults mirror the shipped widget configuration.
type Config struct {
	// API settings.
	BaseURL       string        `env:"CHAT_BASE_URL" envDefault:"http://localhost:8000"`
	Timeout       time.Duration `env:"CHAT_TIMEOUT" envDefault:"30s"`
	RetryAttempts int           `env:"CHAT_RETRY_ATTEMPTS" envDefault:"3"` // advisory; only manual retry is implemented

	// Message limits.
	MaxMessageLength  int `env:"CHAT_MAX_MESSAGE_LENGTH" envDefault:"1000"`
	MaxMessageHistory int `env:"CHAT_MAX_MESSAGE_HISTORY" envDefault:"100"`

	// Presentation behavior.
	AutoScroll     bool `env:"CHAT_AUTO_SCROLL" envDefault:"true"`
	ShowTimestamps bool `env:"CHAT_SHOW_TIMESTAMPS" envDefault:"true"`
	ShowConfidence bool `env:"CHAT_SHOW_CONFIDENCE" envDefault:"true"`
	ShowSources    bool `env:"CHAT_SHOW_SOURCES" envDefault:"true"`

	// Widget chrome.
	Position string `env:"CHAT_WIDGET_POSITION" envDefault:"bottom-right"`
	Theme    string `env:"CHAT_WIDGET_THEME" envDefault:"auto"`
	Enabled  bool   `env:"CHAT_WIDGET_ENABLED" envDefault:"true"`
	Greeting string `env:"CHAT_GREETING" envDefault:"Hello! I'm your assistant for the robotics curriculum. How can I help you today?"`

	// Local persistence.
	DataDir string `env:"CHAT_DATA_DIR" envDefault:"./tutor-data"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("error parsing config from environment: %w", err)
	}

	if cfg.MaxMessageHistory <= 0 {
		return nil, fmt.Errorf("CHAT_MAX_MESSAGE_HISTORY must be positive, got %d", cfg.MaxMessageHistory)
	}
	if cfg.MaxMessageLength <= 0 {
		return nil, fmt.Errorf("CHAT_MAX_MESSAGE_LENGTH must be positive, got %d", cfg.MaxMessageLength)
	}

	return &cfg, nil
}
