package config

import (
	"fmt"
	"strings"
	"time"
)

// AppConfig holds application-level settings.
type AppConfig struct {
	LogLevel string `mapstructure:"log_level"`
}

// SourceConfig controls the tracked account and the fetch window.
type SourceConfig struct {
	BearerToken string `mapstructure:"bearer_token"`
	BaseURL     string `mapstructure:"base_url"`
	Account     string `mapstructure:"account"`     // handle without the @
	MaxResults  int    `mapstructure:"max_results"` // fetch window size
}

// TelegramConfig controls the destination chat.
type TelegramConfig struct {
	Token          string `mapstructure:"token"`
	ChatID         int64  `mapstructure:"chat_id"`
	ThreadID       int    `mapstructure:"thread_id"`
	Format         string `mapstructure:"format"` // "plain" or "rich"
	DisablePreview bool   `mapstructure:"disable_preview"`
}

// RedisConfig holds redis connection settings.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// WatermarkConfig selects the backend persisting the last-delivered post id.
type WatermarkConfig struct {
	Backend string `mapstructure:"backend"` // redis, sqlite, file, memory
	Path    string `mapstructure:"path"`    // sqlite/file backends
}

// PollConfig controls the serve-mode trigger and the per-run budget.
type PollConfig struct {
	Schedule  string `mapstructure:"schedule"`   // cron spec or "@every 30m"
	RunBudget string `mapstructure:"run_budget"` // duration string, e.g., "45s"
	RetryMax  int    `mapstructure:"retry_max"`  // whole-run retries on transient errors
	RetryBase string `mapstructure:"retry_base"` // first backoff delay
}

// DeliveryConfig controls pacing and message sizing.
type DeliveryConfig struct {
	Pace      string `mapstructure:"pace"`       // delay between consecutive sends
	TextLimit int    `mapstructure:"text_limit"` // rune budget before condensing
}

// OpenAIConfig enables the optional summarizer for over-long posts.
type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
}

// Config is the top-level configuration structure.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Source    SourceConfig    `mapstructure:"source"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Watermark WatermarkConfig `mapstructure:"watermark"`
	Poll      PollConfig      `mapstructure:"poll"`
	Delivery  DeliveryConfig  `mapstructure:"delivery"`
	OpenAI    OpenAIConfig    `mapstructure:"openai"`
}

// FillDefaults applies default values if not provided.
func (c *Config) FillDefaults() {
	if c.App.LogLevel == "" {
		c.App.LogLevel = "info"
	}
	if c.Source.BaseURL == "" {
		c.Source.BaseURL = "https://api.twitter.com/2"
	}
	if c.Source.MaxResults == 0 {
		// Small on purpose: window size times polling cadence has to stay
		// inside the source's monthly request budget.
		c.Source.MaxResults = 5
	}
	if c.Telegram.Format == "" {
		c.Telegram.Format = "rich"
	}
	if c.Redis.Addr == "" {
		c.Redis.Addr = "127.0.0.1:6379"
	}
	if c.Watermark.Backend == "" {
		c.Watermark.Backend = "file"
	}
	if c.Watermark.Path == "" {
		switch c.Watermark.Backend {
		case "sqlite":
			c.Watermark.Path = "./postrelay.db"
		case "file":
			c.Watermark.Path = "./watermark.yaml"
		}
	}
	if c.Poll.Schedule == "" {
		c.Poll.Schedule = "@every 30m"
	}
	if c.Poll.RunBudget == "" {
		c.Poll.RunBudget = "45s"
	}
	if c.Poll.RetryMax == 0 {
		c.Poll.RetryMax = 2
	}
	if c.Poll.RetryBase == "" {
		c.Poll.RetryBase = "5s"
	}
	if c.Delivery.Pace == "" {
		c.Delivery.Pace = "2s"
	}
	if c.Delivery.TextLimit == 0 {
		c.Delivery.TextLimit = 3500
	}
}

// Validate reports missing required settings. A validation failure is fatal:
// no run is attempted.
func (c *Config) Validate() error {
	var missing []string
	if strings.TrimSpace(c.Source.BearerToken) == "" {
		missing = append(missing, "source.bearer_token")
	}
	if strings.TrimSpace(c.Source.Account) == "" {
		missing = append(missing, "source.account")
	}
	if strings.TrimSpace(c.Telegram.Token) == "" {
		missing = append(missing, "telegram.token")
	}
	if c.Telegram.ChatID == 0 {
		missing = append(missing, "telegram.chat_id")
	}
	if len(missing) > 0 {
		return fmt.Errorf("config: missing required settings: %s", strings.Join(missing, ", "))
	}
	if c.Source.MaxResults < 1 {
		return fmt.Errorf("config: source.max_results must be positive, got %d", c.Source.MaxResults)
	}
	switch c.Watermark.Backend {
	case "redis", "memory":
	case "sqlite", "file":
		if strings.TrimSpace(c.Watermark.Path) == "" {
			return fmt.Errorf("config: watermark.path required for backend %q", c.Watermark.Backend)
		}
	default:
		return fmt.Errorf("config: unknown watermark backend %q", c.Watermark.Backend)
	}
	switch c.Telegram.Format {
	case "plain", "rich":
	default:
		return fmt.Errorf("config: telegram.format must be \"plain\" or \"rich\", got %q", c.Telegram.Format)
	}
	for name, raw := range map[string]string{
		"poll.run_budget": c.Poll.RunBudget,
		"poll.retry_base": c.Poll.RetryBase,
		"delivery.pace":   c.Delivery.Pace,
	} {
		if _, err := time.ParseDuration(raw); err != nil {
			return fmt.Errorf("config: invalid duration for %s: %w", name, err)
		}
	}
	return nil
}
