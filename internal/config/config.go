// Package config loads process configuration from defaults, a .env file,
// the environment and command-line flags, in that order of precedence.
package config

import (
	"errors"
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// Extractor backends.
const (
	ExtractorSpark  = "spark"
	ExtractorOpenAI = "openai"
	ExtractorStub   = "stub"
)

// Config is the web process configuration.
type Config struct {
	Port           string        `env:"PORT"`
	Dev            bool          `env:"DEV"`
	LogLevel       string        `env:"LOG_LEVEL"`
	SettingsPath   string        `env:"WHEEL_SETTINGS"`
	SessionSecret  string        `env:"SESSION_SECRET"`
	SessionTTL     time.Duration `env:"SESSION_TTL"`
	SweepInterval  time.Duration `env:"SWEEP_INTERVAL"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`
	AnalyzeTimeout time.Duration `env:"ANALYZE_TIMEOUT"`
	HistoryLimit   int           `env:"HISTORY_LIMIT"`
	FontPath       string        `env:"FONT_PATH"`
	CORSOrigins    []string      `env:"CORS_ORIGINS" envSeparator:","`
	PGDSN          string        `env:"PG_DSN"`
	Extractor      string        `env:"EXTRACTOR"`

	Spark  SparkConfig
	OpenAI OpenAIConfig

	// Wheel is filled by Load from SettingsPath.
	Wheel *Settings
}

// SparkConfig holds the iFlytek Spark websocket credentials.
type SparkConfig struct {
	URL       string `env:"SPARK_URL"`
	AppID     string `env:"SPARK_APP_ID"`
	APIKey    string `env:"SPARK_API_KEY"`
	APISecret string `env:"SPARK_API_SECRET"`
	Domain    string `env:"SPARK_DOMAIN"`
}

// Configured reports whether all credentials are present.
func (c SparkConfig) Configured() bool {
	return c.AppID != "" && c.APIKey != "" && c.APISecret != ""
}

// OpenAIConfig holds the OpenAI-compatible provider settings.
type OpenAIConfig struct {
	APIKey  string `env:"OPENAI_API_KEY"`
	BaseURL string `env:"OPENAI_BASE_URL"`
	Model   string `env:"OPENAI_MODEL"`
}

// Defaults returns the configuration used when nothing overrides it.
func Defaults() Config {
	return Config{
		Port:           "8080",
		LogLevel:       "info",
		SessionSecret:  "change-me",
		SessionTTL:     24 * time.Hour,
		SweepInterval:  10 * time.Minute,
		RequestTimeout: 15 * time.Second,
		AnalyzeTimeout: 20 * time.Second,
		HistoryLimit:   20,
		CORSOrigins:    []string{"*"},
		Extractor:      ExtractorSpark,
		Spark: SparkConfig{
			URL:    "wss://spark-api.xf-yun.com/v4.0/chat",
			Domain: "4.0Ultra",
		},
		OpenAI: OpenAIConfig{
			Model: "gpt-4o-mini",
		},
	}
}

// Load builds the configuration. A missing .env file is not an error.
func Load(args []string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Defaults()
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	fs := flag.NewFlagSet("web", flag.ContinueOnError)
	fs.StringVar(&cfg.Port, "port", cfg.Port, "HTTP listen port")
	fs.BoolVar(&cfg.Dev, "dev", cfg.Dev, "development logging")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")
	fs.StringVar(&cfg.SettingsPath, "settings", cfg.SettingsPath, "wheel settings YAML file")
	fs.StringVar(&cfg.Extractor, "extractor", cfg.Extractor, "option extractor: spark, openai or stub")
	fs.StringVar(&cfg.PGDSN, "pg-dsn", cfg.PGDSN, "Postgres DSN for spin history (memory when empty)")
	fs.StringVar(&cfg.FontPath, "font", cfg.FontPath, "TrueType font for wheel.png labels")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg.Port = strings.TrimPrefix(strings.TrimSpace(cfg.Port), ":")
	cfg.Extractor = strings.ToLower(strings.TrimSpace(cfg.Extractor))
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	wheel, err := LoadSettings(cfg.SettingsPath)
	if err != nil {
		return nil, err
	}
	cfg.Wheel = wheel
	return &cfg, nil
}

// Validate checks the values the server cannot start without.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("config: port is empty")
	}
	switch c.Extractor {
	case ExtractorSpark, ExtractorOpenAI, ExtractorStub:
	default:
		return fmt.Errorf("config: unknown extractor %q", c.Extractor)
	}
	if c.SessionSecret == "" {
		return errors.New("config: SESSION_SECRET is empty")
	}
	if c.SessionTTL <= 0 {
		return errors.New("config: SESSION_TTL must be positive")
	}
	if c.HistoryLimit <= 0 {
		return errors.New("config: HISTORY_LIMIT must be positive")
	}
	return nil
}

// Addr is the listen address.
func (c *Config) Addr() string {
	return ":" + c.Port
}
