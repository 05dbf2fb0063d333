package config

import (
	"fmt"
	"time"

	"github.com/veranemoloko/post-downloader/internal/domain"
)

// Config holds all application configuration settings.
type Config struct {
	Environment string `envconfig:"ENV" default:"development"`

	HTTPPort    int           `envconfig:"HTTP_PORT" default:"8080"`
	HTTPTimeout time.Duration `envconfig:"HTTP_TIMEOUT" default:"15s"`

	FetchTimeout time.Duration `envconfig:"FETCH_TIMEOUT" default:"2m"`
	MaxFileSize  int64         `envconfig:"MAX_FILE_SIZE" default:"104857600"`
	UserAgent    string        `envconfig:"USER_AGENT" default:"post-downloader/1.0"`

	RetryCount  int           `envconfig:"RETRY_COUNT" default:"8"`
	RetryDelay  time.Duration `envconfig:"RETRY_DELAY" default:"100ms"`
	MaxParallel int           `envconfig:"MAX_PARALLEL" default:"0"`

	DownloadDir string `envconfig:"DOWNLOAD_DIR" default:"./downloads"`

	ApplyLetterboxing    bool `envconfig:"APPLY_LETTERBOXING" default:"false"`
	SaveTags             bool `envconfig:"SAVE_TAGS" default:"true"`
	RemoveTagUnderscores bool `envconfig:"REMOVE_TAG_UNDERSCORES" default:"true"`
	EscapeTagParentheses bool `envconfig:"ESCAPE_TAG_PARENTHESES" default:"true"`

	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`
}

// Settings returns the default batch settings.
func (c *Config) Settings() domain.Settings {
	return domain.Settings{
		ApplyLetterboxing:    c.ApplyLetterboxing,
		SaveTags:             c.SaveTags,
		RemoveTagUnderscores: c.RemoveTagUnderscores,
		EscapeTagParentheses: c.EscapeTagParentheses,
	}
}

// Validate checks the configuration for invalid or missing values.
// Returns an error describing the first invalid setting found.
func (c *Config) Validate() error {
	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}

	if c.RetryCount < 0 {
		return fmt.Errorf("retry count cannot be negative: %d", c.RetryCount)
	}

	if c.RetryDelay < 0 {
		return fmt.Errorf("retry delay cannot be negative: %s", c.RetryDelay)
	}

	if c.MaxParallel < 0 {
		return fmt.Errorf("max parallel cannot be negative: %d", c.MaxParallel)
	}

	if c.MaxFileSize <= 0 {
		return fmt.Errorf("max file size must be positive: %d", c.MaxFileSize)
	}

	if c.FetchTimeout <= 0 {
		return fmt.Errorf("fetch timeout must be positive: %s", c.FetchTimeout)
	}

	if c.DownloadDir == "" {
		return fmt.Errorf("download directory cannot be empty")
	}

	return nil
}
