// File path: internal/config/config.go
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config carries the process-wide settings resolved at startup. Values are
// read once from the environment and passed down explicitly; no component
// reads the environment on its own.
type Config struct {
	Addr         string
	DatabasePath string

	GitHubToken string

	OpenAIKey  string
	ChatModel  string
	EmbedModel string

	MaxAttempts    int
	RetryBaseDelay time.Duration

	CommitPullLimit int
	CommitPullDelay time.Duration
}

// Default returns the baseline configuration used when the environment
// provides no overrides.
func Default() Config {
	return Config{
		Addr:            ":8080",
		DatabasePath:    "data/repobrief.db",
		ChatModel:       "gpt-4o-mini",
		EmbedModel:      "text-embedding-3-small",
		MaxAttempts:     3,
		RetryBaseDelay:  2 * time.Second,
		CommitPullLimit: 20,
		CommitPullDelay: 2 * time.Second,
	}
}

// FromEnv overlays environment variables onto the defaults.
func FromEnv() Config {
	cfg := Default()
	if v := strings.TrimSpace(os.Getenv("REPOBRIEF_ADDR")); v != "" {
		cfg.Addr = v
	}
	if v := strings.TrimSpace(os.Getenv("REPOBRIEF_DB")); v != "" {
		cfg.DatabasePath = v
	}
	cfg.GitHubToken = strings.TrimSpace(os.Getenv("GITHUB_TOKEN"))
	cfg.OpenAIKey = strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
	if v := strings.TrimSpace(os.Getenv("OPENAI_CHAT_MODEL")); v != "" {
		cfg.ChatModel = v
	}
	if v := strings.TrimSpace(os.Getenv("OPENAI_EMBED_MODEL")); v != "" {
		cfg.EmbedModel = v
	}
	if v := strings.TrimSpace(os.Getenv("REPOBRIEF_COMMIT_LIMIT")); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			cfg.CommitPullLimit = parsed
		}
	}
	return cfg
}

// Validate reports configuration that cannot produce a working process.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return errors.New("listen address required")
	}
	if strings.TrimSpace(c.DatabasePath) == "" {
		return errors.New("database path required")
	}
	if c.MaxAttempts <= 0 {
		return errors.New("max attempts must be positive")
	}
	if c.CommitPullLimit <= 0 {
		return errors.New("commit pull limit must be positive")
	}
	return nil
}
