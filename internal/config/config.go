// Package config manages the redlens configuration file
// (~/.config/redlens/config.toml) and its environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds user-wide settings.
type Config struct {
	Provider   string           `toml:"provider"`
	Model      string           `toml:"model"`
	Keys       KeysConfig       `toml:"keys"`
	Ollama     OllamaConfig     `toml:"ollama"`
	Budget     BudgetConfig     `toml:"budget"`
	Reddit     RedditConfig     `toml:"reddit"`
	Cache      CacheConfig      `toml:"cache"`
	Generation GenerationConfig `toml:"generation"`
	Log        LogConfig        `toml:"log"`
}

type KeysConfig struct {
	Anthropic string `toml:"anthropic"`
	OpenAI    string `toml:"openai"`
	Gemini    string `toml:"gemini"`
	Groq      string `toml:"groq"`
}

type OllamaConfig struct {
	Host string `toml:"host"`
}

// BudgetConfig sets the token limits of the context pipeline.
type BudgetConfig struct {
	// ContextTokens is the model's input window.
	ContextTokens int `toml:"context_tokens"`
	// ReservedTokens is held back from the window for the prompt framing.
	ReservedTokens int `toml:"reserved_tokens"`
	// ItemTokens is the ceiling an oversized item is truncated to.
	ItemTokens int `toml:"item_tokens"`
	// SummarizationThreshold is the item size above which truncation applies.
	SummarizationThreshold int `toml:"summarization_threshold"`
}

// PackBudget is the token budget left for the packed context.
func (b BudgetConfig) PackBudget() int { return b.ContextTokens - b.ReservedTokens }

type RedditConfig struct {
	BaseURL        string `toml:"base_url"`
	UserAgent      string `toml:"user_agent"`
	MaxItems       int    `toml:"max_items"`
	RequestDelayMS int    `toml:"request_delay_ms"`
}

// RequestDelay returns the pause between consecutive Reddit requests.
func (r RedditConfig) RequestDelay() time.Duration {
	return time.Duration(r.RequestDelayMS) * time.Millisecond
}

type CacheConfig struct {
	// Backend is one of "sqlite", "file" or "memory".
	Backend string `toml:"backend"`
	Dir     string `toml:"dir"`
}

type GenerationConfig struct {
	SummaryMaxTokens   int     `toml:"summary_max_tokens"`
	SummaryTemperature float64 `toml:"summary_temperature"`
	PersonaMaxTokens   int     `toml:"persona_max_tokens"`
	PersonaTemperature float64 `toml:"persona_temperature"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Provider: "groq",
		Model:    "llama-3.1-8b-instant",
		Ollama: OllamaConfig{
			Host: "http://localhost:11434",
		},
		Budget: BudgetConfig{
			ContextTokens:          7000,
			ReservedTokens:         800,
			ItemTokens:             300,
			SummarizationThreshold: 300,
		},
		Reddit: RedditConfig{
			BaseURL:        "https://www.reddit.com",
			UserAgent:      "redlens/1.0 (persona analysis)",
			MaxItems:       20,
			RequestDelayMS: 1500,
		},
		Cache: CacheConfig{
			Backend: "sqlite",
			Dir:     DefaultCacheDir(),
		},
		Generation: GenerationConfig{
			SummaryMaxTokens:   500,
			SummaryTemperature: 0.2,
			PersonaMaxTokens:   1200,
			PersonaTemperature: 0.3,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// DefaultCacheDir returns ~/.cache/redlens, or a relative directory when the
// home directory cannot be determined.
func DefaultCacheDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "reddit_cache"
	}
	return filepath.Join(home, ".cache", "redlens")
}

// GlobalConfigPath returns the path to the global config file.
func GlobalConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "redlens", "config.toml"), nil
}

// Load reads the config at path, or the global config when path is empty,
// and applies environment overrides. A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		p, err := GlobalConfigPath()
		if err != nil {
			applyEnv(&cfg)
			return cfg, nil
		}
		path = p
	}

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("config: load: %w", err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return cfg, fmt.Errorf("config: stat: %w", err)
	}

	applyEnv(&cfg)
	return cfg, nil
}

// applyEnv lets environment variables override file values.
func applyEnv(cfg *Config) {
	if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" {
		cfg.Keys.Anthropic = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.Keys.OpenAI = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		cfg.Keys.Gemini = v
	}
	if v := os.Getenv("GROQ_API_KEY"); v != "" {
		cfg.Keys.Groq = v
	}
	if v := os.Getenv("REDLENS_PROVIDER"); v != "" {
		cfg.Provider = v
	}
}

// APIKey returns the key configured for provider, if any.
func (c Config) APIKey(provider string) string {
	switch strings.ToLower(provider) {
	case "claude", "anthropic":
		return c.Keys.Anthropic
	case "openai", "gpt":
		return c.Keys.OpenAI
	case "gemini":
		return c.Keys.Gemini
	case "groq":
		return c.Keys.Groq
	default:
		return ""
	}
}

// Validate checks that the budgets are usable.
func (c Config) Validate() error {
	b := c.Budget
	switch {
	case b.ContextTokens <= 0:
		return fmt.Errorf("config: budget.context_tokens must be positive, got %d", b.ContextTokens)
	case b.ReservedTokens < 0 || b.ReservedTokens >= b.ContextTokens:
		return fmt.Errorf("config: budget.reserved_tokens must be in [0, %d), got %d", b.ContextTokens, b.ReservedTokens)
	case b.ItemTokens <= 0:
		return fmt.Errorf("config: budget.item_tokens must be positive, got %d", b.ItemTokens)
	case b.SummarizationThreshold <= 0:
		return fmt.Errorf("config: budget.summarization_threshold must be positive, got %d", b.SummarizationThreshold)
	case c.Reddit.MaxItems <= 0:
		return fmt.Errorf("config: reddit.max_items must be positive, got %d", c.Reddit.MaxItems)
	case c.Reddit.RequestDelayMS < 0:
		return fmt.Errorf("config: reddit.request_delay_ms must not be negative")
	}
	return nil
}

// Save writes cfg to path, or to the global config path when path is empty.
func Save(path string, cfg Config) error {
	if path == "" {
		p, err := GlobalConfigPath()
		if err != nil {
			return err
		}
		path = p
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("config: mkdir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("config: create: %w", err)
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}
