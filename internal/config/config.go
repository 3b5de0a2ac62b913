package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all runtime settings. Values come from the environment, with
// .env loaded first when present.
type Config struct {
	DiscordToken string `env:"DISCORD_TOKEN,required"`
	StoragePath  string `env:"STORAGE_PATH" envDefault:"data/moltbot.json"`

	// Text generation backend: "pollinations" or "g4f:<model>".
	AIProvider string `env:"AI_PROVIDER" envDefault:"pollinations"`

	TavilyAPIKey string `env:"TAVILY_API_KEY"`

	BlueskyHost       string `env:"BLUESKY_HOST" envDefault:"https://bsky.social"`
	BlueskyIdentifier string `env:"BLUESKY_IDENTIFIER"`
	BlueskyPassword   string `env:"BLUESKY_APP_PASSWORD"`

	MoltbookHost   string `env:"MOLTBOOK_HOST"`
	MoltbookAPIKey string `env:"MOLTBOOK_API_KEY"`

	// Channels that get the full planning pipeline. DMs are always deep.
	DeepChannels []string `env:"DEEP_CHANNELS" envSeparator:","`
	// Users allowed to approve/reject directives and adjust cooldowns.
	OperatorIDs []string `env:"OPERATOR_IDS" envSeparator:","`

	// Minimum interval between posts, per public surface. Adjustable at
	// runtime through the operator commands; these are the startup values.
	CooldownBlueskyMin  int `env:"COOLDOWN_BLUESKY_MIN" envDefault:"90"`
	CooldownMoltbookMin int `env:"COOLDOWN_MOLTBOOK_MIN" envDefault:"60"`

	PersonaPath string `env:"PERSONA_PATH" envDefault:"data/persona.md"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	LogFile  string `env:"LOG_FILE"`
}

// New loads .env (if any) and parses the environment.
func New() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// SurfaceCooldowns returns the configured per-surface cooldown durations.
func (c *Config) SurfaceCooldowns() map[string]time.Duration {
	return map[string]time.Duration{
		"bluesky":  time.Duration(c.CooldownBlueskyMin) * time.Minute,
		"moltbook": time.Duration(c.CooldownMoltbookMin) * time.Minute,
	}
}
