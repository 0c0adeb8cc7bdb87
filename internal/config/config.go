package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all runtime settings, populated from the environment.
// A .env file in the working directory is honored when present.
type Config struct {
	DiscordToken string `env:"DISCORD_TOKEN,required"`
	Prefix       string `env:"COMMAND_PREFIX" envDefault:"!"`
	StoragePath  string `env:"STORAGE_PATH" envDefault:"datastore.json"`
	LogLevel     string `env:"LOG_LEVEL" envDefault:"info"`
	LogFile      string `env:"LOG_FILE"`

	OSRSHiscoresURL string `env:"OSRS_HISCORES_URL" envDefault:"https://secure.runescape.com/m=hiscore_oldschool"`
	CODApiURL       string `env:"COD_API_URL" envDefault:"https://api.tracker.gg/api/v2/modern-warfare"`
	ValorantApiURL  string `env:"VALORANT_API_URL" envDefault:"https://api.henrikdev.xyz/valorant/v1"`
	ValorantApiKey  string `env:"VALORANT_API_KEY"`

	LookupTimeout  time.Duration `env:"LOOKUP_TIMEOUT" envDefault:"20s"`
	MaxQueryLength int           `env:"MAX_QUERY_LENGTH" envDefault:"30"`
	TablePageSize  int           `env:"TABLE_PAGE_SIZE" envDefault:"5"`
}

// New loads configuration from .env (if present) and the environment.
func New() (*Config, error) {
	// Missing .env is fine, the environment may carry everything already.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}
