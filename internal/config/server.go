package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// ServerConfig configures the standalone websocket server.
type ServerConfig struct {
	HTTPAddr       string        `env:"MYSTERY_HTTP_ADDR" envDefault:":8080"`
	LogLevel       string        `env:"MYSTERY_LOG_LEVEL" envDefault:"info"`
	LogJSON        bool          `env:"MYSTERY_LOG_JSON" envDefault:"false"`
	TicketSecret   string        `env:"MYSTERY_TICKET_SECRET"`
	TicketTTL      time.Duration `env:"MYSTERY_TICKET_TTL" envDefault:"12h"`
	AllowedOrigins []string      `env:"MYSTERY_ALLOWED_ORIGINS" envSeparator:","`
	GameConfigPath string        `env:"MYSTERY_GAME_CONFIG" envDefault:"data/game_config.json"`
	BotsPath       string        `env:"MYSTERY_BOT_IDENTITIES" envDefault:"data/bot_identities.json"`
}

// OriginAllowed reports whether a websocket upgrade from origin is accepted.
// An empty allow-list accepts every origin.
func (c ServerConfig) OriginAllowed(origin string) bool {
	if len(c.AllowedOrigins) == 0 {
		return true
	}
	for _, allowed := range c.AllowedOrigins {
		if strings.EqualFold(strings.TrimSpace(allowed), origin) {
			return true
		}
	}
	return false
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// LoadServerConfig reads the optional dotenv files, then the environment.
func LoadServerConfig(dotenvFiles ...string) (ServerConfig, error) {
	if len(dotenvFiles) == 0 {
		dotenvFiles = []string{".env"}
	}
	for _, file := range dotenvFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return ServerConfig{}, fmt.Errorf("load %s: %w", file, err)
		}
	}

	var c ServerConfig
	if err := ParseEnv(&c); err != nil {
		return ServerConfig{}, err
	}
	if c.TicketTTL <= 0 {
		return ServerConfig{}, fmt.Errorf("MYSTERY_TICKET_TTL must be positive, got %s", c.TicketTTL)
	}
	return c, nil
}
