package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"mysteryletter/internal/domain"
)

// GameConfig holds the tunables a deployment may change without a rebuild.
type GameConfig struct {
	// BotThinkDelayMs is how long a bot waits before acting on its turn.
	BotThinkDelayMs int  `json:"bot_think_delay_ms"`
	AutoDraw        bool `json:"auto_draw"`
	MaxParticipants int  `json:"max_participants"`
	MaxBots         int  `json:"max_bots"`
	LogCapacity     int  `json:"log_capacity"`
	TokensToWin     int  `json:"tokens_to_win"`
}

// DefaultGameConfig mirrors the rules baked into the domain package.
func DefaultGameConfig() GameConfig {
	return GameConfig{
		BotThinkDelayMs: 700,
		AutoDraw:        false,
		MaxParticipants: domain.MaxParticipants,
		MaxBots:         domain.MaxBots,
		LogCapacity:     domain.LogCapacity,
		TokensToWin:     domain.TokensToWin,
	}
}

// BotThinkDelay returns BotThinkDelayMs as a duration.
func (c GameConfig) BotThinkDelay() time.Duration {
	return time.Duration(c.BotThinkDelayMs) * time.Millisecond
}

// Validate rejects values the engine cannot honour.
func (c GameConfig) Validate() error {
	if c.BotThinkDelayMs < 0 {
		return fmt.Errorf("bot_think_delay_ms must not be negative: %d", c.BotThinkDelayMs)
	}
	if c.MaxParticipants != domain.MaxParticipants || c.MaxBots != domain.MaxBots ||
		c.LogCapacity != domain.LogCapacity || c.TokensToWin != domain.TokensToWin {
		return fmt.Errorf("table limits are fixed at %d seats, %d bots, %d log lines and %d tokens",
			domain.MaxParticipants, domain.MaxBots, domain.LogCapacity, domain.TokensToWin)
	}
	return nil
}

var (
	cfg      *GameConfig
	cfgMu    sync.RWMutex
	loadOnce sync.Once
	loadErr  error
)

// LoadGameConfig loads the game configuration from the given path.
// Fields missing from the file keep their defaults.
func LoadGameConfig(path string) error {
	loadOnce.Do(func() {
		data, err := os.ReadFile(path)
		if err != nil {
			loadErr = fmt.Errorf("failed to read game config: %w", err)
			return
		}

		c := DefaultGameConfig()
		if err := json.Unmarshal(data, &c); err != nil {
			loadErr = fmt.Errorf("failed to unmarshal game config: %w", err)
			return
		}
		if err := c.Validate(); err != nil {
			loadErr = fmt.Errorf("invalid game config: %w", err)
			return
		}
		cfgMu.Lock()
		cfg = &c
		cfgMu.Unlock()
	})
	return loadErr
}

// GetGameConfig returns the loaded game configuration, or the defaults when none was loaded.
func GetGameConfig() GameConfig {
	cfgMu.RLock()
	defer cfgMu.RUnlock()
	if cfg == nil {
		return DefaultGameConfig()
	}
	return *cfg
}
