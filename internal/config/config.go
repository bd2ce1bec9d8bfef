package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// GameConfig tunes session lifecycle timing and access gating.
type GameConfig struct {
	// LobbySeconds is the join window before a lobby is promoted or cancelled.
	LobbySeconds int `json:"lobby_seconds"`
	// MinPlayers is the quorum required when the lobby window expires.
	MinPlayers int `json:"min_players"`
	// TurnSeconds is the per-turn budget keyed by difficulty.
	TurnSeconds map[string]int `json:"turn_seconds"`
	// BotMinDelaySeconds / BotMaxDelaySeconds bound the automated opponent's
	// think delay.
	BotMinDelaySeconds int `json:"bot_min_delay_seconds"`
	BotMaxDelaySeconds int `json:"bot_max_delay_seconds"`
	// BotsEnabled allows solo sessions against an automated opponent.
	BotsEnabled bool `json:"bots_enabled"`
	// PremiumKinds lists game kinds restricted to PremiumUsers.
	PremiumKinds []string `json:"premium_kinds"`
	// PremiumUsers lists user ids allowed to start premium kinds.
	PremiumUsers []string `json:"premium_users"`
}

var (
	cfg      *GameConfig
	loadOnce sync.Once
	loadErr  error
)

// Default returns the built-in configuration used when no file is present.
func Default() *GameConfig {
	return &GameConfig{
		LobbySeconds: 20,
		MinPlayers:   2,
		TurnSeconds: map[string]int{
			"easy":   30,
			"medium": 20,
			"hard":   12,
		},
		BotMinDelaySeconds: 1,
		BotMaxDelaySeconds: 3,
		BotsEnabled:        true,
	}
}

// LoadGameConfig loads the game configuration from the given path.
func LoadGameConfig(path string) error {
	loadOnce.Do(func() {
		data, err := os.ReadFile(path)
		if err != nil {
			loadErr = fmt.Errorf("failed to read game config: %w", err)
			return
		}

		c := Default()
		if err := json.Unmarshal(data, c); err != nil {
			loadErr = fmt.Errorf("failed to unmarshal game config: %w", err)
			return
		}
		cfg = c
	})
	return loadErr
}

// GetGameConfig returns the global game configuration, falling back to the
// defaults when no file was loaded.
func GetGameConfig() *GameConfig {
	if cfg == nil {
		return Default()
	}
	return cfg
}

// TurnSecondsFor returns the per-turn budget for a difficulty, with a safe
// default for unknown keys.
func (c *GameConfig) TurnSecondsFor(difficulty string) int {
	if s, ok := c.TurnSeconds[difficulty]; ok && s > 0 {
		return s
	}
	return 30
}
