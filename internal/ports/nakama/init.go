package nakama

import (
	"context"
	"database/sql"
	"strconv"
	"time"

	"github.com/heroiclabs/nakama-common/runtime"

	"partyhub/internal/bot"
	"partyhub/internal/config"
	"partyhub/internal/domain"
	"partyhub/internal/engine"
	"partyhub/internal/ports"
	"partyhub/internal/store"
)

// InitModule wires the session engine and RPC endpoints into the Nakama
// runtime.
func InitModule(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, initializer runtime.Initializer) error {
	env, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)

	configPath := "data/game_config.json"
	if v, ok := env["partyhub_config_path"]; ok && v != "" {
		configPath = v
	}
	if err := config.LoadGameConfig(configPath); err != nil {
		logger.Warn("InitModule: Could not load game config, using defaults: %v", err)
	}
	if err := bot.LoadIdentities("data/bot_identities.json"); err != nil {
		logger.Warn("InitModule: Could not load bot identities: %v", err)
	}

	cfg := config.GetGameConfig()
	applyEnvOverrides(cfg, env)

	eng := engine.New(engine.Config{
		LobbyTimeout: time.Duration(cfg.LobbySeconds) * time.Second,
		MinPlayers:   cfg.MinPlayers,
		TurnTimeout: func(kind domain.GameKind, difficulty domain.Difficulty) time.Duration {
			return time.Duration(cfg.TurnSecondsFor(string(difficulty))) * time.Second
		},
		BotsEnabled: cfg.BotsEnabled,
		BotMinDelay: time.Duration(cfg.BotMinDelaySeconds) * time.Second,
		BotMaxDelay: time.Duration(cfg.BotMaxDelaySeconds) * time.Second,
		Sessions:    store.NewSessionStore(),
		Leaderboard: store.NewLeaderboardStore(),
		Notifier:    NewChannelNotifier(nk, logger),
		Logger:      logger,
	})

	h := &handlers{
		engine: eng,
		gate:   ports.NewStaticGate(cfg.PremiumKinds, cfg.PremiumUsers),
	}
	if err := RegisterRPCs(initializer, h); err != nil {
		return err
	}

	logger.Info("partyhub module loaded.")
	return nil
}

// applyEnvOverrides lets the Nakama runtime environment tune the config
// without editing the data file.
func applyEnvOverrides(cfg *config.GameConfig, env map[string]string) {
	if v, ok := env["partyhub_bots_enabled"]; ok {
		cfg.BotsEnabled = v == "true"
	}
	if v, ok := env["partyhub_lobby_seconds"]; ok {
		if i, err := strconv.Atoi(v); err == nil && i > 0 {
			cfg.LobbySeconds = i
		}
	}
	if v, ok := env["partyhub_min_players"]; ok {
		if i, err := strconv.Atoi(v); err == nil && i > 1 {
			cfg.MinPlayers = i
		}
	}
	if v, ok := env["partyhub_bot_min_delay_sec"]; ok {
		if i, err := strconv.Atoi(v); err == nil && i > 0 {
			cfg.BotMinDelaySeconds = i
		}
	}
	if v, ok := env["partyhub_bot_max_delay_sec"]; ok {
		if i, err := strconv.Atoi(v); err == nil && i > 0 {
			cfg.BotMaxDelaySeconds = i
		}
	}
}
