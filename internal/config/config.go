package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"esports-sim/internal/constants"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

const (
	FidelityFast     = "fast"
	FidelityDetailed = "detailed"
)

type Config struct {
	DBPath      string
	LogLevel    string
	RandomSeed  int64
	MapPool     []string
	SimFidelity string
	AdvanceDays int

	// competitions recorded in parallel; a save replays exactly from
	// RandomSeed only with 1, since new matchday entries of different
	// competitions otherwise interleave
	Workers int

	// team slug controlled by the user; empty starts a player career
	UserTeam string
}

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	seed, err := strconv.ParseInt(getEnv("RANDOM_SEED", "0"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid RANDOM_SEED: %w", err)
	}
	days, err := strconv.Atoi(getEnv("ADVANCE_DAYS", "7"))
	if err != nil {
		return nil, fmt.Errorf("invalid ADVANCE_DAYS: %w", err)
	}
	workers, err := strconv.Atoi(getEnv("WORKERS", "4"))
	if err != nil {
		return nil, fmt.Errorf("invalid WORKERS: %w", err)
	}

	cfg := &Config{
		DBPath:      getEnv("DB_PATH", "save.db"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		RandomSeed:  seed,
		MapPool:     splitList(getEnv("MAP_POOL", strings.Join(constants.DefaultMapPool, ","))),
		SimFidelity: getEnv("SIM_FIDELITY", FidelityFast),
		AdvanceDays: days,
		Workers:     workers,
		UserTeam:    getEnv("USER_TEAM", ""),
	}

	if len(cfg.MapPool) == 0 {
		return nil, fmt.Errorf("MAP_POOL must name at least one map")
	}
	if cfg.SimFidelity != FidelityFast && cfg.SimFidelity != FidelityDetailed {
		return nil, fmt.Errorf("SIM_FIDELITY must be %q or %q", FidelityFast, FidelityDetailed)
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}

	logger.Info().
		Str("db_path", cfg.DBPath).
		Str("log_level", cfg.LogLevel).
		Int64("random_seed", cfg.RandomSeed).
		Strs("map_pool", cfg.MapPool).
		Str("sim_fidelity", cfg.SimFidelity).
		Int("workers", cfg.Workers).
		Str("user_team", cfg.UserTeam).
		Msg("configuration loaded")

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

var Module = fx.Provide(Load)
