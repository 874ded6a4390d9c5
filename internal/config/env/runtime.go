package env

import (
	"fmt"
	"minigames_backend/internal/config"
	"strconv"

	"github.com/caarlos0/env/v11"
)

type runtimeConfig struct {
	Mode       string `env:"LOG_MODE" envDefault:"production"`
	Seed       string `env:"RNG_SEED"`
	GameConfig string `env:"GAME_CONFIG" envDefault:"config.yaml"`

	seed    uint64
	hasSeed bool
}

func NewRuntimeConfig() (config.RuntimeConfig, error) {
	cfg, err := env.ParseAs[runtimeConfig]()
	if err != nil {
		return nil, err
	}
	if cfg.Seed != "" {
		cfg.seed, err = strconv.ParseUint(cfg.Seed, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid RNG_SEED: %w", err)
		}
		cfg.hasSeed = true
	}
	return &cfg, nil
}

func (cfg *runtimeConfig) LogMode() string {
	return cfg.Mode
}

func (cfg *runtimeConfig) RNGSeed() (uint64, bool) {
	return cfg.seed, cfg.hasSeed
}

func (cfg *runtimeConfig) GameConfigPath() string {
	return cfg.GameConfig
}
