package env

import (
	"minigames_backend/internal/config"

	"github.com/caarlos0/env/v11"
)

type pgConfig struct {
	Dsn string `env:"PG_DSN"`
}

func NewPGConfig() (config.PGConfig, error) {
	cfg, err := env.ParseAs[pgConfig]()
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (cfg *pgConfig) DSN() string {
	return cfg.Dsn
}
