package env

import (
	"minigames_backend/internal/config"

	"github.com/caarlos0/env/v11"
)

type redisConfig struct {
	Address  string `env:"REDIS_ADDR"`
	Pass     string `env:"REDIS_PASSWORD"`
	FeedChan string `env:"REDIS_FEED_CHANNEL" envDefault:"minigames:feed"`
}

func NewRedisConfig() (config.RedisConfig, error) {
	cfg, err := env.ParseAs[redisConfig]()
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (cfg *redisConfig) Addr() string {
	return cfg.Address
}

func (cfg *redisConfig) Password() string {
	return cfg.Pass
}

func (cfg *redisConfig) Channel() string {
	return cfg.FeedChan
}
