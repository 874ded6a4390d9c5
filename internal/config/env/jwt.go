package env

import (
	"errors"
	"minigames_backend/internal/config"

	"github.com/caarlos0/env/v11"
)

type jwtConfig struct {
	AccessTokenSecret string `env:"ACCESS_TOKEN"`
}

func NewJWTConfig() (config.JWTConfig, error) {
	cfg, err := env.ParseAs[jwtConfig]()
	if err != nil {
		return nil, err
	}
	if len(cfg.AccessTokenSecret) == 0 {
		return nil, errors.New("access token secret key not found")
	}
	return &cfg, nil
}

func (j *jwtConfig) AccessTokenSecretKey() []byte {
	return []byte(j.AccessTokenSecret)
}
