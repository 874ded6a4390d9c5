package env

import (
	"minigames_backend/internal/config"
	"net"

	"github.com/caarlos0/env/v11"
)

type httpConfig struct {
	Host string `env:"HTTP_HOST" envDefault:"0.0.0.0"`
	Port string `env:"HTTP_PORT" envDefault:"8080"`
}

func NewHTTPConfig() (config.HTTPConfig, error) {
	cfg, err := env.ParseAs[httpConfig]()
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (cfg *httpConfig) Address() string {
	return net.JoinHostPort(cfg.Host, cfg.Port)
}
