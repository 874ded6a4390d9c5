package config

import (
	"minigames_backend/internal/model"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

func Load(path string) error {
	err := godotenv.Load(path)
	if err != nil {
		return err
	}
	return nil
}

type WalletConfig interface {
	InitialBalance() int64
	// MaxBet верхняя граница ставки, при ней выплаты не переполняют int64
	MaxBet() int64
}

type ReelConfig interface {
	JackpotMultiplier() int64
	SpinDuration() time.Duration
	DefaultTheme() string
	Themes() map[string][]string
}

type AscentConfig interface {
	TickPeriod() time.Duration
	TickIncrement() decimal.Decimal
	BustProbability() float64
	AbandonTimeout() time.Duration
}

type GridConfig interface {
	HazardDensity() float64
	DefaultBet() int64
	SafeMultiplier() decimal.Decimal
	ResetDelay() time.Duration
	IdleTimeout() time.Duration
}

type StatsConfig interface {
	WindowSize() int
}

type GameConfig interface {
	Wallet() WalletConfig
	Reel() ReelConfig
	Ascent() AscentConfig
	Grid() GridConfig
	Stats() StatsConfig
	// Policy вероятностная политика для генератора исходов
	Policy() model.Policy
}

type HTTPConfig interface {
	Address() string
}

type PGConfig interface {
	// DSN пустой - данные хранятся в памяти
	DSN() string
}

type RedisConfig interface {
	// Addr пустой - события не дублируются в redis
	Addr() string
	Password() string
	Channel() string
}

type JWTConfig interface {
	AccessTokenSecretKey() []byte
}

type RuntimeConfig interface {
	LogMode() string
	// RNGSeed задан - исходы воспроизводимы (только для отладки и тестов)
	RNGSeed() (uint64, bool)
	GameConfigPath() string
}
