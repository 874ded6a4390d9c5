package env

import (
	"fmt"
	"math"
	"minigames_backend/internal/config"
	"minigames_backend/internal/model"
	"os"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Значения по умолчанию взяты из исходной версии игр
const (
	defaultInitialBalance    = 1000
	defaultMaxBet            = 1_000_000
	defaultJackpotMultiplier = 10
	defaultSpinDuration      = time.Second
	defaultTheme             = "fruits"
	defaultTickPeriod        = 50 * time.Millisecond
	defaultTickIncrement     = "0.01"
	defaultBustProbability   = 0.02
	defaultAbandonTimeout    = 30 * time.Second
	defaultHazardDensity     = 0.2
	defaultGridBet           = 100
	defaultSafeMultiplier    = "1.5"
	defaultResetDelay        = 2 * time.Second
	defaultIdleTimeout       = 10 * time.Minute
	defaultStatsWindow       = 500
)

// maxPayout предел выплаты и начального баланса, в 1024 раза ниже MaxInt64
var maxPayout = decimal.NewFromInt(math.MaxInt64 / 1024)

var defaultThemes = map[string][]string{
	"fruits": {"🍒", "🍋", "🍊", "🍇", "🍉", "⭐"},
	"fish":   {"🐠", "🐟", "🐡", "🦈", "🐙", "⭐"},
	"dog":    {"🐶", "🐕", "🦴", "🎾", "🏆", "⭐"},
}

// yamlGame структура файла config.yaml
type yamlGame struct {
	Wallet struct {
		InitialBalance *int64 `yaml:"initial_balance"`
		MaxBet         *int64 `yaml:"max_bet"`
	} `yaml:"wallet"`
	Reel struct {
		JackpotMultiplier *int64              `yaml:"jackpot_multiplier"`
		SpinDuration      string              `yaml:"spin_duration"`
		DefaultTheme      string              `yaml:"default_theme"`
		Themes            map[string][]string `yaml:"themes"`
	} `yaml:"reel"`
	Ascent struct {
		TickPeriod      string   `yaml:"tick_period"`
		TickIncrement   string   `yaml:"tick_increment"`
		BustProbability *float64 `yaml:"bust_probability"`
		AbandonTimeout  string   `yaml:"abandon_timeout"`
	} `yaml:"ascent"`
	Grid struct {
		HazardDensity  *float64 `yaml:"hazard_density"`
		DefaultBet     *int64   `yaml:"default_bet"`
		SafeMultiplier string   `yaml:"safe_multiplier"`
		ResetDelay     string   `yaml:"reset_delay"`
		IdleTimeout    string   `yaml:"idle_timeout"`
	} `yaml:"grid"`
	Stats struct {
		WindowSize *int `yaml:"window_size"`
	} `yaml:"stats"`
}

type gameConfig struct {
	wallet walletConfig
	reel   reelConfig
	ascent ascentConfig
	grid   gridConfig
	stats  statsConfig
}

type walletConfig struct {
	initialBalance int64
	maxBet         int64
}

type reelConfig struct {
	jackpotMultiplier int64
	spinDuration      time.Duration
	defaultTheme      string
	themes            map[string][]string
}

type ascentConfig struct {
	tickPeriod      time.Duration
	tickIncrement   decimal.Decimal
	bustProbability float64
	abandonTimeout  time.Duration
}

type gridConfig struct {
	hazardDensity  float64
	defaultBet     int64
	safeMultiplier decimal.Decimal
	resetDelay     time.Duration
	idleTimeout    time.Duration
}

type statsConfig struct {
	windowSize int
}

// NewGameConfigFromYAML читает политику игр из файла
func NewGameConfigFromYAML(path string) (config.GameConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read game config: %w", err)
	}
	return ParseGameConfig(data)
}

// ParseGameConfig разбирает yaml, отсутствующие ключи берутся по умолчанию
func ParseGameConfig(data []byte) (config.GameConfig, error) {
	var raw yamlGame
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse game config: %w", err)
	}

	cfg := defaultGameConfig()
	var err error

	if raw.Wallet.InitialBalance != nil {
		cfg.wallet.initialBalance = *raw.Wallet.InitialBalance
	}
	if raw.Wallet.MaxBet != nil {
		cfg.wallet.maxBet = *raw.Wallet.MaxBet
	}

	if raw.Reel.JackpotMultiplier != nil {
		cfg.reel.jackpotMultiplier = *raw.Reel.JackpotMultiplier
	}
	if cfg.reel.spinDuration, err = parseDuration(raw.Reel.SpinDuration, cfg.reel.spinDuration); err != nil {
		return nil, err
	}
	if len(raw.Reel.Themes) > 0 {
		cfg.reel.themes = raw.Reel.Themes
	}
	if raw.Reel.DefaultTheme != "" {
		cfg.reel.defaultTheme = raw.Reel.DefaultTheme
	}

	if cfg.ascent.tickPeriod, err = parseDuration(raw.Ascent.TickPeriod, cfg.ascent.tickPeriod); err != nil {
		return nil, err
	}
	if cfg.ascent.tickIncrement, err = parseDecimal(raw.Ascent.TickIncrement, cfg.ascent.tickIncrement); err != nil {
		return nil, err
	}
	if raw.Ascent.BustProbability != nil {
		cfg.ascent.bustProbability = *raw.Ascent.BustProbability
	}
	if cfg.ascent.abandonTimeout, err = parseDuration(raw.Ascent.AbandonTimeout, cfg.ascent.abandonTimeout); err != nil {
		return nil, err
	}

	if raw.Grid.HazardDensity != nil {
		cfg.grid.hazardDensity = *raw.Grid.HazardDensity
	}
	if raw.Grid.DefaultBet != nil {
		cfg.grid.defaultBet = *raw.Grid.DefaultBet
	}
	if cfg.grid.safeMultiplier, err = parseDecimal(raw.Grid.SafeMultiplier, cfg.grid.safeMultiplier); err != nil {
		return nil, err
	}
	if cfg.grid.resetDelay, err = parseDuration(raw.Grid.ResetDelay, cfg.grid.resetDelay); err != nil {
		return nil, err
	}
	if cfg.grid.idleTimeout, err = parseDuration(raw.Grid.IdleTimeout, cfg.grid.idleTimeout); err != nil {
		return nil, err
	}

	if raw.Stats.WindowSize != nil {
		cfg.stats.windowSize = *raw.Stats.WindowSize
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DefaultGameConfig конфигурация исходной версии игр
func DefaultGameConfig() config.GameConfig {
	return defaultGameConfig()
}

func defaultGameConfig() *gameConfig {
	themes := make(map[string][]string, len(defaultThemes))
	for name, symbols := range defaultThemes {
		themes[name] = append([]string(nil), symbols...)
	}
	return &gameConfig{
		wallet: walletConfig{initialBalance: defaultInitialBalance, maxBet: defaultMaxBet},
		reel: reelConfig{
			jackpotMultiplier: defaultJackpotMultiplier,
			spinDuration:      defaultSpinDuration,
			defaultTheme:      defaultTheme,
			themes:            themes,
		},
		ascent: ascentConfig{
			tickPeriod:      defaultTickPeriod,
			tickIncrement:   decimal.RequireFromString(defaultTickIncrement),
			bustProbability: defaultBustProbability,
			abandonTimeout:  defaultAbandonTimeout,
		},
		grid: gridConfig{
			hazardDensity:  defaultHazardDensity,
			defaultBet:     defaultGridBet,
			safeMultiplier: decimal.RequireFromString(defaultSafeMultiplier),
			resetDelay:     defaultResetDelay,
			idleTimeout:    defaultIdleTimeout,
		},
		stats: statsConfig{windowSize: defaultStatsWindow},
	}
}

func (c *gameConfig) validate() error {
	if c.wallet.initialBalance < 0 {
		return fmt.Errorf("wallet.initial_balance must not be negative")
	}
	if c.reel.jackpotMultiplier < 0 {
		return fmt.Errorf("reel.jackpot_multiplier must not be negative")
	}
	for name, symbols := range c.reel.themes {
		if len(symbols) == 0 {
			return fmt.Errorf("reel theme %q has no symbols", name)
		}
	}
	if _, ok := c.reel.themes[c.reel.defaultTheme]; !ok {
		return fmt.Errorf("reel.default_theme %q is not defined", c.reel.defaultTheme)
	}
	if c.ascent.tickPeriod <= 0 {
		return fmt.Errorf("ascent.tick_period must be positive")
	}
	if !c.ascent.tickIncrement.IsPositive() {
		return fmt.Errorf("ascent.tick_increment must be positive")
	}
	if c.ascent.bustProbability < 0 || c.ascent.bustProbability > 1 {
		return fmt.Errorf("ascent.bust_probability must be within [0, 1]")
	}
	if c.grid.hazardDensity < 0 || c.grid.hazardDensity > 1 {
		return fmt.Errorf("grid.hazard_density must be within [0, 1]")
	}
	if c.grid.defaultBet <= 0 {
		return fmt.Errorf("grid.default_bet must be positive")
	}
	if c.grid.safeMultiplier.IsNegative() {
		return fmt.Errorf("grid.safe_multiplier must not be negative")
	}
	if c.stats.windowSize <= 0 {
		return fmt.Errorf("stats.window_size must be positive")
	}
	return c.validatePayouts()
}

// validatePayouts самые крупные выплаты при максимальных ставке и балансе укладываются в maxPayout
func (c *gameConfig) validatePayouts() error {
	if c.wallet.maxBet <= 0 {
		return fmt.Errorf("wallet.max_bet must be positive")
	}
	if c.grid.defaultBet > c.wallet.maxBet {
		return fmt.Errorf("grid.default_bet exceeds wallet.max_bet")
	}

	balance := decimal.NewFromInt(c.wallet.initialBalance)
	maxBet := decimal.NewFromInt(c.wallet.maxBet)
	jackpot := decimal.NewFromInt(c.reel.jackpotMultiplier)
	gridRound := c.grid.safeMultiplier.Mul(decimal.NewFromInt(model.GridCells))

	checks := []struct {
		name  string
		value decimal.Decimal
	}{
		{"wallet.initial_balance", balance},
		{"wallet.initial_balance * reel.jackpot_multiplier", balance.Mul(jackpot)},
		{"wallet.max_bet * reel.jackpot_multiplier", maxBet.Mul(jackpot)},
		{"wallet.max_bet * grid.safe_multiplier * cells", maxBet.Mul(gridRound)},
	}
	for _, ch := range checks {
		if ch.value.GreaterThan(maxPayout) {
			return fmt.Errorf("%s exceeds %s", ch.name, maxPayout.String())
		}
	}
	return nil
}

func parseDuration(raw string, fallback time.Duration) (time.Duration, error) {
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	return d, nil
}

func parseDecimal(raw string, fallback decimal.Decimal) (decimal.Decimal, error) {
	if raw == "" {
		return fallback, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid decimal %q: %w", raw, err)
	}
	return d, nil
}

func (c *gameConfig) Wallet() config.WalletConfig {
	return &c.wallet
}

func (c *gameConfig) Reel() config.ReelConfig {
	return &c.reel
}

func (c *gameConfig) Ascent() config.AscentConfig {
	return &c.ascent
}

func (c *gameConfig) Grid() config.GridConfig {
	return &c.grid
}

func (c *gameConfig) Stats() config.StatsConfig {
	return &c.stats
}

func (c *gameConfig) Policy() model.Policy {
	return model.Policy{
		SymbolSet:              c.reel.themes[c.reel.defaultTheme],
		JackpotMultiplier:      c.reel.jackpotMultiplier,
		PerTickBustProbability: c.ascent.bustProbability,
		HazardDensity:          c.grid.hazardDensity,
	}
}

func (w *walletConfig) InitialBalance() int64 { return w.initialBalance }
func (w *walletConfig) MaxBet() int64         { return w.maxBet }

func (r *reelConfig) JackpotMultiplier() int64    { return r.jackpotMultiplier }
func (r *reelConfig) SpinDuration() time.Duration { return r.spinDuration }
func (r *reelConfig) DefaultTheme() string        { return r.defaultTheme }
func (r *reelConfig) Themes() map[string][]string { return r.themes }

// ThemeNames список тем в стабильном порядке
func ThemeNames(cfg config.ReelConfig) []string {
	names := make([]string, 0, len(cfg.Themes()))
	for name := range cfg.Themes() {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (a *ascentConfig) TickPeriod() time.Duration      { return a.tickPeriod }
func (a *ascentConfig) TickIncrement() decimal.Decimal { return a.tickIncrement }
func (a *ascentConfig) BustProbability() float64       { return a.bustProbability }
func (a *ascentConfig) AbandonTimeout() time.Duration  { return a.abandonTimeout }

func (g *gridConfig) HazardDensity() float64          { return g.hazardDensity }
func (g *gridConfig) DefaultBet() int64               { return g.defaultBet }
func (g *gridConfig) SafeMultiplier() decimal.Decimal { return g.safeMultiplier }
func (g *gridConfig) ResetDelay() time.Duration       { return g.resetDelay }
func (g *gridConfig) IdleTimeout() time.Duration      { return g.idleTimeout }

func (s *statsConfig) WindowSize() int { return s.windowSize }
