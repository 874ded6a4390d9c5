package env

import (
	"testing"
	"time"
)

func TestParseGameConfigDefaults(t *testing.T) {
	cfg, err := ParseGameConfig([]byte("{}"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if got := cfg.Wallet().InitialBalance(); got != 1000 {
		t.Fatalf("initial balance = %d, want 1000", got)
	}
	if got := cfg.Wallet().MaxBet(); got != 1_000_000 {
		t.Fatalf("max bet = %d, want 1000000", got)
	}
	if got := cfg.Reel().JackpotMultiplier(); got != 10 {
		t.Fatalf("jackpot multiplier = %d, want 10", got)
	}
	if got := cfg.Reel().SpinDuration(); got != time.Second {
		t.Fatalf("spin duration = %v, want 1s", got)
	}
	if got := cfg.Ascent().TickPeriod(); got != 50*time.Millisecond {
		t.Fatalf("tick period = %v, want 50ms", got)
	}
	if got := cfg.Ascent().TickIncrement().String(); got != "0.01" {
		t.Fatalf("tick increment = %s, want 0.01", got)
	}
	if got := cfg.Grid().SafeMultiplier().String(); got != "1.5" {
		t.Fatalf("safe multiplier = %s, want 1.5", got)
	}
	if got := ThemeNames(cfg.Reel()); len(got) != 3 || got[0] != "dog" {
		t.Fatalf("themes = %v, want [dog fish fruits]", got)
	}

	policy := cfg.Policy()
	if len(policy.SymbolSet) != 6 || policy.PerTickBustProbability != 0.02 || policy.HazardDensity != 0.2 {
		t.Fatalf("unexpected policy %+v", policy)
	}
}

func TestParseGameConfigOverrides(t *testing.T) {
	data := []byte(`
wallet:
  initial_balance: 500
reel:
  jackpot_multiplier: 20
  spin_duration: 250ms
  default_theme: coins
  themes:
    coins: ["a", "b"]
ascent:
  tick_increment: "0.05"
  bust_probability: 0
grid:
  default_bet: 10
  reset_delay: 1s
`)
	cfg, err := ParseGameConfig(data)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if cfg.Wallet().InitialBalance() != 500 {
		t.Fatalf("initial balance = %d", cfg.Wallet().InitialBalance())
	}
	if cfg.Reel().SpinDuration() != 250*time.Millisecond {
		t.Fatalf("spin duration = %v", cfg.Reel().SpinDuration())
	}
	if cfg.Ascent().BustProbability() != 0 {
		t.Fatalf("bust probability = %v, want explicit zero", cfg.Ascent().BustProbability())
	}
	if cfg.Grid().DefaultBet() != 10 || cfg.Grid().ResetDelay() != time.Second {
		t.Fatalf("grid config not applied")
	}
	if got := cfg.Policy().SymbolSet; len(got) != 2 {
		t.Fatalf("symbol set = %v", got)
	}
}

func TestParseGameConfigInvalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "bad duration", data: "reel:\n  spin_duration: soon\n"},
		{name: "probability above one", data: "ascent:\n  bust_probability: 1.5\n"},
		{name: "unknown default theme", data: "reel:\n  default_theme: cards\n"},
		{name: "zero grid bet", data: "grid:\n  default_bet: 0\n"},
		{name: "bad decimal", data: "grid:\n  safe_multiplier: x1.5\n"},
		{name: "broken yaml", data: "wallet: [\n"},
		{name: "zero max bet", data: "wallet:\n  max_bet: 0\n"},
		{name: "grid bet above max", data: "wallet:\n  max_bet: 50\n"},
		{name: "jackpot overflows", data: "wallet:\n  initial_balance: 9000000000000000000\nreel:\n  jackpot_multiplier: 10\n"},
		{name: "max bet jackpot overflows", data: "wallet:\n  max_bet: 1000000000000000\nreel:\n  jackpot_multiplier: 1000000\n"},
		{name: "grid round overflows", data: "wallet:\n  max_bet: 1000000000000000\ngrid:\n  safe_multiplier: \"1000\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseGameConfig([]byte(tt.data)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
