package model

import "time"

// OutcomeKind тип случайного события
type OutcomeKind string

const (
	OutcomeReel   OutcomeKind = "reel"
	OutcomeBust   OutcomeKind = "bust"
	OutcomeHazard OutcomeKind = "hazard"
)

// OutcomeEvent результат одного обращения к генератору.
// Draws - сырые значения источника, сохраняются для аудита
type OutcomeEvent struct {
	Kind    OutcomeKind
	Symbols []string // Только для OutcomeReel
	Jackpot bool
	Hit     bool // Краш на тике / мина в клетке
	Draws   []uint64
	At      time.Time
}

// Policy вероятностная политика генератора
type Policy struct {
	SymbolSet              []string
	JackpotMultiplier      int64
	PerTickBustProbability float64
	HazardDensity          float64
}
