package model

import "time"

// Variant разновидность мини-игры
type Variant string

const (
	VariantReel   Variant = "reel"   // Слот из трёх барабанов
	VariantAscent Variant = "ascent" // Растущий множитель (краш)
	VariantGrid   Variant = "grid"   // Поле 5x5 с минами
)

// Valid проверяет, что вариант известен
func (v Variant) Valid() bool {
	switch v {
	case VariantReel, VariantAscent, VariantGrid:
		return true
	}
	return false
}

// SessionState состояние раунда
type SessionState string

const (
	StateAwaitingBet    SessionState = "awaiting_bet"
	StateSpinning       SessionState = "spinning"
	StateSettled        SessionState = "settled"
	StateAscending      SessionState = "ascending"
	StateCashedOut      SessionState = "cashed_out"
	StateBusted         SessionState = "busted"
	StateActive         SessionState = "active"
	StateAbandonedReset SessionState = "abandoned_reset"
)

// Terminal true для состояний, из которых переходов нет
func (s SessionState) Terminal() bool {
	switch s {
	case StateSettled, StateCashedOut, StateBusted, StateAbandonedReset:
		return true
	}
	return false
}

// CellState состояние клетки поля
type CellState string

const (
	CellHidden CellState = "hidden"
	CellSafe   CellState = "safe"
	CellHazard CellState = "hazard"
)

// GridCells размер поля
const GridCells = 25

// Bet принятая ставка. После принятия не меняется
type Bet struct {
	Amount int64
}

// SessionView снимок активного раунда для отдачи клиенту
type SessionView struct {
	ID         string
	UserID     int64
	Variant    Variant
	State      SessionState
	Bet        Bet
	Theme      string
	Symbols    []string
	Multiplier string
	Ticks      int64
	Cells      []CellState
	Returned   int64
	CreatedAt  time.Time

	// Settlement заполнен, когда раунд уже завершён
	Settlement *SettlementRecord
}

// PlaceBetResult результат размещения ставки
type PlaceBetResult struct {
	SessionID string
	Variant   Variant
	Bet       Bet
	Balance   int64
}

// CashOutResult результат забора выигрыша
type CashOutResult struct {
	SessionID  string
	Multiplier string
	Returned   int64
	Balance    int64
}

// RevealResult результат открытия клетки
type RevealResult struct {
	SessionID string
	Cell      int
	CellState CellState
	State     SessionState
	Returned  int64
	Balance   int64
}
