package model

import "time"

// SettlementOutcome чем закончился раунд
type SettlementOutcome string

const (
	OutcomeWon       SettlementOutcome = "won"
	OutcomeLost      SettlementOutcome = "lost"
	OutcomeCashedOut SettlementOutcome = "cashed_out"
	OutcomeBusted    SettlementOutcome = "busted"
	OutcomeAbandoned SettlementOutcome = "abandoned"
)

// SettlementRecord запись о завершённом раунде. Только добавляется, не изменяется
type SettlementRecord struct {
	ID        int64
	SessionID string
	UserID    int64
	Variant   Variant
	Outcome   SettlementOutcome
	Wagered   int64
	Returned  int64 // 0 при проигрыше
	NetDelta  int64 // Returned - Wagered
	CreatedAt time.Time
}

// NewSettlementRecord собирает запись и считает NetDelta
func NewSettlementRecord(sessionID string, userID int64, variant Variant, outcome SettlementOutcome, wagered, returned int64, at time.Time) SettlementRecord {
	return SettlementRecord{
		SessionID: sessionID,
		UserID:    userID,
		Variant:   variant,
		Outcome:   outcome,
		Wagered:   wagered,
		Returned:  returned,
		NetDelta:  returned - wagered,
		CreatedAt: at,
	}
}

// Receipt квитанция операции с кошельком
type Receipt struct {
	UserID  int64
	Amount  int64
	Balance int64 // Баланс после операции
}

// VariantStats статистика по варианту игры
type VariantStats struct {
	Variant       Variant
	TotalRounds   int64
	TotalWagered  int64
	TotalReturned int64
	CurrentRTP    float64
	WindowRTP     float64
	WindowSize    int
}
