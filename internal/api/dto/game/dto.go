package game

import "time"

type PlaceBetRequest struct {
	Variant string `json:"variant" validate:"required,oneof=reel ascent grid"` // reel | ascent | grid
	Amount  int64  `json:"amount" validate:"gt=0"`                             // Ставка в минимальных единицах
	Theme   string `json:"theme,omitempty"`                                    // Набор символов слота
}

type PlaceBetResponse struct {
	SessionID string `json:"session_id"`
	Variant   string `json:"variant"`
	Amount    int64  `json:"amount"`
	Balance   int64  `json:"balance"` // Баланс после списания
}

type CashOutResponse struct {
	SessionID  string `json:"session_id"`
	Multiplier string `json:"multiplier"`
	Returned   int64  `json:"returned"`
	Balance    int64  `json:"balance"`
}

type RevealRequest struct {
	Cell *int `json:"cell" validate:"required"` // 0..24
}

type RevealResponse struct {
	SessionID string `json:"session_id"`
	Cell      int    `json:"cell"`
	CellState string `json:"cell_state"` // safe | hazard
	State     string `json:"state"`
	Returned  int64  `json:"returned"`
	Balance   int64  `json:"balance"`
}

type BalanceResponse struct {
	Balance int64 `json:"balance"`
}

type SessionResponse struct {
	ID         string              `json:"id"`
	Variant    string              `json:"variant"`
	State      string              `json:"state"`
	Bet        int64               `json:"bet"`
	Theme      string              `json:"theme,omitempty"`
	Symbols    []string            `json:"symbols,omitempty"`
	Multiplier string              `json:"multiplier,omitempty"`
	Ticks      int64               `json:"ticks,omitempty"`
	Cells      []string            `json:"cells,omitempty"`
	Returned   int64               `json:"returned"`
	CreatedAt  time.Time           `json:"created_at"`
	Settlement *SettlementResponse `json:"settlement,omitempty"` // Есть только у завершённого раунда
}

type SettlementResponse struct {
	ID        int64     `json:"id"`
	SessionID string    `json:"session_id"`
	Variant   string    `json:"variant"`
	Outcome   string    `json:"outcome"`
	Wagered   int64     `json:"wagered"`
	Returned  int64     `json:"returned"`
	NetDelta  int64     `json:"net_delta"`
	CreatedAt time.Time `json:"created_at"`
}

type StatsResponse struct {
	Variant       string  `json:"variant"`
	TotalRounds   int64   `json:"total_rounds"`
	TotalWagered  int64   `json:"total_wagered"`
	TotalReturned int64   `json:"total_returned"`
	CurrentRTP    float64 `json:"current_rtp"` // Процент
	WindowRTP     float64 `json:"window_rtp"`  // Процент по последним раундам
	WindowSize    int     `json:"window_size"`
}
