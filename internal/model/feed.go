package model

import "time"

// FeedEventType тип события в потоке для клиента
type FeedEventType string

const (
	FeedMultiplierUpdate FeedEventType = "multiplier_update"
	FeedAscentBusted     FeedEventType = "ascent_busted"
	FeedAscentCashedOut  FeedEventType = "ascent_cashed_out"
	FeedReelSettled      FeedEventType = "reel_settled"
	FeedGridBusted       FeedEventType = "grid_busted"
	FeedGridReset        FeedEventType = "grid_reset"
	FeedRecentWin        FeedEventType = "recent_win"
)

// FeedEvent одностороннее push-уведомление, подтверждение не требуется
type FeedEvent struct {
	Type       FeedEventType `json:"type"`
	SessionID  string        `json:"session_id,omitempty"`
	UserID     int64         `json:"user_id"`
	Variant    Variant       `json:"variant,omitempty"`
	Multiplier string        `json:"multiplier,omitempty"`
	Tick       int64         `json:"tick,omitempty"`
	Symbols    []string      `json:"symbols,omitempty"`
	Returned   int64         `json:"returned,omitempty"`
	Balance    int64         `json:"balance,omitempty"`
	Timestamp  time.Time     `json:"timestamp"`
}

// Broadcast true для событий, которые видят все подписчики
func (e FeedEvent) Broadcast() bool {
	return e.Type == FeedRecentWin
}
