package service

import (
	"context"
	"minigames_backend/internal/model"
	"time"
)

type WalletService interface {
	Debit(ctx context.Context, userID int64, amount int64) (*model.Receipt, error)
	Credit(ctx context.Context, userID int64, amount int64) (*model.Receipt, error)
	Balance(ctx context.Context, userID int64) (int64, error)
}

type LedgerService interface {
	// Settle зачисляет credit и добавляет запись о раунде одной транзакцией
	Settle(ctx context.Context, rec *model.SettlementRecord, credit int64) (*model.Receipt, error)
	BySession(ctx context.Context, sessionID string) (*model.SettlementRecord, error)
	List(ctx context.Context, userID int64, limit int) ([]model.SettlementRecord, error)
	Stats() []model.VariantStats
}

type GameService interface {
	PlaceBet(ctx context.Context, userID int64, variant model.Variant, amount int64, theme string) (*model.PlaceBetResult, error)
	CashOut(ctx context.Context, userID int64, sessionID string) (*model.CashOutResult, error)
	// Reveal с пустым sessionID начинает раунд на поле со ставкой по умолчанию
	Reveal(ctx context.Context, userID int64, sessionID string, cell int) (*model.RevealResult, error)
	ResetGrid(ctx context.Context, userID int64, sessionID string) error
	Balance(ctx context.Context, userID int64) (int64, error)
	Session(ctx context.Context, userID int64, sessionID string) (*model.SessionView, error)
	Settlements(ctx context.Context, userID int64, limit int) ([]model.SettlementRecord, error)
	Stats() []model.VariantStats

	Disconnect(userID int64)
	Reconnect(userID int64)
	Close()
}

// FeedPublisher получатель событий для клиентов
type FeedPublisher interface {
	Publish(ev model.FeedEvent)
}

// RoundHost связь раунда с реестром: деньги, события и освобождение слота
type RoundHost interface {
	Credit(ctx context.Context, userID int64, amount int64) (*model.Receipt, error)
	Settle(rec *model.SettlementRecord, credit int64) (*model.Receipt, error)
	Publish(ev model.FeedEvent)
	Release(userID int64, variant model.Variant, sessionID string)
}

type Timer interface {
	Stop() bool
}

// Scheduler откладывает вызов f на d
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realScheduler struct{}

func NewScheduler() Scheduler {
	return realScheduler{}
}

func (realScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
