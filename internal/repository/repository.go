package repository

import (
	"context"
	"minigames_backend/internal/model"
)

type WalletRepository interface {
	// Create открывает кошелёк с начальным балансом. Существующий кошелёк не трогает
	Create(ctx context.Context, userID int64, balance int64) error
	Balance(ctx context.Context, userID int64) (int64, error)

	// Debit атомарно списывает amount, возвращает новый баланс или model.ErrInsufficientFunds
	Debit(ctx context.Context, userID int64, amount int64) (int64, error)
	// Credit атомарно зачисляет amount, возвращает новый баланс
	Credit(ctx context.Context, userID int64, amount int64) (int64, error)
}

type SettlementRepository interface {
	// Append добавляет запись и проставляет ей ID
	Append(ctx context.Context, rec *model.SettlementRecord) error
	BySession(ctx context.Context, sessionID string) (*model.SettlementRecord, error)
	// ListByUser записи пользователя, новые первыми
	ListByUser(ctx context.Context, userID int64, limit int) ([]model.SettlementRecord, error)
}

type StatsRepository interface {
	UpdateState(variant model.Variant, wagered, returned int64)
	Snapshot() []model.VariantStats
}
