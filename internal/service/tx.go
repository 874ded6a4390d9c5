package service

import (
	"context"

	"github.com/avito-tech/go-transaction-manager/trm/v2"
)

type noopManager struct{}

// NewNoopTxManager менеджер транзакций для хранилища в памяти: просто вызывает fn
func NewNoopTxManager() trm.Manager {
	return noopManager{}
}

func (noopManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (noopManager) DoWithSettings(ctx context.Context, _ trm.Settings, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
