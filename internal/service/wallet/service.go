package wallet

import (
	"context"
	"minigames_backend/internal/model"
	"minigames_backend/internal/repository"
	"minigames_backend/internal/service"
	"sync"
)

type serv struct {
	repo           repository.WalletRepository
	initialBalance int64
	opened         sync.Map // userID -> struct{}
}

// NewWalletService кошельки открываются при первом обращении с начальным балансом
func NewWalletService(repo repository.WalletRepository, initialBalance int64) service.WalletService {
	return &serv{
		repo:           repo,
		initialBalance: initialBalance,
	}
}

func (s *serv) open(ctx context.Context, userID int64) error {
	if _, ok := s.opened.Load(userID); ok {
		return nil
	}
	if err := s.repo.Create(ctx, userID, s.initialBalance); err != nil {
		return err
	}
	s.opened.Store(userID, struct{}{})
	return nil
}

// Debit списание ставки
func (s *serv) Debit(ctx context.Context, userID int64, amount int64) (*model.Receipt, error) {
	if amount <= 0 {
		return nil, model.ErrInvalidBet
	}
	if err := s.open(ctx, userID); err != nil {
		return nil, err
	}

	balance, err := s.repo.Debit(ctx, userID, amount)
	if err != nil {
		return nil, err
	}

	return &model.Receipt{UserID: userID, Amount: amount, Balance: balance}, nil
}

// Credit зачисление выигрыша, amount >= 0
func (s *serv) Credit(ctx context.Context, userID int64, amount int64) (*model.Receipt, error) {
	if amount < 0 {
		return nil, model.ErrInvalidBet
	}
	if err := s.open(ctx, userID); err != nil {
		return nil, err
	}

	balance, err := s.repo.Credit(ctx, userID, amount)
	if err != nil {
		return nil, err
	}

	return &model.Receipt{UserID: userID, Amount: amount, Balance: balance}, nil
}

func (s *serv) Balance(ctx context.Context, userID int64) (int64, error) {
	if err := s.open(ctx, userID); err != nil {
		return 0, err
	}
	return s.repo.Balance(ctx, userID)
}
