package wallet_repo

import (
	"context"
	"minigames_backend/internal/model"
	"minigames_backend/internal/repository"
	"sync"
)

// memRepo хранит кошельки в памяти. У каждого кошелька свой мьютекс,
// общий мьютекс защищает только карту
type memRepo struct {
	mtx     sync.RWMutex
	wallets map[int64]*memWallet
}

type memWallet struct {
	mtx     sync.Mutex
	balance int64
}

func NewMemoryWalletRepository() repository.WalletRepository {
	return &memRepo{
		wallets: make(map[int64]*memWallet),
	}
}

func (r *memRepo) Create(_ context.Context, userID int64, balance int64) error {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	if _, ok := r.wallets[userID]; !ok {
		r.wallets[userID] = &memWallet{balance: balance}
	}
	return nil
}

func (r *memRepo) wallet(userID int64) (*memWallet, error) {
	r.mtx.RLock()
	defer r.mtx.RUnlock()

	w, ok := r.wallets[userID]
	if !ok {
		return nil, model.ErrWalletNotFound
	}
	return w, nil
}

func (r *memRepo) Balance(_ context.Context, userID int64) (int64, error) {
	w, err := r.wallet(userID)
	if err != nil {
		return 0, err
	}

	w.mtx.Lock()
	defer w.mtx.Unlock()
	return w.balance, nil
}

func (r *memRepo) Debit(_ context.Context, userID int64, amount int64) (int64, error) {
	w, err := r.wallet(userID)
	if err != nil {
		return 0, err
	}

	w.mtx.Lock()
	defer w.mtx.Unlock()

	if amount > w.balance {
		return 0, model.ErrInsufficientFunds
	}
	w.balance -= amount
	return w.balance, nil
}

func (r *memRepo) Credit(_ context.Context, userID int64, amount int64) (int64, error) {
	w, err := r.wallet(userID)
	if err != nil {
		return 0, err
	}

	w.mtx.Lock()
	defer w.mtx.Unlock()

	w.balance += amount
	return w.balance, nil
}
