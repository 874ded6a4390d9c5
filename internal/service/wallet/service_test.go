package wallet

import (
	"context"
	"errors"
	"minigames_backend/internal/model"
	"minigames_backend/internal/repository/wallet_repo"
	"testing"
)

func TestWalletOpensWithInitialBalance(t *testing.T) {
	ctx := context.Background()
	s := NewWalletService(wallet_repo.NewMemoryWalletRepository(), 1000)

	balance, err := s.Balance(ctx, 42)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if balance != 1000 {
		t.Fatalf("balance = %d, want 1000", balance)
	}
}

func TestWalletDebitCredit(t *testing.T) {
	ctx := context.Background()
	s := NewWalletService(wallet_repo.NewMemoryWalletRepository(), 1000)

	tests := []struct {
		name    string
		op      func() (*model.Receipt, error)
		wantErr error
		balance int64
	}{
		{"debit", func() (*model.Receipt, error) { return s.Debit(ctx, 1, 300) }, nil, 700},
		{"debit too much", func() (*model.Receipt, error) { return s.Debit(ctx, 1, 701) }, model.ErrInsufficientFunds, 700},
		{"debit zero", func() (*model.Receipt, error) { return s.Debit(ctx, 1, 0) }, model.ErrInvalidBet, 700},
		{"credit zero", func() (*model.Receipt, error) { return s.Credit(ctx, 1, 0) }, nil, 700},
		{"credit", func() (*model.Receipt, error) { return s.Credit(ctx, 1, 250) }, nil, 950},
		{"credit negative", func() (*model.Receipt, error) { return s.Credit(ctx, 1, -1) }, model.ErrInvalidBet, 950},
		{"debit all", func() (*model.Receipt, error) { return s.Debit(ctx, 1, 950) }, nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			receipt, err := tt.op()
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if err == nil && receipt.Balance != tt.balance {
				t.Fatalf("receipt balance = %d, want %d", receipt.Balance, tt.balance)
			}
			balance, _ := s.Balance(ctx, 1)
			if balance != tt.balance {
				t.Fatalf("balance = %d, want %d", balance, tt.balance)
			}
		})
	}
}
