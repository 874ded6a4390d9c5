package wallet_repo

import (
	"context"
	"errors"
	"minigames_backend/internal/model"
	"sync"
	"testing"
)

func TestMemoryWalletDebitCredit(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryWalletRepository()

	if _, err := r.Balance(ctx, 1); !errors.Is(err, model.ErrWalletNotFound) {
		t.Fatalf("err = %v, want ErrWalletNotFound", err)
	}

	if err := r.Create(ctx, 1, 100); err != nil {
		t.Fatalf("create: %v", err)
	}
	// Повторное создание не сбрасывает баланс
	if _, err := r.Debit(ctx, 1, 40); err != nil {
		t.Fatalf("debit: %v", err)
	}
	if err := r.Create(ctx, 1, 100); err != nil {
		t.Fatalf("create again: %v", err)
	}

	balance, err := r.Balance(ctx, 1)
	if err != nil || balance != 60 {
		t.Fatalf("balance = %d, %v; want 60", balance, err)
	}

	if _, err := r.Debit(ctx, 1, 61); !errors.Is(err, model.ErrInsufficientFunds) {
		t.Fatalf("err = %v, want ErrInsufficientFunds", err)
	}
	balance, _ = r.Balance(ctx, 1)
	if balance != 60 {
		t.Fatalf("rejected debit changed balance to %d", balance)
	}

	balance, err = r.Credit(ctx, 1, 15)
	if err != nil || balance != 75 {
		t.Fatalf("credit balance = %d, %v; want 75", balance, err)
	}
}

func TestMemoryWalletConcurrentDebitsNeverNegative(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryWalletRepository()
	_ = r.Create(ctx, 7, 1000)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		success int
	)
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if _, err := r.Debit(ctx, 7, 100); err == nil {
				mu.Lock()
				success++
				mu.Unlock()
			}
		}()
		go func() {
			defer wg.Done()
			_, _ = r.Credit(ctx, 7, 0)
		}()
	}
	wg.Wait()

	balance, _ := r.Balance(ctx, 7)
	if success != 10 {
		t.Fatalf("successful debits = %d, want 10", success)
	}
	if balance != 0 {
		t.Fatalf("balance = %d, want 0", balance)
	}
}
