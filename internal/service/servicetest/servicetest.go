// Package servicetest помощники для тестов игровых сервисов
package servicetest

import (
	"context"
	"minigames_backend/internal/model"
	"minigames_backend/internal/repository/settlement_repo"
	"minigames_backend/internal/repository/stats_repo"
	"minigames_backend/internal/repository/wallet_repo"
	"minigames_backend/internal/service"
	"minigames_backend/internal/service/ledger"
	"minigames_backend/internal/service/wallet"
	"sync"
	"time"
)

// ManualScheduler таймеры срабатывают только по FireAll
type ManualScheduler struct {
	mtx     sync.Mutex
	pending []*manualTimer
}

type manualTimer struct {
	s       *ManualScheduler
	delay   time.Duration
	f       func()
	stopped bool
}

func (s *ManualScheduler) AfterFunc(d time.Duration, f func()) service.Timer {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	t := &manualTimer{s: s, delay: d, f: f}
	s.pending = append(s.pending, t)
	return t
}

func (t *manualTimer) Stop() bool {
	t.s.mtx.Lock()
	defer t.s.mtx.Unlock()

	for i, p := range t.s.pending {
		if p == t {
			t.s.pending = append(t.s.pending[:i], t.s.pending[i+1:]...)
			t.stopped = true
			return true
		}
	}
	return false
}

// Pending количество взведённых таймеров
func (s *ManualScheduler) Pending() int {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return len(s.pending)
}

// FireAll запускает все взведённые таймеры. Таймеры, взведённые во время запуска, остаются ждать
func (s *ManualScheduler) FireAll() {
	s.mtx.Lock()
	batch := s.pending
	s.pending = nil
	s.mtx.Unlock()

	for _, t := range batch {
		t.f()
	}
}

// FixedSource всегда одно и то же значение: 0 - всегда попадание, MaxUint64 - никогда
type FixedSource uint64

func (s FixedSource) Uint64() uint64 {
	return uint64(s)
}

// SeqSource значения по кругу
type SeqSource struct {
	mtx  sync.Mutex
	Vals []uint64
	i    int
}

func (s *SeqSource) Uint64() uint64 {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	v := s.Vals[s.i%len(s.Vals)]
	s.i++
	return v
}

// Host реестр для одиночного раунда: кошелёк и журнал в памяти, события копятся
type Host struct {
	Wallet service.WalletService
	Ledger service.LedgerService

	mtx      sync.Mutex
	events   []model.FeedEvent
	released []string
}

func NewHost(initialBalance int64) *Host {
	w := wallet.NewWalletService(wallet_repo.NewMemoryWalletRepository(), initialBalance)
	l := ledger.NewLedgerService(w, settlement_repo.NewMemorySettlementRepository(), stats_repo.NewStatsRepository(0), service.NewNoopTxManager())
	return &Host{Wallet: w, Ledger: l}
}

func (h *Host) Credit(ctx context.Context, userID int64, amount int64) (*model.Receipt, error) {
	return h.Wallet.Credit(ctx, userID, amount)
}

func (h *Host) Settle(rec *model.SettlementRecord, credit int64) (*model.Receipt, error) {
	return h.Ledger.Settle(context.Background(), rec, credit)
}

func (h *Host) Publish(ev model.FeedEvent) {
	h.mtx.Lock()
	defer h.mtx.Unlock()
	h.events = append(h.events, ev)
}

func (h *Host) Release(_ int64, _ model.Variant, sessionID string) {
	h.mtx.Lock()
	defer h.mtx.Unlock()
	h.released = append(h.released, sessionID)
}

func (h *Host) Events() []model.FeedEvent {
	h.mtx.Lock()
	defer h.mtx.Unlock()
	return append([]model.FeedEvent(nil), h.events...)
}

func (h *Host) Released() []string {
	h.mtx.Lock()
	defer h.mtx.Unlock()
	return append([]string(nil), h.released...)
}

// Debit ставка перед стартом раунда
func (h *Host) Debit(userID int64, amount int64) (*model.Receipt, error) {
	return h.Wallet.Debit(context.Background(), userID, amount)
}

func (h *Host) Balance(userID int64) int64 {
	b, _ := h.Wallet.Balance(context.Background(), userID)
	return b
}
