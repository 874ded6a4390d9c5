package grid

import (
	"context"
	"minigames_backend/internal/model"
	"minigames_backend/internal/service"
	"minigames_backend/internal/service/outcome"
	"minigames_backend/pkg/logger"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Params struct {
	ID             string
	UserID         int64
	Bet            model.Bet
	SafeMultiplier decimal.Decimal
	ResetDelay     time.Duration
	IdleTimeout    time.Duration // 0 - без ограничения
}

// Session раунд на поле 5x5: Active -> {Busted | AbandonedReset}.
// Каждая безопасная клетка сразу оплачивается, мина завершает раунд
type Session struct {
	mtx       sync.Mutex
	p         Params
	state     model.SessionState
	cells     [model.GridCells]model.CellState
	returned  int64 // Сумма уже выплаченных за раунд частичных выигрышей
	createdAt time.Time

	idleTimer  service.Timer
	idleGen    uint64
	resetTimer service.Timer
	closed     bool
	done       chan struct{}

	gen       *outcome.Generator
	host      service.RoundHost
	scheduler service.Scheduler
}

func Start(p Params, gen *outcome.Generator, host service.RoundHost, scheduler service.Scheduler) *Session {
	s := &Session{
		p:         p,
		state:     model.StateActive,
		createdAt: time.Now(),
		done:      make(chan struct{}),
		gen:       gen,
		host:      host,
		scheduler: scheduler,
	}
	for i := range s.cells {
		s.cells[i] = model.CellHidden
	}

	s.mtx.Lock()
	s.armIdle()
	s.mtx.Unlock()

	return s
}

func (s *Session) ID() string {
	return s.p.ID
}

// Done закрывается, когда поле сброшено и слот освобождён
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Active true, пока раунд принимает открытия клеток
func (s *Session) Active() bool {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return s.state == model.StateActive
}

// Reveal открывает клетку
func (s *Session) Reveal(ctx context.Context, cell int) (*model.RevealResult, error) {
	if cell < 0 || cell >= model.GridCells {
		return nil, model.ErrInvalidCell
	}

	s.mtx.Lock()
	if s.state != model.StateActive {
		s.mtx.Unlock()
		return nil, model.ErrSessionNotActive
	}
	if s.cells[cell] != model.CellHidden {
		s.mtx.Unlock()
		return nil, model.ErrCellRevealed
	}

	ev := s.gen.DrawHazard()
	if ev.Hit {
		return s.bust(cell, ev)
	}

	payout := decimal.NewFromInt(s.p.Bet.Amount).Mul(s.p.SafeMultiplier).Floor().IntPart()
	receipt, err := s.host.Credit(ctx, s.p.UserID, payout)
	if err != nil {
		s.mtx.Unlock()
		return nil, logger.WrapError(err, "failed to credit safe cell")
	}

	s.cells[cell] = model.CellSafe
	s.returned += payout
	s.armIdle()
	s.mtx.Unlock()

	return &model.RevealResult{
		SessionID: s.p.ID,
		Cell:      cell,
		CellState: model.CellSafe,
		State:     model.StateActive,
		Returned:  payout,
		Balance:   receipt.Balance,
	}, nil
}

// bust вызывается под s.mtx и отпускает его
func (s *Session) bust(cell int, ev model.OutcomeEvent) (*model.RevealResult, error) {
	s.cells[cell] = model.CellHazard
	s.state = model.StateBusted
	s.stopIdle()

	rec := model.NewSettlementRecord(s.p.ID, s.p.UserID, model.VariantGrid, model.OutcomeBusted, s.p.Bet.Amount, s.returned, ev.At)
	receipt, err := s.host.Settle(&rec, 0)
	s.resetTimer = s.scheduler.AfterFunc(s.p.ResetDelay, s.finishReset)
	s.mtx.Unlock()

	s.host.Publish(model.FeedEvent{
		Type:      model.FeedGridBusted,
		SessionID: s.p.ID,
		UserID:    s.p.UserID,
		Variant:   model.VariantGrid,
		Returned:  rec.Returned,
		Timestamp: ev.At,
	})

	if err != nil {
		return nil, logger.WrapError(err, "failed to settle grid round")
	}

	return &model.RevealResult{
		SessionID: s.p.ID,
		Cell:      cell,
		CellState: model.CellHazard,
		State:     model.StateBusted,
		Returned:  0,
		Balance:   receipt.Balance,
	}, nil
}

// Reset новая игра: активный раунд бросается без отката выплат,
// проигранное поле сбрасывается, не дожидаясь задержки показа
func (s *Session) Reset(_ context.Context) {
	s.abandon()
}

// Shutdown принудительно завершает раунд
func (s *Session) Shutdown(ctx context.Context) {
	s.Reset(ctx)
	<-s.done
}

func (s *Session) abandon() {
	s.mtx.Lock()
	switch s.state {
	case model.StateActive:
		s.stopIdle()
		s.state = model.StateAbandonedReset
		rec := model.NewSettlementRecord(s.p.ID, s.p.UserID, model.VariantGrid, model.OutcomeAbandoned, s.p.Bet.Amount, s.returned, time.Now())
		if _, err := s.host.Settle(&rec, 0); err != nil {
			logger.Error("grid settlement failed", zap.String("session_id", s.p.ID), zap.Error(err))
		}
		s.mtx.Unlock()
		s.finishReset()
	case model.StateBusted:
		if s.resetTimer != nil {
			s.resetTimer.Stop()
		}
		s.mtx.Unlock()
		s.finishReset()
	default:
		s.mtx.Unlock()
	}
}

// finishReset очищает поле и освобождает слот. Выполняется один раз
func (s *Session) finishReset() {
	s.mtx.Lock()
	if s.closed {
		s.mtx.Unlock()
		return
	}
	s.closed = true
	for i := range s.cells {
		s.cells[i] = model.CellHidden
	}
	s.mtx.Unlock()

	s.host.Publish(model.FeedEvent{
		Type:      model.FeedGridReset,
		SessionID: s.p.ID,
		UserID:    s.p.UserID,
		Variant:   model.VariantGrid,
		Timestamp: time.Now(),
	})
	s.host.Release(s.p.UserID, model.VariantGrid, s.p.ID)
	close(s.done)
}

// armIdle вызывается под s.mtx
func (s *Session) armIdle() {
	if s.p.IdleTimeout <= 0 {
		return
	}
	s.stopIdle()
	s.idleGen++
	gen := s.idleGen
	s.idleTimer = s.scheduler.AfterFunc(s.p.IdleTimeout, func() { s.onIdle(gen) })
}

// stopIdle вызывается под s.mtx
func (s *Session) stopIdle() {
	if s.idleTimer != nil {
		s.idleTimer.Stop()
		s.idleTimer = nil
	}
}

func (s *Session) onIdle(gen uint64) {
	s.mtx.Lock()
	stale := gen != s.idleGen || s.state != model.StateActive
	s.mtx.Unlock()
	if stale {
		return
	}

	logger.Info("grid round abandoned by idle timeout", zap.String("session_id", s.p.ID), zap.Int64("user_id", s.p.UserID))
	s.abandon()
}

func (s *Session) View() model.SessionView {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	cells := make([]model.CellState, len(s.cells))
	copy(cells, s.cells[:])

	return model.SessionView{
		ID:        s.p.ID,
		UserID:    s.p.UserID,
		Variant:   model.VariantGrid,
		State:     s.state,
		Bet:       s.p.Bet,
		Cells:     cells,
		Returned:  s.returned,
		CreatedAt: s.createdAt,
	}
}
