package reel

import (
	"context"
	"minigames_backend/internal/model"
	"minigames_backend/internal/service"
	"minigames_backend/internal/service/outcome"
	"minigames_backend/pkg/logger"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Params всё, что нужно раунду после списания ставки
type Params struct {
	ID                string
	UserID            int64
	Bet               model.Bet
	Theme             string
	Symbols           []string
	JackpotMultiplier int64
	SpinDuration      time.Duration
}

// Session раунд слота: Spinning -> Settled.
// Ставка уже списана, исход разыгрывается по таймеру, игрок не может его ускорить или отменить
type Session struct {
	mtx       sync.Mutex
	p         Params
	state     model.SessionState
	result    *model.OutcomeEvent
	createdAt time.Time
	timer     service.Timer
	done      chan struct{}

	gen  *outcome.Generator
	host service.RoundHost
}

// Start запускает вращение
func Start(p Params, gen *outcome.Generator, host service.RoundHost, scheduler service.Scheduler) *Session {
	s := &Session{
		p:         p,
		state:     model.StateSpinning,
		createdAt: time.Now(),
		done:      make(chan struct{}),
		gen:       gen,
		host:      host,
	}

	s.mtx.Lock()
	s.timer = scheduler.AfterFunc(p.SpinDuration, s.complete)
	s.mtx.Unlock()

	return s
}

func (s *Session) ID() string {
	return s.p.ID
}

// Done закрывается после записи результата
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// complete розыгрыш и расчёт. Повторный вызов ничего не делает
func (s *Session) complete() {
	s.mtx.Lock()
	if s.state != model.StateSpinning {
		s.mtx.Unlock()
		return
	}

	ev := s.gen.DrawReel(s.p.Symbols)
	s.result = &ev

	var returned int64
	settlementOutcome := model.OutcomeLost
	if ev.Jackpot {
		returned = s.p.Bet.Amount * s.p.JackpotMultiplier
		settlementOutcome = model.OutcomeWon
	}

	rec := model.NewSettlementRecord(s.p.ID, s.p.UserID, model.VariantReel, settlementOutcome, s.p.Bet.Amount, returned, ev.At)
	receipt, err := s.host.Settle(&rec, returned)
	s.state = model.StateSettled
	s.mtx.Unlock()

	if err != nil {
		logger.Error("reel settlement failed", zap.String("session_id", s.p.ID), zap.Error(err))
	}

	feedEv := model.FeedEvent{
		Type:      model.FeedReelSettled,
		SessionID: s.p.ID,
		UserID:    s.p.UserID,
		Variant:   model.VariantReel,
		Symbols:   ev.Symbols,
		Returned:  returned,
		Timestamp: ev.At,
	}
	if receipt != nil {
		feedEv.Balance = receipt.Balance
	}
	s.host.Publish(feedEv)
	s.host.Release(s.p.UserID, model.VariantReel, s.p.ID)
	close(s.done)
}

// Shutdown досрочно завершает вращение: исход разыгрывается сразу
func (s *Session) Shutdown(_ context.Context) {
	s.mtx.Lock()
	timer := s.timer
	s.mtx.Unlock()

	timer.Stop()
	s.complete()
	<-s.done
}

// View снимок раунда
func (s *Session) View() model.SessionView {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	view := model.SessionView{
		ID:        s.p.ID,
		UserID:    s.p.UserID,
		Variant:   model.VariantReel,
		State:     s.state,
		Bet:       s.p.Bet,
		Theme:     s.p.Theme,
		CreatedAt: s.createdAt,
	}
	if s.result != nil {
		view.Symbols = s.result.Symbols
	}
	return view
}
