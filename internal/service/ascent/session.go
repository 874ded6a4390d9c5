package ascent

import (
	"context"
	"math"
	"minigames_backend/internal/model"
	"minigames_backend/internal/service"
	"minigames_backend/internal/service/outcome"
	"minigames_backend/pkg/logger"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// tickBuffer Сколько тиков может ждать в ящике раунда
const tickBuffer = 8

var startMultiplier = decimal.NewFromInt(1)

// maxReturn потолок выплаты: множитель сверху не ограничен
var maxReturn = decimal.NewFromInt(math.MaxInt64 / 1024)

type Params struct {
	ID             string
	UserID         int64
	Bet            model.Bet
	Increment      decimal.Decimal
	AbandonTimeout time.Duration // Сколько ждать переподключения, 0 - без ограничения
}

type cashoutReq struct {
	reply chan cashoutReply
}

type cashoutReply struct {
	res *model.CashOutResult
	err error
}

// Session раунд с растущим множителем: Ascending -> {CashedOut | Busted}.
// Всё состояние раунда меняет одна горутина run, тики и запросы на вывод приходят в её ящики
type Session struct {
	p         Params
	createdAt time.Time

	ticks    chan struct{}
	cashouts chan cashoutReq
	abandon  chan struct{}
	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}

	// Поля для View, пишет только run
	mtx        sync.RWMutex
	state      model.SessionState
	multiplier decimal.Decimal
	tickCount  int64

	// Подписка на часы и таймер ожидания переподключения
	linkMtx      sync.Mutex
	detached     bool
	finished     bool
	abandonTimer service.Timer
	abandonGen   uint64

	gen       *outcome.Generator
	host      service.RoundHost
	clock     *Clock
	scheduler service.Scheduler
}

func newSession(p Params, gen *outcome.Generator, host service.RoundHost, clock *Clock, scheduler service.Scheduler) *Session {
	return &Session{
		p:          p,
		createdAt:  time.Now(),
		ticks:      make(chan struct{}, tickBuffer),
		cashouts:   make(chan cashoutReq, 1),
		abandon:    make(chan struct{}, 1),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
		state:      model.StateAscending,
		multiplier: startMultiplier,
		gen:        gen,
		host:       host,
		clock:      clock,
		scheduler:  scheduler,
	}
}

// Start подписывает раунд на часы и запускает его горутину
func Start(p Params, gen *outcome.Generator, host service.RoundHost, clock *Clock, scheduler service.Scheduler) *Session {
	s := newSession(p, gen, host, clock, scheduler)
	clock.Subscribe(p.ID, s.ticks)
	go s.run()
	return s
}

func (s *Session) ID() string {
	return s.p.ID
}

// Done закрывается после записи результата
func (s *Session) Done() <-chan struct{} {
	return s.done
}

func (s *Session) run() {
	defer s.exit()

	for {
		// Уже пришедший тик всегда обрабатывается первым
		select {
		case <-s.ticks:
			if s.tick() {
				return
			}
			continue
		default:
		}

		select {
		case <-s.ticks:
			if s.tick() {
				return
			}
		case req := <-s.cashouts:
			// Тики, пришедшие вместе с запросом, разрешаются до него: краш побеждает
			if s.drainTicks() {
				req.reply <- cashoutReply{err: model.ErrSessionNotActive}
				return
			}
			req.reply <- s.cashOut()
			return
		case <-s.abandon:
			if !s.isDetached() {
				continue
			}
			logger.Info("ascent round abandoned", zap.String("session_id", s.p.ID), zap.Int64("user_id", s.p.UserID))
			s.lose(model.OutcomeAbandoned, time.Now())
			return
		case <-s.stop:
			s.lose(model.OutcomeAbandoned, time.Now())
			return
		}
	}
}

// drainTicks обрабатывает тики из ящика, true - раунд проигран
func (s *Session) drainTicks() bool {
	for {
		select {
		case <-s.ticks:
			if s.tick() {
				return true
			}
		default:
			return false
		}
	}
}

func (s *Session) exit() {
	s.linkMtx.Lock()
	s.finished = true
	s.clock.Unsubscribe(s.p.ID)
	if s.abandonTimer != nil {
		s.abandonTimer.Stop()
	}
	s.linkMtx.Unlock()

	close(s.done)

	for {
		select {
		case req := <-s.cashouts:
			req.reply <- cashoutReply{err: model.ErrSessionNotActive}
		default:
			return
		}
	}
}

// tick множитель растёт на шаг, затем разыгрывается краш. true - раунд проигран
func (s *Session) tick() bool {
	s.mtx.Lock()
	s.multiplier = s.multiplier.Add(s.p.Increment)
	s.tickCount++
	mult, n := s.multiplier, s.tickCount
	s.mtx.Unlock()

	ev := s.gen.DrawBust()
	if ev.Hit {
		s.lose(model.OutcomeBusted, ev.At)
		return true
	}

	s.host.Publish(model.FeedEvent{
		Type:       model.FeedMultiplierUpdate,
		SessionID:  s.p.ID,
		UserID:     s.p.UserID,
		Variant:    model.VariantAscent,
		Multiplier: mult.StringFixed(2),
		Tick:       n,
		Timestamp:  ev.At,
	})
	return false
}

func (s *Session) lose(settlementOutcome model.SettlementOutcome, at time.Time) {
	s.mtx.Lock()
	s.state = model.StateBusted
	mult, n := s.multiplier, s.tickCount
	s.mtx.Unlock()

	rec := model.NewSettlementRecord(s.p.ID, s.p.UserID, model.VariantAscent, settlementOutcome, s.p.Bet.Amount, 0, at)
	receipt, err := s.host.Settle(&rec, 0)
	if err != nil {
		logger.Error("ascent settlement failed", zap.String("session_id", s.p.ID), zap.Error(err))
	}

	ev := model.FeedEvent{
		Type:       model.FeedAscentBusted,
		SessionID:  s.p.ID,
		UserID:     s.p.UserID,
		Variant:    model.VariantAscent,
		Multiplier: mult.StringFixed(2),
		Tick:       n,
		Timestamp:  at,
	}
	if receipt != nil {
		ev.Balance = receipt.Balance
	}
	s.host.Publish(ev)
	s.host.Release(s.p.UserID, model.VariantAscent, s.p.ID)
}

func (s *Session) cashOut() cashoutReply {
	s.mtx.Lock()
	s.state = model.StateCashedOut
	mult, n := s.multiplier, s.tickCount
	s.mtx.Unlock()

	payout := decimal.NewFromInt(s.p.Bet.Amount).Mul(mult).Floor()
	if payout.GreaterThan(maxReturn) {
		payout = maxReturn
	}
	returned := payout.IntPart()
	now := time.Now()

	rec := model.NewSettlementRecord(s.p.ID, s.p.UserID, model.VariantAscent, model.OutcomeCashedOut, s.p.Bet.Amount, returned, now)
	receipt, err := s.host.Settle(&rec, returned)
	s.host.Release(s.p.UserID, model.VariantAscent, s.p.ID)
	if err != nil {
		return cashoutReply{err: logger.WrapError(err, "failed to settle cash out")}
	}

	s.host.Publish(model.FeedEvent{
		Type:       model.FeedAscentCashedOut,
		SessionID:  s.p.ID,
		UserID:     s.p.UserID,
		Variant:    model.VariantAscent,
		Multiplier: mult.StringFixed(2),
		Tick:       n,
		Returned:   returned,
		Balance:    receipt.Balance,
		Timestamp:  now,
	})

	return cashoutReply{res: &model.CashOutResult{
		SessionID:  s.p.ID,
		Multiplier: mult.StringFixed(2),
		Returned:   returned,
		Balance:    receipt.Balance,
	}}
}

// CashOut забрать выигрыш по текущему множителю
func (s *Session) CashOut(ctx context.Context) (*model.CashOutResult, error) {
	req := cashoutReq{reply: make(chan cashoutReply, 1)}

	select {
	case s.cashouts <- req:
	case <-s.done:
		return nil, model.ErrSessionNotActive
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	select {
	case r := <-req.reply:
		return r.res, r.err
	case <-s.done:
		// Ответ мог прийти одновременно с завершением
		select {
		case r := <-req.reply:
			return r.res, r.err
		default:
			return nil, model.ErrSessionNotActive
		}
	}
}

// Detach игрок отключился: тики больше не приходят, множитель замирает.
// Без переподключения за AbandonTimeout раунд считается проигранным
func (s *Session) Detach() {
	s.linkMtx.Lock()
	defer s.linkMtx.Unlock()

	if s.finished || s.detached {
		return
	}
	s.detached = true
	s.clock.Unsubscribe(s.p.ID)

	if s.p.AbandonTimeout > 0 {
		s.abandonGen++
		gen := s.abandonGen
		s.abandonTimer = s.scheduler.AfterFunc(s.p.AbandonTimeout, func() { s.onAbandon(gen) })
	}
}

// onAbandon срабатывание таймера ожидания. Таймер от прошлого отключения игнорируется
func (s *Session) onAbandon(gen uint64) {
	s.linkMtx.Lock()
	defer s.linkMtx.Unlock()

	if s.finished || !s.detached || gen != s.abandonGen {
		return
	}
	select {
	case s.abandon <- struct{}{}:
	default:
	}
}

func (s *Session) isDetached() bool {
	s.linkMtx.Lock()
	defer s.linkMtx.Unlock()
	return s.detached
}

// Attach игрок вернулся: раунд снова получает тики
func (s *Session) Attach() {
	s.linkMtx.Lock()
	defer s.linkMtx.Unlock()

	if s.finished || !s.detached {
		return
	}
	s.detached = false
	s.abandonGen++
	if s.abandonTimer != nil {
		s.abandonTimer.Stop()
		s.abandonTimer = nil
	}
	// Сигнал, успевший прийти до возвращения игрока, снимается
	select {
	case <-s.abandon:
	default:
	}
	s.clock.Subscribe(s.p.ID, s.ticks)
}

// Shutdown принудительно завершает раунд проигрышем
func (s *Session) Shutdown(_ context.Context) {
	s.stopOnce.Do(func() { close(s.stop) })
	<-s.done
}

func (s *Session) View() model.SessionView {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	return model.SessionView{
		ID:         s.p.ID,
		UserID:     s.p.UserID,
		Variant:    model.VariantAscent,
		State:      s.state,
		Bet:        s.p.Bet,
		Multiplier: s.multiplier.StringFixed(2),
		Ticks:      s.tickCount,
		CreatedAt:  s.createdAt,
	}
}
