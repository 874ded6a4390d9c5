package registry

import (
	"context"
	"errors"
	"minigames_backend/internal/config"
	"minigames_backend/internal/model"
	"minigames_backend/internal/service"
	"minigames_backend/internal/service/ascent"
	"minigames_backend/internal/service/grid"
	"minigames_backend/internal/service/outcome"
	"minigames_backend/internal/service/reel"
	"minigames_backend/pkg/logger"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Deps struct {
	Wallet    service.WalletService
	Ledger    service.LedgerService
	Generator *outcome.Generator
	Clock     *ascent.Clock
	Feed      service.FeedPublisher
	Scheduler service.Scheduler
	Config    config.GameConfig
}

// round общее у раундов всех вариантов
type round interface {
	ID() string
	View() model.SessionView
	Done() <-chan struct{}
	Shutdown(ctx context.Context)
}

type slotKey struct {
	userID  int64
	variant model.Variant
}

// slot место активного раунда пары (пользователь, вариант).
// round пустой, пока списывается ставка
type slot struct {
	id    string
	key   slotKey
	round round
}

// Registry не больше одного активного раунда на пару (пользователь, вариант).
// Замок реестра защищает только карты и не удерживается при обращениях к кошельку и раундам
type Registry struct {
	mtx     sync.Mutex
	slots   map[slotKey]*slot
	byID    map[string]*slot
	closed  bool
	pending sync.WaitGroup

	stopCtx context.Context
	stop    context.CancelFunc

	wallet    service.WalletService
	ledger    service.LedgerService
	gen       *outcome.Generator
	clock     *ascent.Clock
	feed      service.FeedPublisher
	scheduler service.Scheduler
	cfg       config.GameConfig
}

func NewRegistry(deps Deps) *Registry {
	stopCtx, stop := context.WithCancel(context.Background())
	return &Registry{
		slots:     make(map[slotKey]*slot),
		byID:      make(map[string]*slot),
		stopCtx:   stopCtx,
		stop:      stop,
		wallet:    deps.Wallet,
		ledger:    deps.Ledger,
		gen:       deps.Generator,
		clock:     deps.Clock,
		feed:      deps.Feed,
		scheduler: deps.Scheduler,
		cfg:       deps.Config,
	}
}

// PlaceBet списывает ставку и начинает раунд
func (r *Registry) PlaceBet(ctx context.Context, userID int64, variant model.Variant, amount int64, theme string) (*model.PlaceBetResult, error) {
	if !variant.Valid() {
		return nil, model.ErrUnknownVariant
	}
	if amount <= 0 {
		return nil, model.ErrInvalidBet
	}
	if amount > r.cfg.Wallet().MaxBet() {
		return nil, model.ErrBetTooLarge
	}

	var symbols []string
	if variant == model.VariantReel {
		var err error
		theme, symbols, err = r.theme(theme)
		if err != nil {
			return nil, err
		}
	} else {
		theme = ""
	}

	sl, err := r.reserve(userID, variant)
	if err != nil {
		return nil, err
	}

	receipt, err := r.wallet.Debit(ctx, userID, amount)
	if err != nil {
		r.unreserve(sl)
		return nil, err
	}

	bet := model.Bet{Amount: amount}
	r.install(sl, r.start(sl, bet, theme, symbols))

	logger.Debug("bet placed",
		zap.String("session_id", sl.id),
		zap.Int64("user_id", userID),
		zap.String("variant", string(variant)),
		zap.Int64("amount", amount),
	)

	return &model.PlaceBetResult{
		SessionID: sl.id,
		Variant:   variant,
		Bet:       bet,
		Balance:   receipt.Balance,
	}, nil
}

func (r *Registry) theme(name string) (string, []string, error) {
	if name == "" {
		name = r.cfg.Reel().DefaultTheme()
	}
	symbols, ok := r.cfg.Reel().Themes()[name]
	if !ok {
		return "", nil, model.ErrUnknownTheme
	}
	return name, symbols, nil
}

func (r *Registry) reserve(userID int64, variant model.Variant) (*slot, error) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	if r.closed {
		return nil, model.ErrClosed
	}

	key := slotKey{userID: userID, variant: variant}
	if _, ok := r.slots[key]; ok {
		return nil, model.ErrSessionAlreadyActive
	}

	sl := &slot{id: uuid.NewString(), key: key}
	r.slots[key] = sl
	r.pending.Add(1)
	return sl, nil
}

func (r *Registry) unreserve(sl *slot) {
	r.mtx.Lock()
	if r.slots[sl.key] == sl {
		delete(r.slots, sl.key)
	}
	r.mtx.Unlock()
	r.pending.Done()
}

// install делает раунд видимым. Если реестр уже закрывается, раунд сразу завершается
func (r *Registry) install(sl *slot, rnd round) {
	defer r.pending.Done()

	r.mtx.Lock()
	sl.round = rnd
	live := r.slots[sl.key] == sl
	if live {
		r.byID[sl.id] = sl
	}
	closed := r.closed
	r.mtx.Unlock()

	if closed && live {
		rnd.Shutdown(context.Background())
	}
}

func (r *Registry) start(sl *slot, bet model.Bet, theme string, symbols []string) round {
	h := host{r: r}

	switch sl.key.variant {
	case model.VariantReel:
		return reel.Start(reel.Params{
			ID:                sl.id,
			UserID:            sl.key.userID,
			Bet:               bet,
			Theme:             theme,
			Symbols:           symbols,
			JackpotMultiplier: r.cfg.Reel().JackpotMultiplier(),
			SpinDuration:      r.cfg.Reel().SpinDuration(),
		}, r.gen, h, r.scheduler)
	case model.VariantAscent:
		return ascent.Start(ascent.Params{
			ID:             sl.id,
			UserID:         sl.key.userID,
			Bet:            bet,
			Increment:      r.cfg.Ascent().TickIncrement(),
			AbandonTimeout: r.cfg.Ascent().AbandonTimeout(),
		}, r.gen, h, r.clock, r.scheduler)
	default:
		return grid.Start(grid.Params{
			ID:             sl.id,
			UserID:         sl.key.userID,
			Bet:            bet,
			SafeMultiplier: r.cfg.Grid().SafeMultiplier(),
			ResetDelay:     r.cfg.Grid().ResetDelay(),
			IdleTimeout:    r.cfg.Grid().IdleTimeout(),
		}, r.gen, h, r.scheduler)
	}
}

func (r *Registry) release(key slotKey, sessionID string) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	if sl, ok := r.slots[key]; ok && sl.id == sessionID {
		delete(r.slots, key)
	}
	delete(r.byID, sessionID)
}

// lookup раунд по идентификатору. Чужой раунд неотличим от отсутствующего
func (r *Registry) lookup(userID int64, sessionID string) (round, bool) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	sl, ok := r.byID[sessionID]
	if !ok || sl.key.userID != userID {
		return nil, false
	}
	return sl.round, true
}

func (r *Registry) active(userID int64, variant model.Variant) (round, bool) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	sl, ok := r.slots[slotKey{userID: userID, variant: variant}]
	if !ok {
		return nil, false
	}
	return sl.round, true
}

func (r *Registry) CashOut(ctx context.Context, userID int64, sessionID string) (*model.CashOutResult, error) {
	rnd, ok := r.lookup(userID, sessionID)
	if !ok {
		return nil, model.ErrSessionNotActive
	}
	a, ok := rnd.(*ascent.Session)
	if !ok {
		return nil, model.ErrSessionNotActive
	}
	return a.CashOut(ctx)
}

func (r *Registry) Reveal(ctx context.Context, userID int64, sessionID string, cell int) (*model.RevealResult, error) {
	if cell < 0 || cell >= model.GridCells {
		return nil, model.ErrInvalidCell
	}
	if sessionID == "" {
		return r.firstReveal(ctx, userID, cell)
	}

	rnd, ok := r.lookup(userID, sessionID)
	if !ok {
		return nil, model.ErrSessionNotActive
	}
	g, ok := rnd.(*grid.Session)
	if !ok {
		return nil, model.ErrSessionNotActive
	}
	return g.Reveal(ctx, cell)
}

// firstReveal открытие клетки без раунда ставит ставку по умолчанию
func (r *Registry) firstReveal(ctx context.Context, userID int64, cell int) (*model.RevealResult, error) {
	if rnd, ok := r.active(userID, model.VariantGrid); ok {
		if g, ok := rnd.(*grid.Session); ok && g.Active() {
			return g.Reveal(ctx, cell)
		}
		return nil, model.ErrSessionAlreadyActive
	}

	placed, err := r.PlaceBet(ctx, userID, model.VariantGrid, r.cfg.Grid().DefaultBet(), "")
	if err != nil {
		return nil, err
	}

	rnd, ok := r.lookup(userID, placed.SessionID)
	if !ok {
		return nil, model.ErrSessionNotActive
	}
	return rnd.(*grid.Session).Reveal(ctx, cell)
}

// ResetGrid всегда подтверждается. Пустой sessionID - текущее поле пользователя
func (r *Registry) ResetGrid(ctx context.Context, userID int64, sessionID string) error {
	var (
		rnd round
		ok  bool
	)
	if sessionID == "" {
		rnd, ok = r.active(userID, model.VariantGrid)
	} else {
		rnd, ok = r.lookup(userID, sessionID)
	}
	if !ok {
		return nil
	}

	if g, isGrid := rnd.(*grid.Session); isGrid {
		g.Reset(ctx)
	}
	return nil
}

func (r *Registry) Balance(ctx context.Context, userID int64) (int64, error) {
	return r.wallet.Balance(ctx, userID)
}

// Session снимок активного раунда или запись о завершённом
func (r *Registry) Session(ctx context.Context, userID int64, sessionID string) (*model.SessionView, error) {
	if rnd, ok := r.lookup(userID, sessionID); ok {
		view := rnd.View()
		return &view, nil
	}

	rec, err := r.ledger.BySession(ctx, sessionID)
	if errors.Is(err, model.ErrSettlementNotFound) {
		return nil, model.ErrSessionNotActive
	}
	if err != nil {
		return nil, err
	}
	if rec.UserID != userID {
		return nil, model.ErrSessionNotActive
	}

	return &model.SessionView{
		ID:         rec.SessionID,
		UserID:     rec.UserID,
		Variant:    rec.Variant,
		State:      settledState(rec),
		Bet:        model.Bet{Amount: rec.Wagered},
		Returned:   rec.Returned,
		CreatedAt:  rec.CreatedAt,
		Settlement: rec,
	}, nil
}

func settledState(rec *model.SettlementRecord) model.SessionState {
	switch rec.Outcome {
	case model.OutcomeCashedOut:
		return model.StateCashedOut
	case model.OutcomeBusted:
		return model.StateBusted
	case model.OutcomeAbandoned:
		if rec.Variant == model.VariantGrid {
			return model.StateAbandonedReset
		}
		return model.StateBusted
	default:
		return model.StateSettled
	}
}

func (r *Registry) Settlements(ctx context.Context, userID int64, limit int) ([]model.SettlementRecord, error) {
	return r.ledger.List(ctx, userID, limit)
}

func (r *Registry) Stats() []model.VariantStats {
	return r.ledger.Stats()
}

// Disconnect раунд с множителем перестаёт получать тики и ждёт переподключения
func (r *Registry) Disconnect(userID int64) {
	if rnd, ok := r.active(userID, model.VariantAscent); ok {
		if a, isAscent := rnd.(*ascent.Session); isAscent {
			a.Detach()
		}
	}
}

func (r *Registry) Reconnect(userID int64) {
	if rnd, ok := r.active(userID, model.VariantAscent); ok {
		if a, isAscent := rnd.(*ascent.Session); isAscent {
			a.Attach()
		}
	}
}

// Close завершает все активные раунды. Новые ставки после вызова отклоняются
func (r *Registry) Close() {
	r.mtx.Lock()
	if r.closed {
		r.mtx.Unlock()
		return
	}
	r.closed = true
	rounds := make([]round, 0, len(r.byID))
	for _, sl := range r.byID {
		rounds = append(rounds, sl.round)
	}
	r.mtx.Unlock()

	// Повторы расчёта после остановки ограничены
	r.stop()

	var wg sync.WaitGroup
	for _, rnd := range rounds {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rnd.Shutdown(context.Background())
		}()
	}
	wg.Wait()
	r.pending.Wait()

	logger.Info("game service stopped", zap.Int("force_settled", len(rounds)))
}

var _ service.GameService = (*Registry)(nil)

const (
	retryMinDelay = 50 * time.Millisecond
	retryMaxDelay = 5 * time.Second
	// finalAttempts Сколько попыток расчёта после остановки
	finalAttempts = 3
)

// host реализация service.RoundHost для раундов реестра
type host struct {
	r *Registry
}

func (h host) Credit(ctx context.Context, userID int64, amount int64) (*model.Receipt, error) {
	return h.r.wallet.Credit(ctx, userID, amount)
}

// Settle повторяет расчёт, пока он не пройдёт: списанная ставка всегда получает запись
func (h host) Settle(rec *model.SettlementRecord, credit int64) (*model.Receipt, error) {
	delay := retryMinDelay
	afterStop := 0

	for attempt := 1; ; attempt++ {
		receipt, err := h.r.ledger.Settle(context.Background(), rec, credit)
		if err == nil {
			if rec.Returned > 0 {
				h.r.feed.Publish(model.FeedEvent{
					Type:      model.FeedRecentWin,
					SessionID: rec.SessionID,
					UserID:    rec.UserID,
					Variant:   rec.Variant,
					Returned:  rec.Returned,
					Timestamp: rec.CreatedAt,
				})
			}
			return receipt, nil
		}

		logger.Error("settlement failed",
			zap.String("session_id", rec.SessionID),
			zap.Int("attempt", attempt),
			zap.Error(logger.WrapError(err, "ledger settle")),
		)

		select {
		case <-h.r.stopCtx.Done():
			afterStop++
			if afterStop >= finalAttempts {
				return nil, err
			}
			continue
		default:
		}

		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-h.r.stopCtx.Done():
			timer.Stop()
		}
		delay = min(delay*2, retryMaxDelay)
	}
}

func (h host) Publish(ev model.FeedEvent) {
	h.r.feed.Publish(ev)
}

func (h host) Release(userID int64, variant model.Variant, sessionID string) {
	h.r.release(slotKey{userID: userID, variant: variant}, sessionID)
}
