package outcome

import (
	"math"
	"minigames_backend/internal/model"
	"sync"
	"time"
)

// reelCount Количество барабанов
const reelCount = 3

// Generator выдаёт исходы по вероятностной политике
type Generator struct {
	mtx    sync.Mutex
	src    Source
	policy model.Policy
	now    func() time.Time
}

func NewGenerator(src Source, policy model.Policy) *Generator {
	return &Generator{
		src:    src,
		policy: policy,
		now:    time.Now,
	}
}

func (g *Generator) Policy() model.Policy {
	return g.policy
}

// DrawReel три независимых равновероятных символа из symbols.
// Пустой symbols означает набор из политики
func (g *Generator) DrawReel(symbols []string) model.OutcomeEvent {
	if len(symbols) == 0 {
		symbols = g.policy.SymbolSet
	}

	g.mtx.Lock()
	defer g.mtx.Unlock()

	ev := model.OutcomeEvent{
		Kind:    model.OutcomeReel,
		Symbols: make([]string, reelCount),
		At:      g.now(),
	}
	for i := range reelCount {
		idx := g.uniform(uint64(len(symbols)), &ev.Draws)
		ev.Symbols[i] = symbols[idx]
	}
	ev.Jackpot = ev.Symbols[0] == ev.Symbols[1] && ev.Symbols[1] == ev.Symbols[2]
	return ev
}

// DrawBust решение о краше на одном тике, без памяти о прошлых тиках
func (g *Generator) DrawBust() model.OutcomeEvent {
	return g.bernoulli(model.OutcomeBust, g.policy.PerTickBustProbability)
}

// DrawHazard решение о мине для одного открытия клетки
func (g *Generator) DrawHazard() model.OutcomeEvent {
	return g.bernoulli(model.OutcomeHazard, g.policy.HazardDensity)
}

func (g *Generator) bernoulli(kind model.OutcomeKind, p float64) model.OutcomeEvent {
	g.mtx.Lock()
	defer g.mtx.Unlock()

	u := g.src.Uint64()
	return model.OutcomeEvent{
		Kind:  kind,
		Hit:   unitFloat(u) < p,
		Draws: []uint64{u},
		At:    g.now(),
	}
}

// uniform число в [0, n) без смещения: значения из неполного хвоста отбрасываются
func (g *Generator) uniform(n uint64, draws *[]uint64) uint64 {
	limit := math.MaxUint64 - math.MaxUint64%n
	for {
		v := g.src.Uint64()
		*draws = append(*draws, v)
		if v < limit {
			return v % n
		}
	}
}

// unitFloat 53 старших бита как число в [0, 1)
func unitFloat(u uint64) float64 {
	return float64(u>>11) * (1.0 / (1 << 53))
}
