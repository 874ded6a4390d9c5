package stats_repo

import (
	"minigames_backend/internal/model"
	"minigames_backend/internal/repository"
	repoModel "minigames_backend/internal/repository/stats_repo/model"
	"sort"
	"sync"
)

// defaultWindowSize Размер окна, если в конфиге не задан
const defaultWindowSize = 500

// Реализация репозитория для хранения статистики RTP по вариантам
type StateRepo struct {
	mtx        sync.RWMutex
	windowSize int
	states     map[model.Variant]*repoModel.VariantState
}

// NewStatsRepository Конструктор репозитория статистики
func NewStatsRepository(windowSize int) repository.StatsRepository {
	if windowSize <= 0 {
		windowSize = defaultWindowSize
	}
	return &StateRepo{
		windowSize: windowSize,
		states:     make(map[model.Variant]*repoModel.VariantState),
	}
}

// UpdateState Обновление статистики после завершения раунда
func (r *StateRepo) UpdateState(variant model.Variant, wagered, returned int64) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	state, ok := r.states[variant]
	if !ok {
		state = &repoModel.VariantState{
			RoundWindow: make([]repoModel.RoundResult, 0, r.windowSize),
		}
		r.states[variant] = state
	}

	state.TotalRounds++
	state.TotalWagered += wagered
	state.TotalReturned += returned
	if state.TotalWagered > 0 {
		state.CurrentRTP = float64(state.TotalReturned) / float64(state.TotalWagered) * 100
	}

	// Добавляем раунд в окно
	state.RoundWindow = append(state.RoundWindow, repoModel.RoundResult{
		Wagered:  wagered,
		Returned: returned,
	})

	// Поддерживаем размер окна
	if len(state.RoundWindow) > r.windowSize {
		state.RoundWindow = state.RoundWindow[1:]
	}

	// Пересчитываем RTP в окне
	var windowWagered, windowReturned int64
	for _, round := range state.RoundWindow {
		windowWagered += round.Wagered
		windowReturned += round.Returned
	}

	if windowWagered > 0 {
		state.WindowRTP = float64(windowReturned) / float64(windowWagered) * 100
	} else {
		state.WindowRTP = 0
	}
}

// Snapshot Копия статистики по всем вариантам, отсортированная по имени варианта
func (r *StateRepo) Snapshot() []model.VariantStats {
	r.mtx.RLock()
	defer r.mtx.RUnlock()

	out := make([]model.VariantStats, 0, len(r.states))
	for variant, state := range r.states {
		out = append(out, model.VariantStats{
			Variant:       variant,
			TotalRounds:   state.TotalRounds,
			TotalWagered:  state.TotalWagered,
			TotalReturned: state.TotalReturned,
			CurrentRTP:    state.CurrentRTP,
			WindowRTP:     state.WindowRTP,
			WindowSize:    len(state.RoundWindow),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Variant < out[j].Variant })
	return out
}
