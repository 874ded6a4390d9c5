package settlement_repo

import (
	"context"
	"minigames_backend/internal/model"
	"minigames_backend/internal/repository"
	"sync"
)

type memRepo struct {
	mtx       sync.RWMutex
	nextID    int64
	records   []model.SettlementRecord
	bySession map[string]int
}

func NewMemorySettlementRepository() repository.SettlementRepository {
	return &memRepo{
		bySession: make(map[string]int),
	}
}

func (r *memRepo) Append(_ context.Context, rec *model.SettlementRecord) error {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	if _, ok := r.bySession[rec.SessionID]; ok {
		return model.ErrSettlementExists
	}

	r.nextID++
	rec.ID = r.nextID
	r.bySession[rec.SessionID] = len(r.records)
	r.records = append(r.records, *rec)
	return nil
}

func (r *memRepo) BySession(_ context.Context, sessionID string) (*model.SettlementRecord, error) {
	r.mtx.RLock()
	defer r.mtx.RUnlock()

	idx, ok := r.bySession[sessionID]
	if !ok {
		return nil, model.ErrSettlementNotFound
	}
	rec := r.records[idx]
	return &rec, nil
}

func (r *memRepo) ListByUser(_ context.Context, userID int64, limit int) ([]model.SettlementRecord, error) {
	r.mtx.RLock()
	defer r.mtx.RUnlock()

	out := make([]model.SettlementRecord, 0)
	for i := len(r.records) - 1; i >= 0 && len(out) < limit; i-- {
		if r.records[i].UserID == userID {
			out = append(out, r.records[i])
		}
	}
	return out, nil
}
