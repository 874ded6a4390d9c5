package settlement_repo

import (
	"context"
	"errors"
	"minigames_backend/internal/model"
	"testing"
	"time"
)

func TestMemoryAppendAndLookup(t *testing.T) {
	ctx := context.Background()
	r := NewMemorySettlementRepository()

	now := time.Now()
	recs := []model.SettlementRecord{
		model.NewSettlementRecord("s1", 1, model.VariantReel, model.OutcomeLost, 100, 0, now),
		model.NewSettlementRecord("s2", 2, model.VariantAscent, model.OutcomeCashedOut, 100, 250, now),
		model.NewSettlementRecord("s3", 1, model.VariantGrid, model.OutcomeBusted, 100, 150, now),
	}
	for i := range recs {
		if err := r.Append(ctx, &recs[i]); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
		if recs[i].ID != int64(i+1) {
			t.Fatalf("id = %d, want %d", recs[i].ID, i+1)
		}
	}

	dup := model.NewSettlementRecord("s2", 2, model.VariantAscent, model.OutcomeBusted, 100, 0, now)
	if err := r.Append(ctx, &dup); !errors.Is(err, model.ErrSettlementExists) {
		t.Fatalf("err = %v, want ErrSettlementExists", err)
	}

	got, err := r.BySession(ctx, "s2")
	if err != nil {
		t.Fatalf("by session: %v", err)
	}
	if got.Returned != 250 || got.NetDelta != 150 {
		t.Fatalf("record = %+v", got)
	}

	if _, err := r.BySession(ctx, "missing"); !errors.Is(err, model.ErrSettlementNotFound) {
		t.Fatalf("err = %v, want ErrSettlementNotFound", err)
	}

	list, _ := r.ListByUser(ctx, 1, 10)
	if len(list) != 2 || list[0].SessionID != "s3" || list[1].SessionID != "s1" {
		t.Fatalf("list = %+v, want s3, s1", list)
	}

	list, _ = r.ListByUser(ctx, 1, 1)
	if len(list) != 1 || list[0].SessionID != "s3" {
		t.Fatalf("limited list = %+v", list)
	}
}
