package grid

import (
	"context"
	"errors"
	"math"
	"minigames_backend/internal/model"
	"minigames_backend/internal/service/outcome"
	"minigames_backend/internal/service/servicetest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

const neverHazard = servicetest.FixedSource(math.MaxUint64)

func startGrid(t *testing.T, src outcome.Source, host *servicetest.Host, sch *servicetest.ManualScheduler, idle time.Duration) *Session {
	t.Helper()

	if _, err := host.Debit(1, 100); err != nil {
		t.Fatalf("debit: %v", err)
	}
	gen := outcome.NewGenerator(src, model.Policy{HazardDensity: 0.2})
	return Start(Params{
		ID:             "grid-1",
		UserID:         1,
		Bet:            model.Bet{Amount: 100},
		SafeMultiplier: decimal.RequireFromString("1.5"),
		ResetDelay:     2 * time.Second,
		IdleTimeout:    idle,
	}, gen, host, sch)
}

func TestGridSafeRevealsPayEach(t *testing.T) {
	ctx := context.Background()
	host := servicetest.NewHost(1000)
	s := startGrid(t, neverHazard, host, &servicetest.ManualScheduler{}, 0)

	for i, want := range []int64{1050, 1200, 1350} {
		res, err := s.Reveal(ctx, i)
		if err != nil {
			t.Fatalf("reveal %d: %v", i, err)
		}
		if res.Returned != 150 || res.CellState != model.CellSafe {
			t.Fatalf("reveal %d = %+v, want 150 safe", i, res)
		}
		if res.Balance != want {
			t.Fatalf("balance = %d, want %d", res.Balance, want)
		}
	}

	if v := s.View(); v.Returned != 450 || v.Cells[2] != model.CellSafe || v.Cells[3] != model.CellHidden {
		t.Fatalf("view = %+v", v)
	}
}

func TestGridRejectedRevealsChangeNothing(t *testing.T) {
	ctx := context.Background()
	host := servicetest.NewHost(1000)
	s := startGrid(t, neverHazard, host, &servicetest.ManualScheduler{}, 0)

	if _, err := s.Reveal(ctx, 4); err != nil {
		t.Fatalf("reveal: %v", err)
	}

	tests := []struct {
		name    string
		cell    int
		wantErr error
	}{
		{"already revealed", 4, model.ErrCellRevealed},
		{"negative", -1, model.ErrInvalidCell},
		{"out of range", model.GridCells, model.ErrInvalidCell},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := s.Reveal(ctx, tt.cell); !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if !errors.Is(model.ErrCellRevealed, model.ErrInvalidCell) {
				t.Fatalf("ErrCellRevealed must match ErrInvalidCell")
			}
			if got := host.Balance(1); got != 1050 {
				t.Fatalf("balance = %d, want 1050", got)
			}
			if v := s.View(); v.Returned != 150 || v.State != model.StateActive {
				t.Fatalf("view = %+v", v)
			}
		})
	}
}

func TestGridHazardBustsAndResetsAfterDelay(t *testing.T) {
	ctx := context.Background()
	host := servicetest.NewHost(1000)
	sch := &servicetest.ManualScheduler{}
	s := startGrid(t, &servicetest.SeqSource{Vals: []uint64{math.MaxUint64, 0}}, host, sch, 0)

	if _, err := s.Reveal(ctx, 0); err != nil {
		t.Fatalf("safe reveal: %v", err)
	}
	res, err := s.Reveal(ctx, 1)
	if err != nil {
		t.Fatalf("hazard reveal: %v", err)
	}
	if res.CellState != model.CellHazard || res.State != model.StateBusted || res.Returned != 0 {
		t.Fatalf("result = %+v", res)
	}

	rec, err := host.Ledger.BySession(ctx, "grid-1")
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if rec.Outcome != model.OutcomeBusted || rec.Returned != 150 || rec.NetDelta != 50 {
		t.Fatalf("record = %+v", rec)
	}
	if got := host.Balance(1); got != 1000+rec.NetDelta {
		t.Fatalf("balance = %d, want %d", got, 1000+rec.NetDelta)
	}

	// Поле показывает мину до сброса
	if _, err := s.Reveal(ctx, 2); !errors.Is(err, model.ErrSessionNotActive) {
		t.Fatalf("err = %v, want ErrSessionNotActive", err)
	}
	if len(host.Released()) != 0 {
		t.Fatalf("slot released before reset delay")
	}

	sch.FireAll()
	<-s.Done()

	if v := s.View(); v.Cells[1] != model.CellHidden {
		t.Fatalf("grid not reset: %v", v.Cells)
	}
	events := host.Events()
	if len(events) != 2 || events[0].Type != model.FeedGridBusted || events[1].Type != model.FeedGridReset {
		t.Fatalf("events = %+v", events)
	}
}

func TestGridResetAbandonsWithoutClawBack(t *testing.T) {
	ctx := context.Background()
	host := servicetest.NewHost(1000)
	s := startGrid(t, neverHazard, host, &servicetest.ManualScheduler{}, 0)

	if _, err := s.Reveal(ctx, 0); err != nil {
		t.Fatalf("reveal: %v", err)
	}
	s.Reset(ctx)
	<-s.Done()

	rec, err := host.Ledger.BySession(ctx, "grid-1")
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if rec.Outcome != model.OutcomeAbandoned || rec.Returned != 150 {
		t.Fatalf("record = %+v", rec)
	}
	if got := host.Balance(1); got != 1050 {
		t.Fatalf("balance = %d, want 1050", got)
	}
	if _, err := s.Reveal(ctx, 1); !errors.Is(err, model.ErrSessionNotActive) {
		t.Fatalf("err = %v, want ErrSessionNotActive", err)
	}

	// Повторный сброс подтверждается без изменений
	s.Reset(ctx)
	list, _ := host.Ledger.List(ctx, 1, 10)
	if len(list) != 1 {
		t.Fatalf("records = %d, want 1", len(list))
	}
}

func TestGridIdleTimeoutAbandons(t *testing.T) {
	ctx := context.Background()
	host := servicetest.NewHost(1000)
	sch := &servicetest.ManualScheduler{}
	s := startGrid(t, neverHazard, host, sch, time.Minute)

	if sch.Pending() != 1 {
		t.Fatalf("pending = %d, want idle timer", sch.Pending())
	}
	if _, err := s.Reveal(ctx, 0); err != nil {
		t.Fatalf("reveal: %v", err)
	}
	// Открытие клетки перевзводит таймер, а не добавляет второй
	if sch.Pending() != 1 {
		t.Fatalf("pending = %d, want 1", sch.Pending())
	}

	sch.FireAll()
	<-s.Done()

	rec, err := host.Ledger.BySession(ctx, "grid-1")
	if err != nil || rec.Outcome != model.OutcomeAbandoned {
		t.Fatalf("record = %+v, %v", rec, err)
	}
}

func TestGridStaleIdleCallbackIgnored(t *testing.T) {
	host := servicetest.NewHost(1000)
	s := startGrid(t, neverHazard, host, &servicetest.ManualScheduler{}, time.Minute)

	s.onIdle(0)
	if !s.Active() {
		t.Fatalf("stale idle callback abandoned the round")
	}
}
