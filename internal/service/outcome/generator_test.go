package outcome

import (
	"math"
	"minigames_backend/internal/model"
	"testing"
)

type seqSource struct {
	vals []uint64
	i    int
}

func (s *seqSource) Uint64() uint64 {
	v := s.vals[s.i%len(s.vals)]
	s.i++
	return v
}

var testPolicy = model.Policy{
	SymbolSet:              []string{"a", "b", "c", "d", "e", "*"},
	JackpotMultiplier:      10,
	PerTickBustProbability: 0.02,
	HazardDensity:          0.2,
}

func TestDrawReel(t *testing.T) {
	tests := []struct {
		name    string
		vals    []uint64
		want    []string
		jackpot bool
	}{
		{"jackpot", []uint64{0}, []string{"a", "a", "a"}, true},
		{"mixed", []uint64{0, 1, 2}, []string{"a", "b", "c"}, false},
		{"wraps modulo", []uint64{5, 11, 17}, []string{"*", "*", "*"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGenerator(&seqSource{vals: tt.vals}, testPolicy)
			ev := g.DrawReel(nil)
			if ev.Kind != model.OutcomeReel {
				t.Fatalf("kind = %v", ev.Kind)
			}
			for i := range tt.want {
				if ev.Symbols[i] != tt.want[i] {
					t.Fatalf("symbols = %v, want %v", ev.Symbols, tt.want)
				}
			}
			if ev.Jackpot != tt.jackpot {
				t.Fatalf("jackpot = %v, want %v", ev.Jackpot, tt.jackpot)
			}
			if len(ev.Draws) != 3 {
				t.Fatalf("draws = %d, want 3", len(ev.Draws))
			}
		})
	}
}

func TestDrawReelRejectsBiasedTail(t *testing.T) {
	// Максимальное значение попадает в неполный хвост и отбрасывается
	g := NewGenerator(&seqSource{vals: []uint64{math.MaxUint64, 1}}, testPolicy)
	ev := g.DrawReel(nil)
	if ev.Symbols[0] != "b" {
		t.Fatalf("first symbol = %q, want b", ev.Symbols[0])
	}
	if len(ev.Draws) != 6 {
		t.Fatalf("draws = %d, want 6", len(ev.Draws))
	}
}

func TestBernoulliDraws(t *testing.T) {
	always := NewGenerator(&seqSource{vals: []uint64{0}}, testPolicy)
	never := NewGenerator(&seqSource{vals: []uint64{math.MaxUint64}}, testPolicy)

	if !always.DrawBust().Hit || !always.DrawHazard().Hit {
		t.Fatalf("zero draw must hit")
	}
	if never.DrawBust().Hit || never.DrawHazard().Hit {
		t.Fatalf("max draw must miss")
	}

	// Граница: u/2^64 чуть меньше p
	p := testPolicy.HazardDensity
	edge := uint64(p*(1<<53)-1) << 11
	g := NewGenerator(&seqSource{vals: []uint64{edge}}, testPolicy)
	if ev := g.DrawHazard(); !ev.Hit || ev.Kind != model.OutcomeHazard || ev.Draws[0] != edge {
		t.Fatalf("edge draw = %+v", ev)
	}
}

func TestSeededSourceReproducible(t *testing.T) {
	a, err := NewSeededSource(7)
	if err != nil {
		t.Fatalf("seeded: %v", err)
	}
	b, _ := NewSeededSource(7)
	c, _ := NewSeededSource(8)

	same := true
	for i := 0; i < 20; i++ {
		va, vb, vc := a.Uint64(), b.Uint64(), c.Uint64()
		if va != vb {
			t.Fatalf("draw %d differs for the same seed", i)
		}
		if va != vc {
			same = false
		}
	}
	if same {
		t.Fatalf("different seeds produced the same sequence")
	}
}

func TestSeededBustFrequency(t *testing.T) {
	src, _ := NewSeededSource(1)
	g := NewGenerator(src, testPolicy)

	const n = 100000
	hits := 0
	for i := 0; i < n; i++ {
		if g.DrawBust().Hit {
			hits++
		}
	}
	rate := float64(hits) / n
	if rate < 0.017 || rate > 0.023 {
		t.Fatalf("bust rate = %v, want about 0.02", rate)
	}
}
