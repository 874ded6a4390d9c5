package converter

import (
	"minigames_backend/internal/api/dto/game"
	"minigames_backend/internal/model"
)

func ToPlaceBetResponse(res model.PlaceBetResult) game.PlaceBetResponse {
	return game.PlaceBetResponse{
		SessionID: res.SessionID,
		Variant:   string(res.Variant),
		Amount:    res.Bet.Amount,
		Balance:   res.Balance,
	}
}

func ToCashOutResponse(res model.CashOutResult) game.CashOutResponse {
	return game.CashOutResponse{
		SessionID:  res.SessionID,
		Multiplier: res.Multiplier,
		Returned:   res.Returned,
		Balance:    res.Balance,
	}
}

func ToRevealResponse(res model.RevealResult) game.RevealResponse {
	return game.RevealResponse{
		SessionID: res.SessionID,
		Cell:      res.Cell,
		CellState: string(res.CellState),
		State:     string(res.State),
		Returned:  res.Returned,
		Balance:   res.Balance,
	}
}

func ToSessionResponse(v model.SessionView) game.SessionResponse {
	out := game.SessionResponse{
		ID:         v.ID,
		Variant:    string(v.Variant),
		State:      string(v.State),
		Bet:        v.Bet.Amount,
		Theme:      v.Theme,
		Symbols:    v.Symbols,
		Multiplier: v.Multiplier,
		Ticks:      v.Ticks,
		Returned:   v.Returned,
		CreatedAt:  v.CreatedAt,
	}
	if len(v.Cells) > 0 {
		out.Cells = make([]string, len(v.Cells))
		for i, c := range v.Cells {
			out.Cells[i] = string(c)
		}
	}
	if v.Settlement != nil {
		s := ToSettlementResponse(*v.Settlement)
		out.Settlement = &s
	}
	return out
}

func ToSettlementResponse(rec model.SettlementRecord) game.SettlementResponse {
	return game.SettlementResponse{
		ID:        rec.ID,
		SessionID: rec.SessionID,
		Variant:   string(rec.Variant),
		Outcome:   string(rec.Outcome),
		Wagered:   rec.Wagered,
		Returned:  rec.Returned,
		NetDelta:  rec.NetDelta,
		CreatedAt: rec.CreatedAt,
	}
}

func ToSettlementsResponse(recs []model.SettlementRecord) []game.SettlementResponse {
	result := make([]game.SettlementResponse, len(recs))
	for i, rec := range recs {
		result[i] = ToSettlementResponse(rec)
	}
	return result
}

func ToStatsResponse(stats []model.VariantStats) []game.StatsResponse {
	result := make([]game.StatsResponse, len(stats))
	for i, s := range stats {
		result[i] = game.StatsResponse{
			Variant:       string(s.Variant),
			TotalRounds:   s.TotalRounds,
			TotalWagered:  s.TotalWagered,
			TotalReturned: s.TotalReturned,
			CurrentRTP:    s.CurrentRTP,
			WindowRTP:     s.WindowRTP,
			WindowSize:    s.WindowSize,
		}
	}
	return result
}
