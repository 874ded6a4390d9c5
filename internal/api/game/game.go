package game

import (
	"errors"
	dto "minigames_backend/internal/api/dto/game"
	"minigames_backend/internal/converter"
	"minigames_backend/internal/middleware"
	"minigames_backend/internal/model"
	"minigames_backend/internal/service"
	"minigames_backend/pkg/logger"
	"minigames_backend/pkg/req"
	"minigames_backend/pkg/resp"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type HandlerDeps struct {
	Serv service.GameService
}

type Handler struct {
	serv service.GameService
}

func NewHandler(deps HandlerDeps) *Handler {
	return &Handler{serv: deps.Serv}
}

func (h *Handler) Balance(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		resp.WriteError(w, http.StatusUnauthorized, "user id not found in context")
		return
	}

	balance, err := h.serv.Balance(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp.WriteJSONResponse(w, http.StatusOK, dto.BalanceResponse{Balance: balance})
}

func (h *Handler) PlaceBet(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		resp.WriteError(w, http.StatusUnauthorized, "user id not found in context")
		return
	}

	payload, err := req.Decode[dto.PlaceBetRequest](r.Body)
	if err != nil {
		resp.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.serv.PlaceBet(r.Context(), userID, model.Variant(payload.Variant), payload.Amount, payload.Theme)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp.WriteJSONResponse(w, http.StatusCreated, converter.ToPlaceBetResponse(*result))
}

func (h *Handler) CashOut(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		resp.WriteError(w, http.StatusUnauthorized, "user id not found in context")
		return
	}

	result, err := h.serv.CashOut(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp.WriteJSONResponse(w, http.StatusOK, converter.ToCashOutResponse(*result))
}

// Reveal открытие клетки в раунде из пути. Без id в пути раунд начинается со ставкой по умолчанию
func (h *Handler) Reveal(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		resp.WriteError(w, http.StatusUnauthorized, "user id not found in context")
		return
	}

	payload, err := req.Decode[dto.RevealRequest](r.Body)
	if err != nil {
		resp.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.serv.Reveal(r.Context(), userID, chi.URLParam(r, "id"), *payload.Cell)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp.WriteJSONResponse(w, http.StatusOK, converter.ToRevealResponse(*result))
}

func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		resp.WriteError(w, http.StatusUnauthorized, "user id not found in context")
		return
	}

	if err := h.serv.ResetGrid(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Session(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		resp.WriteError(w, http.StatusUnauthorized, "user id not found in context")
		return
	}

	view, err := h.serv.Session(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp.WriteJSONResponse(w, http.StatusOK, converter.ToSessionResponse(*view))
}

func (h *Handler) Settlements(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		resp.WriteError(w, http.StatusUnauthorized, "user id not found in context")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			resp.WriteError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	recs, err := h.serv.Settlements(r.Context(), userID, limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp.WriteJSONResponse(w, http.StatusOK, converter.ToSettlementsResponse(recs))
}

// Stats статистика RTP, маршрут закрыт middleware.RequireAdmin
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	resp.WriteJSONResponse(w, http.StatusOK, converter.ToStatsResponse(h.serv.Stats()))
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, model.ErrInsufficientFunds):
		resp.WriteError(w, http.StatusPaymentRequired, err.Error())
	case errors.Is(err, model.ErrSessionAlreadyActive):
		resp.WriteError(w, http.StatusConflict, err.Error())
	case errors.Is(err, model.ErrSessionNotActive):
		resp.WriteError(w, http.StatusGone, err.Error())
	case errors.Is(err, model.ErrInvalidCell),
		errors.Is(err, model.ErrInvalidBet),
		errors.Is(err, model.ErrUnknownVariant),
		errors.Is(err, model.ErrUnknownTheme):
		resp.WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, model.ErrClosed):
		resp.WriteError(w, http.StatusServiceUnavailable, err.Error())
	default:
		logger.Error("game request failed", zap.Error(err))
		resp.WriteError(w, http.StatusInternalServerError, "internal error")
	}
}
