package admin

import (
	"net/http"

	"github.com/quiniela/platform/internal/handler"
	"github.com/quiniela/platform/internal/service"
	"github.com/quiniela/platform/internal/settlement"
)

// MatchAdminHandler handles settlement and pricing of single matches.
type MatchAdminHandler struct {
	engine *settlement.SettlementEngine
	odds   *service.OddsService
}

// NewMatchAdminHandler creates a new MatchAdminHandler.
func NewMatchAdminHandler(engine *settlement.SettlementEngine, odds *service.OddsService) *MatchAdminHandler {
	return &MatchAdminHandler{engine: engine, odds: odds}
}

// Settle handles POST /admin/matches/{id}/settle.
func (h *MatchAdminHandler) Settle(w http.ResponseWriter, r *http.Request) {
	matchID, err := handler.PathInt64(r, "id")
	if err != nil {
		handler.RespondError(w, err)
		return
	}

	result, err := h.engine.SettleMatch(r.Context(), matchID)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, result)
}

// ReplaceOdds handles PUT /admin/matches/{id}/odds.
func (h *MatchAdminHandler) ReplaceOdds(w http.ResponseWriter, r *http.Request) {
	matchID, err := handler.PathInt64(r, "id")
	if err != nil {
		handler.RespondError(w, err)
		return
	}

	var input struct {
		Odds []service.OddsInput `json:"odds"`
	}
	if err := handler.DecodeBody(r, &input); err != nil {
		handler.RespondError(w, err)
		return
	}

	odds, err := h.odds.ReplaceOdds(r.Context(), matchID, input.Odds)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, odds)
}
