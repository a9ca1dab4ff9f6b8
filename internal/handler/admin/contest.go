package admin

import (
	"net/http"

	"github.com/quiniela/platform/internal/domain"
	"github.com/quiniela/platform/internal/handler"
	"github.com/quiniela/platform/internal/service"
)

// ContestAdminHandler exposes the unfiltered leaderboard and the betting window.
type ContestAdminHandler struct {
	board  *service.LeaderboardAggregator
	config *service.BettingConfigService
}

// NewContestAdminHandler creates a new ContestAdminHandler.
func NewContestAdminHandler(board *service.LeaderboardAggregator, config *service.BettingConfigService) *ContestAdminHandler {
	return &ContestAdminHandler{board: board, config: config}
}

// Standings handles GET /admin/standings. Deactivated users are included.
func (h *ContestAdminHandler) Standings(w http.ResponseWriter, r *http.Request) {
	q, err := handler.StandingsQueryFromRequest(r)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	q.IncludeInactive = true

	rows, err := h.board.GetStandings(r.Context(), q)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, rows)
}

// UserBets handles GET /admin/users/{id}/bets?tournament_id&jornada. The
// user's bets come back with their tally for the same scope.
func (h *ContestAdminHandler) UserBets(w http.ResponseWriter, r *http.Request) {
	userID, err := handler.PathUUID(r, "id")
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	tournamentID, err := handler.RequiredQueryInt64(r, "tournament_id")
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	jornada, err := handler.QueryInt(r, "jornada")
	if err != nil {
		handler.RespondError(w, err)
		return
	}

	overview, err := h.board.ListUserBetsOverview(r.Context(), userID, tournamentID, jornada)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, overview)
}

// UpdateBettingConfig handles PUT /admin/betting/config.
func (h *ContestAdminHandler) UpdateBettingConfig(w http.ResponseWriter, r *http.Request) {
	var input domain.BettingWindow
	if err := handler.DecodeBody(r, &input); err != nil {
		handler.RespondError(w, err)
		return
	}

	window, err := h.config.UpdateWindow(r.Context(), input)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, window)
}
