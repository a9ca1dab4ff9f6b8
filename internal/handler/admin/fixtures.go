package admin

import (
	"net/http"

	"github.com/quiniela/platform/internal/domain"
	"github.com/quiniela/platform/internal/handler"
	"github.com/quiniela/platform/internal/service"
	"github.com/quiniela/platform/internal/settlement"
)

// FixtureAdminHandler rewinds jornadas and removes user bets.
type FixtureAdminHandler struct {
	reset *settlement.ReplayResetService
	board *service.LeaderboardAggregator
}

// NewFixtureAdminHandler creates a new FixtureAdminHandler.
func NewFixtureAdminHandler(reset *settlement.ReplayResetService, board *service.LeaderboardAggregator) *FixtureAdminHandler {
	return &FixtureAdminHandler{reset: reset, board: board}
}

// Reset handles POST /admin/fixtures/reset.
func (h *FixtureAdminHandler) Reset(w http.ResponseWriter, r *http.Request) {
	var input struct {
		TournamentID int64 `json:"tournament_id"`
		Jornada      int   `json:"jornada"`
	}
	if err := handler.DecodeBody(r, &input); err != nil {
		handler.RespondError(w, err)
		return
	}
	if input.TournamentID <= 0 {
		handler.RespondError(w, domain.ErrValidation("tournament_id is required"))
		return
	}

	result, err := h.reset.ResetMatchResults(r.Context(), input.TournamentID, input.Jornada)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, result)
}

// ListMatches handles GET /admin/fixtures/matches?tournament_id&jornada.
func (h *FixtureAdminHandler) ListMatches(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := handler.RequiredQueryInt64(r, "tournament_id")
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	jornada, err := handler.RequiredQueryInt64(r, "jornada")
	if err != nil {
		handler.RespondError(w, err)
		return
	}

	matches, err := h.board.ListFixtureMatches(r.Context(), tournamentID, int(jornada))
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	if matches == nil {
		matches = []domain.FixtureMatch{}
	}
	handler.RespondJSON(w, http.StatusOK, matches)
}

// PurgeUserBets handles DELETE /admin/users/{id}/bets?tournament_id&jornada.
func (h *FixtureAdminHandler) PurgeUserBets(w http.ResponseWriter, r *http.Request) {
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

	result, err := h.reset.PurgeUserBets(r.Context(), userID, tournamentID, jornada)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, result)
}
