package handler

import (
	"net/http"

	"github.com/quiniela/platform/internal/domain"
	"github.com/quiniela/platform/internal/service"
)

// ContestHandler serves the shared contest views: standings, predictions,
// odds and the betting window.
type ContestHandler struct {
	board  *service.LeaderboardAggregator
	odds   *service.OddsService
	config *service.BettingConfigService
}

// NewContestHandler creates a ContestHandler.
func NewContestHandler(board *service.LeaderboardAggregator, odds *service.OddsService, config *service.BettingConfigService) *ContestHandler {
	return &ContestHandler{board: board, odds: odds, config: config}
}

// Standings handles GET /standings?tournament_id&jornada.
func (h *ContestHandler) Standings(w http.ResponseWriter, r *http.Request) {
	q, err := StandingsQueryFromRequest(r)
	if err != nil {
		RespondError(w, err)
		return
	}
	rows, err := h.board.GetStandings(r.Context(), q)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, rows)
}

// Winners handles GET /standings/winners?tournament_id.
func (h *ContestHandler) Winners(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := RequiredQueryInt64(r, "tournament_id")
	if err != nil {
		RespondError(w, err)
		return
	}
	winners, err := h.board.GetJornadaWinners(r.Context(), tournamentID)
	if err != nil {
		RespondError(w, err)
		return
	}
	if winners == nil {
		winners = []domain.JornadaWinner{}
	}
	RespondJSON(w, http.StatusOK, winners)
}

// Predictions handles GET /predictions.
func (h *ContestHandler) Predictions(w http.ResponseWriter, r *http.Request) {
	window, err := h.config.Window(r.Context())
	if err != nil {
		RespondError(w, err)
		return
	}
	bets, err := h.board.ListPredictions(r.Context(), window)
	if err != nil {
		RespondError(w, err)
		return
	}
	if bets == nil {
		bets = []domain.BetView{}
	}
	RespondJSON(w, http.StatusOK, bets)
}

// OpenMatches handles GET /matches/open: the matches the caller can still bet
// on in the active window. The list is empty while betting is closed.
func (h *ContestHandler) OpenMatches(w http.ResponseWriter, r *http.Request) {
	user := CurrentUser(r.Context())
	window, err := h.config.Window(r.Context())
	if err != nil {
		RespondError(w, err)
		return
	}
	matches, err := h.board.ListOpenMatches(r.Context(), window, user.ID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, matches)
}

// MatchOdds handles GET /matches/{id}/odds.
func (h *ContestHandler) MatchOdds(w http.ResponseWriter, r *http.Request) {
	matchID, err := PathInt64(r, "id")
	if err != nil {
		RespondError(w, err)
		return
	}
	odds, err := h.odds.GetOdds(r.Context(), matchID)
	if err != nil {
		RespondError(w, err)
		return
	}
	if odds == nil {
		odds = []domain.Odds{}
	}
	RespondJSON(w, http.StatusOK, odds)
}

// BettingConfig handles GET /betting/config.
func (h *ContestHandler) BettingConfig(w http.ResponseWriter, r *http.Request) {
	window, err := h.config.Window(r.Context())
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, window)
}

// StandingsQueryFromRequest reads tournament_id and the optional jornada.
func StandingsQueryFromRequest(r *http.Request) (domain.StandingsQuery, error) {
	tournamentID, err := RequiredQueryInt64(r, "tournament_id")
	if err != nil {
		return domain.StandingsQuery{}, err
	}
	jornada, err := QueryInt(r, "jornada")
	if err != nil {
		return domain.StandingsQuery{}, err
	}
	return domain.StandingsQuery{TournamentID: tournamentID, Jornada: jornada}, nil
}
