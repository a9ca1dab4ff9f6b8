package handler

import (
	"net/http"

	"github.com/quiniela/platform/internal/domain"
	"github.com/quiniela/platform/internal/guard"
	"github.com/quiniela/platform/internal/repository"
	"github.com/quiniela/platform/internal/service"
)

// BetHandler serves a user's own bets.
type BetHandler struct {
	placement *service.BetPlacementService
	board     *service.LeaderboardAggregator
	config    *service.BettingConfigService
	idem      guard.Deduplicator
}

// NewBetHandler creates a BetHandler. idem may be nil to disable Idempotency-Key checks.
func NewBetHandler(placement *service.BetPlacementService, board *service.LeaderboardAggregator, config *service.BettingConfigService, idem guard.Deduplicator) *BetHandler {
	return &BetHandler{placement: placement, board: board, config: config, idem: idem}
}

type placeBatchRequest struct {
	Bets []service.BatchItem `json:"bets"`
}

// PlaceBet handles POST /bets.
func (h *BetHandler) PlaceBet(w http.ResponseWriter, r *http.Request) {
	user, err := bettingUser(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	var input service.PlaceBetInput
	if err := DecodeBody(r, &input); err != nil {
		RespondError(w, err)
		return
	}

	window, err := h.config.Window(r.Context())
	if err != nil {
		RespondError(w, err)
		return
	}

	bet, err := h.placement.PlaceBet(r.Context(), window, user.ID, input)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusCreated, bet)
}

// PlaceBatch handles POST /bets/batch. A repeated Idempotency-Key is rejected
// with 409 while the guard remembers it.
func (h *BetHandler) PlaceBatch(w http.ResponseWriter, r *http.Request) {
	user, err := bettingUser(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	var input placeBatchRequest
	if err := DecodeBody(r, &input); err != nil {
		RespondError(w, err)
		return
	}

	key := r.Header.Get("Idempotency-Key")
	if key != "" && h.idem != nil {
		key = user.ID.String() + ":" + key
		if res := h.idem.Check(r.Context(), key); !res.Allowed {
			RespondError(w, domain.ErrConflict(res.Reason))
			return
		}
	}

	window, err := h.config.Window(r.Context())
	if err == nil {
		var result *domain.BatchResult
		result, err = h.placement.PlaceBetsBatch(r.Context(), window, user.ID, input.Bets)
		if err == nil {
			RespondJSON(w, http.StatusOK, result)
			return
		}
	}
	if key != "" && h.idem != nil {
		h.idem.Remove(r.Context(), key)
	}
	RespondError(w, err)
}

// MyBets handles GET /bets/me?tournament_id&jornada&state&limit.
func (h *BetHandler) MyBets(w http.ResponseWriter, r *http.Request) {
	user := CurrentUser(r.Context())
	filter := repository.BetFilter{UserID: &user.ID}

	var err error
	if filter.TournamentID, err = QueryInt64(r, "tournament_id"); err != nil {
		RespondError(w, err)
		return
	}
	if filter.Jornada, err = QueryInt(r, "jornada"); err != nil {
		RespondError(w, err)
		return
	}
	if s := r.URL.Query().Get("state"); s != "" {
		state, err := domain.ParseBetState(s)
		if err != nil {
			RespondError(w, err)
			return
		}
		filter.State = &state
	}
	limit, err := QueryInt(r, "limit")
	if err != nil {
		RespondError(w, err)
		return
	}
	if limit != nil {
		filter.Limit = *limit
	}

	bets, err := h.board.ListUserBets(r.Context(), filter)
	if err != nil {
		RespondError(w, err)
		return
	}
	if bets == nil {
		bets = []domain.BetView{}
	}
	RespondJSON(w, http.StatusOK, bets)
}

// MyStats handles GET /bets/me/stats.
func (h *BetHandler) MyStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.board.GetUserStats(r.Context(), CurrentUser(r.Context()).ID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, stats)
}

// MyScopes handles GET /bets/me/scopes.
func (h *BetHandler) MyScopes(w http.ResponseWriter, r *http.Request) {
	scopes, err := h.board.ListUserScopes(r.Context(), CurrentUser(r.Context()).ID)
	if err != nil {
		RespondError(w, err)
		return
	}
	if scopes == nil {
		scopes = []domain.UserScope{}
	}
	RespondJSON(w, http.StatusOK, scopes)
}

// MyPoints handles GET /bets/me/points.
func (h *BetHandler) MyPoints(w http.ResponseWriter, r *http.Request) {
	points, err := h.board.ListUserPoints(r.Context(), CurrentUser(r.Context()).ID)
	if err != nil {
		RespondError(w, err)
		return
	}
	if points == nil {
		points = []domain.PointsHistoryEntry{}
	}
	RespondJSON(w, http.StatusOK, points)
}

func bettingUser(r *http.Request) (*domain.User, error) {
	u := CurrentUser(r.Context())
	if u == nil {
		return nil, domain.ErrUnauthorized("authentication required")
	}
	if !u.CanBet {
		return nil, domain.ErrForbidden("betting is disabled for this account")
	}
	return u, nil
}
