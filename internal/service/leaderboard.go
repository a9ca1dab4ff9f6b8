package service

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/google/uuid"
	"github.com/quiniela/platform/internal/domain"
	"github.com/quiniela/platform/internal/repository"
)

// LeaderboardAggregator computes standings and per-user views from the bet
// ledger. Every call reads the store directly; nothing is cached.
type LeaderboardAggregator struct {
	db          repository.DBTX
	bets        repository.BetRepository
	history     repository.PointsHistoryRepository
	matches     repository.MatchRepository
	tournaments repository.TournamentRepository
	users       repository.UserRepository
	logger      *slog.Logger
}

// NewLeaderboardAggregator creates a LeaderboardAggregator.
func NewLeaderboardAggregator(
	db repository.DBTX,
	bets repository.BetRepository,
	history repository.PointsHistoryRepository,
	matches repository.MatchRepository,
	tournaments repository.TournamentRepository,
	users repository.UserRepository,
	logger *slog.Logger,
) *LeaderboardAggregator {
	return &LeaderboardAggregator{
		db:          db,
		bets:        bets,
		history:     history,
		matches:     matches,
		tournaments: tournaments,
		users:       users,
		logger:      logger,
	}
}

// GetStandings ranks every user with bets in a tournament, or in one jornada of it.
func (a *LeaderboardAggregator) GetStandings(ctx context.Context, q domain.StandingsQuery) ([]domain.StandingRow, error) {
	if q.TournamentID <= 0 {
		return nil, domain.ErrValidation("tournament_id is required")
	}
	if q.Jornada != nil && *q.Jornada <= 0 {
		return nil, domain.ErrValidation("jornada must be positive")
	}

	tallies, err := a.bets.Tally(ctx, a.db, repository.BetFilter{
		TournamentID:    &q.TournamentID,
		Jornada:         q.Jornada,
		ActiveUsersOnly: !q.IncludeInactive,
	})
	if err != nil {
		return nil, err
	}
	return domain.RankStandings(tallies), nil
}

// GetUserStats summarises a user's bets across all tournaments.
func (a *LeaderboardAggregator) GetUserStats(ctx context.Context, userID uuid.UUID) (domain.UserStats, error) {
	tallies, err := a.bets.Tally(ctx, a.db, repository.BetFilter{UserID: &userID})
	if err != nil {
		return domain.UserStats{}, err
	}
	if len(tallies) == 0 {
		return domain.NewUserStats(userID, nil), nil
	}
	return domain.NewUserStats(userID, &tallies[0]), nil
}

// ListUserBets returns one user's bets, narrowed by the remaining filter fields.
func (a *LeaderboardAggregator) ListUserBets(ctx context.Context, filter repository.BetFilter) ([]domain.BetView, error) {
	if filter.UserID == nil {
		return nil, domain.ErrValidation("user is required")
	}
	return a.bets.List(ctx, a.db, filter)
}

// ListUserBetsOverview is the administrator's view of one user in a
// tournament: their bets, newest first, and the tally over the same scope.
func (a *LeaderboardAggregator) ListUserBetsOverview(ctx context.Context, userID uuid.UUID, tournamentID int64, jornada *int) (*domain.UserBetsOverview, error) {
	if jornada != nil && *jornada <= 0 {
		return nil, domain.ErrValidation("jornada must be positive")
	}
	if err := a.requireTournament(ctx, tournamentID); err != nil {
		return nil, err
	}
	user, err := a.users.FindByID(ctx, a.db, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrNotFound("user", userID.String())
	}

	filter := repository.BetFilter{UserID: &userID, TournamentID: &tournamentID, Jornada: jornada}
	bets, err := a.ListUserBets(ctx, filter)
	if err != nil {
		return nil, err
	}
	if bets == nil {
		bets = []domain.BetView{}
	}
	tallies, err := a.bets.Tally(ctx, a.db, filter)
	if err != nil {
		return nil, err
	}
	var tally *domain.BetTally
	if len(tallies) > 0 {
		tally = &tallies[0]
	}
	return &domain.UserBetsOverview{
		UserID:   user.ID,
		Username: user.Username,
		Active:   user.Active,
		Stats:    domain.NewUserStats(user.ID, tally),
		Bets:     bets,
	}, nil
}

// ListUserScopes lists the tournaments and jornadas where a user has bets.
func (a *LeaderboardAggregator) ListUserScopes(ctx context.Context, userID uuid.UUID) ([]domain.UserScope, error) {
	return a.bets.UserScopes(ctx, a.db, userID)
}

// ListUserPoints returns a user's awarded points, newest first.
func (a *LeaderboardAggregator) ListUserPoints(ctx context.Context, userID uuid.UUID) ([]domain.PointsHistoryEntry, error) {
	return a.history.ListByUser(ctx, a.db, userID)
}

// GetJornadaWinners returns the top scorer of every settled jornada of a tournament.
func (a *LeaderboardAggregator) GetJornadaWinners(ctx context.Context, tournamentID int64) ([]domain.JornadaWinner, error) {
	if err := a.requireTournament(ctx, tournamentID); err != nil {
		return nil, err
	}
	scores, err := a.bets.JornadaScores(ctx, a.db, tournamentID)
	if err != nil {
		return nil, err
	}
	return domain.PickJornadaWinners(scores), nil
}

// ListPredictions shows everyone's picks for the active jornada. Picks stay
// hidden while betting is open.
func (a *LeaderboardAggregator) ListPredictions(ctx context.Context, window domain.BettingWindow) ([]domain.BetView, error) {
	if !window.Closed {
		return nil, domain.ErrForbidden("predictions are visible once betting closes")
	}
	if window.TournamentID == nil {
		return nil, domain.ErrInvalidState("no active tournament is configured")
	}
	return a.bets.List(ctx, a.db, repository.BetFilter{
		TournamentID:    window.TournamentID,
		Jornada:         window.Jornada,
		ActiveUsersOnly: true,
	})
}

// ListFixtureMatches returns the matches of a jornada with their bet counts.
func (a *LeaderboardAggregator) ListFixtureMatches(ctx context.Context, tournamentID int64, jornada int) ([]domain.FixtureMatch, error) {
	if jornada <= 0 {
		return nil, domain.ErrValidation("jornada must be positive")
	}
	if err := a.requireTournament(ctx, tournamentID); err != nil {
		return nil, err
	}
	return a.matches.ListWithBetCounts(ctx, a.db, tournamentID, jornada)
}

// ListOpenMatches returns the matches a user can still bet on under the
// window. Nothing is open while betting is closed.
func (a *LeaderboardAggregator) ListOpenMatches(ctx context.Context, window domain.BettingWindow, userID uuid.UUID) ([]domain.Match, error) {
	if window.Closed {
		return []domain.Match{}, nil
	}
	matches, err := a.matches.ListOpen(ctx, a.db, userID, window.TournamentID, window.Jornada)
	if err != nil {
		return nil, err
	}
	if matches == nil {
		matches = []domain.Match{}
	}
	return matches, nil
}

func (a *LeaderboardAggregator) requireTournament(ctx context.Context, id int64) error {
	if id <= 0 {
		return domain.ErrValidation("tournament_id is required")
	}
	t, err := a.tournaments.FindByID(ctx, a.db, id)
	if err != nil {
		return err
	}
	if t == nil {
		return domain.ErrNotFound("tournament", strconv.FormatInt(id, 10))
	}
	return nil
}
