package settlement

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/google/uuid"
	"github.com/quiniela/platform/internal/domain"
	"github.com/quiniela/platform/internal/infra"
	"github.com/quiniela/platform/internal/repository"
)

// ReplayResetService rewinds a jornada so it can be played and settled again.
type ReplayResetService struct {
	tx          repository.Transactor
	tournaments repository.TournamentRepository
	matches     repository.MatchRepository
	bets        repository.BetRepository
	history     repository.PointsHistoryRepository
	users       repository.UserRepository
	outbox      repository.OutboxRepository
	metrics     *infra.Metrics
	logger      *slog.Logger
}

// NewReplayResetService creates a ReplayResetService.
func NewReplayResetService(
	tx repository.Transactor,
	tournaments repository.TournamentRepository,
	matches repository.MatchRepository,
	bets repository.BetRepository,
	history repository.PointsHistoryRepository,
	users repository.UserRepository,
	outbox repository.OutboxRepository,
	metrics *infra.Metrics,
	logger *slog.Logger,
) *ReplayResetService {
	return &ReplayResetService{
		tx:          tx,
		tournaments: tournaments,
		matches:     matches,
		bets:        bets,
		history:     history,
		users:       users,
		outbox:      outbox,
		metrics:     metrics,
		logger:      logger,
	}
}

// ResetMatchResults reopens every bet of a jornada, deletes the points they
// earned and clears the match scores, all in one transaction.
func (s *ReplayResetService) ResetMatchResults(ctx context.Context, tournamentID int64, jornada int) (*domain.ResetResult, error) {
	if jornada <= 0 {
		return nil, domain.ErrValidation("jornada must be positive")
	}

	var result *domain.ResetResult
	err := s.tx.WithinTx(ctx, func(ctx context.Context, tx repository.DBTX) error {
		if err := s.requireTournament(ctx, tx, tournamentID); err != nil {
			return err
		}
		matches, err := s.matches.ListByJornada(ctx, tx, tournamentID, jornada)
		if err != nil {
			return err
		}
		if len(matches) == 0 {
			return domain.ErrNotFound("jornada", fmt.Sprintf("%d of tournament %d", jornada, tournamentID))
		}

		if _, err := s.history.DeleteByJornada(ctx, tx, tournamentID, jornada); err != nil {
			return err
		}
		betsReset, err := s.bets.ResetByJornada(ctx, tx, tournamentID, jornada)
		if err != nil {
			return err
		}
		matchesReset, err := s.matches.ResetResults(ctx, tx, tournamentID, jornada)
		if err != nil {
			return err
		}

		res := &domain.ResetResult{
			TournamentID: tournamentID,
			Jornada:      jornada,
			MatchesReset: matchesReset,
			BetsReset:    betsReset,
		}
		if err := s.outbox.Insert(ctx, tx, domain.NewFixtureResetEvent(res)); err != nil {
			return err
		}
		result = res
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.FixtureReset()
	s.logger.Info("jornada reset",
		"tournament_id", tournamentID,
		"jornada", jornada,
		"matches_reset", result.MatchesReset,
		"bets_reset", result.BetsReset,
	)
	return result, nil
}

// PurgeUserBets deletes one user's bets and points in a tournament, or in a
// single jornada of it when jornada is set.
func (s *ReplayResetService) PurgeUserBets(ctx context.Context, userID uuid.UUID, tournamentID int64, jornada *int) (*domain.PurgeResult, error) {
	if jornada != nil && *jornada <= 0 {
		return nil, domain.ErrValidation("jornada must be positive")
	}

	var result *domain.PurgeResult
	err := s.tx.WithinTx(ctx, func(ctx context.Context, tx repository.DBTX) error {
		user, err := s.users.FindByID(ctx, tx, userID)
		if err != nil {
			return err
		}
		if user == nil {
			return domain.ErrNotFound("user", userID.String())
		}
		if err := s.requireTournament(ctx, tx, tournamentID); err != nil {
			return err
		}

		historyDeleted, err := s.history.DeleteForUser(ctx, tx, userID, tournamentID, jornada)
		if err != nil {
			return err
		}
		betsDeleted, err := s.bets.DeleteForUser(ctx, tx, userID, tournamentID, jornada)
		if err != nil {
			return err
		}

		res := &domain.PurgeResult{
			UserID:         userID,
			TournamentID:   tournamentID,
			Jornada:        jornada,
			BetsDeleted:    betsDeleted,
			HistoryDeleted: historyDeleted,
		}
		if betsDeleted > 0 {
			if err := s.outbox.Insert(ctx, tx, domain.NewUserBetsPurgedEvent(res)); err != nil {
				return err
			}
		}
		result = res
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("user bets purged",
		"user_id", userID,
		"tournament_id", tournamentID,
		"bets_deleted", result.BetsDeleted,
		"history_deleted", result.HistoryDeleted,
	)
	return result, nil
}

func (s *ReplayResetService) requireTournament(ctx context.Context, tx repository.DBTX, id int64) error {
	t, err := s.tournaments.FindByID(ctx, tx, id)
	if err != nil {
		return err
	}
	if t == nil {
		return domain.ErrNotFound("tournament", strconv.FormatInt(id, 10))
	}
	return nil
}
