package settlement

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/quiniela/platform/internal/domain"
	"github.com/quiniela/platform/internal/infra"
	"github.com/quiniela/platform/internal/repository"
)

// SettlementEngine resolves the pending bets of a finished match.
type SettlementEngine struct {
	tx      repository.Transactor
	matches repository.MatchRepository
	bets    repository.BetRepository
	history repository.PointsHistoryRepository
	outbox  repository.OutboxRepository
	metrics *infra.Metrics
	logger  *slog.Logger
	now     func() time.Time
}

// NewSettlementEngine creates a SettlementEngine.
func NewSettlementEngine(
	tx repository.Transactor,
	matches repository.MatchRepository,
	bets repository.BetRepository,
	history repository.PointsHistoryRepository,
	outbox repository.OutboxRepository,
	metrics *infra.Metrics,
	logger *slog.Logger,
) *SettlementEngine {
	return &SettlementEngine{
		tx:      tx,
		matches: matches,
		bets:    bets,
		history: history,
		outbox:  outbox,
		metrics: metrics,
		logger:  logger,
		now:     time.Now,
	}
}

// SettleMatch settles every pending bet of a match against its recorded score.
//
// The match row is locked for update, so placements on the same match wait
// until settlement commits. Bets that are already settled are not touched,
// which makes repeated calls return zero counts. If any write fails the
// whole settlement is rolled back.
func (e *SettlementEngine) SettleMatch(ctx context.Context, matchID int64) (*domain.SettlementResult, error) {
	start := e.now()

	var result *domain.SettlementResult
	err := e.tx.WithinTx(ctx, func(ctx context.Context, tx repository.DBTX) error {
		match, err := e.matches.Get(ctx, tx, matchID, repository.LockUpdate)
		if err != nil {
			return err
		}
		if match == nil {
			return domain.ErrNotFound("match", strconv.FormatInt(matchID, 10))
		}
		outcome, err := match.Outcome()
		if err != nil {
			return err
		}

		pending, err := e.bets.ListPendingForUpdate(ctx, tx, matchID)
		if err != nil {
			return err
		}

		res := &domain.SettlementResult{
			MatchID:      match.ID,
			TournamentID: match.TournamentID,
			Outcome:      outcome,
		}
		if len(pending) == 0 {
			result = res
			return nil
		}

		now := e.now()
		for i := range pending {
			bet := &pending[i]
			won := bet.Settle(outcome)
			if err := e.bets.UpdateSettlement(ctx, tx, bet); err != nil {
				return err
			}
			if won {
				if err := e.history.Append(ctx, tx, domain.NewPointsHistoryEntry(bet, now)); err != nil {
					return err
				}
				res.Won++
			} else {
				res.Lost++
			}
		}
		res.TotalSettled = res.Won + res.Lost

		if err := e.outbox.Insert(ctx, tx, domain.NewMatchSettledEvent(res)); err != nil {
			return err
		}
		result = res
		return nil
	})
	if err != nil {
		e.logger.Warn("settlement failed", "match_id", matchID, "error", err)
		return nil, err
	}

	e.metrics.MatchSettled(result.Won, result.Lost, e.now().Sub(start))
	e.logger.Info("match settled",
		"match_id", matchID,
		"outcome", result.Outcome,
		"won", result.Won,
		"lost", result.Lost,
	)
	return result, nil
}
