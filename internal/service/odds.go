package service

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/quiniela/platform/internal/domain"
	"github.com/quiniela/platform/internal/repository"
	"github.com/shopspring/decimal"
)

// OddsService reads and republishes the odds of a match.
type OddsService struct {
	db      repository.DBTX
	tx      repository.Transactor
	matches repository.MatchRepository
	odds    repository.OddsRepository
	logger  *slog.Logger
}

// NewOddsService creates an OddsService.
func NewOddsService(db repository.DBTX, tx repository.Transactor, matches repository.MatchRepository, odds repository.OddsRepository, logger *slog.Logger) *OddsService {
	return &OddsService{db: db, tx: tx, matches: matches, odds: odds, logger: logger}
}

// OddsInput is one price of a replacement set.
type OddsInput struct {
	Outcome string          `json:"outcome"`
	Value   decimal.Decimal `json:"value"`
}

// GetOdds returns the active odds of a match in HOME, DRAW, AWAY order.
func (s *OddsService) GetOdds(ctx context.Context, matchID int64) ([]domain.Odds, error) {
	m, err := s.matches.Get(ctx, s.db, matchID, repository.LockNone)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, domain.ErrNotFound("match", strconv.FormatInt(matchID, 10))
	}
	return s.odds.ListActive(ctx, s.db, matchID)
}

// ReplaceOdds swaps the active odds of a match for a complete new set. Each
// price is tied to the team its outcome backs. Bets already placed keep their snapshot.
func (s *OddsService) ReplaceOdds(ctx context.Context, matchID int64, in []OddsInput) ([]domain.Odds, error) {
	set := make([]domain.Odds, 0, len(in))
	for _, o := range in {
		outcome, err := domain.ParseOutcome(o.Outcome)
		if err != nil {
			return nil, err
		}
		set = append(set, domain.Odds{MatchID: matchID, Outcome: outcome, Value: o.Value})
	}
	if err := domain.ValidateOddsSet(set); err != nil {
		return nil, err
	}

	err := s.tx.WithinTx(ctx, func(ctx context.Context, tx repository.DBTX) error {
		m, err := s.matches.Get(ctx, tx, matchID, repository.LockShare)
		if err != nil {
			return err
		}
		if m == nil {
			return domain.ErrNotFound("match", strconv.FormatInt(matchID, 10))
		}
		for i := range set {
			set[i].TeamID = m.TeamFor(set[i].Outcome)
		}
		return s.odds.Replace(ctx, tx, matchID, set)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("odds replaced", "match_id", matchID)
	return s.odds.ListActive(ctx, s.db, matchID)
}
