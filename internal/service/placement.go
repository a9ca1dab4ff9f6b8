package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/quiniela/platform/internal/domain"
	"github.com/quiniela/platform/internal/infra"
	"github.com/quiniela/platform/internal/repository"
	"github.com/shopspring/decimal"
)

// BetPlacementService records predictions against the active odds.
type BetPlacementService struct {
	tx       repository.Transactor
	matches  repository.MatchRepository
	odds     repository.OddsRepository
	bets     repository.BetRepository
	outbox   repository.OutboxRepository
	metrics  *infra.Metrics
	logger   *slog.Logger
	maxBatch int
	now      func() time.Time
}

// NewBetPlacementService creates a BetPlacementService. maxBatch caps the
// number of items accepted by PlaceBetsBatch.
func NewBetPlacementService(
	tx repository.Transactor,
	matches repository.MatchRepository,
	odds repository.OddsRepository,
	bets repository.BetRepository,
	outbox repository.OutboxRepository,
	metrics *infra.Metrics,
	logger *slog.Logger,
	maxBatch int,
) *BetPlacementService {
	return &BetPlacementService{
		tx:       tx,
		matches:  matches,
		odds:     odds,
		bets:     bets,
		outbox:   outbox,
		metrics:  metrics,
		logger:   logger,
		maxBatch: maxBatch,
		now:      time.Now,
	}
}

// PlaceBetInput is a placement request as received from a client.
type PlaceBetInput struct {
	MatchID         int64            `json:"match_id"`
	BetType         string           `json:"bet_type"`
	PredictedTeamID *int64           `json:"predicted_team_id,omitempty"`
	Stake           *decimal.Decimal `json:"stake,omitempty"`
}

// BatchItem is one entry of a batch placement. Labels are echoed back untouched.
type BatchItem struct {
	PlaceBetInput
	Labels *domain.MatchLabels `json:"labels,omitempty"`
}

// PlaceBet validates the input and records a pending bet in one transaction.
// The match row is share-locked so settlement of the same match waits for it.
func (s *BetPlacementService) PlaceBet(ctx context.Context, window domain.BettingWindow, userID uuid.UUID, in PlaceBetInput) (*domain.Bet, error) {
	req, err := domain.NewPlaceBetRequest(in.MatchID, in.BetType, in.PredictedTeamID, in.Stake)
	if err != nil {
		s.metrics.BetPlaced(domain.CodeOf(err))
		return nil, err
	}

	var bet *domain.Bet
	err = s.tx.WithinTx(ctx, func(ctx context.Context, tx repository.DBTX) error {
		match, err := s.matches.Get(ctx, tx, req.MatchID, repository.LockShare)
		if err != nil {
			return err
		}
		if match == nil {
			return domain.ErrNotFound("match", strconv.FormatInt(req.MatchID, 10))
		}
		if !match.AcceptsBets() {
			return domain.ErrInvalidState(fmt.Sprintf("match %d is %s and no longer accepts bets", match.ID, match.State))
		}
		if err := window.Admit(match); err != nil {
			return err
		}
		if err := match.CheckPredictedTeam(req); err != nil {
			return err
		}
		exists, err := s.bets.Exists(ctx, tx, userID, match.ID)
		if err != nil {
			return err
		}
		if exists {
			return domain.ErrConflict("a bet already exists for this user and match")
		}

		odds, err := s.odds.FindActive(ctx, tx, match.ID, req.BetType)
		if err != nil {
			return err
		}
		if odds == nil {
			return domain.ErrOddsNotFound(match.ID, req.BetType)
		}

		b := domain.NewBet(userID, match, req, odds.Value, s.now())
		if err := s.bets.Insert(ctx, tx, b); err != nil {
			return err
		}
		if err := s.outbox.Insert(ctx, tx, domain.NewBetPlacedEvent(b)); err != nil {
			return err
		}
		bet = b
		return nil
	})
	if err != nil {
		s.metrics.BetPlaced(domain.CodeOf(err))
		if domain.KindOf(err) == domain.KindInternal {
			s.logger.Error("place bet failed", "user_id", userID, "match_id", req.MatchID, "error", err)
		}
		return nil, err
	}

	s.metrics.BetPlaced("ok")
	s.logger.Info("bet placed",
		"bet_id", bet.ID,
		"user_id", userID,
		"match_id", bet.MatchID,
		"bet_type", bet.BetType,
		"odds", bet.OddsSnapshot.String(),
	)
	return bet, nil
}

// PlaceBetsBatch places each item independently. One item failing never
// undoes another; failures are reported per item with a short reason. Only
// an empty or oversized batch fails the whole call.
func (s *BetPlacementService) PlaceBetsBatch(ctx context.Context, window domain.BettingWindow, userID uuid.UUID, items []BatchItem) (*domain.BatchResult, error) {
	if len(items) == 0 {
		return nil, domain.ErrValidation("at least one bet is required")
	}
	if s.maxBatch > 0 && len(items) > s.maxBatch {
		return nil, domain.ErrValidation(fmt.Sprintf("a batch holds at most %d bets, got %d", s.maxBatch, len(items)))
	}

	result := &domain.BatchResult{
		Succeeded: make([]domain.BatchItemResult, 0, len(items)),
		Failed:    []domain.BatchItemResult{},
	}
	for _, item := range items {
		echo := domain.BatchItemResult{
			MatchID:         item.MatchID,
			BetType:         item.BetType,
			PredictedTeamID: item.PredictedTeamID,
			Labels:          item.Labels,
		}

		bet, err := s.PlaceBet(ctx, window, userID, item.PlaceBetInput)
		if err != nil {
			echo.Reason = domain.BatchFailureReason(err)
			result.Failed = append(result.Failed, echo)
			continue
		}
		id := bet.ID
		echo.BetID = &id
		result.Succeeded = append(result.Succeeded, echo)
	}

	s.logger.Info("bet batch processed",
		"user_id", userID,
		"succeeded", len(result.Succeeded),
		"failed", len(result.Failed),
	)
	return result, nil
}
