package service

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/quiniela/platform/internal/domain"
	"github.com/quiniela/platform/internal/repository"
)

// BettingConfigService reads and updates the betting window.
type BettingConfigService struct {
	db          repository.DBTX
	tx          repository.Transactor
	config      repository.ConfigRepository
	tournaments repository.TournamentRepository
	logger      *slog.Logger
}

// NewBettingConfigService creates a BettingConfigService.
func NewBettingConfigService(db repository.DBTX, tx repository.Transactor, config repository.ConfigRepository, tournaments repository.TournamentRepository, logger *slog.Logger) *BettingConfigService {
	return &BettingConfigService{db: db, tx: tx, config: config, tournaments: tournaments, logger: logger}
}

// Window returns the betting window currently in force.
func (s *BettingConfigService) Window(ctx context.Context) (domain.BettingWindow, error) {
	return s.config.GetWindow(ctx, s.db)
}

// UpdateWindow stores a new betting window. A jornada needs a tournament.
func (s *BettingConfigService) UpdateWindow(ctx context.Context, w domain.BettingWindow) (domain.BettingWindow, error) {
	if w.Jornada != nil {
		if *w.Jornada <= 0 {
			return domain.BettingWindow{}, domain.ErrValidation("active_jornada must be positive")
		}
		if w.TournamentID == nil {
			return domain.BettingWindow{}, domain.ErrValidation("active_jornada requires active_tournament_id")
		}
	}
	if w.TournamentID != nil {
		t, err := s.tournaments.FindByID(ctx, s.db, *w.TournamentID)
		if err != nil {
			return domain.BettingWindow{}, err
		}
		if t == nil {
			return domain.BettingWindow{}, domain.ErrNotFound("tournament", strconv.FormatInt(*w.TournamentID, 10))
		}
	}

	err := s.tx.WithinTx(ctx, func(ctx context.Context, tx repository.DBTX) error {
		return s.config.SaveWindow(ctx, tx, w)
	})
	if err != nil {
		return domain.BettingWindow{}, err
	}
	s.logger.Info("betting window updated",
		"closed", w.Closed,
		"tournament_id", w.TournamentID,
		"jornada", w.Jornada,
	)
	return w, nil
}
