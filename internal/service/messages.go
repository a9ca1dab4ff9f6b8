package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/quiniela/platform/internal/domain"
	"github.com/quiniela/platform/internal/repository"
)

// WinnerMessageService lets the top scorer of a jornada leave one message for it.
type WinnerMessageService struct {
	db       repository.DBTX
	board    *LeaderboardAggregator
	messages repository.WinnerMessageRepository
	logger   *slog.Logger
	now      func() time.Time
}

// NewWinnerMessageService creates a WinnerMessageService. Winners are
// decided by board.
func NewWinnerMessageService(db repository.DBTX, board *LeaderboardAggregator, messages repository.WinnerMessageRepository, logger *slog.Logger) *WinnerMessageService {
	return &WinnerMessageService{db: db, board: board, messages: messages, logger: logger, now: time.Now}
}

// ListWinnerMessages returns a tournament's messages ordered by jornada.
func (s *WinnerMessageService) ListWinnerMessages(ctx context.Context, tournamentID int64) ([]domain.WinnerMessage, error) {
	if err := s.board.requireTournament(ctx, tournamentID); err != nil {
		return nil, err
	}
	msgs, err := s.messages.ListByTournament(ctx, s.db, tournamentID)
	if err != nil {
		return nil, err
	}
	if msgs == nil {
		msgs = []domain.WinnerMessage{}
	}
	return msgs, nil
}

// PostWinnerMessage stores the message of a jornada's winner. Anyone else is
// refused, and a jornada that already has a message keeps it.
func (s *WinnerMessageService) PostWinnerMessage(ctx context.Context, userID uuid.UUID, tournamentID int64, jornada int, text string) (*domain.WinnerMessage, error) {
	msg, err := domain.NewWinnerMessage(tournamentID, jornada, userID, text, s.now().UTC())
	if err != nil {
		return nil, err
	}

	winners, err := s.board.GetJornadaWinners(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	winner, ok := domain.WinnerOf(winners, jornada)
	if !ok {
		return nil, domain.ErrNotFound("winner of jornada", fmt.Sprintf("%d/%d", tournamentID, jornada))
	}
	if winner.UserID != userID {
		return nil, domain.ErrForbidden(fmt.Sprintf("only the winner of jornada %d may leave a message", jornada))
	}

	if err := s.messages.Insert(ctx, s.db, msg); err != nil {
		return nil, err
	}
	msg.Username = winner.Username

	s.logger.Info("winner message saved",
		"tournament_id", tournamentID,
		"jornada", jornada,
		"user_id", userID,
	)
	return msg, nil
}
