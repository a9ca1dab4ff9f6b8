package repository

import (
	"context"
	"fmt"

	"github.com/quiniela/platform/internal/domain"
)

type winnerMessageRepo struct{}

// NewWinnerMessageRepository returns a pgx-backed WinnerMessageRepository.
func NewWinnerMessageRepository() WinnerMessageRepository {
	return &winnerMessageRepo{}
}

func (r *winnerMessageRepo) Insert(ctx context.Context, db DBTX, msg *domain.WinnerMessage) error {
	_, err := db.Exec(ctx, `
		INSERT INTO winner_messages (tournament_id, jornada, user_id, message, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		msg.TournamentID, msg.Jornada, msg.UserID, msg.Message, msg.CreatedAt)
	if err != nil {
		return classify("insert winner message", err)
	}
	return nil
}

func (r *winnerMessageRepo) ListByTournament(ctx context.Context, db DBTX, tournamentID int64) ([]domain.WinnerMessage, error) {
	rows, err := db.Query(ctx, `
		SELECT w.tournament_id, w.jornada, w.user_id, u.username, w.message, w.created_at
		FROM winner_messages w
		JOIN users u ON u.id = w.user_id
		WHERE w.tournament_id = $1
		ORDER BY w.jornada`, tournamentID)
	if err != nil {
		return nil, classify("list winner messages", err)
	}
	defer rows.Close()

	var out []domain.WinnerMessage
	for rows.Next() {
		var m domain.WinnerMessage
		if err := rows.Scan(&m.TournamentID, &m.Jornada, &m.UserID, &m.Username, &m.Message, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan winner message: %w", err)
		}
		out = append(out, m)
	}
	return out, wrap("list winner messages", rows.Err())
}
