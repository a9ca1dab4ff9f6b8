package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/quiniela/platform/internal/domain"
	"github.com/quiniela/platform/internal/infra"
)

type pointsHistoryRepo struct{}

// NewPointsHistoryRepository returns a pgx-backed PointsHistoryRepository.
func NewPointsHistoryRepository() PointsHistoryRepository {
	return &pointsHistoryRepo{}
}

func (r *pointsHistoryRepo) Append(ctx context.Context, db DBTX, e *domain.PointsHistoryEntry) error {
	_, err := db.Exec(ctx, `
		INSERT INTO points_history (id, user_id, bet_id, match_id, tournament_id, points_earned, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		e.ID, e.UserID, e.BetID, e.MatchID, e.TournamentID,
		infra.DecimalToNumeric(e.PointsEarned), e.CreatedAt)
	if err != nil {
		return classify("append points history", err)
	}
	return nil
}

func (r *pointsHistoryRepo) DeleteByJornada(ctx context.Context, db DBTX, tournamentID int64, jornada int) (int64, error) {
	tag, err := db.Exec(ctx, `
		DELETE FROM points_history
		WHERE bet_id IN (
			SELECT b.id FROM bets b
			JOIN matches m ON m.id = b.match_id
			WHERE m.tournament_id = $1 AND m.jornada = $2
		)`, tournamentID, jornada)
	if err != nil {
		return 0, classify("delete points history", err)
	}
	return tag.RowsAffected(), nil
}

func (r *pointsHistoryRepo) DeleteForUser(ctx context.Context, db DBTX, userID uuid.UUID, tournamentID int64, jornada *int) (int64, error) {
	w := BetFilter{UserID: &userID, TournamentID: &tournamentID, Jornada: jornada}.build()
	tag, err := db.Exec(ctx, `
		DELETE FROM points_history
		WHERE bet_id IN (SELECT b.id FROM bets b `+w.String()+`)`, w.args...)
	if err != nil {
		return 0, classify("delete user points history", err)
	}
	return tag.RowsAffected(), nil
}

func (r *pointsHistoryRepo) ListByUser(ctx context.Context, db DBTX, userID uuid.UUID) ([]domain.PointsHistoryEntry, error) {
	rows, err := db.Query(ctx, `
		SELECT id, user_id, bet_id, match_id, tournament_id, points_earned, created_at
		FROM points_history
		WHERE user_id = $1
		ORDER BY created_at DESC, id`, userID)
	if err != nil {
		return nil, classify("list points history", err)
	}
	defer rows.Close()

	var out []domain.PointsHistoryEntry
	for rows.Next() {
		var e domain.PointsHistoryEntry
		var points pgtype.Numeric
		if err := rows.Scan(&e.ID, &e.UserID, &e.BetID, &e.MatchID, &e.TournamentID, &points, &e.CreatedAt); err != nil {
			return nil, classify("scan points history", err)
		}
		if e.PointsEarned, err = infra.NumericToDecimal(points); err != nil {
			return nil, fmt.Errorf("convert points: %w", err)
		}
		out = append(out, e)
	}
	return out, wrap("list points history", rows.Err())
}
