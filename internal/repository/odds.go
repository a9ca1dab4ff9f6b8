package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/quiniela/platform/internal/domain"
	"github.com/quiniela/platform/internal/infra"
)

type oddsRepo struct{}

// NewOddsRepository returns a pgx-backed OddsRepository.
func NewOddsRepository() OddsRepository {
	return &oddsRepo{}
}

func (r *oddsRepo) FindActive(ctx context.Context, db DBTX, matchID int64, outcome domain.Outcome) (*domain.Odds, error) {
	row := db.QueryRow(ctx, `
		SELECT match_id, outcome, odds, team_id, updated_at
		FROM match_odds
		WHERE match_id = $1 AND outcome = $2 AND active`, matchID, string(outcome))
	o, err := scanOdds(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, classify("get odds", err)
	}
	return o, nil
}

func (r *oddsRepo) ListActive(ctx context.Context, db DBTX, matchID int64) ([]domain.Odds, error) {
	rows, err := db.Query(ctx, `
		SELECT match_id, outcome, odds, team_id, updated_at
		FROM match_odds
		WHERE match_id = $1 AND active
		ORDER BY CASE outcome WHEN 'HOME' THEN 1 WHEN 'DRAW' THEN 2 ELSE 3 END`, matchID)
	if err != nil {
		return nil, classify("list odds", err)
	}
	defer rows.Close()

	var out []domain.Odds
	for rows.Next() {
		o, err := scanOdds(rows)
		if err != nil {
			return nil, classify("list odds", err)
		}
		out = append(out, *o)
	}
	return out, wrap("list odds", rows.Err())
}

func (r *oddsRepo) Replace(ctx context.Context, db DBTX, matchID int64, odds []domain.Odds) error {
	if _, err := db.Exec(ctx, `
		UPDATE match_odds SET active = FALSE, updated_at = now()
		WHERE match_id = $1 AND active`, matchID); err != nil {
		return classify("deactivate odds", err)
	}

	for _, o := range odds {
		_, err := db.Exec(ctx, `
			INSERT INTO match_odds (match_id, outcome, odds, team_id, active)
			VALUES ($1, $2, $3, $4, TRUE)`,
			matchID, string(o.Outcome), infra.DecimalToNumeric(o.Value), o.TeamID)
		if err != nil {
			return classify("insert odds", err)
		}
	}
	return nil
}

func scanOdds(row pgx.Row) (*domain.Odds, error) {
	var o domain.Odds
	var outcome string
	var value pgtype.Numeric
	if err := row.Scan(&o.MatchID, &outcome, &value, &o.TeamID, &o.UpdatedAt); err != nil {
		return nil, err
	}
	o.Outcome = domain.Outcome(outcome)

	var err error
	if o.Value, err = infra.NumericToDecimal(value); err != nil {
		return nil, fmt.Errorf("convert odds: %w", err)
	}
	return &o, nil
}
