package repository

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/quiniela/platform/internal/domain"
	"github.com/quiniela/platform/internal/infra"
)

const betColumns = `b.id, b.user_id, b.match_id, b.tournament_id, b.jornada, b.bet_type,
	b.predicted_team_id, b.stake, b.odds_snapshot, b.potential_return, b.state,
	b.points_earned, b.placed_at`

type betRepo struct{}

// NewBetRepository returns a pgx-backed BetRepository.
func NewBetRepository() BetRepository {
	return &betRepo{}
}

func (r *betRepo) Insert(ctx context.Context, db DBTX, bet *domain.Bet) error {
	_, err := db.Exec(ctx, `
		INSERT INTO bets
		  (id, user_id, match_id, tournament_id, jornada, bet_type, predicted_team_id,
		   stake, odds_snapshot, potential_return, state, points_earned, placed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		bet.ID,
		bet.UserID,
		bet.MatchID,
		bet.TournamentID,
		bet.Jornada,
		string(bet.BetType),
		bet.PredictedTeamID,
		infra.DecimalToNumeric(bet.Stake),
		infra.DecimalToNumeric(bet.OddsSnapshot),
		infra.DecimalToNumeric(bet.PotentialReturn),
		string(bet.State),
		infra.DecimalToNumeric(bet.PointsEarned),
		bet.PlacedAt,
	)
	if err != nil {
		return classify("insert bet", err)
	}
	return nil
}

func (r *betRepo) Exists(ctx context.Context, db DBTX, userID uuid.UUID, matchID int64) (bool, error) {
	var exists bool
	err := db.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM bets WHERE user_id = $1 AND match_id = $2)`,
		userID, matchID).Scan(&exists)
	if err != nil {
		return false, classify("check bet", err)
	}
	return exists, nil
}

func (r *betRepo) ListPendingForUpdate(ctx context.Context, db DBTX, matchID int64) ([]domain.Bet, error) {
	rows, err := db.Query(ctx, `
		SELECT `+betColumns+`
		FROM bets b
		WHERE b.match_id = $1 AND b.state = 'PENDING'
		ORDER BY b.placed_at, b.id
		FOR UPDATE`, matchID)
	if err != nil {
		return nil, classify("list pending bets", err)
	}
	defer rows.Close()

	var bets []domain.Bet
	for rows.Next() {
		b, err := scanBet(rows)
		if err != nil {
			return nil, classify("list pending bets", err)
		}
		bets = append(bets, *b)
	}
	return bets, wrap("list pending bets", rows.Err())
}

// UpdateSettlement only touches bets that are still pending, so a bet can be
// settled at most once per reopen.
func (r *betRepo) UpdateSettlement(ctx context.Context, db DBTX, bet *domain.Bet) error {
	tag, err := db.Exec(ctx, `
		UPDATE bets SET state = $2, points_earned = $3, updated_at = now()
		WHERE id = $1 AND state = 'PENDING'`,
		bet.ID, string(bet.State), infra.DecimalToNumeric(bet.PointsEarned))
	if err != nil {
		return classify("settle bet", err)
	}
	if tag.RowsAffected() != 1 {
		return domain.ErrInvalidState(fmt.Sprintf("bet %s is no longer pending", bet.ID))
	}
	return nil
}

func (r *betRepo) ResetByJornada(ctx context.Context, db DBTX, tournamentID int64, jornada int) (int64, error) {
	tag, err := db.Exec(ctx, `
		UPDATE bets SET state = 'PENDING', points_earned = 0, updated_at = now()
		WHERE match_id IN (
			SELECT id FROM matches WHERE tournament_id = $1 AND jornada = $2
		)`, tournamentID, jornada)
	if err != nil {
		return 0, classify("reset bets", err)
	}
	return tag.RowsAffected(), nil
}

func (r *betRepo) DeleteForUser(ctx context.Context, db DBTX, userID uuid.UUID, tournamentID int64, jornada *int) (int64, error) {
	w := BetFilter{UserID: &userID, TournamentID: &tournamentID, Jornada: jornada}.build()
	tag, err := db.Exec(ctx, `DELETE FROM bets AS b `+w.String(), w.args...)
	if err != nil {
		return 0, classify("delete user bets", err)
	}
	return tag.RowsAffected(), nil
}

func (r *betRepo) List(ctx context.Context, db DBTX, filter BetFilter) ([]domain.BetView, error) {
	w := filter.build()
	query := `
		SELECT ` + betColumns + `, u.username, m.home_team, m.away_team, m.state
		FROM bets b
		JOIN users u ON u.id = b.user_id
		JOIN matches m ON m.id = b.match_id
		` + w.String() + `
		ORDER BY b.placed_at DESC, b.id`
	if filter.Limit > 0 {
		query += ` LIMIT ` + w.arg(filter.Limit)
	}

	rows, err := db.Query(ctx, query, w.args...)
	if err != nil {
		return nil, classify("list bets", err)
	}
	defer rows.Close()

	var out []domain.BetView
	for rows.Next() {
		var sb betScan
		var v domain.BetView
		var matchState string
		dest := append(sb.dest(), &v.Username, &v.HomeTeam, &v.AwayTeam, &matchState)
		if err := rows.Scan(dest...); err != nil {
			return nil, classify("scan bet view", err)
		}
		if v.Bet, err = sb.finish(); err != nil {
			return nil, err
		}
		v.MatchState = domain.MatchState(matchState)
		out = append(out, v)
	}
	return out, wrap("list bets", rows.Err())
}

func (r *betRepo) Tally(ctx context.Context, db DBTX, filter BetFilter) ([]domain.BetTally, error) {
	w := filter.build()
	rows, err := db.Query(ctx, `
		SELECT u.id, u.username, u.active,
		       COUNT(b.id),
		       COUNT(b.id) FILTER (WHERE b.state = 'WON'),
		       COUNT(b.id) FILTER (WHERE b.state = 'LOST'),
		       COUNT(b.id) FILTER (WHERE b.state = 'PENDING'),
		       COALESCE(SUM(b.points_earned) FILTER (WHERE b.state = 'WON'), 0)
		FROM bets b
		JOIN users u ON u.id = b.user_id
		`+w.String()+`
		GROUP BY u.id, u.username, u.active
		ORDER BY u.username`, w.args...)
	if err != nil {
		return nil, classify("tally bets", err)
	}
	defer rows.Close()

	var out []domain.BetTally
	for rows.Next() {
		var t domain.BetTally
		var points pgtype.Numeric
		if err := rows.Scan(&t.UserID, &t.Username, &t.Active, &t.Total, &t.Won, &t.Lost, &t.Pending, &points); err != nil {
			return nil, classify("scan tally", err)
		}
		if t.Points, err = infra.NumericToDecimal(points); err != nil {
			return nil, fmt.Errorf("convert points: %w", err)
		}
		out = append(out, t)
	}
	return out, wrap("tally bets", rows.Err())
}

func (r *betRepo) JornadaScores(ctx context.Context, db DBTX, tournamentID int64) ([]domain.JornadaScore, error) {
	rows, err := db.Query(ctx, `
		SELECT b.jornada, u.id, u.username,
		       COALESCE(SUM(b.points_earned), 0),
		       COUNT(*) FILTER (WHERE b.state = 'WON')
		FROM bets b
		JOIN users u ON u.id = b.user_id
		WHERE b.tournament_id = $1 AND b.state IN ('WON', 'LOST') AND u.active
		GROUP BY b.jornada, u.id, u.username
		ORDER BY b.jornada, 4 DESC, u.username`, tournamentID)
	if err != nil {
		return nil, classify("jornada scores", err)
	}
	defer rows.Close()

	var out []domain.JornadaScore
	for rows.Next() {
		var s domain.JornadaScore
		var points pgtype.Numeric
		if err := rows.Scan(&s.Jornada, &s.UserID, &s.Username, &points, &s.Won); err != nil {
			return nil, classify("scan jornada score", err)
		}
		if s.Points, err = infra.NumericToDecimal(points); err != nil {
			return nil, fmt.Errorf("convert points: %w", err)
		}
		out = append(out, s)
	}
	return out, wrap("jornada scores", rows.Err())
}

func (r *betRepo) UserScopes(ctx context.Context, db DBTX, userID uuid.UUID) ([]domain.UserScope, error) {
	rows, err := db.Query(ctx, `
		SELECT DISTINCT b.tournament_id, t.name, b.jornada
		FROM bets b
		JOIN tournaments t ON t.id = b.tournament_id
		WHERE b.user_id = $1
		ORDER BY b.tournament_id, b.jornada`, userID)
	if err != nil {
		return nil, classify("user scopes", err)
	}
	defer rows.Close()

	byTournament := make(map[int64]*domain.UserScope)
	for rows.Next() {
		var tournamentID int64
		var name string
		var jornada int
		if err := rows.Scan(&tournamentID, &name, &jornada); err != nil {
			return nil, classify("scan user scope", err)
		}
		s, ok := byTournament[tournamentID]
		if !ok {
			s = &domain.UserScope{TournamentID: tournamentID, TournamentName: name}
			byTournament[tournamentID] = s
		}
		s.Jornadas = append(s.Jornadas, jornada)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("user scopes", err)
	}

	out := make([]domain.UserScope, 0, len(byTournament))
	for _, s := range byTournament {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TournamentID < out[j].TournamentID })
	return out, nil
}

// betScan holds the raw columns of a bet before enum and numeric conversion.
type betScan struct {
	bet                            domain.Bet
	betType, state                 string
	stake, odds, potential, points pgtype.Numeric
}

// dest returns scan targets in betColumns order.
func (s *betScan) dest() []interface{} {
	return []interface{}{
		&s.bet.ID, &s.bet.UserID, &s.bet.MatchID, &s.bet.TournamentID, &s.bet.Jornada,
		&s.betType, &s.bet.PredictedTeamID, &s.stake, &s.odds, &s.potential, &s.state,
		&s.points, &s.bet.PlacedAt,
	}
}

func (s *betScan) finish() (domain.Bet, error) {
	b := s.bet
	b.BetType = domain.Outcome(s.betType)
	b.State = domain.BetState(s.state)

	var err error
	if b.Stake, err = infra.NumericToDecimal(s.stake); err != nil {
		return domain.Bet{}, fmt.Errorf("convert stake: %w", err)
	}
	if b.OddsSnapshot, err = infra.NumericToDecimal(s.odds); err != nil {
		return domain.Bet{}, fmt.Errorf("convert odds_snapshot: %w", err)
	}
	if b.PotentialReturn, err = infra.NumericToDecimal(s.potential); err != nil {
		return domain.Bet{}, fmt.Errorf("convert potential_return: %w", err)
	}
	if b.PointsEarned, err = infra.NumericToDecimal(s.points); err != nil {
		return domain.Bet{}, fmt.Errorf("convert points_earned: %w", err)
	}
	return b, nil
}

func scanBet(row pgx.Row) (*domain.Bet, error) {
	var sb betScan
	if err := row.Scan(sb.dest()...); err != nil {
		return nil, err
	}
	b, err := sb.finish()
	if err != nil {
		return nil, err
	}
	return &b, nil
}
