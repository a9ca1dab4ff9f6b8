package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/quiniela/platform/internal/domain"
)

const matchColumns = `m.id, m.tournament_id, m.jornada, m.home_team_id, m.away_team_id,
	m.home_team, m.away_team, m.state, m.goals_home, m.goals_away, m.kickoff_at`

type matchRepo struct{}

// NewMatchRepository returns a pgx-backed MatchRepository.
func NewMatchRepository() MatchRepository {
	return &matchRepo{}
}

func (r *matchRepo) Get(ctx context.Context, db DBTX, id int64, lock RowLock) (*domain.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches m WHERE m.id = $1`
	switch lock {
	case LockShare:
		query += ` FOR SHARE`
	case LockUpdate:
		query += ` FOR UPDATE`
	}

	m, err := scanMatch(db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, classify("get match", err)
	}
	return m, nil
}

func (r *matchRepo) ListByJornada(ctx context.Context, db DBTX, tournamentID int64, jornada int) ([]domain.Match, error) {
	rows, err := db.Query(ctx, `
		SELECT `+matchColumns+`
		FROM matches m
		WHERE m.tournament_id = $1 AND m.jornada = $2
		ORDER BY m.kickoff_at NULLS LAST, m.id`, tournamentID, jornada)
	if err != nil {
		return nil, classify("list matches", err)
	}
	defer rows.Close()

	var matches []domain.Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		matches = append(matches, *m)
	}
	return matches, wrap("list matches", rows.Err())
}

func (r *matchRepo) ListWithBetCounts(ctx context.Context, db DBTX, tournamentID int64, jornada int) ([]domain.FixtureMatch, error) {
	rows, err := db.Query(ctx, `
		SELECT `+matchColumns+`,
		       COUNT(b.id),
		       COUNT(b.id) FILTER (WHERE b.state = 'PENDING')
		FROM matches m
		LEFT JOIN bets b ON b.match_id = m.id
		WHERE m.tournament_id = $1 AND m.jornada = $2
		GROUP BY m.id
		ORDER BY m.kickoff_at NULLS LAST, m.id`, tournamentID, jornada)
	if err != nil {
		return nil, classify("list fixture matches", err)
	}
	defer rows.Close()

	var out []domain.FixtureMatch
	for rows.Next() {
		var fm domain.FixtureMatch
		m := &fm.Match
		var state string
		err := rows.Scan(&m.ID, &m.TournamentID, &m.Jornada, &m.HomeTeamID, &m.AwayTeamID,
			&m.HomeTeam, &m.AwayTeam, &state, &m.GoalsHome, &m.GoalsAway, &m.KickoffAt,
			&fm.TotalBets, &fm.PendingBets)
		if err != nil {
			return nil, fmt.Errorf("scan fixture match: %w", err)
		}
		m.State = domain.MatchState(state)
		out = append(out, fm)
	}
	return out, wrap("list fixture matches", rows.Err())
}

func (r *matchRepo) ListOpen(ctx context.Context, db DBTX, userID uuid.UUID, tournamentID *int64, jornada *int) ([]domain.Match, error) {
	query, args := openMatchesQuery(userID, tournamentID, jornada)
	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, classify("list open matches", err)
	}
	defer rows.Close()

	var matches []domain.Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		matches = append(matches, *m)
	}
	return matches, wrap("list open matches", rows.Err())
}

func (r *matchRepo) ResetResults(ctx context.Context, db DBTX, tournamentID int64, jornada int) (int64, error) {
	tag, err := db.Exec(ctx, `
		UPDATE matches
		SET goals_home = NULL, goals_away = NULL, state = 'SCHEDULED', updated_at = now()
		WHERE tournament_id = $1 AND jornada = $2`, tournamentID, jornada)
	if err != nil {
		return 0, classify("reset matches", err)
	}
	return tag.RowsAffected(), nil
}

// openMatchesQuery renders ListOpen. The bets join is anti-joined on the
// caller so matches they already bet on drop out.
func openMatchesQuery(userID uuid.UUID, tournamentID *int64, jornada *int) (string, []interface{}) {
	w := &whereBuilder{}
	user := w.arg(userID)
	w.addRaw("m.state = 'SCHEDULED'")
	w.addRaw("b.id IS NULL")
	if tournamentID != nil {
		w.add("m.tournament_id = $%d", *tournamentID)
	}
	if jornada != nil {
		w.add("m.jornada = $%d", *jornada)
	}
	query := `SELECT ` + matchColumns + `
		FROM matches m
		JOIN match_odds o ON o.match_id = m.id AND o.active
		LEFT JOIN bets b ON b.match_id = m.id AND b.user_id = ` + user + `
		` + w.String() + `
		GROUP BY m.id
		HAVING COUNT(DISTINCT o.outcome) = 3
		ORDER BY m.kickoff_at NULLS LAST, m.id`
	return query, w.args
}

func scanMatch(row pgx.Row) (*domain.Match, error) {
	var m domain.Match
	var state string
	err := row.Scan(&m.ID, &m.TournamentID, &m.Jornada, &m.HomeTeamID, &m.AwayTeamID,
		&m.HomeTeam, &m.AwayTeam, &state, &m.GoalsHome, &m.GoalsAway, &m.KickoffAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan match: %w", err)
	}
	m.State = domain.MatchState(state)
	return &m, nil
}

type tournamentRepo struct{}

// NewTournamentRepository returns a pgx-backed TournamentRepository.
func NewTournamentRepository() TournamentRepository {
	return &tournamentRepo{}
}

func (r *tournamentRepo) FindByID(ctx context.Context, db DBTX, id int64) (*domain.Tournament, error) {
	var t domain.Tournament
	err := db.QueryRow(ctx, `SELECT id, name, season FROM tournaments WHERE id = $1`, id).
		Scan(&t.ID, &t.Name, &t.Season)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, classify("get tournament", err)
	}
	return &t, nil
}
