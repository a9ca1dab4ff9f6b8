package repository

import (
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/quiniela/platform/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBetFilter_Empty(t *testing.T) {
	w := BetFilter{}.build()
	assert.Equal(t, "", w.String())
	assert.Empty(t, w.args)
}

func TestBetFilter_AllFields(t *testing.T) {
	userID := uuid.New()
	matchID := int64(9)
	tournamentID := int64(3)
	jornada := 7
	state := domain.BetWon

	w := BetFilter{
		UserID:          &userID,
		MatchID:         &matchID,
		TournamentID:    &tournamentID,
		Jornada:         &jornada,
		State:           &state,
		ActiveUsersOnly: true,
	}.build()

	assert.Equal(t,
		"WHERE b.user_id = $1 AND b.match_id = $2 AND b.tournament_id = $3 AND b.jornada = $4 AND b.state = $5 AND u.active",
		w.String())
	assert.Equal(t, []interface{}{userID, matchID, tournamentID, jornada, "WON"}, w.args)
}

func TestBetFilter_PlaceholdersFollowSetFields(t *testing.T) {
	tournamentID := int64(3)
	state := domain.BetPending

	w := BetFilter{TournamentID: &tournamentID, State: &state}.build()
	assert.Equal(t, "WHERE b.tournament_id = $1 AND b.state = $2", w.String())

	limit := w.arg(25)
	assert.Equal(t, "$3", limit)
	assert.Len(t, w.args, 3)
}

func TestOpenMatchesQuery(t *testing.T) {
	userID := uuid.New()

	t.Run("unscoped", func(t *testing.T) {
		query, args := openMatchesQuery(userID, nil, nil)
		assert.Contains(t, query, "LEFT JOIN bets b ON b.match_id = m.id AND b.user_id = $1")
		assert.Contains(t, query, "WHERE m.state = 'SCHEDULED' AND b.id IS NULL")
		assert.Contains(t, query, "HAVING COUNT(DISTINCT o.outcome) = 3")
		assert.Equal(t, []interface{}{userID}, args)
	})

	t.Run("scoped to the active jornada", func(t *testing.T) {
		tournamentID := int64(4)
		jornada := 9
		query, args := openMatchesQuery(userID, &tournamentID, &jornada)
		assert.Contains(t, query, "AND m.tournament_id = $2 AND m.jornada = $3")
		assert.Equal(t, []interface{}{userID, tournamentID, jornada}, args)
	})
}

func TestClassify(t *testing.T) {
	t.Run("bet uniqueness violation is a conflict", func(t *testing.T) {
		err := classify("insert bet", &pgconn.PgError{Code: "23505", ConstraintName: "bets_user_match_key"})
		assert.Equal(t, domain.KindConflict, domain.KindOf(err))
	})

	t.Run("foreign key violation is invalid input", func(t *testing.T) {
		err := classify("insert bet", &pgconn.PgError{Code: "23503", ConstraintName: "bets_user_id_fkey"})
		assert.Equal(t, domain.KindInvalidInput, domain.KindOf(err))
	})

	t.Run("check violation is invalid input", func(t *testing.T) {
		err := classify("replace odds", &pgconn.PgError{Code: "23514", ConstraintName: "match_odds_odds_check"})
		assert.Equal(t, domain.KindInvalidInput, domain.KindOf(err))
		assert.Equal(t, "VALIDATION_ERROR", domain.CodeOf(err))
	})

	t.Run("numeric overflow is invalid input", func(t *testing.T) {
		err := classify("replace odds", &pgconn.PgError{Code: "22003"})
		assert.Equal(t, domain.KindInvalidInput, domain.KindOf(err))
		assert.Equal(t, "VALIDATION_ERROR", domain.CodeOf(err))
	})

	t.Run("serialization failure is transient", func(t *testing.T) {
		err := classify("settle", &pgconn.PgError{Code: "40001"})
		assert.Equal(t, domain.KindTransient, domain.KindOf(err))
	})

	t.Run("lock timeout is transient", func(t *testing.T) {
		err := classify("get match", &pgconn.PgError{Code: "55P03"})
		assert.Equal(t, domain.KindTransient, domain.KindOf(err))
	})

	t.Run("connection exception class is transient", func(t *testing.T) {
		err := classify("settle", &pgconn.PgError{Code: "08006"})
		assert.Equal(t, domain.KindTransient, domain.KindOf(err))
	})

	t.Run("other errors stay internal and wrapped", func(t *testing.T) {
		err := classify("list bets", assert.AnError)
		require.Error(t, err)
		assert.Equal(t, domain.KindInternal, domain.KindOf(err))
		assert.ErrorIs(t, err, assert.AnError)
		assert.Contains(t, err.Error(), "list bets")
	})

	t.Run("app errors pass through", func(t *testing.T) {
		in := domain.ErrNotFound("match", "1")
		assert.Same(t, in, classify("get match", in))
	})
}
