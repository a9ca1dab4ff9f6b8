package domain

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func int64p(v int64) *int64 { return &v }
func intp(v int) *int       { return &v }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func testMatch() *Match {
	return &Match{
		ID:           7,
		TournamentID: 1,
		Jornada:      3,
		HomeTeamID:   100,
		AwayTeamID:   200,
		HomeTeam:     "Leones",
		AwayTeam:     "Halcones",
		State:        MatchScheduled,
	}
}

// --- AppError Tests ---

func TestAppError_Error(t *testing.T) {
	t.Run("without cause", func(t *testing.T) {
		err := ErrNotFound("match", "42")
		assert.Equal(t, "NOT_FOUND: match 42 not found", err.Error())
	})

	t.Run("with cause", func(t *testing.T) {
		cause := errors.New("connection refused")
		err := ErrInternal("database error", cause)
		assert.Contains(t, err.Error(), "INTERNAL_ERROR")
		assert.Contains(t, err.Error(), "connection refused")
	})
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := ErrUnavailable("wrapped", cause)
	assert.Equal(t, cause, errors.Unwrap(err))
}

func TestErrorFactories(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		wantCode   string
		wantKind   Kind
		wantStatus int
	}{
		{"ErrNotFound", ErrNotFound("match", "1"), "NOT_FOUND", KindNotFound, 404},
		{"ErrOddsNotFound", ErrOddsNotFound(1, OutcomeHome), "ODDS_NOT_FOUND", KindNotFound, 404},
		{"ErrConflict", ErrConflict("already exists"), "CONFLICT", KindConflict, 409},
		{"ErrValidation", ErrValidation("bad input"), "VALIDATION_ERROR", KindInvalidInput, 400},
		{"ErrInvalidState", ErrInvalidState("not pending"), "INVALID_STATE", KindInvalidState, 422},
		{"ErrMatchNotStarted", ErrMatchNotStarted(1), "MATCH_NOT_STARTED", KindInvalidState, 422},
		{"ErrMissingResult", ErrMissingResult(1), "MISSING_RESULT", KindInvalidState, 422},
		{"ErrBettingClosed", ErrBettingClosed("closed"), "BETTING_CLOSED", KindInvalidState, 422},
		{"ErrUnavailable", ErrUnavailable("db down", nil), "UNAVAILABLE", KindTransient, 503},
		{"ErrUnauthorized", ErrUnauthorized("no token"), "UNAUTHORIZED", KindAuth, 401},
		{"ErrForbidden", ErrForbidden("not allowed"), "FORBIDDEN", KindAuth, 403},
		{"ErrRateLimited", ErrRateLimited("slow down"), "RATE_LIMITED", KindAuth, 429},
		{"ErrInternal", ErrInternal("oops", nil), "INTERNAL_ERROR", KindInternal, 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantCode, tt.err.Code)
			assert.Equal(t, tt.wantKind, tt.err.Kind)
			assert.Equal(t, tt.wantStatus, tt.err.Status)
			assert.NotEmpty(t, tt.err.Message)
		})
	}
}

func TestKindOfAndCodeOf(t *testing.T) {
	wrapped := errors.Join(errors.New("context"), ErrConflict("dup"))
	assert.Equal(t, KindConflict, KindOf(wrapped))
	assert.Equal(t, "CONFLICT", CodeOf(wrapped))

	assert.Equal(t, KindInternal, KindOf(errors.New("plain")))
	assert.Equal(t, "INTERNAL_ERROR", CodeOf(errors.New("plain")))
}

// --- Outcome Tests ---

func TestParseOutcome(t *testing.T) {
	tests := []struct {
		in   string
		want Outcome
	}{
		{"HOME", OutcomeHome},
		{"home", OutcomeHome},
		{" Local ", OutcomeHome},
		{"draw", OutcomeDraw},
		{"EMPATE", OutcomeDraw},
		{"away", OutcomeAway},
		{"visita", OutcomeAway},
		{"visitante", OutcomeAway},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseOutcome(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("empty", func(t *testing.T) {
		_, err := ParseOutcome("  ")
		assert.Equal(t, KindInvalidInput, KindOf(err))
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := ParseOutcome("over")
		assert.Equal(t, KindInvalidInput, KindOf(err))
		assert.Contains(t, err.Error(), "over")
	})
}

func TestOutcomeFromScore(t *testing.T) {
	assert.Equal(t, OutcomeHome, OutcomeFromScore(2, 1))
	assert.Equal(t, OutcomeAway, OutcomeFromScore(0, 3))
	assert.Equal(t, OutcomeDraw, OutcomeFromScore(1, 1))
	assert.Equal(t, OutcomeDraw, OutcomeFromScore(0, 0))
}

func TestParseBetState(t *testing.T) {
	for in, want := range map[string]BetState{
		"pending":   BetPending,
		"PENDIENTE": BetPending,
		"Won":       BetWon,
		"ganada":    BetWon,
		"lost":      BetLost,
		"perdida":   BetLost,
	} {
		got, err := ParseBetState(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseBetState("void")
	assert.Equal(t, KindInvalidInput, KindOf(err))
}

// --- Placement request Tests ---

func TestNewPlaceBetRequest(t *testing.T) {
	t.Run("home with team", func(t *testing.T) {
		req, err := NewPlaceBetRequest(7, "home", int64p(100), nil)
		require.NoError(t, err)
		assert.Equal(t, int64(7), req.MatchID)
		assert.Equal(t, OutcomeHome, req.BetType)
		require.NotNil(t, req.PredictedTeamID)
		assert.Equal(t, int64(100), *req.PredictedTeamID)
	})

	t.Run("draw drops the team", func(t *testing.T) {
		req, err := NewPlaceBetRequest(7, "draw", int64p(100), nil)
		require.NoError(t, err)
		assert.Equal(t, OutcomeDraw, req.BetType)
		assert.Nil(t, req.PredictedTeamID)
	})

	t.Run("fixed stake accepted", func(t *testing.T) {
		stake := dec("10000.00")
		_, err := NewPlaceBetRequest(7, "away", int64p(200), &stake)
		assert.NoError(t, err)
	})

	tests := []struct {
		name    string
		matchID int64
		betType string
		team    *int64
		stake   *decimal.Decimal
	}{
		{"missing match", 0, "home", int64p(100), nil},
		{"bad type", 7, "both", int64p(100), nil},
		{"missing type", 7, "", int64p(100), nil},
		{"team required for home", 7, "home", nil, nil},
		{"team required for away", 7, "away", int64p(0), nil},
		{"wrong stake", 7, "home", int64p(100), func() *decimal.Decimal { d := dec("5000"); return &d }()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPlaceBetRequest(tt.matchID, tt.betType, tt.team, tt.stake)
			require.Error(t, err)
			assert.Equal(t, KindInvalidInput, KindOf(err))
		})
	}
}

// --- Bet Tests ---

func TestPotentialReturn(t *testing.T) {
	assert.True(t, dec("21000").Equal(PotentialReturn(dec("2.10"))))
	assert.True(t, dec("32500").Equal(PotentialReturn(dec("3.25"))))
	assert.True(t, dec("12345.68").Equal(PotentialReturn(dec("1.2345678"))))
}

func TestNewBet(t *testing.T) {
	userID := uuid.New()
	m := testMatch()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	req := PlaceBetRequest{MatchID: m.ID, BetType: OutcomeAway, PredictedTeamID: int64p(200)}

	b := NewBet(userID, m, req, dec("3.40"), now)

	assert.NotEqual(t, uuid.Nil, b.ID)
	assert.Equal(t, userID, b.UserID)
	assert.Equal(t, m.ID, b.MatchID)
	assert.Equal(t, m.TournamentID, b.TournamentID)
	assert.Equal(t, m.Jornada, b.Jornada)
	assert.Equal(t, OutcomeAway, b.BetType)
	assert.Equal(t, int64(200), *b.PredictedTeamID)
	assert.True(t, FixedStake.Equal(b.Stake))
	assert.True(t, dec("3.40").Equal(b.OddsSnapshot))
	assert.True(t, dec("34000").Equal(b.PotentialReturn))
	assert.Equal(t, BetPending, b.State)
	assert.True(t, b.PointsEarned.IsZero())
	assert.Equal(t, now, b.PlacedAt)
}

func TestBet_SettleAndReopen(t *testing.T) {
	m := testMatch()
	req := PlaceBetRequest{MatchID: m.ID, BetType: OutcomeHome, PredictedTeamID: int64p(100)}

	t.Run("won", func(t *testing.T) {
		b := NewBet(uuid.New(), m, req, dec("2.10"), time.Now())
		assert.True(t, b.Settle(OutcomeHome))
		assert.Equal(t, BetWon, b.State)
		assert.True(t, dec("21000").Equal(b.PointsEarned))
	})

	t.Run("lost", func(t *testing.T) {
		b := NewBet(uuid.New(), m, req, dec("2.10"), time.Now())
		assert.False(t, b.Settle(OutcomeDraw))
		assert.Equal(t, BetLost, b.State)
		assert.True(t, b.PointsEarned.IsZero())
	})

	t.Run("reopen", func(t *testing.T) {
		b := NewBet(uuid.New(), m, req, dec("2.10"), time.Now())
		b.Settle(OutcomeHome)
		b.Reopen()
		assert.Equal(t, BetPending, b.State)
		assert.True(t, b.PointsEarned.IsZero())
		assert.True(t, dec("21000").Equal(b.PotentialReturn))
	})
}

func TestNewPointsHistoryEntry(t *testing.T) {
	m := testMatch()
	b := NewBet(uuid.New(), m, PlaceBetRequest{MatchID: m.ID, BetType: OutcomeDraw}, dec("3.25"), time.Now())
	b.Settle(OutcomeDraw)

	now := time.Now()
	e := NewPointsHistoryEntry(b, now)
	assert.NotEqual(t, uuid.Nil, e.ID)
	assert.Equal(t, b.UserID, e.UserID)
	assert.Equal(t, b.ID, e.BetID)
	assert.Equal(t, m.ID, e.MatchID)
	assert.Equal(t, m.TournamentID, e.TournamentID)
	assert.True(t, dec("32500").Equal(e.PointsEarned))
	assert.Equal(t, now, e.CreatedAt)
}

// --- Match Tests ---

func TestMatch_Outcome(t *testing.T) {
	t.Run("scheduled", func(t *testing.T) {
		m := testMatch()
		m.GoalsHome, m.GoalsAway = intp(1), intp(0)
		_, err := m.Outcome()
		assert.Equal(t, "MATCH_NOT_STARTED", CodeOf(err))
	})

	t.Run("missing goals", func(t *testing.T) {
		m := testMatch()
		m.State = MatchFinished
		m.GoalsHome = intp(1)
		_, err := m.Outcome()
		assert.Equal(t, "MISSING_RESULT", CodeOf(err))
	})

	t.Run("finished", func(t *testing.T) {
		m := testMatch()
		m.State = MatchFinished
		m.GoalsHome, m.GoalsAway = intp(0), intp(2)
		o, err := m.Outcome()
		require.NoError(t, err)
		assert.Equal(t, OutcomeAway, o)
	})

	t.Run("in progress with score", func(t *testing.T) {
		m := testMatch()
		m.State = MatchInProgress
		m.GoalsHome, m.GoalsAway = intp(1), intp(1)
		o, err := m.Outcome()
		require.NoError(t, err)
		assert.Equal(t, OutcomeDraw, o)
	})
}

func TestMatch_AcceptsBets(t *testing.T) {
	m := testMatch()
	assert.True(t, m.AcceptsBets())
	for _, s := range []MatchState{MatchInProgress, MatchFinished, MatchSuspended, MatchCancelled} {
		m.State = s
		assert.False(t, m.AcceptsBets(), s)
	}
}

func TestMatch_TeamFor(t *testing.T) {
	m := testMatch()
	assert.Equal(t, int64(100), *m.TeamFor(OutcomeHome))
	assert.Equal(t, int64(200), *m.TeamFor(OutcomeAway))
	assert.Nil(t, m.TeamFor(OutcomeDraw))
}

func TestMatch_CheckPredictedTeam(t *testing.T) {
	m := testMatch()
	assert.NoError(t, m.CheckPredictedTeam(PlaceBetRequest{BetType: OutcomeHome, PredictedTeamID: int64p(100)}))
	assert.NoError(t, m.CheckPredictedTeam(PlaceBetRequest{BetType: OutcomeDraw}))

	err := m.CheckPredictedTeam(PlaceBetRequest{BetType: OutcomeHome, PredictedTeamID: int64p(200)})
	assert.Equal(t, KindInvalidInput, KindOf(err))

	err = m.CheckPredictedTeam(PlaceBetRequest{BetType: OutcomeAway})
	assert.Equal(t, KindInvalidInput, KindOf(err))
}

func TestValidateOddsSet(t *testing.T) {
	valid := func() []Odds {
		return []Odds{
			{Outcome: OutcomeHome, Value: dec("2.10")},
			{Outcome: OutcomeDraw, Value: dec("3.25")},
			{Outcome: OutcomeAway, Value: dec("3.40")},
		}
	}
	assert.NoError(t, ValidateOddsSet(valid()))

	t.Run("too few", func(t *testing.T) {
		assert.Error(t, ValidateOddsSet(valid()[:2]))
	})

	t.Run("duplicate outcome", func(t *testing.T) {
		odds := valid()
		odds[2].Outcome = OutcomeHome
		assert.ErrorContains(t, ValidateOddsSet(odds), "duplicate")
	})

	t.Run("unknown outcome leaves one missing", func(t *testing.T) {
		odds := valid()
		odds[1].Outcome = Outcome("OVER")
		assert.ErrorContains(t, ValidateOddsSet(odds), "missing odds for DRAW")
	})

	t.Run("odds of one", func(t *testing.T) {
		odds := valid()
		odds[0].Value = dec("1")
		err := ValidateOddsSet(odds)
		assert.Equal(t, KindInvalidInput, KindOf(err))
	})

	t.Run("more than two decimals", func(t *testing.T) {
		odds := valid()
		odds[1].Value = dec("3.255")
		err := ValidateOddsSet(odds)
		assert.Equal(t, KindInvalidInput, KindOf(err))
		assert.ErrorContains(t, err, "decimal places")
	})

	t.Run("trailing zeros are not extra decimals", func(t *testing.T) {
		odds := valid()
		odds[1].Value = dec("3.2500")
		assert.NoError(t, ValidateOddsSet(odds))
	})

	t.Run("largest storable price", func(t *testing.T) {
		odds := valid()
		odds[2].Value = dec("999999.99")
		assert.NoError(t, ValidateOddsSet(odds))
	})

	t.Run("above storable range", func(t *testing.T) {
		odds := valid()
		odds[2].Value = dec("1000000")
		err := ValidateOddsSet(odds)
		assert.Equal(t, KindInvalidInput, KindOf(err))
		assert.ErrorContains(t, err, "must not exceed 999999.99")
	})
}

// --- Betting window Tests ---

func TestBettingWindow_Admit(t *testing.T) {
	m := testMatch()

	assert.NoError(t, BettingWindow{}.Admit(m))
	assert.NoError(t, BettingWindow{TournamentID: int64p(1), Jornada: intp(3)}.Admit(m))

	tests := []struct {
		name string
		w    BettingWindow
	}{
		{"closed", BettingWindow{Closed: true}},
		{"other tournament", BettingWindow{TournamentID: int64p(2)}},
		{"other jornada", BettingWindow{Jornada: intp(4)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.w.Admit(m)
			assert.Equal(t, "BETTING_CLOSED", CodeOf(err))
		})
	}
}

// --- Standings Tests ---

func TestAccuracy(t *testing.T) {
	assert.True(t, Accuracy(0, 0).IsZero())
	assert.True(t, dec("50").Equal(Accuracy(1, 2)))
	assert.True(t, dec("33.33").Equal(Accuracy(1, 3)))
	assert.True(t, dec("66.67").Equal(Accuracy(2, 3)))
	assert.True(t, dec("100").Equal(Accuracy(4, 4)))
}

func TestRankStandings(t *testing.T) {
	tallies := []BetTally{
		{Username: "low", Total: 2, Won: 0, Lost: 2, Points: decimal.Zero},
		{Username: "acc", Total: 2, Won: 1, Lost: 1, Points: dec("21000")},
		{Username: "top", Total: 3, Won: 1, Lost: 2, Points: dec("34000")},
		{Username: "wide", Total: 4, Won: 2, Lost: 2, Points: dec("21000")},
	}

	rows := RankStandings(tallies)
	require.Len(t, rows, 4)

	var names []string
	for i, r := range rows {
		assert.Equal(t, i+1, r.Position)
		names = append(names, r.Username)
	}
	// acc and wide tie on points and accuracy (50%), so wins decide.
	assert.Equal(t, []string{"top", "wide", "acc", "low"}, names)
	assert.True(t, dec("33.33").Equal(rows[0].AccuracyPct))
}

func TestRankStandings_ExactTiesKeepOrder(t *testing.T) {
	tallies := []BetTally{
		{Username: "first", Total: 1, Won: 1, Points: dec("21000")},
		{Username: "second", Total: 1, Won: 1, Points: dec("21000")},
	}
	rows := RankStandings(tallies)
	assert.Equal(t, "first", rows[0].Username)
	assert.Equal(t, 1, rows[0].Position)
	assert.Equal(t, "second", rows[1].Username)
	assert.Equal(t, 2, rows[1].Position)
}

func TestRankStandings_Empty(t *testing.T) {
	assert.Empty(t, RankStandings(nil))
}

func TestNewUserStats(t *testing.T) {
	id := uuid.New()

	empty := NewUserStats(id, nil)
	assert.Equal(t, id, empty.UserID)
	assert.Zero(t, empty.TotalBets)
	assert.True(t, empty.TotalPoints.IsZero())
	assert.True(t, empty.AccuracyPct.IsZero())

	stats := NewUserStats(id, &BetTally{Total: 4, Won: 1, Lost: 2, Pending: 1, Points: dec("21000")})
	assert.Equal(t, 4, stats.TotalBets)
	assert.Equal(t, 1, stats.Won)
	assert.Equal(t, 2, stats.Lost)
	assert.Equal(t, 1, stats.Pending)
	assert.True(t, dec("21000").Equal(stats.TotalPoints))
	assert.True(t, dec("25").Equal(stats.AccuracyPct))
}

func TestPickJornadaWinners(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	scores := []JornadaScore{
		{Jornada: 2, UserID: c, Username: "c", Points: dec("34000"), Won: 1},
		{Jornada: 1, UserID: a, Username: "a", Points: dec("21000"), Won: 1},
		{Jornada: 1, UserID: b, Username: "b", Points: dec("42000"), Won: 2},
		{Jornada: 2, UserID: a, Username: "a", Points: dec("34000"), Won: 1},
	}

	winners := PickJornadaWinners(scores)
	require.Len(t, winners, 2)
	assert.Equal(t, 1, winners[0].Jornada)
	assert.Equal(t, b, winners[0].UserID)
	assert.Equal(t, 2, winners[0].Won)
	assert.Equal(t, 2, winners[1].Jornada)
	assert.Equal(t, c, winners[1].UserID, "first of equal scores wins")

	assert.Empty(t, PickJornadaWinners(nil))
}

// --- Batch Tests ---

func TestBatchFailureReason(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{ErrValidation("x"), ReasonIncompleteData},
		{ErrBettingClosed("x"), ReasonMatchUnavailable},
		{ErrInvalidState("x"), ReasonMatchUnavailable},
		{ErrNotFound("match", "1"), ReasonMatchUnavailable},
		{ErrConflict("x"), ReasonDuplicate},
		{ErrOddsNotFound(1, OutcomeHome), ReasonOddsUnavailable},
		{ErrUnavailable("x", nil), ReasonProcessing},
		{errors.New("boom"), ReasonProcessing},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, BatchFailureReason(tt.err), tt.err.Error())
	}
}

// --- Event Tests ---

func TestNewBetPlacedEvent(t *testing.T) {
	m := testMatch()
	b := NewBet(uuid.New(), m, PlaceBetRequest{MatchID: m.ID, BetType: OutcomeHome, PredictedTeamID: int64p(100)}, dec("2.10"), time.Now())

	event := NewBetPlacedEvent(b)

	assert.NotEqual(t, uuid.Nil, event.EventID)
	assert.Equal(t, AggregateBet, event.AggregateType)
	assert.Equal(t, b.ID.String(), event.AggregateID)
	assert.Equal(t, EventBetPlaced, event.EventType)
	assert.Equal(t, "7", event.PartitionKey)
	assert.JSONEq(t, `{}`, string(event.Headers))
	assert.False(t, event.OccurredAt.IsZero())

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(event.Payload, &payload))
	assert.Equal(t, "HOME", payload["bet_type"])
	assert.Equal(t, "PENDING", payload["state"])
}

func TestNewMatchSettledEvent(t *testing.T) {
	event := NewMatchSettledEvent(&SettlementResult{MatchID: 7, TournamentID: 1, Outcome: OutcomeDraw, Won: 1, Lost: 2, TotalSettled: 3})

	assert.Equal(t, AggregateMatch, event.AggregateType)
	assert.Equal(t, "7", event.AggregateID)
	assert.Equal(t, EventMatchSettled, event.EventType)
	assert.Equal(t, "7", event.PartitionKey)

	var payload SettlementResult
	require.NoError(t, json.Unmarshal(event.Payload, &payload))
	assert.Equal(t, 3, payload.TotalSettled)
	assert.Equal(t, OutcomeDraw, payload.Outcome)
}

func TestNewFixtureResetEvent(t *testing.T) {
	event := NewFixtureResetEvent(&ResetResult{TournamentID: 1, Jornada: 3, MatchesReset: 9, BetsReset: 40})

	assert.Equal(t, AggregateFixture, event.AggregateType)
	assert.Equal(t, "1:3", event.AggregateID)
	assert.Equal(t, EventFixtureReset, event.EventType)
	assert.Equal(t, "1", event.PartitionKey)
}

func TestNewUserBetsPurgedEvent(t *testing.T) {
	userID := uuid.New()
	event := NewUserBetsPurgedEvent(&PurgeResult{UserID: userID, TournamentID: 1, Jornada: intp(2), BetsDeleted: 4})

	assert.Equal(t, AggregateUser, event.AggregateType)
	assert.Equal(t, userID.String(), event.AggregateID)
	assert.Equal(t, EventUserBetsPurged, event.EventType)
	assert.Equal(t, userID.String(), event.PartitionKey)

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(event.Payload, &payload))
	assert.Equal(t, float64(4), payload["bets_deleted"])
	assert.Equal(t, float64(2), payload["jornada"])
}

// --- Winner message Tests ---

func TestNewWinnerMessage(t *testing.T) {
	user := uuid.New()
	now := time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC)

	msg, err := NewWinnerMessage(1, 4, user, "\t¡Vamos!\n", now)
	require.NoError(t, err)
	assert.Equal(t, "¡Vamos!", msg.Message)
	assert.Equal(t, user, msg.UserID)
	assert.Equal(t, now, msg.CreatedAt)

	tests := []struct {
		name    string
		tid     int64
		jornada int
		text    string
		want    string
	}{
		{"no tournament", 0, 4, "hola", "tournament_id"},
		{"no jornada", 1, 0, "hola", "jornada"},
		{"blank", 1, 4, " \t ", "empty"},
		{"101 characters", 1, 4, stringOf('x', 101), "at most 100"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewWinnerMessage(tt.tid, tt.jornada, user, tt.text, now)
			assert.Equal(t, KindInvalidInput, KindOf(err))
			assert.ErrorContains(t, err, tt.want)
		})
	}

	t.Run("length counts characters not bytes", func(t *testing.T) {
		_, err := NewWinnerMessage(1, 4, user, stringOf('é', 100), now)
		assert.NoError(t, err)
	})
}

func stringOf(r rune, n int) string {
	out := make([]rune, n)
	for i := range out {
		out[i] = r
	}
	return string(out)
}

func TestWinnerOf(t *testing.T) {
	a := uuid.New()
	winners := []JornadaWinner{{Jornada: 1, UserID: a, Username: "a"}}

	w, ok := WinnerOf(winners, 1)
	require.True(t, ok)
	assert.Equal(t, a, w.UserID)

	_, ok = WinnerOf(winners, 2)
	assert.False(t, ok)
}
