//go:build integration

package integration

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/quiniela/platform/internal/domain"
	"github.com/quiniela/platform/test/integration/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pick(matchID int64, betType string) map[string]interface{} {
	body := map[string]interface{}{"match_id": matchID, "bet_type": betType}
	switch betType {
	case "HOME":
		body["predicted_team_id"] = testutil.HomeTeamID
	case "AWAY":
		body["predicted_team_id"] = testutil.AwayTeamID
	}
	return body
}

func place(t *testing.T, env *testutil.TestEnv, token string, matchID int64, betType string) {
	t.Helper()
	resp := env.AuthPOST("/bets", pick(matchID, betType), token)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)
}

func settle(t *testing.T, env *testutil.TestEnv, matchID int64) domain.SettlementResult {
	t.Helper()
	resp := env.AuthPOST(fmt.Sprintf("/admin/matches/%d/settle", matchID), nil, env.AdminToken("admin"))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var res domain.SettlementResult
	testutil.DecodeJSON(t, resp, &res)
	return res
}

func TestSettleMatch_HomeWin(t *testing.T) {
	env := testutil.NewTestEnv(t)
	tid := env.SeedTournament("Liga MX")
	matchID := env.SeedMatch(tid, 1)
	anaToken, ana := env.SeedUser("ana", true)
	betoToken, beto := env.SeedUser("beto", true)
	place(t, env, anaToken, matchID, "HOME")
	place(t, env, betoToken, matchID, "DRAW")

	env.FinishMatch(matchID, 2, 1)
	res := settle(t, env, matchID)
	assert.Equal(t, domain.OutcomeHome, res.Outcome)
	assert.Equal(t, 1, res.Won)
	assert.Equal(t, 1, res.Lost)

	assert.Equal(t, 1, testutil.CountBets(t, env, ana, "WON"))
	assert.Equal(t, 1, testutil.CountBets(t, env, beto, "LOST"))
	assert.Equal(t, 1, testutil.CountHistory(t, env, ana))
	assert.Equal(t, 0, testutil.CountHistory(t, env, beto))
	assert.Equal(t, 1, testutil.CountOutboxEvents(t, env, string(domain.EventMatchSettled)))

	again := settle(t, env, matchID)
	assert.Equal(t, 0, again.TotalSettled)
	assert.Equal(t, 1, testutil.CountHistory(t, env, ana), "re-settlement writes nothing")

	resp := env.AuthGET("/bets/me/points", anaToken)
	var points []domain.PointsHistoryEntry
	testutil.DecodeJSON(t, resp, &points)
	require.Len(t, points, 1)
	assert.True(t, decimal.RequireFromString("21000").Equal(points[0].PointsEarned))
}

func TestSettleMatch_Preconditions(t *testing.T) {
	env := testutil.NewTestEnv(t)
	tid := env.SeedTournament("Liga MX")
	matchID := env.SeedMatch(tid, 1)
	admin := env.AdminToken("admin")

	resp := env.AuthPOST(fmt.Sprintf("/admin/matches/%d/settle", matchID), nil, admin)
	testutil.AssertErrorCode(t, resp, "MATCH_NOT_STARTED")

	_, err := env.Pool.Exec(t.Context(), `UPDATE matches SET state = 'FINISHED' WHERE id = $1`, matchID)
	require.NoError(t, err)
	resp = env.AuthPOST(fmt.Sprintf("/admin/matches/%d/settle", matchID), nil, admin)
	testutil.AssertErrorCode(t, resp, "MISSING_RESULT")

	resp = env.AuthPOST("/admin/matches/999999/settle", nil, admin)
	testutil.AssertStatus(t, resp, http.StatusNotFound)
	resp.Body.Close()

	resp = env.AuthPOST(fmt.Sprintf("/admin/matches/%d/settle", matchID), nil, env.AdminToken("viewer"))
	testutil.AssertStatus(t, resp, http.StatusForbidden)
	resp.Body.Close()
}

func TestStandings_Ordering(t *testing.T) {
	env := testutil.NewTestEnv(t)
	tid := env.SeedTournament("Liga MX")
	m1 := env.SeedMatch(tid, 1)
	m2 := env.SeedMatch(tid, 1)
	aToken, _ := env.SeedUser("a", true)
	bToken, _ := env.SeedUser("b", true)
	cToken, _ := env.SeedUser("c", true)

	// b wins both, a wins one, c wins none.
	place(t, env, aToken, m1, "HOME")
	place(t, env, aToken, m2, "DRAW")
	place(t, env, bToken, m1, "HOME")
	place(t, env, bToken, m2, "AWAY")
	place(t, env, cToken, m1, "AWAY")

	env.FinishMatch(m1, 1, 0)
	env.FinishMatch(m2, 0, 2)
	settle(t, env, m1)
	settle(t, env, m2)

	resp := env.AuthGET(fmt.Sprintf("/standings?tournament_id=%d", tid), aToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var rows []domain.StandingRow
	testutil.DecodeJSON(t, resp, &rows)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"b", "a", "c"}, []string{rows[0].Username, rows[1].Username, rows[2].Username})
	assert.Equal(t, []int{1, 2, 3}, []int{rows[0].Position, rows[1].Position, rows[2].Position})
	assert.True(t, decimal.RequireFromString("50").Equal(rows[1].AccuracyPct))

	resp = env.AuthGET(fmt.Sprintf("/standings/winners?tournament_id=%d", tid), aToken)
	var winners []domain.JornadaWinner
	testutil.DecodeJSON(t, resp, &winners)
	require.Len(t, winners, 1)
	assert.Equal(t, "b", winners[0].Username)
}

func TestResetMatchResults_RestoresPending(t *testing.T) {
	env := testutil.NewTestEnv(t)
	tid := env.SeedTournament("Liga MX")
	matchID := env.SeedMatch(tid, 1)
	other := env.SeedMatch(tid, 2)
	token, userID := env.SeedUser("ana", true)
	place(t, env, token, matchID, "HOME")
	place(t, env, token, other, "HOME")

	env.FinishMatch(matchID, 3, 0)
	env.FinishMatch(other, 3, 0)
	settle(t, env, matchID)
	settle(t, env, other)
	require.Equal(t, 2, testutil.CountHistory(t, env, userID))

	resp := env.AuthPOST("/admin/fixtures/reset", map[string]interface{}{"tournament_id": tid, "jornada": 1}, env.AdminToken("admin"))
	testutil.AssertStatus(t, resp, http.StatusForbidden)
	resp.Body.Close()

	admin := env.AdminToken("superadmin")
	resp = env.AuthPOST("/admin/fixtures/reset", map[string]interface{}{"tournament_id": tid, "jornada": 1}, admin)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var res domain.ResetResult
	testutil.DecodeJSON(t, resp, &res)
	assert.Equal(t, int64(1), res.MatchesReset)
	assert.Equal(t, int64(1), res.BetsReset)

	assert.Equal(t, 1, testutil.CountBets(t, env, userID, "PENDING"))
	assert.Equal(t, 1, testutil.CountBets(t, env, userID, "WON"), "other jornada untouched")
	assert.Equal(t, 1, testutil.CountHistory(t, env, userID))

	resp = env.AuthGET(fmt.Sprintf("/admin/fixtures/matches?tournament_id=%d&jornada=1", tid), admin)
	var fixtures []domain.FixtureMatch
	testutil.DecodeJSON(t, resp, &fixtures)
	require.Len(t, fixtures, 1)
	assert.Equal(t, domain.MatchScheduled, fixtures[0].State)
	assert.Nil(t, fixtures[0].GoalsHome)
	assert.Equal(t, 1, fixtures[0].PendingBets)

	resp = env.AuthPOST("/admin/fixtures/reset", map[string]interface{}{"tournament_id": tid, "jornada": 7}, admin)
	testutil.AssertStatus(t, resp, http.StatusNotFound)
	resp.Body.Close()
}

func TestPurgeUserBets(t *testing.T) {
	env := testutil.NewTestEnv(t)
	tid := env.SeedTournament("Liga MX")
	matchID := env.SeedMatch(tid, 1)
	token, userID := env.SeedUser("ana", true)
	place(t, env, token, matchID, "HOME")
	env.FinishMatch(matchID, 1, 0)
	settle(t, env, matchID)

	resp := env.AuthDELETE(fmt.Sprintf("/admin/users/%s/bets?tournament_id=%d", userID, tid), env.AdminToken("superadmin"))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var res domain.PurgeResult
	testutil.DecodeJSON(t, resp, &res)
	assert.Equal(t, int64(1), res.BetsDeleted)
	assert.Equal(t, int64(1), res.HistoryDeleted)

	assert.Equal(t, 0, testutil.CountBets(t, env, userID, ""))
	assert.Equal(t, 0, testutil.CountHistory(t, env, userID))
}
