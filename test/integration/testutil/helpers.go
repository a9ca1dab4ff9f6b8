//go:build integration

package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/quiniela/platform/internal/auth"
)

// SeedUser inserts an account and returns a user-realm token for it.
func (env *TestEnv) SeedUser(username string, active bool) (token string, userID uuid.UUID) {
	env.t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	userID = uuid.New()
	_, err := env.Pool.Exec(ctx,
		`INSERT INTO users (id, username, role, active, can_bet) VALUES ($1, $2, 'user', $3, TRUE)`,
		userID, username, active)
	if err != nil {
		env.t.Fatalf("SeedUser: %v", err)
	}

	token, err = env.JWTMgr.GenerateToken(auth.RealmUser, userID, username, "user")
	if err != nil {
		env.t.Fatalf("SeedUser: token: %v", err)
	}
	return token, userID
}

// AdminToken returns an admin-realm token with the given role.
func (env *TestEnv) AdminToken(role string) string {
	env.t.Helper()
	token, err := env.JWTMgr.GenerateToken(auth.RealmAdmin, uuid.New(), "admin", role)
	if err != nil {
		env.t.Fatalf("AdminToken: %v", err)
	}
	return token
}

// SeedTournament inserts a tournament and returns its id.
func (env *TestEnv) SeedTournament(name string) int64 {
	env.t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var id int64
	err := env.Pool.QueryRow(ctx,
		`INSERT INTO tournaments (name, season) VALUES ($1, '2026') RETURNING id`, name).Scan(&id)
	if err != nil {
		env.t.Fatalf("SeedTournament: %v", err)
	}
	return id
}

// Team ids used by seeded matches.
const (
	HomeTeamID = int64(100)
	AwayTeamID = int64(200)
)

// SeedMatch inserts a scheduled match priced at home 2.10, draw 3.25, away 3.40.
func (env *TestEnv) SeedMatch(tournamentID int64, jornada int) int64 {
	env.t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var id int64
	err := env.Pool.QueryRow(ctx, `
		INSERT INTO matches (tournament_id, jornada, home_team_id, away_team_id, home_team, away_team, kickoff_at)
		VALUES ($1, $2, $3, $4, 'Tigres', 'Rayados', now() + interval '1 day')
		RETURNING id`, tournamentID, jornada, HomeTeamID, AwayTeamID).Scan(&id)
	if err != nil {
		env.t.Fatalf("SeedMatch: %v", err)
	}

	_, err = env.Pool.Exec(ctx, `
		INSERT INTO match_odds (match_id, outcome, odds, team_id) VALUES
			($1, 'HOME', 2.10, $2),
			($1, 'DRAW', 3.25, NULL),
			($1, 'AWAY', 3.40, $3)`, id, HomeTeamID, AwayTeamID)
	if err != nil {
		env.t.Fatalf("SeedMatch: odds: %v", err)
	}
	return id
}

// FinishMatch records a final score as the match-management side would.
func (env *TestEnv) FinishMatch(matchID int64, goalsHome, goalsAway int) {
	env.t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := env.Pool.Exec(ctx,
		`UPDATE matches SET state = 'FINISHED', goals_home = $2, goals_away = $3 WHERE id = $1`,
		matchID, goalsHome, goalsAway)
	if err != nil {
		env.t.Fatalf("FinishMatch: %v", err)
	}
}

// Do performs a request with an optional JSON body and bearer token.
func (env *TestEnv) Do(method, path string, body interface{}, token string) *http.Response {
	env.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			env.t.Fatalf("%s %s: encode: %v", method, path, err)
		}
	}
	req, err := http.NewRequest(method, env.Server.URL+path, &buf)
	if err != nil {
		env.t.Fatalf("%s %s: new request: %v", method, path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		env.t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

// GET performs an unauthenticated GET request.
func (env *TestEnv) GET(path string) *http.Response {
	env.t.Helper()
	return env.Do(http.MethodGet, path, nil, "")
}

// AuthGET performs an authenticated GET request.
func (env *TestEnv) AuthGET(path, token string) *http.Response {
	env.t.Helper()
	return env.Do(http.MethodGet, path, nil, token)
}

// AuthPOST performs an authenticated POST request.
func (env *TestEnv) AuthPOST(path string, body interface{}, token string) *http.Response {
	env.t.Helper()
	return env.Do(http.MethodPost, path, body, token)
}

// AuthPUT performs an authenticated PUT request.
func (env *TestEnv) AuthPUT(path string, body interface{}, token string) *http.Response {
	env.t.Helper()
	return env.Do(http.MethodPut, path, body, token)
}

// AuthDELETE performs an authenticated DELETE request.
func (env *TestEnv) AuthDELETE(path, token string) *http.Response {
	env.t.Helper()
	return env.Do(http.MethodDelete, path, nil, token)
}
