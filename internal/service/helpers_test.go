package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/quiniela/platform/internal/domain"
	"github.com/quiniela/platform/internal/repository/memstore"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	tournamentID = int64(1)
	homeTeam     = int64(100)
	awayTeam     = int64(200)

	openMatch     = int64(10)
	liveMatch     = int64(11)
	unpricedMatch = int64(12)
	nextJornada   = int64(20)
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.Truef(t, dec(want).Equal(got), "want %s, got %s", want, got)
}

func teamPtr(id int64) *int64 { return &id }

func intPtr(v int) *int { return &v }

// seedStore builds a tournament with two jornadas:
//
//	jornada 1: match 10 open and priced, 11 in progress, 12 open without odds
//	jornada 2: match 20 open and priced
func seedStore(t *testing.T) *memstore.Store {
	t.Helper()
	s := memstore.New()
	s.AddTournament(domain.Tournament{ID: tournamentID, Name: "Liga MX", Season: "2026"})

	kickoff := time.Date(2026, 3, 14, 19, 0, 0, 0, time.UTC)
	for _, m := range []domain.Match{
		{ID: openMatch, Jornada: 1, State: domain.MatchScheduled, HomeTeam: "Tigres", AwayTeam: "Rayados"},
		{ID: liveMatch, Jornada: 1, State: domain.MatchInProgress, HomeTeam: "Pumas", AwayTeam: "Toluca"},
		{ID: unpricedMatch, Jornada: 1, State: domain.MatchScheduled, HomeTeam: "Chivas", AwayTeam: "Atlas"},
		{ID: nextJornada, Jornada: 2, State: domain.MatchScheduled, HomeTeam: "Tigres", AwayTeam: "Pumas"},
	} {
		m.TournamentID = tournamentID
		m.HomeTeamID = homeTeam
		m.AwayTeamID = awayTeam
		k := kickoff.Add(time.Duration(m.ID) * time.Hour)
		m.KickoffAt = &k
		s.AddMatch(m)
	}

	for _, id := range []int64{openMatch, liveMatch, nextJornada} {
		require.NoError(t, s.Odds().Replace(context.Background(), s, id, []domain.Odds{
			{Outcome: domain.OutcomeHome, Value: dec("2.10"), TeamID: teamPtr(homeTeam)},
			{Outcome: domain.OutcomeDraw, Value: dec("3.25")},
			{Outcome: domain.OutcomeAway, Value: dec("3.40"), TeamID: teamPtr(awayTeam)},
		}))
	}
	return s
}

func addUser(s *memstore.Store, name string, active bool) uuid.UUID {
	id := uuid.New()
	s.AddUser(domain.User{ID: id, Username: name, Role: "user", Active: active, CanBet: true})
	return id
}

func newPlacement(s *memstore.Store, maxBatch int) *BetPlacementService {
	return NewBetPlacementService(s, s.Matches(), s.Odds(), s.Bets(), s.Outbox(), nil, testLogger(), maxBatch)
}

func homeBet(matchID int64) PlaceBetInput {
	return PlaceBetInput{MatchID: matchID, BetType: "HOME", PredictedTeamID: teamPtr(homeTeam)}
}
