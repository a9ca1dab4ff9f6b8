package service

import (
	"context"
	"testing"

	"github.com/quiniela/platform/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplaceOdds(t *testing.T) {
	s := seedStore(t)
	svc := NewOddsService(s, s, s.Matches(), s.Odds(), testLogger())
	ctx := context.Background()

	odds, err := svc.ReplaceOdds(ctx, unpricedMatch, []OddsInput{
		{Outcome: "visita", Value: dec("2.75")},
		{Outcome: "local", Value: dec("2.40")},
		{Outcome: "DRAW", Value: dec("3.10")},
	})
	require.NoError(t, err)
	require.Len(t, odds, 3)

	assert.Equal(t, domain.OutcomeHome, odds[0].Outcome)
	assert.Equal(t, homeTeam, *odds[0].TeamID)
	assert.Nil(t, odds[1].TeamID)
	assert.Equal(t, awayTeam, *odds[2].TeamID)
	assertDecimal(t, "2.75", odds[2].Value)

	got, err := svc.GetOdds(ctx, unpricedMatch)
	require.NoError(t, err)
	assert.Equal(t, odds, got)
}

func TestReplaceOdds_Rejected(t *testing.T) {
	s := seedStore(t)
	svc := NewOddsService(s, s, s.Matches(), s.Odds(), testLogger())
	ctx := context.Background()

	tests := []struct {
		name    string
		matchID int64
		in      []OddsInput
		kind    domain.Kind
	}{
		{"two prices", openMatch, []OddsInput{{"HOME", dec("2")}, {"AWAY", dec("2")}}, domain.KindInvalidInput},
		{"repeated outcome", openMatch, []OddsInput{{"HOME", dec("2")}, {"HOME", dec("2")}, {"AWAY", dec("2")}}, domain.KindInvalidInput},
		{"price at one", openMatch, []OddsInput{{"HOME", dec("1.00")}, {"DRAW", dec("2")}, {"AWAY", dec("2")}}, domain.KindInvalidInput},
		{"unknown outcome", openMatch, []OddsInput{{"WIN", dec("2")}, {"DRAW", dec("2")}, {"AWAY", dec("2")}}, domain.KindInvalidInput},
		{"unknown match", 999, []OddsInput{{"HOME", dec("2")}, {"DRAW", dec("2")}, {"AWAY", dec("2")}}, domain.KindNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ReplaceOdds(ctx, tt.matchID, tt.in)
			assert.Equal(t, tt.kind, domain.KindOf(err))
		})
	}

	got, err := svc.GetOdds(ctx, openMatch)
	require.NoError(t, err)
	assertDecimal(t, "2.10", got[0].Value)
}

func TestBettingConfig(t *testing.T) {
	s := seedStore(t)
	svc := NewBettingConfigService(s, s, s.Config(), s.Tournaments(), testLogger())
	ctx := context.Background()

	w, err := svc.Window(ctx)
	require.NoError(t, err)
	assert.False(t, w.Closed)

	jornada := 3
	saved, err := svc.UpdateWindow(ctx, domain.BettingWindow{Closed: true, TournamentID: ptrInt64(tournamentID), Jornada: &jornada})
	require.NoError(t, err)
	w, err = svc.Window(ctx)
	require.NoError(t, err)
	assert.Equal(t, saved, w)

	_, err = svc.UpdateWindow(ctx, domain.BettingWindow{Jornada: &jornada})
	assert.Equal(t, domain.KindInvalidInput, domain.KindOf(err))

	_, err = svc.UpdateWindow(ctx, domain.BettingWindow{TournamentID: ptrInt64(77)})
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
}
