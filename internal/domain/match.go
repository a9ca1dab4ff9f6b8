package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// MatchState is the lifecycle state of a match.
type MatchState string

const (
	MatchScheduled  MatchState = "SCHEDULED"
	MatchInProgress MatchState = "IN_PROGRESS"
	MatchFinished   MatchState = "FINISHED"
	MatchSuspended  MatchState = "SUSPENDED"
	MatchCancelled  MatchState = "CANCELLED"
)

// Tournament is the competition a match belongs to.
type Tournament struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Season string `json:"season,omitempty"`
}

// Match is the read model of a fixture as owned by the match-management side.
type Match struct {
	ID           int64      `json:"id"`
	TournamentID int64      `json:"tournament_id"`
	Jornada      int        `json:"jornada"`
	HomeTeamID   int64      `json:"home_team_id"`
	AwayTeamID   int64      `json:"away_team_id"`
	HomeTeam     string     `json:"home_team"`
	AwayTeam     string     `json:"away_team"`
	State        MatchState `json:"state"`
	GoalsHome    *int       `json:"goals_home"`
	GoalsAway    *int       `json:"goals_away"`
	KickoffAt    *time.Time `json:"kickoff_at,omitempty"`
}

// AcceptsBets reports whether predictions can still be placed.
func (m *Match) AcceptsBets() bool {
	return m.State == MatchScheduled
}

// Outcome returns the match result. A match that is still scheduled or has
// no complete score cannot be settled.
func (m *Match) Outcome() (Outcome, error) {
	if m.State == MatchScheduled {
		return "", ErrMatchNotStarted(m.ID)
	}
	if m.GoalsHome == nil || m.GoalsAway == nil {
		return "", ErrMissingResult(m.ID)
	}
	return OutcomeFromScore(*m.GoalsHome, *m.GoalsAway), nil
}

// TeamFor returns the team a given outcome backs, or nil for a draw.
func (m *Match) TeamFor(o Outcome) *int64 {
	switch o {
	case OutcomeHome:
		id := m.HomeTeamID
		return &id
	case OutcomeAway:
		id := m.AwayTeamID
		return &id
	}
	return nil
}

// CheckPredictedTeam verifies that a request's predicted team is the side it bets on.
func (m *Match) CheckPredictedTeam(req PlaceBetRequest) error {
	want := m.TeamFor(req.BetType)
	if want == nil {
		return nil
	}
	if req.PredictedTeamID == nil || *req.PredictedTeamID != *want {
		return ErrValidation(fmt.Sprintf("predicted team does not play %s in match %d", req.BetType, m.ID))
	}
	return nil
}

// FixtureMatch is a match with its bet counts, used to review a jornada before a reset.
type FixtureMatch struct {
	Match
	TotalBets   int `json:"total_bets"`
	PendingBets int `json:"pending_bets"`
}

// Odds is one active price for one outcome of a match.
type Odds struct {
	MatchID   int64           `json:"match_id"`
	Outcome   Outcome         `json:"outcome"`
	Value     decimal.Decimal `json:"value"`
	TeamID    *int64          `json:"team_id,omitempty"`
	UpdatedAt time.Time       `json:"updated_at"`
}

var (
	oddsFloor   = decimal.NewFromInt(1)
	oddsCeiling = decimal.RequireFromString("999999.99")
)

// oddsScale is the number of decimal places stored for a price.
const oddsScale = 2

// ValidateOddsSet checks a replacement odds set: exactly one price per
// outcome, each above 1, at most 999999.99 and with no more than two decimals.
func ValidateOddsSet(odds []Odds) error {
	if len(odds) != 3 {
		return ErrValidation(fmt.Sprintf("exactly 3 odds are required, got %d", len(odds)))
	}
	seen := make(map[Outcome]bool, 3)
	for _, o := range odds {
		if seen[o.Outcome] {
			return ErrValidation(fmt.Sprintf("duplicate odds for %s", o.Outcome))
		}
		seen[o.Outcome] = true
		if !o.Value.GreaterThan(oddsFloor) {
			return ErrValidation(fmt.Sprintf("odds for %s must be greater than 1", o.Outcome))
		}
		if o.Value.GreaterThan(oddsCeiling) {
			return ErrValidation(fmt.Sprintf("odds for %s must not exceed %s", o.Outcome, oddsCeiling))
		}
		if !o.Value.Equal(o.Value.Truncate(oddsScale)) {
			return ErrValidation(fmt.Sprintf("odds for %s must have at most %d decimal places", o.Outcome, oddsScale))
		}
	}
	for _, o := range AllOutcomes() {
		if !seen[o] {
			return ErrValidation(fmt.Sprintf("missing odds for %s", o))
		}
	}
	return nil
}
