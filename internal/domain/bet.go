package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StakeUnits is the fixed amount staked on every prediction.
const StakeUnits int64 = 10000

// FixedStake is StakeUnits as a decimal.
var FixedStake = decimal.NewFromInt(StakeUnits)

// Outcome is the result of a match. A bet's type is the outcome it predicts,
// so the same enum serves both.
type Outcome string

const (
	OutcomeHome Outcome = "HOME"
	OutcomeDraw Outcome = "DRAW"
	OutcomeAway Outcome = "AWAY"
)

// AllOutcomes lists outcomes in display order.
func AllOutcomes() []Outcome {
	return []Outcome{OutcomeHome, OutcomeDraw, OutcomeAway}
}

// ParseOutcome parses a bet type from the wire. It accepts the English names in
// any case and the local/empate/visita spellings used by older clients.
func ParseOutcome(s string) (Outcome, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "home", "local":
		return OutcomeHome, nil
	case "draw", "empate":
		return OutcomeDraw, nil
	case "away", "visita", "visitante":
		return OutcomeAway, nil
	case "":
		return "", ErrValidation("bet type is required")
	}
	return "", ErrValidation(fmt.Sprintf("invalid bet type %q", s))
}

// OutcomeFromScore compares the two goal counts strictly.
func OutcomeFromScore(goalsHome, goalsAway int) Outcome {
	switch {
	case goalsHome > goalsAway:
		return OutcomeHome
	case goalsHome < goalsAway:
		return OutcomeAway
	default:
		return OutcomeDraw
	}
}

// BetState is the lifecycle state of a bet.
type BetState string

const (
	BetPending BetState = "PENDING"
	BetWon     BetState = "WON"
	BetLost    BetState = "LOST"
)

// ParseBetState parses a state filter value.
func ParseBetState(s string) (BetState, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pending", "pendiente":
		return BetPending, nil
	case "won", "ganada":
		return BetWon, nil
	case "lost", "perdida":
		return BetLost, nil
	}
	return "", ErrValidation(fmt.Sprintf("invalid bet state %q", s))
}

// Bet is one user's prediction on one match.
type Bet struct {
	ID              uuid.UUID       `json:"id"`
	UserID          uuid.UUID       `json:"user_id"`
	MatchID         int64           `json:"match_id"`
	TournamentID    int64           `json:"tournament_id"`
	Jornada         int             `json:"jornada"`
	BetType         Outcome         `json:"bet_type"`
	PredictedTeamID *int64          `json:"predicted_team_id,omitempty"`
	Stake           decimal.Decimal `json:"stake"`
	OddsSnapshot    decimal.Decimal `json:"odds_snapshot"`
	PotentialReturn decimal.Decimal `json:"potential_return"`
	State           BetState        `json:"state"`
	PointsEarned    decimal.Decimal `json:"points_earned"`
	PlacedAt        time.Time       `json:"placed_at"`
}

// PotentialReturn is the fixed stake times the odds, rounded to cents.
func PotentialReturn(odds decimal.Decimal) decimal.Decimal {
	return FixedStake.Mul(odds).Round(2)
}

// NewBet builds a pending bet against a match using the given odds snapshot.
func NewBet(userID uuid.UUID, match *Match, req PlaceBetRequest, odds decimal.Decimal, now time.Time) *Bet {
	return &Bet{
		ID:              uuid.New(),
		UserID:          userID,
		MatchID:         match.ID,
		TournamentID:    match.TournamentID,
		Jornada:         match.Jornada,
		BetType:         req.BetType,
		PredictedTeamID: req.PredictedTeamID,
		Stake:           FixedStake,
		OddsSnapshot:    odds,
		PotentialReturn: PotentialReturn(odds),
		State:           BetPending,
		PointsEarned:    decimal.Zero,
		PlacedAt:        now,
	}
}

// Settle resolves a pending bet against the match outcome and reports whether it won.
func (b *Bet) Settle(outcome Outcome) bool {
	if b.BetType == outcome {
		b.State = BetWon
		b.PointsEarned = b.PotentialReturn
		return true
	}
	b.State = BetLost
	b.PointsEarned = decimal.Zero
	return false
}

// Reopen puts a bet back to its unsettled state.
func (b *Bet) Reopen() {
	b.State = BetPending
	b.PointsEarned = decimal.Zero
}

// PlaceBetRequest is a validated placement request.
type PlaceBetRequest struct {
	MatchID         int64
	BetType         Outcome
	PredictedTeamID *int64
}

// NewPlaceBetRequest parses and validates raw placement fields. stake is the
// client-supplied stake, if any; anything other than the fixed stake is rejected.
func NewPlaceBetRequest(matchID int64, betType string, predictedTeamID *int64, stake *decimal.Decimal) (PlaceBetRequest, error) {
	if matchID <= 0 {
		return PlaceBetRequest{}, ErrValidation("match_id is required")
	}
	outcome, err := ParseOutcome(betType)
	if err != nil {
		return PlaceBetRequest{}, err
	}
	if stake != nil && !stake.Equal(FixedStake) {
		return PlaceBetRequest{}, ErrValidation(fmt.Sprintf("stake is fixed at %d", StakeUnits))
	}

	req := PlaceBetRequest{MatchID: matchID, BetType: outcome}
	if outcome == OutcomeDraw {
		return req, nil
	}
	if predictedTeamID == nil || *predictedTeamID <= 0 {
		return PlaceBetRequest{}, ErrValidation("predicted_team_id is required unless betting on a draw")
	}
	req.PredictedTeamID = predictedTeamID
	return req, nil
}

// BetView is a bet joined with the names needed to display it.
type BetView struct {
	Bet
	Username   string     `json:"username,omitempty"`
	HomeTeam   string     `json:"home_team"`
	AwayTeam   string     `json:"away_team"`
	MatchState MatchState `json:"match_state"`
}

// PointsHistoryEntry records points awarded by one winning settlement.
type PointsHistoryEntry struct {
	ID           uuid.UUID       `json:"id"`
	UserID       uuid.UUID       `json:"user_id"`
	BetID        uuid.UUID       `json:"bet_id"`
	MatchID      int64           `json:"match_id"`
	TournamentID int64           `json:"tournament_id"`
	PointsEarned decimal.Decimal `json:"points_earned"`
	CreatedAt    time.Time       `json:"created_at"`
}

// NewPointsHistoryEntry records the points of a bet that has just won.
func NewPointsHistoryEntry(b *Bet, now time.Time) *PointsHistoryEntry {
	return &PointsHistoryEntry{
		ID:           uuid.New(),
		UserID:       b.UserID,
		BetID:        b.ID,
		MatchID:      b.MatchID,
		TournamentID: b.TournamentID,
		PointsEarned: b.PointsEarned,
		CreatedAt:    now,
	}
}
