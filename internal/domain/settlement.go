package domain

import "github.com/google/uuid"

// --- Settlement ---

// SettlementResult summarises one settleMatch call. A call that finds no
// pending bets returns zero counts.
type SettlementResult struct {
	MatchID      int64   `json:"match_id"`
	TournamentID int64   `json:"tournament_id"`
	Outcome      Outcome `json:"outcome"`
	Won          int     `json:"won"`
	Lost         int     `json:"lost"`
	TotalSettled int     `json:"total_settled"`
}

// --- Replay reset ---

// ResetResult summarises a fixture rewind.
type ResetResult struct {
	TournamentID int64 `json:"tournament_id"`
	Jornada      int   `json:"jornada"`
	MatchesReset int64 `json:"matches_reset"`
	BetsReset    int64 `json:"bets_reset"`
}

// PurgeResult summarises the removal of one user's bets.
type PurgeResult struct {
	UserID         uuid.UUID `json:"user_id"`
	TournamentID   int64     `json:"tournament_id"`
	Jornada        *int      `json:"jornada,omitempty"`
	BetsDeleted    int64     `json:"bets_deleted"`
	HistoryDeleted int64     `json:"history_deleted"`
}

// --- Batch placement ---

// MatchLabels carries display names echoed back in batch results.
type MatchLabels struct {
	HomeTeam string `json:"home_team"`
	AwayTeam string `json:"away_team"`
}

// BatchItemResult echoes one batch item with its outcome.
type BatchItemResult struct {
	MatchID         int64        `json:"match_id"`
	BetType         string       `json:"bet_type"`
	PredictedTeamID *int64       `json:"predicted_team_id,omitempty"`
	Labels          *MatchLabels `json:"labels,omitempty"`
	BetID           *uuid.UUID   `json:"bet_id,omitempty"`
	Reason          string       `json:"reason,omitempty"`
}

// BatchResult splits a batch into the items that were placed and those that were not.
type BatchResult struct {
	Succeeded []BatchItemResult `json:"succeeded"`
	Failed    []BatchItemResult `json:"failed"`
}

// Short failure reasons reported per batch item.
const (
	ReasonIncompleteData   = "incomplete data"
	ReasonMatchUnavailable = "match not available for betting"
	ReasonDuplicate        = "already bet on this match"
	ReasonOddsUnavailable  = "odds not available"
	ReasonProcessing       = "processing error"
)

// BatchFailureReason maps a placement error to its short reason.
func BatchFailureReason(err error) string {
	switch KindOf(err) {
	case KindInvalidInput:
		return ReasonIncompleteData
	case KindInvalidState:
		return ReasonMatchUnavailable
	case KindConflict:
		return ReasonDuplicate
	case KindNotFound:
		if CodeOf(err) == "ODDS_NOT_FOUND" {
			return ReasonOddsUnavailable
		}
		return ReasonMatchUnavailable
	}
	return ReasonProcessing
}
