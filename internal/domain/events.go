package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
)

func newDraft(agg AggregateType, aggID string, evt EventType, partitionKey string, payload any) OutboxDraft {
	body, _ := json.Marshal(payload)
	return OutboxDraft{
		EventID:       uuid.New(),
		AggregateType: agg,
		AggregateID:   aggID,
		EventType:     evt,
		PartitionKey:  partitionKey,
		Headers:       json.RawMessage(`{}`),
		Payload:       body,
		OccurredAt:    time.Now(),
	}
}

// NewBetPlacedEvent is emitted in the same transaction that inserts a bet.
func NewBetPlacedEvent(b *Bet) OutboxDraft {
	return newDraft(AggregateBet, b.ID.String(), EventBetPlaced, strconv.FormatInt(b.MatchID, 10), b)
}

// NewMatchSettledEvent is emitted when a settlement resolves at least one bet.
func NewMatchSettledEvent(r *SettlementResult) OutboxDraft {
	id := strconv.FormatInt(r.MatchID, 10)
	return newDraft(AggregateMatch, id, EventMatchSettled, id, r)
}

// NewFixtureResetEvent is emitted when a jornada is rewound.
func NewFixtureResetEvent(r *ResetResult) OutboxDraft {
	id := fmt.Sprintf("%d:%d", r.TournamentID, r.Jornada)
	return newDraft(AggregateFixture, id, EventFixtureReset, strconv.FormatInt(r.TournamentID, 10), r)
}

// NewUserBetsPurgedEvent is emitted when an administrator removes a user's bets.
func NewUserBetsPurgedEvent(r *PurgeResult) OutboxDraft {
	id := r.UserID.String()
	return newDraft(AggregateUser, id, EventUserBetsPurged, id, r)
}
