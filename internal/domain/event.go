package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventType enumerates all domain event types.
type EventType string

const (
	EventBetPlaced      EventType = "bet.placed"
	EventMatchSettled   EventType = "match.settled"
	EventFixtureReset   EventType = "fixture.reset"
	EventUserBetsPurged EventType = "user.bets_purged"
)

// AggregateType enumerates the aggregate root types for outbox events.
type AggregateType string

const (
	AggregateBet     AggregateType = "bet"
	AggregateMatch   AggregateType = "match"
	AggregateFixture AggregateType = "fixture"
	AggregateUser    AggregateType = "user"
)

// OutboxDraft is the payload written to the event_outbox table.
type OutboxDraft struct {
	SeqID         int64           `json:"-"`
	EventID       uuid.UUID       `json:"eventId"`
	AggregateType AggregateType   `json:"aggregateType"`
	AggregateID   string          `json:"aggregateId"`
	EventType     EventType       `json:"eventType"`
	PartitionKey  string          `json:"partitionKey"`
	Headers       json.RawMessage `json:"headers"`
	Payload       json.RawMessage `json:"payload"`
	OccurredAt    time.Time       `json:"occurredAt"`
}
