package repository

import (
	"context"

	"github.com/quiniela/platform/internal/domain"
)

type outboxRepo struct{}

// NewOutboxRepository returns a pgx-backed OutboxRepository.
func NewOutboxRepository() OutboxRepository {
	return &outboxRepo{}
}

// Insert writes an outbox event using the camelCase column names.
func (r *outboxRepo) Insert(ctx context.Context, db DBTX, draft domain.OutboxDraft) error {
	_, err := db.Exec(ctx, `
		INSERT INTO event_outbox
		  ("eventId", "aggregateType", "aggregateId", "eventType", "partitionKey", "headers", "payload", "occurredAt")
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		draft.EventID,
		string(draft.AggregateType),
		draft.AggregateID,
		string(draft.EventType),
		draft.PartitionKey,
		[]byte(draft.Headers),
		[]byte(draft.Payload),
		draft.OccurredAt,
	)
	if err != nil {
		return classify("insert outbox event", err)
	}
	return nil
}

func (r *outboxRepo) FetchUnpublished(ctx context.Context, db DBTX, limit int) ([]domain.OutboxDraft, error) {
	rows, err := db.Query(ctx, `
		SELECT "id", "eventId", "aggregateType", "aggregateId", "eventType",
		       "partitionKey", "headers", "payload", "occurredAt"
		FROM event_outbox
		ORDER BY "id" ASC
		LIMIT $1`, limit)
	if err != nil {
		return nil, classify("fetch unpublished events", err)
	}
	defer rows.Close()

	var events []domain.OutboxDraft
	for rows.Next() {
		var d domain.OutboxDraft
		var aggType, evtType string
		var headers, payload []byte
		err := rows.Scan(&d.SeqID, &d.EventID, &aggType, &d.AggregateID,
			&evtType, &d.PartitionKey, &headers, &payload, &d.OccurredAt)
		if err != nil {
			return nil, classify("scan outbox row", err)
		}
		d.AggregateType = domain.AggregateType(aggType)
		d.EventType = domain.EventType(evtType)
		d.Headers = headers
		d.Payload = payload
		events = append(events, d)
	}
	return events, wrap("fetch unpublished events", rows.Err())
}

func (r *outboxRepo) MarkPublished(ctx context.Context, db DBTX, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := db.Exec(ctx, `DELETE FROM event_outbox WHERE "id" = ANY($1)`, ids)
	if err != nil {
		return classify("mark published", err)
	}
	return nil
}
