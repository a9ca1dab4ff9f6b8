// Package outbox relays events written to the event_outbox table to Kafka.
package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/quiniela/platform/internal/domain"
	"github.com/quiniela/platform/internal/guard"
	"github.com/quiniela/platform/internal/infra"
	"github.com/quiniela/platform/internal/repository"
)

// Publisher sends one message to a topic. infra.KafkaProducer implements it.
type Publisher interface {
	Publish(ctx context.Context, topic string, key, value []byte) error
}

// Relay polls the outbox and publishes events in insertion order.
type Relay struct {
	db          repository.DBTX
	repo        repository.OutboxRepository
	publisher   Publisher
	breaker     *guard.CircuitBreaker
	metrics     *infra.Metrics
	logger      *slog.Logger
	interval    time.Duration
	batchSize   int
	topicPrefix string
}

// NewRelay creates a Relay. breaker may be nil; when set, a topic whose
// circuit is open is skipped until its reset timeout passes.
func NewRelay(db repository.DBTX, repo repository.OutboxRepository, publisher Publisher, breaker *guard.CircuitBreaker, metrics *infra.Metrics, logger *slog.Logger, interval time.Duration, batchSize int, topicPrefix string) *Relay {
	return &Relay{
		db:          db,
		repo:        repo,
		publisher:   publisher,
		breaker:     breaker,
		metrics:     metrics,
		logger:      logger,
		interval:    interval,
		batchSize:   batchSize,
		topicPrefix: topicPrefix,
	}
}

// Topic is the Kafka topic an event type is published to.
func Topic(prefix string, evt domain.EventType) string {
	return prefix + "." + string(evt)
}

type envelope struct {
	EventID       string          `json:"event_id"`
	AggregateType string          `json:"aggregate_type"`
	AggregateID   string          `json:"aggregate_id"`
	EventType     string          `json:"event_type"`
	Headers       json.RawMessage `json:"headers,omitempty"`
	Payload       json.RawMessage `json:"payload"`
	OccurredAt    time.Time       `json:"occurred_at"`
}

// Run polls until ctx is cancelled.
func (r *Relay) Run(ctx context.Context) error {
	r.logger.Info("outbox relay started", "interval", r.interval, "batch_size", r.batchSize)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("outbox relay stopped")
			return nil
		case <-ticker.C:
			if _, err := r.PollOnce(ctx); err != nil {
				r.logger.Error("outbox poll error", "error", err)
			}
		}
	}
}

// PollOnce publishes one batch and returns how many events were relayed.
// Publishing stops at the first failure so events of the same aggregate are
// never delivered out of order; the failed event is retried on the next poll.
func (r *Relay) PollOnce(ctx context.Context) (int, error) {
	events, err := r.repo.FetchUnpublished(ctx, r.db, r.batchSize)
	if err != nil {
		return 0, fmt.Errorf("fetch: %w", err)
	}
	if len(events) == 0 {
		return 0, nil
	}

	ids := make([]int64, 0, len(events))
	var pubErr error
	for _, e := range events {
		msg, err := json.Marshal(envelope{
			EventID:       e.EventID.String(),
			AggregateType: string(e.AggregateType),
			AggregateID:   e.AggregateID,
			EventType:     string(e.EventType),
			Headers:       e.Headers,
			Payload:       e.Payload,
			OccurredAt:    e.OccurredAt,
		})
		if err == nil {
			err = r.publish(ctx, Topic(r.topicPrefix, e.EventType), []byte(e.PartitionKey), msg)
		}
		r.metrics.OutboxPublished(err == nil)
		if err != nil {
			pubErr = fmt.Errorf("publish event %s: %w", e.EventID, err)
			break
		}

		r.logger.Debug("outbox event published",
			"seq_id", e.SeqID,
			"event_id", e.EventID,
			"event_type", e.EventType,
			"aggregate_id", e.AggregateID,
		)
		ids = append(ids, e.SeqID)
	}

	if err := r.repo.MarkPublished(ctx, r.db, ids); err != nil {
		return 0, fmt.Errorf("mark published: %w", err)
	}
	if len(ids) > 0 {
		r.logger.Info("processed outbox batch", "count", len(ids))
	}
	return len(ids), pubErr
}

func (r *Relay) publish(ctx context.Context, topic string, key, value []byte) error {
	if r.breaker == nil {
		return r.publisher.Publish(ctx, topic, key, value)
	}
	if res := r.breaker.Check(ctx, topic); !res.Allowed {
		return errors.New(res.Reason)
	}
	if err := r.publisher.Publish(ctx, topic, key, value); err != nil {
		r.breaker.RecordFailure(topic)
		return err
	}
	r.breaker.RecordSuccess(topic)
	return nil
}
