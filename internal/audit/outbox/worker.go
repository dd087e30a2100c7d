// Package outbox drains the audit outbox table into Kafka. Entries land in
// the outbox inside the same transaction as the mutation they record; the
// worker publishes them after commit, so the feed never contains an entry
// whose mutation rolled back.
package outbox

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kgo"
)

const (
	defaultBatchSize    = 100
	defaultPollInterval = time.Second
)

// Producer is the slice of the Kafka client the worker needs.
type Producer interface {
	ProduceSync(ctx context.Context, records ...*kgo.Record) kgo.ProduceResults
}

// Worker polls the outbox table and publishes pending rows.
type Worker struct {
	db           *sql.DB
	producer     Producer
	topic        string
	logger       *slog.Logger
	batchSize    int
	pollInterval time.Duration
}

// NewWorker builds an outbox worker publishing to topic.
func NewWorker(db *sql.DB, producer Producer, topic string, logger *slog.Logger) *Worker {
	return &Worker{
		db:           db,
		producer:     producer,
		topic:        topic,
		logger:       logger,
		batchSize:    defaultBatchSize,
		pollInterval: defaultPollInterval,
	}
}

// EnsureTopic creates the audit topic if the cluster does not have it yet.
func EnsureTopic(ctx context.Context, client *kgo.Client, topic string) error {
	adm := kadm.NewClient(client)
	resps, err := adm.CreateTopics(ctx, 1, 1, nil, topic)
	if err != nil {
		return fmt.Errorf("create topic %s: %w", topic, err)
	}
	for _, resp := range resps {
		if resp.Err != nil && !strings.Contains(resp.Err.Error(), "TOPIC_ALREADY_EXISTS") {
			return fmt.Errorf("create topic %s: %w", topic, resp.Err)
		}
	}
	return nil
}

// Run drains the outbox until the context is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.drainOnce(ctx); err != nil {
				w.logger.ErrorContext(ctx, "outbox drain failed", "error", err)
			}
		}
	}
}

type outboxRow struct {
	id          uuid.UUID
	aggregateID string
	eventType   string
	payload     []byte
}

// drainOnce publishes one batch. SKIP LOCKED lets multiple instances share
// the table without double-publishing within a batch window.
func (w *Worker) drainOnce(ctx context.Context) error {
	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin outbox tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	rows, err := tx.QueryContext(ctx, `
		SELECT id, aggregate_id, event_type, payload
		FROM outbox
		ORDER BY created_at
		LIMIT $1
		FOR UPDATE SKIP LOCKED
	`, w.batchSize)
	if err != nil {
		return fmt.Errorf("select outbox batch: %w", err)
	}

	var batch []outboxRow
	for rows.Next() {
		var row outboxRow
		if err := rows.Scan(&row.id, &row.aggregateID, &row.eventType, &row.payload); err != nil {
			rows.Close()
			return fmt.Errorf("scan outbox row: %w", err)
		}
		batch = append(batch, row)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate outbox rows: %w", err)
	}
	if len(batch) == 0 {
		return tx.Commit()
	}

	records := make([]*kgo.Record, 0, len(batch))
	for _, row := range batch {
		records = append(records, &kgo.Record{
			Topic: w.topic,
			// Key by aggregate so ordering per event/registration holds.
			Key:   []byte(row.aggregateID),
			Value: row.payload,
		})
	}
	if err := w.producer.ProduceSync(ctx, records...).FirstErr(); err != nil {
		return fmt.Errorf("publish outbox batch: %w", err)
	}

	for _, row := range batch {
		if _, err := tx.ExecContext(ctx, `DELETE FROM outbox WHERE id = $1`, row.id); err != nil {
			return fmt.Errorf("delete published outbox row: %w", err)
		}
	}

	if err := tx.Commit(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return fmt.Errorf("commit outbox tx: %w", err)
	}
	w.logger.DebugContext(ctx, "published audit batch", "count", len(batch))
	return nil
}
