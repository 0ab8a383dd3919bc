// Package audit appends one record per state-changing operation to a Kafka
// topic. Emission is best effort: a sink failure is logged and never blocks
// the mutation that triggered it.
package audit

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
)

// Actions recorded by the portal
const (
	ActionCastVote       = "cast_vote"
	ActionCloseSession   = "close_session"
	ActionCancelSession  = "cancel_session"
	ActionOpenSession    = "open_session"
	ActionRegisterTally  = "register_denuncia_tally"
	ActionUploadDocument = "upload_document"
)

// Record is one append-only audit entry
type Record struct {
	Action    string    `json:"action"`
	ActorID   uint      `json:"actor_id"`
	EntityID  string    `json:"entity_id"`
	Details   string    `json:"details,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Emitter is the audit log sink. Implementations must be safe for
// concurrent use.
type Emitter interface {
	Emit(ctx context.Context, rec Record)
	Close() error
}

// KafkaEmitter writes audit records to a Kafka topic keyed by entity id.
type KafkaEmitter struct {
	writer *kafka.Writer
}

func NewKafkaEmitter(brokers []string, topic string) *KafkaEmitter {
	return &KafkaEmitter{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
			Async:        false,
		},
	}
}

// Emit appends one record. Failures are logged to the error channel and
// swallowed; the primary operation has already committed.
func (e *KafkaEmitter) Emit(ctx context.Context, rec Record) {
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}
	value, err := json.Marshal(rec)
	if err != nil {
		slog.Error("audit: failed to marshal record", "action", rec.Action, "error", err)
		return
	}
	err = e.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(rec.EntityID),
		Value: value,
	})
	if err != nil {
		slog.Error("audit: failed to append record", "action", rec.Action, "entityID", rec.EntityID, "error", err)
	}
}

func (e *KafkaEmitter) Close() error {
	return e.writer.Close()
}

// NopEmitter discards records; used when no broker is configured and in tests.
type NopEmitter struct{}

func (NopEmitter) Emit(ctx context.Context, rec Record) {}
func (NopEmitter) Close() error                         { return nil }
