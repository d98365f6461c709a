package audit

import (
	"context"
	"fmt"

	"reservio/internal/audit/repository"
	"reservio/pkg/kafka"
	"reservio/pkg/logger"
	"reservio/pkg/model"
)

// Recorder turns consumed booking events into audit log entries. It is
// the message handler cmd/auditor runs inside the Kafka consumer.
type Recorder struct {
	repo repository.AuditRepository
	log  *logger.Logger
}

func NewRecorder(repo repository.AuditRepository, log *logger.Logger) *Recorder {
	return &Recorder{
		repo: repo,
		log:  log,
	}
}

func (r *Recorder) Handle(ctx context.Context, msg kafka.Message) error {
	var event model.BookingEvent
	if err := msg.DecodeValue(&event); err != nil {
		// Malformed payloads cannot succeed on retry; fail so the
		// consumer parks them on the DLQ.
		return fmt.Errorf("failed to decode booking event: %w", err)
	}

	entry := &model.AuditEntry{
		ID:         msg.GetEventID(),
		EventType:  event.Type,
		BookingID:  event.BookingID,
		ResourceID: event.ResourceID,
		UserID:     event.UserID,
		StartTime:  event.StartTime,
		EndTime:    event.EndTime,
		OccurredAt: event.OccurredAt,
		Topic:      msg.Topic,
		Partition:  msg.Partition,
		Offset:     msg.Offset,
	}

	if entry.ID == "" {
		// Events without an id header cannot be deduplicated; key them
		// by position instead.
		entry.ID = fmt.Sprintf("%s-%d-%d", msg.Topic, msg.Partition, msg.Offset)
	}

	if err := r.repo.Append(ctx, entry); err != nil {
		return err
	}

	r.log.Debug("Audit entry recorded",
		"event_id", entry.ID,
		"event_type", entry.EventType,
		"booking_id", entry.BookingID,
	)
	return nil
}
