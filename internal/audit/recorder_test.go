package audit

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"reservio/pkg/kafka"
	"reservio/pkg/logger"
	"reservio/pkg/model"
)

type mockAuditRepository struct {
	appendFunc func(ctx context.Context, entry *model.AuditEntry) error
}

func (m *mockAuditRepository) Append(ctx context.Context, entry *model.AuditEntry) error {
	if m.appendFunc != nil {
		return m.appendFunc(ctx, entry)
	}
	return nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Config{
		Level:     "error",
		Format:    logger.JSON,
		AddSource: false,
		Service:   "test",
	})
}

func eventMessage(t *testing.T, event model.BookingEvent) kafka.Message {
	t.Helper()
	value, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("failed to marshal event: %v", err)
	}
	return kafka.Message{
		Key:   event.ResourceID,
		Value: value,
		Headers: map[string]string{
			kafka.HeaderEventID:   "evt-1",
			kafka.HeaderEventType: event.Type,
		},
		Topic:     "booking-events",
		Partition: 2,
		Offset:    17,
	}
}

func TestHandle_RecordsEntry(t *testing.T) {
	var recorded *model.AuditEntry
	repo := &mockAuditRepository{
		appendFunc: func(ctx context.Context, entry *model.AuditEntry) error {
			recorded = entry
			return nil
		},
	}
	recorder := NewRecorder(repo, testLogger())

	event := model.BookingEvent{
		Type:       model.EventBookingCreated,
		BookingID:  42,
		ResourceID: "res-1",
		UserID:     "user-1",
		StartTime:  time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC),
		EndTime:    time.Date(2026, 3, 10, 11, 0, 0, 0, time.UTC),
		OccurredAt: time.Date(2026, 3, 10, 9, 55, 0, 0, time.UTC),
	}

	if err := recorder.Handle(context.Background(), eventMessage(t, event)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if recorded == nil {
		t.Fatal("expected an entry to be appended")
	}
	if recorded.ID != "evt-1" {
		t.Errorf("expected the event id as entry id, got %q", recorded.ID)
	}
	if recorded.EventType != model.EventBookingCreated {
		t.Errorf("unexpected event type: %q", recorded.EventType)
	}
	if recorded.BookingID != 42 || recorded.ResourceID != "res-1" || recorded.UserID != "user-1" {
		t.Errorf("payload fields not mapped: %+v", recorded)
	}
	if recorded.Topic != "booking-events" || recorded.Partition != 2 || recorded.Offset != 17 {
		t.Errorf("message position not mapped: %+v", recorded)
	}
}

func TestHandle_MissingEventIDFallsBackToPosition(t *testing.T) {
	var recorded *model.AuditEntry
	repo := &mockAuditRepository{
		appendFunc: func(ctx context.Context, entry *model.AuditEntry) error {
			recorded = entry
			return nil
		},
	}
	recorder := NewRecorder(repo, testLogger())

	msg := eventMessage(t, model.BookingEvent{Type: model.EventBookingCancelled, BookingID: 7})
	delete(msg.Headers, kafka.HeaderEventID)

	if err := recorder.Handle(context.Background(), msg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if recorded.ID != "booking-events-2-17" {
		t.Errorf("expected positional id, got %q", recorded.ID)
	}
}

func TestHandle_MalformedPayload(t *testing.T) {
	repo := &mockAuditRepository{
		appendFunc: func(ctx context.Context, entry *model.AuditEntry) error {
			t.Error("malformed payloads must not be appended")
			return nil
		},
	}
	recorder := NewRecorder(repo, testLogger())

	msg := kafka.Message{
		Value:   []byte("{not json"),
		Headers: map[string]string{},
	}

	if err := recorder.Handle(context.Background(), msg); err == nil {
		t.Fatal("expected a decode error")
	}
}
