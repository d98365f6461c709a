package model

import "time"

// AuditEntry is one consumed booking event persisted to the audit log.
// The event id doubles as the document id so replays after a consumer
// restart do not duplicate entries.
type AuditEntry struct {
	ID         string    `json:"id" bson:"_id"`
	EventType  string    `json:"event_type" bson:"event_type"`
	BookingID  int64     `json:"booking_id" bson:"booking_id"`
	ResourceID string    `json:"resource_id" bson:"resource_id"`
	UserID     string    `json:"user_id" bson:"user_id"`
	StartTime  time.Time `json:"start_time" bson:"start_time"`
	EndTime    time.Time `json:"end_time" bson:"end_time"`
	OccurredAt time.Time `json:"occurred_at" bson:"occurred_at"`
	RecordedAt time.Time `json:"recorded_at" bson:"recorded_at"`
	Topic      string    `json:"topic" bson:"topic"`
	Partition  int       `json:"partition" bson:"partition"`
	Offset     int64     `json:"offset" bson:"offset"`
}
