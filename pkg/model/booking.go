package model

import (
	"time"
)

// Booking reserves a resource for the half-open interval
// [start_time, end_time). Adjacent bookings on the same resource are
// allowed; overlapping ones are not. A booking whose end equals its
// start is a single-instant booking.
type Booking struct {
	ID         int64     `json:"id" bson:"_id,omitempty" validate:"omitempty,min=0"`
	UserID     string    `json:"user_id" bson:"user_id" validate:"required"`
	ResourceID string    `json:"resource_id" bson:"resource_id" validate:"required,uuid4"`
	StartTime  time.Time `json:"start_time" bson:"start_time" validate:"required"`
	EndTime    time.Time `json:"end_time" bson:"end_time" validate:"omitempty"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
	UpdatedAt  time.Time `json:"updated_at" bson:"updated_at" validate:"omitempty"`

	// Resource is attached on reads for display purposes and never
	// persisted with the booking document.
	Resource *Resource `json:"resource,omitempty" bson:"-" validate:"-"`
}

// BookingUpdate carries an owner's date/time edit. Nil fields keep the
// stored value.
type BookingUpdate struct {
	StartTime *time.Time `json:"start_time,omitempty" validate:"omitempty"`
	EndTime   *time.Time `json:"end_time,omitempty" validate:"omitempty"`
}
