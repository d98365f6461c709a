package model

import "time"

// Resource is a bookable entity (a room, a vehicle, a piece of
// equipment) owned by the user who created it. Any authenticated user
// may book it; only the owner may rename or delete it.
type Resource struct {
	ID          string    `json:"id" bson:"_id,omitempty" validate:"omitempty,uuid4"`
	Name        string    `json:"name" bson:"name" validate:"required,min=1,max=30"`
	Description string    `json:"description,omitempty" bson:"description,omitempty" validate:"omitempty,max=500"`
	UserID      string    `json:"user_id" bson:"user_id" validate:"required"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
	UpdatedAt   time.Time `json:"updated_at" bson:"updated_at" validate:"omitempty"`

	// Bookings is populated on owner-facing listings so the client can
	// render occupancy without a second round trip.
	Bookings []*Booking `json:"bookings,omitempty" bson:"-" validate:"-"`
}

// ResourceUpdate carries an owner's metadata edit. Empty name keeps the
// stored value; the description pointer distinguishes "clear" from
// "leave alone".
type ResourceUpdate struct {
	Name        string  `json:"name,omitempty" validate:"omitempty,min=1,max=30"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=500"`
}
