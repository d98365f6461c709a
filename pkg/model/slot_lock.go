package model

import "time"

// SlotLock is an advisory lock taken while a booking create or update
// checks availability. The lock id encodes the slot coordinates, so a
// duplicate-key error on insert means another request is booking the
// same slot right now. ExpiresAt backs a TTL index that clears locks
// abandoned by crashed requests.
type SlotLock struct {
	ID        string    `bson:"_id" json:"id"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
