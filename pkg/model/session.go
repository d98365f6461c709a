package model

import "time"

// Session is an opaque bearer token resolved to a user id on every
// request. The token doubles as the document id so lookups and the
// uniqueness guarantee ride the _id index.
type Session struct {
	Token     string    `json:"token" bson:"_id"`
	UserID    string    `json:"user_id" bson:"user_id"`
	ExpiresAt time.Time `json:"expires_at" bson:"expires_at"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
