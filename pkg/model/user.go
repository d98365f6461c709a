package model

import "time"

type User struct {
	ID           string    `json:"id" bson:"_id,omitempty" validate:"omitempty,uuid4"`
	Name         string    `json:"name" bson:"name" validate:"required,min=1,max=100"`
	Email        string    `json:"email" bson:"email" validate:"required,email"`
	PasswordHash string    `json:"-" bson:"password_hash" validate:"required"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
	UpdatedAt    time.Time `json:"updated_at" bson:"updated_at" validate:"omitempty"`
}

// Credentials is the sign-up / sign-in request body. The plaintext
// password never leaves the accounts service.
type Credentials struct {
	Name     string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}
