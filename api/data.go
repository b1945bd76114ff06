package main

import (
	"time"

	"github.com/google/uuid"
)

type user struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash []byte    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

type todo struct {
	ID        uuid.UUID  `json:"id"`
	Text      string     `json:"text"`
	Completed bool       `json:"completed"`
	UserID    *uuid.UUID `json:"userId,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// todoPatch is a partial update; nil fields are left untouched.
type todoPatch struct {
	Text      *string `json:"text"`
	Completed *bool   `json:"completed"`
}
