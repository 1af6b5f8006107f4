package domain

import "time"

// User is a registered identity. Email is the unique login key and is
// stored lower-cased. Only PasswordHash changes after creation.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
