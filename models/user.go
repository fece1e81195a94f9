package models

import (
	"time"

	"github.com/google/uuid"
)

// User is a local account row used by development tooling
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never serialize password hash
	CreatedAt    time.Time `json:"created_at"`
}
