package models

import (
	"time"
)

// User is the public profile stored in Postgres. Points is the gamification
// counter incremented by the journal write path; the password hash never
// leaves the auth handlers.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Points    int       `json:"points"`
	CreatedAt time.Time `json:"created_at"`
}
