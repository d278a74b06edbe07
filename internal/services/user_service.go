package services

import (
	"database/sql"

	"github.com/google/uuid"
	"github.com/mindloop/journal-backend/internal/database"
	"github.com/mindloop/journal-backend/internal/models"
)

// GetUserByID retrieves the public profile for an active user.
// Returns nil when the user does not exist or is inactive.
func GetUserByID(userID uuid.UUID) (*models.User, error) {
	var user models.User
	err := database.PostgresDB.QueryRow(`
		SELECT id, username, points, created_at
		FROM users
		WHERE id = $1 AND is_active = TRUE
	`, userID).Scan(&user.ID, &user.Username, &user.Points, &user.CreatedAt)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return &user, nil
}
