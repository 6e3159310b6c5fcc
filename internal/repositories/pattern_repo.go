package repositories

import (
	"stitchery/internal/models"
)

// PatternRepository defines the interface for pattern data access.
// Every per-user method is scoped by owner; a pattern owned by someone else
// is reported exactly like a missing one.
type PatternRepository interface {
	GetAll() ([]models.Pattern, error)
	GetAllByUser(userID string) ([]models.Pattern, error)
	GetByIDForUser(id, userID string) (*models.Pattern, error)
	Create(pattern *models.Pattern) error
	DeleteForUser(id, userID string) error
}
