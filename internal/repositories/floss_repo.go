package repositories

import (
	"stitchery/internal/models"
)

// FlossRepository defines the interface for floss inventory data access.
// Listings are returned in creation order.
type FlossRepository interface {
	GetAll() ([]models.Floss, error)
	GetAllByUser(userID string) ([]models.Floss, error)
	GetByCode(userID, code string) (*models.Floss, error)
	Create(floss *models.Floss) error
	ApplyDelta(userID, code string, delta float64) (*models.Floss, error)
	DeleteByCode(userID, code string) (int64, error)
}
