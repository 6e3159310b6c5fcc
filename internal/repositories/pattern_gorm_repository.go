package repositories

import (
	"errors"
	"fmt"

	"stitchery/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMPatternRepository is a GORM implementation of PatternRepository.
type GORMPatternRepository struct {
	db *gorm.DB
}

// NewGORMPatternRepository creates a new instance of GORMPatternRepository.
func NewGORMPatternRepository(db *gorm.DB) *GORMPatternRepository {
	return &GORMPatternRepository{
		db: db,
	}
}

// GetAll retrieves all patterns from the database.
func (r *GORMPatternRepository) GetAll() ([]models.Pattern, error) {
	var patterns []models.Pattern
	if err := r.db.Order("created_at asc, id asc").Find(&patterns).Error; err != nil {
		return nil, fmt.Errorf("failed to get all patterns: %w", err)
	}
	return patterns, nil
}

// GetAllByUser retrieves a user's patterns in creation order.
func (r *GORMPatternRepository) GetAllByUser(userID string) ([]models.Pattern, error) {
	var patterns []models.Pattern
	err := r.db.Where("user_id = ?", userID).Order("created_at asc, id asc").Find(&patterns).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get patterns for user %s: %w", userID, err)
	}
	return patterns, nil
}

// GetByIDForUser retrieves a pattern only if userID owns it.
func (r *GORMPatternRepository) GetByIDForUser(id, userID string) (*models.Pattern, error) {
	var pattern models.Pattern
	if err := r.db.First(&pattern, "id = ? AND user_id = ?", id, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("pattern with ID %s: %w", id, ErrRecordNotFound)
		}
		return nil, fmt.Errorf("failed to get pattern by ID %s: %w", id, err)
	}
	return &pattern, nil
}

// Create creates a new pattern in the database.
func (r *GORMPatternRepository) Create(pattern *models.Pattern) error {
	if pattern.ID == "" {
		pattern.ID = uuid.New().String()
	}
	if err := r.db.Create(pattern).Error; err != nil {
		return fmt.Errorf("failed to create pattern: %w", err)
	}
	return nil
}

// DeleteForUser deletes a pattern owned by userID.
func (r *GORMPatternRepository) DeleteForUser(id, userID string) error {
	res := r.db.Where("id = ? AND user_id = ?", id, userID).Delete(&models.Pattern{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete pattern: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("pattern with ID %s not found for deletion: %w", id, ErrRecordNotFound)
	}
	return nil
}
