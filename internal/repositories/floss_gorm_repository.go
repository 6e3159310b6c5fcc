package repositories

import (
	"errors"
	"fmt"
	"time"

	"stitchery/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMFlossRepository is a GORM implementation of FlossRepository.
type GORMFlossRepository struct {
	db *gorm.DB
}

// NewGORMFlossRepository creates a new instance of GORMFlossRepository.
func NewGORMFlossRepository(db *gorm.DB) *GORMFlossRepository {
	return &GORMFlossRepository{
		db: db,
	}
}

// GetAll retrieves every user's floss, used by the mirror export.
func (r *GORMFlossRepository) GetAll() ([]models.Floss, error) {
	var flosses []models.Floss
	if err := r.db.Order("created_at asc, id asc").Find(&flosses).Error; err != nil {
		return nil, fmt.Errorf("failed to get all floss: %w", err)
	}
	return flosses, nil
}

// GetAllByUser retrieves a user's inventory in creation order.
func (r *GORMFlossRepository) GetAllByUser(userID string) ([]models.Floss, error) {
	var flosses []models.Floss
	err := r.db.Where("user_id = ?", userID).Order("created_at asc, id asc").Find(&flosses).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get floss for user %s: %w", userID, err)
	}
	return flosses, nil
}

// GetByCode retrieves a single floss record by code.
func (r *GORMFlossRepository) GetByCode(userID, code string) (*models.Floss, error) {
	var floss models.Floss
	if err := r.db.First(&floss, "user_id = ? AND code = ?", userID, code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("floss %s: %w", code, ErrRecordNotFound)
		}
		return nil, fmt.Errorf("failed to get floss %s: %w", code, err)
	}
	return &floss, nil
}

// Create inserts a new floss record.
func (r *GORMFlossRepository) Create(floss *models.Floss) error {
	if floss.ID == "" {
		floss.ID = uuid.New().String()
	}
	if err := r.db.Create(floss).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("floss %s: %w", floss.Code, ErrDuplicateRecord)
		}
		return fmt.Errorf("failed to create floss: %w", err)
	}
	return nil
}

// ApplyDelta adds delta to the stored length in a single UPDATE so
// concurrent adjustments to the same row are not lost.
func (r *GORMFlossRepository) ApplyDelta(userID, code string, delta float64) (*models.Floss, error) {
	var floss models.Floss
	err := r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Floss{}).
			Where("user_id = ? AND code = ?", userID, code).
			Updates(map[string]interface{}{
				"length":     gorm.Expr("length + ?", delta),
				"updated_at": time.Now(),
			})
		if res.Error != nil {
			return fmt.Errorf("failed to update floss %s: %w", code, res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("floss %s not found for update: %w", code, ErrRecordNotFound)
		}
		return tx.First(&floss, "user_id = ? AND code = ?", userID, code).Error
	})
	if err != nil {
		return nil, err
	}
	return &floss, nil
}

// DeleteByCode removes every record with the given code and reports how many
// rows went away.
func (r *GORMFlossRepository) DeleteByCode(userID, code string) (int64, error) {
	res := r.db.Where("user_id = ? AND code = ?", userID, code).Delete(&models.Floss{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to delete floss %s: %w", code, res.Error)
	}
	return res.RowsAffected, nil
}
