package repositories

import (
	"fmt"
	"sync"
	"time"

	"stitchery/internal/models"

	"github.com/google/uuid"
)

// MockFlossRepository is an in-memory implementation of FlossRepository.
type MockFlossRepository struct {
	flosses []models.Floss
	mu      sync.RWMutex
}

// NewMockFlossRepository creates a new instance of MockFlossRepository.
func NewMockFlossRepository() *MockFlossRepository {
	return &MockFlossRepository{}
}

// GetAll returns all floss records.
func (r *MockFlossRepository) GetAll() ([]models.Floss, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Floss, len(r.flosses))
	copy(out, r.flosses)
	return out, nil
}

// GetAllByUser returns a user's floss records.
func (r *MockFlossRepository) GetAllByUser(userID string) ([]models.Floss, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Floss, 0)
	for _, f := range r.flosses {
		if f.UserID == userID {
			out = append(out, f)
		}
	}
	return out, nil
}

// GetByCode returns the first record matching code.
func (r *MockFlossRepository) GetByCode(userID, code string) (*models.Floss, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, f := range r.flosses {
		if f.UserID == userID && f.Code == code {
			found := f
			return &found, nil
		}
	}
	return nil, fmt.Errorf("floss %s: %w", code, ErrRecordNotFound)
}

// Create appends a new floss record.
func (r *MockFlossRepository) Create(floss *models.Floss) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, f := range r.flosses {
		if f.UserID == floss.UserID && f.Code == floss.Code {
			return fmt.Errorf("floss %s: %w", floss.Code, ErrDuplicateRecord)
		}
	}
	if floss.ID == "" {
		floss.ID = uuid.New().String()
	}
	floss.CreatedAt = time.Now()
	floss.UpdatedAt = floss.CreatedAt
	r.flosses = append(r.flosses, *floss)
	return nil
}

// ApplyDelta adjusts the length of the first record matching code.
func (r *MockFlossRepository) ApplyDelta(userID, code string, delta float64) (*models.Floss, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.flosses {
		if r.flosses[i].UserID == userID && r.flosses[i].Code == code {
			r.flosses[i].Length += delta
			r.flosses[i].UpdatedAt = time.Now()
			updated := r.flosses[i]
			return &updated, nil
		}
	}
	return nil, fmt.Errorf("floss %s not found for update: %w", code, ErrRecordNotFound)
}

// DeleteByCode removes every record matching code.
func (r *MockFlossRepository) DeleteByCode(userID, code string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.flosses[:0]
	var removed int64
	for _, f := range r.flosses {
		if f.UserID == userID && f.Code == code {
			removed++
			continue
		}
		kept = append(kept, f)
	}
	r.flosses = kept
	return removed, nil
}
