package repositories

import (
	"fmt"
	"sync"
	"time"

	"stitchery/internal/models"

	"github.com/google/uuid"
)

// MockPatternRepository is an in-memory implementation of PatternRepository.
type MockPatternRepository struct {
	patterns []models.Pattern
	mu       sync.RWMutex
}

// NewMockPatternRepository creates a new instance of MockPatternRepository.
func NewMockPatternRepository() *MockPatternRepository {
	return &MockPatternRepository{}
}

// GetAll returns all patterns.
func (r *MockPatternRepository) GetAll() ([]models.Pattern, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Pattern, len(r.patterns))
	copy(out, r.patterns)
	return out, nil
}

// GetAllByUser returns the patterns owned by userID.
func (r *MockPatternRepository) GetAllByUser(userID string) ([]models.Pattern, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Pattern, 0)
	for _, p := range r.patterns {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

// GetByIDForUser returns a pattern by ID if userID owns it.
func (r *MockPatternRepository) GetByIDForUser(id, userID string) (*models.Pattern, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.patterns {
		if p.ID == id && p.UserID == userID {
			found := p
			return &found, nil
		}
	}
	return nil, fmt.Errorf("pattern with ID %s: %w", id, ErrRecordNotFound)
}

// Create adds a new pattern.
func (r *MockPatternRepository) Create(pattern *models.Pattern) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if pattern.ID == "" {
		pattern.ID = uuid.New().String()
	}
	pattern.CreatedAt = time.Now()
	r.patterns = append(r.patterns, *pattern)
	return nil
}

// DeleteForUser removes a pattern owned by userID.
func (r *MockPatternRepository) DeleteForUser(id, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, p := range r.patterns {
		if p.ID == id && p.UserID == userID {
			r.patterns = append(r.patterns[:i], r.patterns[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("pattern with ID %s not found for deletion: %w", id, ErrRecordNotFound)
}
