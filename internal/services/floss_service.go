package services

import (
	"errors"
	"fmt"
	"math"

	"stitchery/internal/models"
	"stitchery/internal/repositories"
)

// FlossService manages a user's floss inventory.
type FlossService struct {
	repo          repositories.FlossRepository
	notifier      ChangeNotifier
	defaultLength float64
}

// NewFlossService creates a new FlossService. notifier may be nil.
func NewFlossService(repo repositories.FlossRepository, notifier ChangeNotifier, defaultLength float64) *FlossService {
	if defaultLength <= 0 {
		defaultLength = models.DefaultFlossLength
	}
	return &FlossService{
		repo:          repo,
		notifier:      notifier,
		defaultLength: defaultLength,
	}
}

// ListFloss returns the user's inventory in the order it was added.
func (s *FlossService) ListFloss(userID string) ([]models.Floss, error) {
	return s.repo.GetAllByUser(userID)
}

// AddFloss adds a new code to the inventory. A nil length means one skein.
// Codes are unique per user; adding one twice is a conflict.
func (s *FlossService) AddFloss(userID, code string, length *float64) (*models.Floss, error) {
	code = models.NormalizeFlossCode(code)
	if code == "" {
		return nil, fmt.Errorf("%w: floss code is required", ErrValidation)
	}
	initial := s.defaultLength
	if length != nil {
		initial = *length
	}
	if math.IsNaN(initial) || math.IsInf(initial, 0) {
		return nil, fmt.Errorf("%w: floss length must be a finite number", ErrValidation)
	}

	existing, err := s.repo.GetByCode(userID, code)
	if err != nil && !errors.Is(err, repositories.ErrRecordNotFound) {
		return nil, err
	}
	if err == nil && existing != nil {
		return nil, fmt.Errorf("%w: floss %s is already in the inventory", ErrConflict, code)
	}

	floss := &models.Floss{UserID: userID, Code: code, Length: initial}
	if err := s.repo.Create(floss); err != nil {
		// Lost a race with a concurrent add of the same code
		if errors.Is(err, repositories.ErrDuplicateRecord) {
			return nil, fmt.Errorf("%w: floss %s is already in the inventory", ErrConflict, code)
		}
		return nil, err
	}
	notify(s.notifier, models.ChangeFlossAdded, userID, code)
	return floss, nil
}

// ApplyDelta adds delta (negative for thread used, positive for restock) to
// the code's remaining length. The result may go below zero.
func (s *FlossService) ApplyDelta(userID, code string, delta float64) (*models.Floss, error) {
	code = models.NormalizeFlossCode(code)
	if math.IsNaN(delta) || math.IsInf(delta, 0) {
		return nil, fmt.Errorf("%w: delta must be a finite number", ErrValidation)
	}

	floss, err := s.repo.ApplyDelta(userID, code, delta)
	if err != nil {
		if errors.Is(err, repositories.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: floss %s", ErrNotFound, code)
		}
		return nil, err
	}
	notify(s.notifier, models.ChangeFlossAdjusted, userID, code)
	return floss, nil
}

// RemoveFloss removes every record with the given code.
func (s *FlossService) RemoveFloss(userID, code string) error {
	code = models.NormalizeFlossCode(code)
	removed, err := s.repo.DeleteByCode(userID, code)
	if err != nil {
		return err
	}
	if removed == 0 {
		return fmt.Errorf("%w: floss %s", ErrNotFound, code)
	}
	notify(s.notifier, models.ChangeFlossRemoved, userID, code)
	return nil
}

// AvailableCodes returns the set of codes the user currently holds.
func (s *FlossService) AvailableCodes(userID string) (map[string]struct{}, error) {
	flosses, err := s.repo.GetAllByUser(userID)
	if err != nil {
		return nil, err
	}
	codes := make(map[string]struct{}, len(flosses))
	for _, f := range flosses {
		codes[f.Code] = struct{}{}
	}
	return codes, nil
}
