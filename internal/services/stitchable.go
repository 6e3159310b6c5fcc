package services

import (
	"log"

	"stitchery/internal/models"
	"stitchery/internal/repositories"
)

// IsStitchable reports whether every required code is on hand. Only presence
// is checked, not yardage, so repeated requirements need a single record.
// An empty requirement list is trivially satisfied.
func IsStitchable(required []string, available map[string]struct{}) bool {
	for _, code := range required {
		if _, ok := available[code]; !ok {
			return false
		}
	}
	return true
}

// MissingCodes lists the required codes absent from available, once each, in
// requirement order.
func MissingCodes(required []string, available map[string]struct{}) []string {
	missing := []string{}
	seen := make(map[string]struct{})
	for _, code := range required {
		if _, ok := available[code]; ok {
			continue
		}
		if _, dup := seen[code]; dup {
			continue
		}
		seen[code] = struct{}{}
		missing = append(missing, code)
	}
	return missing
}

// StitchablePatterns returns the patterns whose requirements are covered,
// preserving input order. Patterns with undecodable requirement data are
// skipped.
func StitchablePatterns(patterns []models.Pattern, available map[string]struct{}) []models.Pattern {
	out := make([]models.Pattern, 0, len(patterns))
	for i := range patterns {
		required, err := patterns[i].RequiredCodes()
		if err != nil {
			log.Printf("Skipping pattern in stitchable check: %v", err)
			continue
		}
		if IsStitchable(required, available) {
			out = append(out, patterns[i])
		}
	}
	return out
}

// PatternStatus is one row of the stitchability report.
type PatternStatus struct {
	Pattern    models.Pattern
	Required   []string
	Missing    []string
	Stitchable bool
}

// StitchableService matches a user's patterns against the same user's floss.
type StitchableService struct {
	patternRepo repositories.PatternRepository
	floss       *FlossService
}

// NewStitchableService creates a new StitchableService.
func NewStitchableService(patternRepo repositories.PatternRepository, floss *FlossService) *StitchableService {
	return &StitchableService{
		patternRepo: patternRepo,
		floss:       floss,
	}
}

// Stitchable returns the user's patterns that can be stitched right now.
func (s *StitchableService) Stitchable(userID string) ([]models.Pattern, error) {
	patterns, err := s.patternRepo.GetAllByUser(userID)
	if err != nil {
		return nil, err
	}
	available, err := s.floss.AvailableCodes(userID)
	if err != nil {
		return nil, err
	}
	return StitchablePatterns(patterns, available), nil
}

// Evaluate reports, for every pattern with readable requirements, which codes
// are still missing.
func (s *StitchableService) Evaluate(userID string) ([]PatternStatus, error) {
	patterns, err := s.patternRepo.GetAllByUser(userID)
	if err != nil {
		return nil, err
	}
	available, err := s.floss.AvailableCodes(userID)
	if err != nil {
		return nil, err
	}

	report := make([]PatternStatus, 0, len(patterns))
	for i := range patterns {
		required, err := patterns[i].RequiredCodes()
		if err != nil {
			log.Printf("Skipping pattern in stitchable report: %v", err)
			continue
		}
		missing := MissingCodes(required, available)
		report = append(report, PatternStatus{
			Pattern:    patterns[i],
			Required:   required,
			Missing:    missing,
			Stitchable: len(missing) == 0,
		})
	}
	return report, nil
}
