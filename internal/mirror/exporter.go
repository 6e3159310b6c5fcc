package mirror

import (
	"fmt"
	"log"
	"sync"

	"stitchery/internal/models"
	"stitchery/internal/repositories"
)

// Exporter rebuilds the mirror files from the relational store. Exports run
// one at a time so the snapshot written last is also the one read last.
type Exporter struct {
	mu          sync.Mutex
	store       *Store
	flossRepo   repositories.FlossRepository
	patternRepo repositories.PatternRepository
}

// NewExporter creates a new Exporter.
func NewExporter(store *Store, flossRepo repositories.FlossRepository, patternRepo repositories.PatternRepository) *Exporter {
	return &Exporter{
		store:       store,
		flossRepo:   flossRepo,
		patternRepo: patternRepo,
	}
}

// Export writes a full snapshot of every user's floss and patterns.
func (e *Exporter) Export() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	flosses, err := e.flossRepo.GetAll()
	if err != nil {
		return fmt.Errorf("failed to load floss for mirror: %w", err)
	}
	patterns, err := e.patternRepo.GetAll()
	if err != nil {
		return fmt.Errorf("failed to load patterns for mirror: %w", err)
	}

	flossEntries := make([]FlossEntry, 0, len(flosses))
	for _, f := range flosses {
		flossEntries = append(flossEntries, FlossEntry{Code: f.Code, Length: f.Length, UserID: f.UserID})
	}

	patternEntries := make([]PatternEntry, 0, len(patterns))
	for i := range patterns {
		codes, err := patterns[i].RequiredCodes()
		if err != nil {
			log.Printf("Mirror export: %v", err)
			codes = []string{}
		}
		patternEntries = append(patternEntries, PatternEntry{
			Name:          patterns[i].Name,
			FlossData:     codes,
			ImageFilename: patterns[i].ImageFilename,
			UserID:        patterns[i].UserID,
		})
	}

	if err := e.store.SaveFloss(flossEntries); err != nil {
		return err
	}
	return e.store.SavePatterns(patternEntries)
}

// NotifyChange re-exports the mirror in-process. Failures are logged, not
// returned, because the relational write has already succeeded.
func (e *Exporter) NotifyChange(event models.ChangeEvent) {
	if err := e.Export(); err != nil {
		log.Printf("Failed to refresh mirror after %s (%s): %v", event.Kind, event.Subject, err)
	}
}
