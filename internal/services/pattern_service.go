package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"unicode/utf8"

	"stitchery/internal/models"
	"stitchery/internal/repositories"
	"stitchery/internal/storage"
)

// UploadInput carries one pattern upload.
type UploadInput struct {
	Name        string
	FlossData   string // JSON array or comma separated codes, may be empty
	Filename    string // original client side filename
	Content     io.Reader
	Size        int64
	ContentType string
}

// PatternService handles business logic related to patterns.
type PatternService struct {
	repo     repositories.PatternRepository
	files    storage.FileStore
	allowed  []string
	notifier ChangeNotifier
}

// NewPatternService creates a new PatternService. allowedExtensions lists the
// accepted upload extensions without the dot.
func NewPatternService(repo repositories.PatternRepository, files storage.FileStore, allowedExtensions []string, notifier ChangeNotifier) *PatternService {
	return &PatternService{
		repo:     repo,
		files:    files,
		allowed:  allowedExtensions,
		notifier: notifier,
	}
}

// ListPatterns returns the user's patterns in creation order.
func (s *PatternService) ListPatterns(userID string) ([]models.Pattern, error) {
	return s.repo.GetAllByUser(userID)
}

// GetPattern returns one of the user's patterns.
func (s *PatternService) GetPattern(userID, id string) (*models.Pattern, error) {
	pattern, err := s.repo.GetByIDForUser(id, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: pattern %s", ErrNotFound, id)
		}
		return nil, err
	}
	return pattern, nil
}

// UploadPattern validates an upload, stores its file and records the pattern.
// A rejected upload leaves neither a record nor a stored file behind.
func (s *PatternService) UploadPattern(ctx context.Context, userID string, in UploadInput) (*models.Pattern, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, ErrMissingName
	}
	if utf8.RuneCountInString(name) > models.MaxPatternNameLength {
		return nil, ErrNameTooLong
	}
	if in.Content == nil || strings.TrimSpace(in.Filename) == "" {
		return nil, ErrMissingFile
	}
	if !storage.HasAllowedExtension(in.Filename, s.allowed) {
		return nil, ErrDisallowedFileType
	}

	pattern := &models.Pattern{Name: name, UserID: userID}
	if err := pattern.SetRequiredCodes(models.ParseFlossData(in.FlossData)); err != nil {
		return nil, err
	}

	stored := storage.StoredName(in.Filename)
	contentType := in.ContentType
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = storage.ContentType(stored)
	}
	if err := s.files.Save(ctx, stored, in.Content, in.Size, contentType); err != nil {
		return nil, fmt.Errorf("failed to store pattern file: %w", err)
	}
	pattern.ImageFilename = stored

	if err := s.repo.Create(pattern); err != nil {
		if delErr := s.files.Delete(ctx, stored); delErr != nil {
			log.Printf("Failed to remove orphaned upload %s: %v", stored, delErr)
		}
		return nil, err
	}

	notify(s.notifier, models.ChangePatternCreated, userID, pattern.ID)
	return pattern, nil
}

// DeletePattern removes one of the user's patterns and its stored file. A
// pattern owned by someone else is reported as not found.
func (s *PatternService) DeletePattern(ctx context.Context, userID, id string) error {
	pattern, err := s.GetPattern(userID, id)
	if err != nil {
		return err
	}

	if err := s.repo.DeleteForUser(id, userID); err != nil {
		if errors.Is(err, repositories.ErrRecordNotFound) {
			return fmt.Errorf("%w: pattern %s", ErrNotFound, id)
		}
		return err
	}

	if pattern.ImageFilename != "" {
		if err := s.files.Delete(ctx, pattern.ImageFilename); err != nil && !errors.Is(err, storage.ErrFileNotFound) {
			log.Printf("Failed to delete file %s of pattern %s: %v", pattern.ImageFilename, id, err)
		}
	}

	notify(s.notifier, models.ChangePatternDeleted, userID, id)
	return nil
}

// OpenPatternFile opens the stored image or PDF of one of the user's
// patterns. The caller closes the reader.
func (s *PatternService) OpenPatternFile(ctx context.Context, userID, id string) (io.ReadCloser, string, error) {
	pattern, err := s.GetPattern(userID, id)
	if err != nil {
		return nil, "", err
	}
	if pattern.ImageFilename == "" {
		return nil, "", fmt.Errorf("%w: pattern %s has no file", ErrNotFound, id)
	}

	rc, err := s.files.Open(ctx, pattern.ImageFilename)
	if err != nil {
		if errors.Is(err, storage.ErrFileNotFound) {
			return nil, "", fmt.Errorf("%w: file of pattern %s", ErrNotFound, id)
		}
		return nil, "", err
	}
	return rc, pattern.ImageFilename, nil
}
