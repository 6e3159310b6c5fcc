package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"
)

// MaxPatternNameLength bounds Pattern.Name in characters.
const MaxPatternNameLength = 120

// Pattern is a cross-stitch design and the floss codes it needs.
type Pattern struct {
	ID            string         `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name          string         `json:"name" gorm:"type:varchar(120);not null" validate:"required,max=120"`
	FlossCodes    datatypes.JSON `json:"-" gorm:"type:text"` // serialized []string, see RequiredCodes
	ImageFilename string         `json:"image_filename,omitempty" gorm:"type:varchar(255)"`
	UserID        string         `json:"user_id" gorm:"index;type:varchar(36);not null"`
	CreatedAt     time.Time      `json:"created_at"`
}

// RequiredCodes decodes the stored floss requirement list. An empty column
// decodes to an empty list.
func (p *Pattern) RequiredCodes() ([]string, error) {
	if len(p.FlossCodes) == 0 {
		return []string{}, nil
	}
	var codes []string
	if err := json.Unmarshal(p.FlossCodes, &codes); err != nil {
		return nil, fmt.Errorf("pattern %s has malformed floss data: %w", p.ID, err)
	}
	if codes == nil {
		codes = []string{}
	}
	return codes, nil
}

// SetRequiredCodes serializes codes into the FlossCodes column.
func (p *Pattern) SetRequiredCodes(codes []string) error {
	if codes == nil {
		codes = []string{}
	}
	raw, err := json.Marshal(codes)
	if err != nil {
		return fmt.Errorf("failed to encode floss codes: %w", err)
	}
	p.FlossCodes = datatypes.JSON(raw)
	return nil
}

// ParseFlossData turns user supplied requirement text into normalized codes.
// Accepts a JSON array of strings or a comma separated list. Absent or
// malformed input yields an empty list.
func ParseFlossData(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return []string{}
	}

	var parts []string
	if strings.HasPrefix(raw, "[") {
		if err := json.Unmarshal([]byte(raw), &parts); err != nil {
			return []string{}
		}
	} else {
		parts = strings.Split(raw, ",")
	}

	codes := make([]string, 0, len(parts))
	for _, part := range parts {
		if code := NormalizeFlossCode(part); code != "" {
			codes = append(codes, code)
		}
	}
	return codes
}
