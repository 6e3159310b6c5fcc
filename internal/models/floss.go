package models

import (
	"strings"
	"time"
)

// DefaultFlossLength is the yardage of one standard six-strand skein.
const DefaultFlossLength = 8.7

// Floss is a single thread color in a user's inventory.
type Floss struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID    string    `json:"user_id" gorm:"uniqueIndex:idx_floss_user_code;type:varchar(36);not null"`
	Code      string    `json:"code" gorm:"uniqueIndex:idx_floss_user_code;type:varchar(32);not null" validate:"required,max=32"`
	Length    float64   `json:"length"` // remaining yardage, may go negative
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NormalizeFlossCode canonicalizes a manufacturer code so "dmc 310 " and
// "DMC 310" refer to the same thread.
func NormalizeFlossCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
