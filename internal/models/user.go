package models

import "time"

// User represents an account owning patterns and a floss inventory.
type User struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Username  string    `json:"username" gorm:"uniqueIndex;type:varchar(80)" validate:"required,min=3,max=80"`
	Password  string    `json:"password,omitempty" gorm:"type:varchar(255)" validate:"required,min=6"` // bcrypt hash once stored
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
