package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	RoleProfessor = "professor"
	RoleStudent   = "student"
)

// User covers both professors and students. Role is set at registration
// and never updated. Availability is only meaningful for professors;
// students keep an empty list.
type User struct {
	ID           uuid.UUID                      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name         string                         `gorm:"size:255;not null" json:"name"`
	Email        string                         `gorm:"size:255;not null;uniqueIndex" json:"email"`
	Password     string                         `gorm:"not null" json:"-"`
	Role         string                         `gorm:"size:20;not null" json:"role"`
	Availability datatypes.JSONSlice[time.Time] `gorm:"type:jsonb;default:'[]'" json:"availability"`
	CreatedAt    time.Time                      `json:"created_at"`
	UpdatedAt    time.Time                      `json:"updated_at"`
}
