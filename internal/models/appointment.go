package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusBooked    = "booked"
	StatusCancelled = "cancelled"
)

// Appointment links a student to one of a professor's published slots.
// A partial unique index on (professor_id, time) WHERE status = 'booked'
// (created in database.Migrate) guarantees at most one live booking per
// slot even under concurrent inserts.
type Appointment struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ProfessorID uuid.UUID `gorm:"type:uuid;not null;index" json:"professor_id"`
	StudentID   uuid.UUID `gorm:"type:uuid;not null;index" json:"student_id"`
	Professor   User      `gorm:"foreignKey:ProfessorID" json:"-"`
	Student     User      `gorm:"foreignKey:StudentID" json:"-"`
	Time        time.Time `gorm:"not null" json:"time"`
	Status      string    `gorm:"size:20;not null;default:'booked'" json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
