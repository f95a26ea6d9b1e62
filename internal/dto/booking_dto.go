package dto

import (
	"time"

	"github.com/google/uuid"
)

// Slots are RFC3339 timestamps; encoding/json handles the parse, the
// service normalizes them to UTC millisecond instants. An empty (but
// present) list is a valid full overwrite, so the nil check lives in the
// handler rather than a required tag.
type AvailabilityRequest struct {
	Slots []time.Time `json:"slots"`
}

type AvailabilityResponse struct {
	Message string      `json:"message"`
	Slots   []time.Time `json:"slots"`
}

type SlotsResponse struct {
	Slots []time.Time `json:"slots"`
}

type BookRequest struct {
	ProfessorID uuid.UUID `json:"professor_id" validate:"required"`
	Time        time.Time `json:"time" validate:"required"`
}

type PartyResponse struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

type AppointmentResponse struct {
	ID        uuid.UUID     `json:"id"`
	Professor PartyResponse `json:"professor"`
	Student   PartyResponse `json:"student"`
	Time      time.Time     `json:"time"`
	Status    string        `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

type AppointmentEnvelope struct {
	Appointment AppointmentResponse `json:"appointment"`
}

type CancelResponse struct {
	Message     string              `json:"message"`
	Appointment AppointmentResponse `json:"appointment"`
}

type AppointmentsResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
}
