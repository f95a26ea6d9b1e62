package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/campusworks/booking-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrProfessorNotFound   = errors.New("professor not found")
	ErrSlotNotOffered      = errors.New("time not in professor availability")
	ErrSlotTaken           = errors.New("slot already booked")
	ErrAppointmentNotFound = errors.New("appointment not found")
	ErrNotOwner            = errors.New("not your appointment")
)

type BookingService struct {
	db *gorm.DB
}

func NewBookingService(db *gorm.DB) *BookingService {
	return &BookingService{db: db}
}

// PublishAvailability overwrites the professor's entire slot list. Replace
// semantics: whatever was published before is gone, including an overwrite
// with an empty list.
func (s *BookingService) PublishAvailability(professorID uuid.UUID, slots []time.Time) ([]time.Time, error) {
	normalized := normalizeSlots(slots)

	err := s.db.Model(&models.User{}).
		Where("id = ?", professorID).
		Update("availability", datatypes.NewJSONSlice(normalized)).Error
	if err != nil {
		return nil, fmt.Errorf("failed to save availability: %w", err)
	}
	return normalized, nil
}

// FreeSlots returns the professor's published slots minus any slot that
// currently holds a status=booked appointment, keyed by exact instant.
func (s *BookingService) FreeSlots(professorID uuid.UUID) ([]time.Time, error) {
	prof, err := s.professor(professorID)
	if err != nil {
		return nil, err
	}

	var bookedTimes []time.Time
	err = s.db.Model(&models.Appointment{}).
		Where("professor_id = ? AND status = ?", prof.ID, models.StatusBooked).
		Pluck("time", &bookedTimes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load booked slots: %w", err)
	}

	return diffSlots(prof.Availability, bookedTimes), nil
}

// Book creates a status=booked appointment for the student on one of the
// professor's published slots. The conflict pre-check catches the common
// sequential double-booking; the partial unique index catches the
// concurrent one, surfacing as gorm.ErrDuplicatedKey.
func (s *BookingService) Book(student *models.User, professorID uuid.UUID, t time.Time) (*models.Appointment, error) {
	prof, err := s.professor(professorID)
	if err != nil {
		return nil, err
	}

	slot := normalizeSlot(t)
	if !containsSlot(prof.Availability, slot) {
		return nil, ErrSlotNotOffered
	}

	var count int64
	err = s.db.Model(&models.Appointment{}).
		Where("professor_id = ? AND time = ? AND status = ?", prof.ID, slot, models.StatusBooked).
		Count(&count).Error
	if err != nil {
		return nil, fmt.Errorf("failed to check conflicts: %w", err)
	}
	if count > 0 {
		return nil, ErrSlotTaken
	}

	appt := models.Appointment{
		ID:          uuid.New(),
		ProfessorID: prof.ID,
		StudentID:   student.ID,
		Time:        slot,
		Status:      models.StatusBooked,
	}
	if err := s.db.Create(&appt).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrSlotTaken
		}
		return nil, fmt.Errorf("failed to create appointment: %w", err)
	}

	appt.Professor = *prof
	appt.Student = *student
	return &appt, nil
}

// ListMine returns every appointment the caller is a party to, with both
// identities preloaded for the response.
func (s *BookingService) ListMine(user *models.User) ([]models.Appointment, error) {
	q := s.db.Preload("Professor").Preload("Student").Order("time")
	if user.Role == models.RoleProfessor {
		q = q.Where("professor_id = ?", user.ID)
	} else {
		q = q.Where("student_id = ?", user.ID)
	}

	var appts []models.Appointment
	if err := q.Find(&appts).Error; err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appts, nil
}

// Cancel marks the appointment cancelled. Only the owning professor may
// cancel; cancelling an already-cancelled appointment succeeds silently.
func (s *BookingService) Cancel(professorID uuid.UUID, appointmentID uuid.UUID) (*models.Appointment, error) {
	var appt models.Appointment
	err := s.db.Preload("Professor").Preload("Student").
		First(&appt, "id = ?", appointmentID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAppointmentNotFound
		}
		return nil, fmt.Errorf("failed to load appointment: %w", err)
	}

	if appt.ProfessorID != professorID {
		return nil, ErrNotOwner
	}

	if err := s.db.Model(&appt).Update("status", models.StatusCancelled).Error; err != nil {
		return nil, fmt.Errorf("failed to cancel appointment: %w", err)
	}
	appt.Status = models.StatusCancelled
	return &appt, nil
}

func (s *BookingService) professor(id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", id).Error; err != nil {
		return nil, ErrProfessorNotFound
	}
	if user.Role != models.RoleProfessor {
		return nil, ErrProfessorNotFound
	}
	return &user, nil
}

// normalizeSlot pins a timestamp to its canonical form: UTC, millisecond
// precision. Slot equality everywhere is exact-instant equality on this form.
func normalizeSlot(t time.Time) time.Time {
	return t.UTC().Truncate(time.Millisecond)
}

func normalizeSlots(slots []time.Time) []time.Time {
	out := make([]time.Time, len(slots))
	for i, s := range slots {
		out[i] = normalizeSlot(s)
	}
	return out
}

func containsSlot(slots []time.Time, t time.Time) bool {
	for _, s := range slots {
		if normalizeSlot(s).Equal(t) {
			return true
		}
	}
	return false
}

// diffSlots filters booked instants out of the published list, preserving
// publication order.
func diffSlots(published []time.Time, booked []time.Time) []time.Time {
	taken := make(map[int64]struct{}, len(booked))
	for _, b := range booked {
		taken[normalizeSlot(b).UnixMilli()] = struct{}{}
	}

	free := make([]time.Time, 0, len(published))
	for _, p := range published {
		slot := normalizeSlot(p)
		if _, ok := taken[slot.UnixMilli()]; !ok {
			free = append(free, slot)
		}
	}
	return free
}
