package handlers

import (
	"errors"

	"github.com/campusworks/booking-backend/internal/dto"
	"github.com/campusworks/booking-backend/internal/middleware"
	"github.com/campusworks/booking-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ProfessorHandler struct {
	bookingService *services.BookingService
}

func NewProfessorHandler(bookingService *services.BookingService) *ProfessorHandler {
	return &ProfessorHandler{bookingService: bookingService}
}

// PublishAvailability overwrites the calling professor's slot list.
// Role enforcement happens in the route chain; an empty list is a valid
// overwrite, an absent one is not.
func (h *ProfessorHandler) PublishAvailability(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var req dto.AvailabilityRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}
	if req.Slots == nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "slots is required",
		})
	}

	slots, err := h.bookingService.PublishAvailability(user.ID, req.Slots)
	if err != nil {
		return internalError(c, err, "publish_availability")
	}

	return c.JSON(dto.AvailabilityResponse{
		Message: "Availability saved",
		Slots:   slots,
	})
}

// CancelAppointment cancels one of the calling professor's appointments.
func (h *ProfessorHandler) CancelAppointment(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	appointmentID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: services.ErrAppointmentNotFound.Error(),
		})
	}

	appt, err := h.bookingService.Cancel(user.ID, appointmentID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrAppointmentNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		case errors.Is(err, services.ErrNotOwner):
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return internalError(c, err, "cancel_appointment")
	}

	return c.JSON(dto.CancelResponse{
		Message:     "Appointment cancelled",
		Appointment: toAppointmentResponse(appt),
	})
}

// FreeSlots is public: published slots minus currently booked ones.
func (h *ProfessorHandler) FreeSlots(c *fiber.Ctx) error {
	professorID, err := uuid.Parse(c.Params("profId"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: services.ErrProfessorNotFound.Error(),
		})
	}

	slots, err := h.bookingService.FreeSlots(professorID)
	if err != nil {
		if errors.Is(err, services.ErrProfessorNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return internalError(c, err, "free_slots")
	}

	return c.JSON(dto.SlotsResponse{Slots: slots})
}
