package handlers

import (
	"errors"

	"github.com/campusworks/booking-backend/internal/dto"
	"github.com/campusworks/booking-backend/internal/middleware"
	"github.com/campusworks/booking-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type AppointmentHandler struct {
	bookingService *services.BookingService
}

func NewAppointmentHandler(bookingService *services.BookingService) *AppointmentHandler {
	return &AppointmentHandler{bookingService: bookingService}
}

// Book creates an appointment for the calling student on one of the
// professor's published slots.
func (h *AppointmentHandler) Book(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var req dto.BookRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}
	if err := dto.Validate(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "professor_id and time are required",
		})
	}

	appt, err := h.bookingService.Book(user, req.ProfessorID, req.Time)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrProfessorNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		case errors.Is(err, services.ErrSlotNotOffered),
			errors.Is(err, services.ErrSlotTaken):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return internalError(c, err, "book")
	}

	return c.JSON(dto.AppointmentEnvelope{Appointment: toAppointmentResponse(appt)})
}

// ListMine returns every appointment the caller is a party to, both
// identities resolved to name and email.
func (h *AppointmentHandler) ListMine(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	appts, err := h.bookingService.ListMine(user)
	if err != nil {
		return internalError(c, err, "list_appointments")
	}

	out := make([]dto.AppointmentResponse, 0, len(appts))
	for i := range appts {
		out = append(out, toAppointmentResponse(&appts[i]))
	}
	return c.JSON(dto.AppointmentsResponse{Appointments: out})
}
