package handlers

import (
	"log/slog"

	"github.com/campusworks/booking-backend/internal/dto"
	"github.com/campusworks/booking-backend/internal/models"
	"github.com/gofiber/fiber/v2"
)

func toAppointmentResponse(a *models.Appointment) dto.AppointmentResponse {
	return dto.AppointmentResponse{
		ID: a.ID,
		Professor: dto.PartyResponse{
			ID:    a.ProfessorID,
			Name:  a.Professor.Name,
			Email: a.Professor.Email,
		},
		Student: dto.PartyResponse{
			ID:    a.StudentID,
			Name:  a.Student.Name,
			Email: a.Student.Email,
		},
		Time:      a.Time,
		Status:    a.Status,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

// internalError logs the underlying failure and returns the generic 500
// envelope; detail stays in the logs, not the response.
func internalError(c *fiber.Ctx, err error, action string) error {
	slog.Error("request failed", "action", action, "path", c.Path(), "error", err.Error())
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
		Error: true, Message: "Internal server error",
	})
}
