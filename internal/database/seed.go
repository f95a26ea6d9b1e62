package database

import (
	"log/slog"

	"github.com/campusworks/booking-backend/internal/models"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SeedDemo inserts a demo professor and two students for local
// development. Existing emails are left untouched.
func SeedDemo(db *gorm.DB) error {
	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	users := []models.User{
		{ID: uuid.New(), Name: "Professor P1", Email: "prof1@example.com", Password: string(hash), Role: models.RoleProfessor},
		{ID: uuid.New(), Name: "Student A1", Email: "a1@example.com", Password: string(hash), Role: models.RoleStudent},
		{ID: uuid.New(), Name: "Student A2", Email: "a2@example.com", Password: string(hash), Role: models.RoleStudent},
	}

	for _, u := range users {
		var existing models.User
		if err := db.Where("email = ?", u.Email).First(&existing).Error; err == nil {
			continue
		}
		if err := db.Create(&u).Error; err != nil {
			return err
		}
		slog.Info("seeded demo user", "email", u.Email, "role", u.Role)
	}
	return nil
}
