package database

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/campusworks/booking-backend/internal/config"
	"github.com/campusworks/booking-backend/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

func Connect(cfg *config.Config) error {
	var err error
	DB, err = gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
		// translates unique-index violations into gorm.ErrDuplicatedKey
		TranslateError: true,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetMaxIdleConns(25)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)

	slog.Info("database connected")
	return nil
}

// Migrate runs AutoMigrate and then creates the partial unique index that
// allows at most one status=booked appointment per (professor, time).
// Cancelled rows are excluded so a freed slot can be booked again.
func Migrate() error {
	if err := DB.AutoMigrate(
		&models.User{},
		&models.Appointment{},
		&models.SystemLog{},
	); err != nil {
		return err
	}

	return DB.Exec(
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_appointments_slot_booked
		 ON appointments (professor_id, "time")
		 WHERE status = 'booked'`,
	).Error
}

func Ping() error {
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
