package database

import (
	"fmt"

	"github.com/yoyda/auth-service/internal/model"
	"gorm.io/gorm"
)

// AutoMigrate creates or updates the schema for all persisted models.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.User{},
		&model.AccessToken{},
		&model.Session{},
		&model.EmailVerificationToken{},
		&model.PasswordResetToken{},
	); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}
