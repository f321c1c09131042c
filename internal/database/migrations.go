package database

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yukikurage/learning-admin-api/internal/models"
)

// Models lists every table in migration order.
func Models() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Organization{},
		&models.Membership{},
		&models.Course{},
		&models.Video{},
		&models.Enrollment{},
		&models.VideoProgress{},
	}
}

// Migrate creates or updates the schema.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}
