package database

import (
	"gorm.io/gorm"

	"github.com/loadlane/loadlane/internal/models"
)

// AutoMigrate creates or updates the database schema for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Load{},
		&models.Notification{},
		&models.NotificationDelivery{},
		&models.NotificationPreference{},
		&models.PushSubscription{},
		&models.CacheEntry{},
	)
}
