package config

import (
	"fmt"
	"log/slog"

	"github.com/rsscat/rsscat/models"
	"gorm.io/gorm"
)

// MigrateDB runs database migrations
func MigrateDB(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Article{},
		&models.RSSFeed{},
		&models.ClassificationTask{},
	)
	if err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	slog.Info("Database migration completed successfully")
	return nil
}
