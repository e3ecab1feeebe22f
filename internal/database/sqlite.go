package database

import (
	"fmt"

	"github.com/midniteauto/backend/internal/chat"
	"github.com/midniteauto/backend/internal/events"
	"github.com/midniteauto/backend/internal/garage"
	"github.com/midniteauto/backend/internal/market"
	"github.com/midniteauto/backend/internal/social"
	sqlite "github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// OpenSQLite establishes a SQLite connection and performs schema migrations.
func OpenSQLite(path string, logger *zap.Logger) (*gorm.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("database path is required")
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&social.Profile{}, &social.Follow{}, &social.Like{}, &social.Save{},
		&garage.Car{}, &garage.Part{}, &garage.MaintenanceLog{}, &garage.Task{},
		&garage.Photo{}, &garage.TimelineEntry{},
		&events.Event{}, &events.RSVP{},
		&chat.Chat{}, &chat.Message{},
		&market.Listing{},
		&migrationRecord{},
	); err != nil {
		return nil, err
	}

	if err := applyMigrations(db, logger); err != nil {
		return nil, err
	}

	if logger != nil {
		logger.Info("database initialized", zap.String("path", path))
	}

	return db, nil
}
