package database

import (
	"errors"
	"time"

	"github.com/midniteauto/backend/internal/market"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const migrationBackfillListingStatus = "2026-07-14_backfill_listing_status"

type migrationRecord struct {
	Name             string `gorm:"column:name;primaryKey;size:190;not null"`
	AppliedAtSeconds int64  `gorm:"column:applied_at_s;not null"`
}

func (migrationRecord) TableName() string {
	return "db_migrations"
}

type migrationDefinition struct {
	name  string
	apply func(*gorm.DB) error
}

func applyMigrations(db *gorm.DB, logger *zap.Logger) error {
	migrations := []migrationDefinition{
		{name: migrationBackfillListingStatus, apply: backfillListingStatus},
	}

	for _, migration := range migrations {
		var record migrationRecord
		err := db.Where("name = ?", migration.name).Take(&record).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err := migration.apply(db); err != nil {
			return err
		}
		appliedAt := time.Now().UTC().Unix()
		if err := db.Create(&migrationRecord{Name: migration.name, AppliedAtSeconds: appliedAt}).Error; err != nil {
			return err
		}
		if logger != nil {
			logger.Info("database migration applied", zap.String("migration", migration.name))
		}
	}
	return nil
}

// Listings created before status tracking landed carry an empty status; they
// were all active at the time.
func backfillListingStatus(db *gorm.DB) error {
	return db.Model(&market.Listing{}).
		Where("status = ?", "").
		Update("status", market.StatusActive).Error
}
