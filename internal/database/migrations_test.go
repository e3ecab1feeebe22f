package database

import (
	"fmt"
	"testing"
	"time"

	"github.com/midniteauto/backend/internal/market"
	"gorm.io/gorm"
)

func openTestDatabase(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:midnite_db_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := OpenSQLite(dsn, nil)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to access sql db: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

func TestOpenSQLiteRecordsMigrations(t *testing.T) {
	db := openTestDatabase(t)

	var records []migrationRecord
	if err := db.Find(&records).Error; err != nil {
		t.Fatalf("failed to load migration ledger: %v", err)
	}
	if len(records) != 1 || records[0].Name != migrationBackfillListingStatus {
		t.Fatalf("unexpected ledger %+v", records)
	}
}

func TestBackfillListingStatusFillsEmptyStatuses(t *testing.T) {
	db := openTestDatabase(t)

	legacy := market.Listing{
		ID: "legacy", SellerID: "seller", Title: "rb26 head",
		CreatedAt: time.Unix(1600000000, 0).UTC(),
	}
	if err := db.Create(&legacy).Error; err != nil {
		t.Fatalf("failed to seed listing: %v", err)
	}
	if err := db.Model(&market.Listing{}).Where("id = ?", "legacy").Update("status", "").Error; err != nil {
		t.Fatalf("failed to clear status: %v", err)
	}
	sold := market.Listing{
		ID: "sold", SellerID: "seller", Title: "old turbo", Status: market.StatusSold,
		CreatedAt: time.Unix(1600000000, 0).UTC(),
	}
	if err := db.Create(&sold).Error; err != nil {
		t.Fatalf("failed to seed listing: %v", err)
	}

	if err := backfillListingStatus(db); err != nil {
		t.Fatalf("migration failed: %v", err)
	}

	var repaired market.Listing
	if err := db.Where("id = ?", "legacy").Take(&repaired).Error; err != nil {
		t.Fatalf("failed to load listing: %v", err)
	}
	if repaired.Status != market.StatusActive {
		t.Fatalf("expected backfilled status, got %q", repaired.Status)
	}

	var untouched market.Listing
	if err := db.Where("id = ?", "sold").Take(&untouched).Error; err != nil {
		t.Fatalf("failed to load listing: %v", err)
	}
	if untouched.Status != market.StatusSold {
		t.Fatalf("existing status overwritten: %q", untouched.Status)
	}
}

func TestApplyMigrationsIsIdempotent(t *testing.T) {
	db := openTestDatabase(t)

	if err := applyMigrations(db, nil); err != nil {
		t.Fatalf("second application failed: %v", err)
	}
	var count int64
	if err := db.Model(&migrationRecord{}).Count(&count).Error; err != nil {
		t.Fatalf("failed to count ledger: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 ledger row, got %d", count)
	}
}
