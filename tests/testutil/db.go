package testutil

import (
	"io"
	"testing"
	"time"

	"github.com/kendall-kelly/sari-inventory-api/models"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewTestDB opens a migrated in-memory SQLite database that is closed when t ends.
// The pool is pinned to one connection so every query sees the same database.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get test database handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	return db
}

// NewTestLogger returns a logger that discards its output
func NewTestLogger() *logrus.Logger {
	logg := logrus.New()
	logg.SetOutput(io.Discard)
	return logg
}

// SeedSari inserts an item and an active sari at the given stage and location
func SeedSari(t *testing.T, db *gorm.DB, serialNumber, itemCode, process, location string) models.Sari {
	t.Helper()

	item := models.Item{
		ItemCode:     itemCode,
		Kora:         "KORA" + itemCode,
		White:        "WHITE" + itemCode,
		SelfDyed:     "SELF" + itemCode,
		ContrastDyed: "CONTRAST" + itemCode,
	}
	if err := db.Where(models.Item{ItemCode: itemCode}).FirstOrCreate(&item).Error; err != nil {
		t.Fatalf("failed to seed item %s: %v", itemCode, err)
	}

	sari := models.Sari{
		SerialNumber:    serialNumber,
		ItemCode:        itemCode,
		EntryDate:       time.Now().UTC().Add(-48 * time.Hour),
		CurrentProcess:  process,
		CurrentLocation: location,
		CurrentCode:     item.LabelFor(process),
		Status:          models.SariStatusActive,
	}
	if err := db.Omit("Item").Create(&sari).Error; err != nil {
		t.Fatalf("failed to seed sari %s: %v", serialNumber, err)
	}
	return sari
}
