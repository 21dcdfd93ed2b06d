package database

import (
	"fmt"

	"github.com/ksred/actus-api/internal/contracts"
	"github.com/ksred/actus-api/internal/database/migrations"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// NewDatabase initializes and returns a new GORM DB connection
func NewDatabase(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	// Run migrations
	if err := migrations.AddEventLog(db); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	// Auto-migrate other schemas
	err = db.AutoMigrate(
		&contracts.Contract{},
		&contracts.IdempotencyRecord{},
	)
	if err != nil {
		return nil, err
	}

	return db, nil
}
