package migrations

import (
	"github.com/ksred/actus-api/internal/contracts"
	"gorm.io/gorm"
)

// AddEventLog creates the append-only contract event log.
func AddEventLog(db *gorm.DB) error {
	return db.AutoMigrate(&contracts.ContractEvent{})
}
