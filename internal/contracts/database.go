package contracts

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

type Database struct {
	db *gorm.DB
}

func NewDatabase(db *gorm.DB) *Database {
	return &Database{db: db}
}

func (d *Database) CreateContract(contract *Contract) error {
	return d.db.Create(contract).Error
}

func (d *Database) GetContract(contractID string) (*Contract, error) {
	var contract Contract
	if err := d.db.Where("contract_id = ?", contractID).First(&contract).Error; err != nil {
		return nil, err
	}
	return &contract, nil
}

func (d *Database) GetActiveContracts() ([]Contract, error) {
	var contracts []Contract
	if err := d.db.Where("status = ?", StatusActive).Find(&contracts).Error; err != nil {
		return nil, err
	}
	return contracts, nil
}

// SaveEventResult commits one processed event: the advanced contract row,
// the event-log row, and the idempotency record are written in a single
// transaction so a failure leaves no partial history.
func (d *Database) SaveEventResult(contract *Contract, event *ContractEvent, idempotencyKey string) error {
	tx := d.db.Begin()
	if err := tx.Error; err != nil {
		return err
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Save(contract).Error; err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Create(event).Error; err != nil {
		tx.Rollback()
		return err
	}

	if idempotencyKey != "" {
		record := IdempotencyRecord{
			IdempotencyKey: idempotencyKey,
			ResourceID:     event.EventID,
			ResourceType:   "contract_event",
			ExpiresAt:      time.Now().Add(24 * time.Hour),
		}
		if err := tx.Create(&record).Error; err != nil {
			tx.Rollback()
			return err
		}
	}

	return tx.Commit().Error
}

func (d *Database) GetEvent(eventID string) (*ContractEvent, error) {
	var event ContractEvent
	if err := d.db.Where("event_id = ?", eventID).First(&event).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

func (d *Database) GetContractEvents(contractID string) ([]ContractEvent, error) {
	var events []ContractEvent
	if err := d.db.Where("contract_id = ?", contractID).
		Order("timestamp ASC").Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

// HasEvent reports whether an event of the given kind at the given
// timestamp was already applied to the contract.
func (d *Database) HasEvent(contractID string, eventCode uint8, timestamp int64) (bool, error) {
	var count int64
	if err := d.db.Model(&ContractEvent{}).
		Where("contract_id = ? AND event_code = ? AND timestamp = ?", contractID, eventCode, timestamp).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetIdempotencyRecord retrieves an idempotency record by key. A missing
// record is returned as an empty record, not an error.
func (d *Database) GetIdempotencyRecord(key string) (*IdempotencyRecord, error) {
	var record IdempotencyRecord
	if err := d.db.Where("idempotency_key = ?", key).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &record, nil
		}
		return nil, err
	}
	return &record, nil
}
