package contracts

import (
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

type Contract struct {
	gorm.Model         `json:"-"`
	ContractID         string `gorm:"uniqueIndex" json:"contract_id"`
	ContractType       string `json:"contract_type"`
	ContractRole       string `json:"contract_role"`
	SettlementCurrency string `json:"settlement_currency"`
	Status             string `json:"status"` // ACTIVE, MATURED, DEFAULTED

	// TermsBlob is the canonical encoding of the immutable terms; the
	// columns below are the denormalized mutable state.
	TermsBlob         []byte    `json:"-"`
	NotionalPrincipal int64     `json:"notional_principal"`
	AccruedInterest   int64     `json:"accrued_interest"`
	StatusDate        int64     `json:"status_date"`
	Performance       string    `json:"performance"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

type ContractEvent struct {
	gorm.Model `json:"-"`
	EventID    string `gorm:"uniqueIndex" json:"event_id"`
	ContractID string `gorm:"index" json:"contract_id"`
	EventType  string `json:"event_type"`
	EventCode  uint8  `json:"event_code"`
	Timestamp  int64  `json:"timestamp"`
	// Settlement is the signed cash amount the event produced; nil for
	// state-only events.
	Settlement *int64    `json:"settlement,omitempty"`
	StateHash  string    `json:"state_hash"`
	CreatedAt  time.Time `json:"created_at"`
}

type IdempotencyRecord struct {
	gorm.Model
	IdempotencyKey string    `gorm:"uniqueIndex" json:"idempotency_key"`
	ResourceID     string    `json:"resource_id"`
	ResourceType   string    `json:"resource_type"`
	ExpiresAt      time.Time `json:"expires_at"`
}

// InitContractRequest mirrors the boundary init call: numeric vocabulary
// codes, the opaque settlement currency, and the encoded terms.
type InitContractRequest struct {
	ContractType       uint8           `json:"contract_type"`
	ContractRole       uint8           `json:"contract_role"`
	SettlementCurrency string          `json:"settlement_currency"`
	Terms              json.RawMessage `json:"terms" binding:"required"`
}

// ProcessEventRequest mirrors the boundary process_event call.
type ProcessEventRequest struct {
	EventType uint8 `json:"event_type"`
	Timestamp int64 `json:"timestamp"`
}
