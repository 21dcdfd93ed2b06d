package types

import "github.com/ksred/actus-api/internal/money"

// ContractResponse represents the response from contract initialization.
type ContractResponse struct {
	ContractID   string `json:"contract_id"`
	ContractType string `json:"contract_type"`
	ContractRole string `json:"contract_role"`
	Status       string `json:"status"`
	StatusDate   int64  `json:"status_date"`
	CreatedAt    int64  `json:"created_at"`
}

// EventResponse represents the response from processing one lifecycle event.
type EventResponse struct {
	EventID    string       `json:"event_id"`
	ContractID string       `json:"contract_id"`
	EventType  string       `json:"event_type"`
	Timestamp  int64        `json:"timestamp"`
	Settlement *money.Units `json:"settlement,omitempty"`
	StateHash  string       `json:"state_hash"`
	State      ContractState `json:"state"`
}

// ScheduleEntryResponse is one convention-adjusted schedule date.
type ScheduleEntryResponse struct {
	EventType  string `json:"event_type"`
	Unadjusted int64  `json:"unadjusted"`
	Adjusted   int64  `json:"adjusted"`
}
