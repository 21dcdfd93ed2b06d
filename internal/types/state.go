package types

import "github.com/ksred/actus-api/internal/money"

// Performance is the credit standing of the contract.
type Performance string

const (
	PerformancePerformant Performance = "PERFORMANT"
	PerformanceDefault    Performance = "DEFAULT"
)

// ContractState is the mutable evolving ledger state of one deployed
// contract. StatusDate only ever advances; an event with an earlier
// timestamp is rejected before any field changes.
type ContractState struct {
	NotionalPrincipal money.Units `json:"notional_principal"`
	AccruedInterest   money.Units `json:"accrued_interest"`
	StatusDate        int64       `json:"status_date"`
	Performance       Performance `json:"performance"`
}

// InitialState returns the state a contract starts in before any event is
// applied: zero balances at the terms status date.
func InitialState(terms *ContractTerms) ContractState {
	return ContractState{
		NotionalPrincipal: 0,
		AccruedInterest:   0,
		StatusDate:        terms.StatusDate,
		Performance:       PerformancePerformant,
	}
}
