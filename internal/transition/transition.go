// Package transition implements the per-contract-type state-transition
// rules. Every contract type satisfies the same StateTransition contract;
// the type catalogue is closed, so New is the single place a new contract
// type must be wired in.
package transition

import (
	"github.com/ksred/actus-api/internal/errs"
	"github.com/ksred/actus-api/internal/money"
	"github.com/ksred/actus-api/internal/types"
)

// StateTransition folds one lifecycle event into contract state. On success
// the state passed in reflects the new balances and advanced status date,
// and the returned amount is the signed settlement to transfer; nil means a
// state-only event with no cash movement.
type StateTransition interface {
	Transition(event types.EventType, timestamp int64, state *types.ContractState, terms *types.ContractTerms) (*money.Units, error)
}

// New returns the rule set governing the given contract type. Declared
// types without a rule set are rejected here, at construction time.
func New(ct types.ContractType) (StateTransition, error) {
	switch ct {
	case types.ContractTypePAM:
		return &principalAtMaturity{}, nil
	case types.ContractTypeLAM:
		return &linearAmortizer{}, nil
	case types.ContractTypeANN:
		return nil, errs.Validationf("contract type ANN has no transition rule set")
	}
	return nil, errs.Validationf("unknown contract type code %d", uint8(ct))
}

// ValidateTerms checks the type-specific term requirements that event
// processing will later rely on. Called once at init so failures surface
// before any event is accepted.
func ValidateTerms(terms *types.ContractTerms) error {
	if err := terms.Validate(); err != nil {
		return err
	}

	switch terms.ContractType {
	case types.ContractTypePAM, types.ContractTypeLAM:
		if terms.NotionalPrincipal == nil {
			return errs.Validationf("%s terms require a notional principal", terms.ContractType)
		}
		if terms.InitialExchangeDate == nil {
			return errs.Validationf("%s terms require an initial exchange date", terms.ContractType)
		}
		if terms.MaturityDate == nil {
			return errs.Validationf("%s terms require a maturity date", terms.ContractType)
		}
	case types.ContractTypeANN:
		return errs.Validationf("contract type ANN has no transition rule set")
	default:
		return errs.Validationf("unknown contract type code %d", uint8(terms.ContractType))
	}

	if terms.ContractType == types.ContractTypeLAM && terms.PrincipalRedemptionAmount == nil {
		return errs.Validationf("LAM terms require a principal redemption amount")
	}
	return nil
}

// Apply runs one transition atomically: the event timestamp is checked
// against the status date, the rules run against a copy, and the copy is
// committed only on overall success, so a failed event leaves state
// unchanged.
func Apply(rules StateTransition, event types.EventType, timestamp int64, state *types.ContractState, terms *types.ContractTerms) (*money.Units, error) {
	if timestamp < state.StatusDate {
		return nil, errs.Transitionf("event timestamp %d precedes status date %d", timestamp, state.StatusDate)
	}

	next := *state
	amount, err := rules.Transition(event, timestamp, &next, terms)
	if err != nil {
		return nil, err
	}
	*state = next
	return amount, nil
}

// accrueTo adds the interest earned on the outstanding principal between
// the state's status date and the event timestamp to the accrued balance.
// Every event accrues exactly once before its own effect, so rounding is
// applied once per event and never compounds.
func accrueTo(state *types.ContractState, terms *types.ContractTerms, timestamp int64) error {
	elapsed := timestamp - state.StatusDate
	if elapsed == 0 || state.NotionalPrincipal == 0 || terms.Rate() == 0 {
		return nil
	}

	secondsPerYear, err := terms.DayCountConvention.SecondsPerYear()
	if err != nil {
		return err
	}
	interest, err := money.Accrue(state.NotionalPrincipal, terms.Rate(), elapsed, secondsPerYear)
	if err != nil {
		return err
	}
	state.AccruedInterest, err = state.AccruedInterest.Add(interest)
	return err
}

// withinLifetime rejects events outside the [initial exchange, maturity]
// window.
func withinLifetime(event types.EventType, timestamp int64, terms *types.ContractTerms) error {
	if terms.InitialExchangeDate != nil && timestamp < *terms.InitialExchangeDate {
		return errs.Transitionf("%s event at %d precedes initial exchange date %d",
			event, timestamp, *terms.InitialExchangeDate)
	}
	if terms.MaturityDate != nil && timestamp > *terms.MaturityDate {
		return errs.Transitionf("%s event at %d follows maturity date %d",
			event, timestamp, *terms.MaturityDate)
	}
	return nil
}
