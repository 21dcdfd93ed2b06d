package transition

import (
	"github.com/ksred/actus-api/internal/errs"
	"github.com/ksred/actus-api/internal/money"
	"github.com/ksred/actus-api/internal/types"
)

// principalAtMaturity is the PAM rule set: periodic interest with the full
// principal repaid in one lump sum at maturity.
type principalAtMaturity struct{}

func (p *principalAtMaturity) Transition(event types.EventType, timestamp int64, state *types.ContractState, terms *types.ContractTerms) (*money.Units, error) {
	switch event {
	case types.EventIED:
		return handleInitialExchange(timestamp, state, terms)
	case types.EventIP:
		return handleInterestPayment(event, timestamp, state, terms)
	case types.EventPR:
		// PAM has no amortization schedule: a PR event repays the configured
		// tranche when one is set, otherwise the full remaining principal.
		tranche := magnitude(state.NotionalPrincipal)
		if terms.PrincipalRedemptionAmount != nil {
			tranche = *terms.PrincipalRedemptionAmount
		}
		return handlePrincipalRepayment(event, timestamp, state, terms, tranche)
	case types.EventPRD:
		return handlePurchase(timestamp, state, terms)
	case types.EventMD:
		return handleMaturity(timestamp, state, terms)
	case types.EventFP:
		return handleFeePayment(event, timestamp, state, terms)
	case types.EventCE:
		return handleCreditEvent(timestamp, state, terms)
	}
	return nil, errs.Transitionf("event %s is not defined for PAM", event)
}

// handleInitialExchange disburses the notional. The event is only valid at
// the contractual initial exchange date and only once.
func handleInitialExchange(timestamp int64, state *types.ContractState, terms *types.ContractTerms) (*money.Units, error) {
	if err := rejectDefaulted(types.EventIED, state); err != nil {
		return nil, err
	}
	if terms.InitialExchangeDate == nil || timestamp != *terms.InitialExchangeDate {
		return nil, errs.Transitionf("IED event at %d does not match initial exchange date", timestamp)
	}
	if state.NotionalPrincipal != 0 {
		return nil, errs.Transitionf("initial exchange already performed")
	}

	signed, err := terms.Notional().ScaleBySign(terms.ContractRole.Sign())
	if err != nil {
		return nil, err
	}
	disbursement, err := signed.Neg()
	if err != nil {
		return nil, err
	}

	state.NotionalPrincipal = signed
	state.StatusDate = timestamp
	return &disbursement, nil
}

// handleInterestPayment settles everything accrued up to the event
// timestamp and zeroes the accrued balance.
func handleInterestPayment(event types.EventType, timestamp int64, state *types.ContractState, terms *types.ContractTerms) (*money.Units, error) {
	if err := rejectDefaulted(event, state); err != nil {
		return nil, err
	}
	if err := withinLifetime(event, timestamp, terms); err != nil {
		return nil, err
	}
	if err := accrueTo(state, terms, timestamp); err != nil {
		return nil, err
	}

	settlement := state.AccruedInterest
	state.AccruedInterest = 0
	state.StatusDate = timestamp
	return &settlement, nil
}

// handlePrincipalRepayment reduces the outstanding principal by the tranche,
// clamped to what remains so the final repayment never overshoots zero.
// Interest keeps accruing on the balance outstanding before the repayment.
func handlePrincipalRepayment(event types.EventType, timestamp int64, state *types.ContractState, terms *types.ContractTerms, tranche money.Units) (*money.Units, error) {
	if err := rejectDefaulted(event, state); err != nil {
		return nil, err
	}
	if err := withinLifetime(event, timestamp, terms); err != nil {
		return nil, err
	}
	if state.NotionalPrincipal == 0 {
		return nil, errs.Transitionf("no outstanding principal to repay")
	}
	if err := accrueTo(state, terms, timestamp); err != nil {
		return nil, err
	}

	if remaining := magnitude(state.NotionalPrincipal); tranche > remaining {
		tranche = remaining
	}
	signedTranche, err := tranche.ScaleBySign(principalSign(state.NotionalPrincipal))
	if err != nil {
		return nil, err
	}
	state.NotionalPrincipal, err = state.NotionalPrincipal.Sub(signedTranche)
	if err != nil {
		return nil, err
	}
	state.StatusDate = timestamp
	return &signedTranche, nil
}

// handleMaturity settles remaining interest and repays the full remaining
// principal, driving both balances to exactly zero.
func handleMaturity(timestamp int64, state *types.ContractState, terms *types.ContractTerms) (*money.Units, error) {
	if err := rejectDefaulted(types.EventMD, state); err != nil {
		return nil, err
	}
	if terms.MaturityDate == nil || timestamp != *terms.MaturityDate {
		return nil, errs.Transitionf("MD event at %d does not match maturity date", timestamp)
	}
	if err := accrueTo(state, terms, timestamp); err != nil {
		return nil, err
	}

	settlement, err := state.AccruedInterest.Add(state.NotionalPrincipal)
	if err != nil {
		return nil, err
	}
	state.AccruedInterest = 0
	state.NotionalPrincipal = 0
	state.StatusDate = timestamp
	return &settlement, nil
}

// handleFeePayment settles the fee earned on the outstanding principal
// since the last event. The fee is computed and paid in full per event;
// no fee balance is carried.
func handleFeePayment(event types.EventType, timestamp int64, state *types.ContractState, terms *types.ContractTerms) (*money.Units, error) {
	if err := rejectDefaulted(event, state); err != nil {
		return nil, err
	}
	if err := withinLifetime(event, timestamp, terms); err != nil {
		return nil, err
	}
	if terms.FeeRate == nil {
		return nil, errs.Transitionf("FP event on a contract with no fee rate")
	}

	secondsPerYear, err := terms.DayCountConvention.SecondsPerYear()
	if err != nil {
		return nil, err
	}
	fee, err := money.Accrue(state.NotionalPrincipal, *terms.FeeRate, timestamp-state.StatusDate, secondsPerYear)
	if err != nil {
		return nil, err
	}
	if err := accrueTo(state, terms, timestamp); err != nil {
		return nil, err
	}

	state.StatusDate = timestamp
	return &fee, nil
}

// handlePurchase marks the contract as acquired at the event timestamp.
// State-only: interest accrues to the purchase date but no cash moves
// through the engine.
func handlePurchase(timestamp int64, state *types.ContractState, terms *types.ContractTerms) (*money.Units, error) {
	if err := rejectDefaulted(types.EventPRD, state); err != nil {
		return nil, err
	}
	if err := accrueTo(state, terms, timestamp); err != nil {
		return nil, err
	}
	state.StatusDate = timestamp
	return nil, nil
}

// handleCreditEvent marks the counterparty in default. Balances freeze as
// of the event timestamp; subsequent cash events are rejected.
func handleCreditEvent(timestamp int64, state *types.ContractState, terms *types.ContractTerms) (*money.Units, error) {
	if err := accrueTo(state, terms, timestamp); err != nil {
		return nil, err
	}
	state.Performance = types.PerformanceDefault
	state.StatusDate = timestamp
	return nil, nil
}

func rejectDefaulted(event types.EventType, state *types.ContractState) error {
	if state.Performance == types.PerformanceDefault {
		return errs.Transitionf("%s event on a defaulted contract", event)
	}
	return nil
}

func magnitude(u money.Units) money.Units {
	if u < 0 {
		return -u
	}
	return u
}

func principalSign(u money.Units) int64 {
	if u < 0 {
		return -1
	}
	return 1
}
