package transition

import (
	"github.com/ksred/actus-api/internal/errs"
	"github.com/ksred/actus-api/internal/money"
	"github.com/ksred/actus-api/internal/types"
)

// linearAmortizer is the LAM rule set: the same event surface as PAM, but
// each PR event repays the fixed per-period tranche from the terms, so the
// principal amortizes linearly toward maturity.
type linearAmortizer struct{}

func (l *linearAmortizer) Transition(event types.EventType, timestamp int64, state *types.ContractState, terms *types.ContractTerms) (*money.Units, error) {
	switch event {
	case types.EventIED:
		return handleInitialExchange(timestamp, state, terms)
	case types.EventIP:
		return handleInterestPayment(event, timestamp, state, terms)
	case types.EventPR:
		if terms.PrincipalRedemptionAmount == nil {
			return nil, errs.Transitionf("PR event on LAM terms with no principal redemption amount")
		}
		return handlePrincipalRepayment(event, timestamp, state, terms, *terms.PrincipalRedemptionAmount)
	case types.EventPRD:
		return handlePurchase(timestamp, state, terms)
	case types.EventMD:
		return handleMaturity(timestamp, state, terms)
	case types.EventFP:
		return handleFeePayment(event, timestamp, state, terms)
	case types.EventCE:
		return handleCreditEvent(timestamp, state, terms)
	}
	return nil, errs.Transitionf("event %s is not defined for LAM", event)
}
