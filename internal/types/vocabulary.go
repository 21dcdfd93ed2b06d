package types

import "github.com/ksred/actus-api/internal/errs"

// ContractType selects the transition rule set that governs a contract
// instance. Codes are stable small integers agreed with callers; they are
// part of the boundary encoding and must never be renumbered.
type ContractType uint8

const (
	// ContractTypePAM is principal-at-maturity: the full principal is repaid
	// in one lump sum at maturity, with periodic interest.
	ContractTypePAM ContractType = 0
	// ContractTypeLAM is the linear amortizer: principal is repaid in fixed
	// tranches over the schedule.
	ContractTypeLAM ContractType = 1
	// ContractTypeANN is the annuity type. Declared in the vocabulary but
	// not yet backed by a rule set; init rejects it.
	ContractTypeANN ContractType = 2
)

func (t ContractType) String() string {
	switch t {
	case ContractTypePAM:
		return "PAM"
	case ContractTypeLAM:
		return "LAM"
	case ContractTypeANN:
		return "ANN"
	}
	return "UNKNOWN"
}

// ParseContractType decodes a boundary code into a ContractType.
func ParseContractType(code uint8) (ContractType, error) {
	ct := ContractType(code)
	switch ct {
	case ContractTypePAM, ContractTypeLAM, ContractTypeANN:
		return ct, nil
	}
	return 0, errs.Validationf("unknown contract type code %d", code)
}

// ContractRole is the perspective the contract is booked from. It flips the
// sign convention of every computed cash flow.
type ContractRole uint8

const (
	// ContractRoleRPA is the real-position-asset (creditor/lender) role.
	ContractRoleRPA ContractRole = 0
	// ContractRoleRPL is the real-position-liability (debtor/borrower) role.
	ContractRoleRPL ContractRole = 1
)

func (r ContractRole) String() string {
	switch r {
	case ContractRoleRPA:
		return "RPA"
	case ContractRoleRPL:
		return "RPL"
	}
	return "UNKNOWN"
}

// Sign is the cash-flow direction multiplier for the role: +1 for the
// creditor perspective, -1 for the debtor perspective.
func (r ContractRole) Sign() int64 {
	if r == ContractRoleRPL {
		return -1
	}
	return 1
}

// ParseContractRole decodes a boundary code into a ContractRole.
func ParseContractRole(code uint8) (ContractRole, error) {
	cr := ContractRole(code)
	switch cr {
	case ContractRoleRPA, ContractRoleRPL:
		return cr, nil
	}
	return 0, errs.Validationf("unknown contract role code %d", code)
}

// EventType enumerates the ACTUS lifecycle events the engine understands.
type EventType uint8

const (
	// EventIED is the initial exchange: principal is disbursed.
	EventIED EventType = 0
	// EventIP is an interest payment: accrued interest is settled.
	EventIP EventType = 1
	// EventPR is a principal repayment.
	EventPR EventType = 2
	// EventPRD is the purchase of the contract; state-only.
	EventPRD EventType = 3
	// EventMD is maturity: remaining interest and principal are settled.
	EventMD EventType = 4
	// EventFP is a fee payment computed from the contract fee rate.
	EventFP EventType = 5
	// EventCE is a credit event marking the counterparty in default;
	// state-only.
	EventCE EventType = 6
)

func (e EventType) String() string {
	switch e {
	case EventIED:
		return "IED"
	case EventIP:
		return "IP"
	case EventPR:
		return "PR"
	case EventPRD:
		return "PRD"
	case EventMD:
		return "MD"
	case EventFP:
		return "FP"
	case EventCE:
		return "CE"
	}
	return "UNKNOWN"
}

// ParseEventType decodes a boundary code into an EventType.
func ParseEventType(code uint8) (EventType, error) {
	et := EventType(code)
	switch et {
	case EventIED, EventIP, EventPR, EventPRD, EventMD, EventFP, EventCE:
		return et, nil
	}
	return 0, errs.Validationf("unknown event type code %d", code)
}
