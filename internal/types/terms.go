package types

import (
	"github.com/ksred/actus-api/internal/errs"
	"github.com/ksred/actus-api/internal/money"
)

// Calendar identifies the holiday set used when shifting schedule dates.
type Calendar string

const (
	// CalendarNone treats every day as a business day. This is the default
	// when no calendar is configured.
	CalendarNone Calendar = "NOCALENDAR"
	// CalendarMondayToFriday treats Saturdays and Sundays as non-business
	// days.
	CalendarMondayToFriday Calendar = "MONDAYTOFRIDAY"
)

// BusinessDayConvention says how a date falling on a non-business day is
// shifted. The zero value means no shift: the raw calendar date is used.
type BusinessDayConvention string

const (
	BusinessDayNoShift            BusinessDayConvention = ""
	BusinessDayFollowing          BusinessDayConvention = "FOLLOWING"
	BusinessDayModifiedFollowing  BusinessDayConvention = "MODIFIEDFOLLOWING"
	BusinessDayPreceding          BusinessDayConvention = "PRECEDING"
	BusinessDayModifiedPreceding  BusinessDayConvention = "MODIFIEDPRECEDING"
)

// EndOfMonthConvention says whether cycle dates anchored on a month-end stay
// pinned to month-ends. The zero value keeps the same day-of-month.
type EndOfMonthConvention string

const (
	EndOfMonthSameDay EndOfMonthConvention = ""
	EndOfMonthPinned  EndOfMonthConvention = "EOM"
)

// DayCountConvention selects the denominator used for interest accrual.
type DayCountConvention string

const (
	// DayCountActual365Fixed accrues against a fixed 365-day year. This is
	// the documented default when no convention is configured.
	DayCountActual365Fixed DayCountConvention = "ACT/365F"
	// DayCountActual360 accrues against a 360-day year.
	DayCountActual360 DayCountConvention = "ACT/360"
)

// SecondsPerYear returns the accrual denominator for the convention.
// An unrecognized convention fails with a ValidationError.
func (d DayCountConvention) SecondsPerYear() (int64, error) {
	switch d {
	case DayCountActual365Fixed, "":
		return 365 * 24 * 3600, nil
	case DayCountActual360:
		return 360 * 24 * 3600, nil
	}
	return 0, errs.Validationf("unknown day-count convention %q", string(d))
}

// CycleUnit is the period unit of a schedule cycle.
type CycleUnit string

const (
	CycleDaily     CycleUnit = "D"
	CycleWeekly    CycleUnit = "W"
	CycleMonthly   CycleUnit = "M"
	CycleQuarterly CycleUnit = "Q"
	CycleYearly    CycleUnit = "Y"
)

// Cycle is a recurrence definition: one schedule date every Multiplier
// units.
type Cycle struct {
	Unit       CycleUnit `json:"unit"`
	Multiplier int       `json:"multiplier"`
}

// Validate checks the cycle definition.
func (c *Cycle) Validate() error {
	switch c.Unit {
	case CycleDaily, CycleWeekly, CycleMonthly, CycleQuarterly, CycleYearly:
	default:
		return errs.Validationf("unknown cycle unit %q", string(c.Unit))
	}
	if c.Multiplier <= 0 {
		return errs.Validationf("cycle multiplier must be positive, got %d", c.Multiplier)
	}
	return nil
}

// ScheduleConfig carries the calendar and date-shift conventions for a
// contract. All fields are optional; absence means no adjustment.
type ScheduleConfig struct {
	Calendar              Calendar              `json:"calendar,omitempty"`
	EndOfMonthConvention  EndOfMonthConvention  `json:"end_of_month_convention,omitempty"`
	BusinessDayConvention BusinessDayConvention `json:"business_day_convention,omitempty"`
	InterestPaymentCycle  *Cycle                `json:"interest_payment_cycle,omitempty"`
}

// Validate checks every configured convention against the closed sets.
func (sc *ScheduleConfig) Validate() error {
	switch sc.Calendar {
	case "", CalendarNone, CalendarMondayToFriday:
	default:
		return errs.Validationf("unknown calendar %q", string(sc.Calendar))
	}
	switch sc.BusinessDayConvention {
	case BusinessDayNoShift, BusinessDayFollowing, BusinessDayModifiedFollowing,
		BusinessDayPreceding, BusinessDayModifiedPreceding:
	default:
		return errs.Validationf("unknown business-day convention %q", string(sc.BusinessDayConvention))
	}
	switch sc.EndOfMonthConvention {
	case EndOfMonthSameDay, EndOfMonthPinned:
	default:
		return errs.Validationf("unknown end-of-month convention %q", string(sc.EndOfMonthConvention))
	}
	if sc.InterestPaymentCycle != nil {
		if err := sc.InterestPaymentCycle.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// ContractTerms is the immutable input set fixed at contract creation.
// Optional numeric terms are pointers so that absence is distinguishable
// from zero; every absent value maps to a named default rather than an
// implicit zero. All per-instance mutable state lives in ContractState.
type ContractTerms struct {
	ContractID         string       `json:"contract_id"`
	ContractType       ContractType `json:"contract_type"`
	ContractRole       ContractRole `json:"contract_role"`
	SettlementCurrency string       `json:"settlement_currency,omitempty"`

	// Lifecycle boundaries, in seconds since epoch.
	InitialExchangeDate *int64 `json:"initial_exchange_date,omitempty"`
	MaturityDate        *int64 `json:"maturity_date,omitempty"`
	StatusDate          int64  `json:"status_date"`

	NotionalPrincipal   *money.Units `json:"notional_principal,omitempty"`
	NominalInterestRate *money.Rate  `json:"nominal_interest_rate,omitempty"`
	FeeRate             *money.Rate  `json:"fee_rate,omitempty"`

	// PrincipalRedemptionAmount is the fixed tranche repaid by each PR
	// event of an amortizing type (LAM). PAM ignores it.
	PrincipalRedemptionAmount *money.Units `json:"principal_redemption_amount,omitempty"`

	DayCountConvention DayCountConvention `json:"day_count_convention,omitempty"`
	ScheduleConfig     ScheduleConfig     `json:"schedule_config"`
}

// Validate checks the terms for internal consistency. It is called once at
// init; event processing assumes terms that passed here.
func (t *ContractTerms) Validate() error {
	if t.ContractID == "" {
		return errs.Validationf("contract_id is required")
	}
	if _, err := ParseContractType(uint8(t.ContractType)); err != nil {
		return err
	}
	if _, err := ParseContractRole(uint8(t.ContractRole)); err != nil {
		return err
	}
	if t.InitialExchangeDate != nil && t.MaturityDate != nil &&
		*t.MaturityDate <= *t.InitialExchangeDate {
		return errs.Validationf("maturity date %d is not after initial exchange date %d",
			*t.MaturityDate, *t.InitialExchangeDate)
	}
	if t.NotionalPrincipal != nil && *t.NotionalPrincipal <= 0 {
		return errs.Validationf("notional principal must be positive, got %d", *t.NotionalPrincipal)
	}
	if t.PrincipalRedemptionAmount != nil && *t.PrincipalRedemptionAmount <= 0 {
		return errs.Validationf("principal redemption amount must be positive, got %d",
			*t.PrincipalRedemptionAmount)
	}
	if _, err := t.DayCountConvention.SecondsPerYear(); err != nil {
		return err
	}
	return t.ScheduleConfig.Validate()
}

// Rate returns the nominal interest rate, defaulting to zero when absent.
func (t *ContractTerms) Rate() money.Rate {
	if t.NominalInterestRate == nil {
		return 0
	}
	return *t.NominalInterestRate
}

// Notional returns the notional principal, defaulting to zero when absent.
func (t *ContractTerms) Notional() money.Units {
	if t.NotionalPrincipal == nil {
		return 0
	}
	return *t.NotionalPrincipal
}
