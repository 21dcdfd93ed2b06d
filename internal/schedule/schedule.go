// Package schedule derives the ordered sequence of contractual event dates
// from the contract terms: cycle expansion from the anchor dates, end-of-month
// pinning, and business-day shifting against the configured calendar.
package schedule

import (
	"time"

	"github.com/ksred/actus-api/internal/errs"
	"github.com/ksred/actus-api/internal/types"
)

// ShiftedDay is a calendar date together with its convention-adjusted
// settlement date.
type ShiftedDay struct {
	Unadjusted time.Time `json:"unadjusted"`
	Adjusted   time.Time `json:"adjusted"`
}

// Event is one schedule entry: an event kind due on a shifted day.
type Event struct {
	Type types.EventType `json:"event_type"`
	Day  ShiftedDay      `json:"day"`
}

// Generator produces the event schedule for one set of contract terms.
// Construction validates the configuration; generation itself cannot fail.
type Generator struct {
	terms *types.ContractTerms
}

// NewGenerator validates the terms' schedule configuration and returns a
// generator. Malformed or contradictory configuration fails here with a
// ValidationError, never lazily during generation.
func NewGenerator(terms *types.ContractTerms) (*Generator, error) {
	if err := terms.Validate(); err != nil {
		return nil, err
	}
	if terms.ScheduleConfig.InterestPaymentCycle != nil {
		if terms.InitialExchangeDate == nil {
			return nil, errs.Validationf("interest payment cycle requires an initial exchange date anchor")
		}
		if terms.MaturityDate == nil {
			return nil, errs.Validationf("interest payment cycle requires a maturity date bound")
		}
	}
	return &Generator{terms: terms}, nil
}

// Generate returns the full schedule, strictly increasing by (unadjusted
// date, event code): dates never decrease, and amortizing types that pay
// interest and a principal tranche on the same cycle date order them IP
// before PR. A contract with no cycle configuration yields the degenerate
// schedule of just its explicit lifecycle dates.
func (g *Generator) Generate() []Event {
	cfg := &g.terms.ScheduleConfig
	var events []Event

	if g.terms.InitialExchangeDate != nil {
		events = append(events, Event{
			Type: types.EventIED,
			Day:  g.shiftDay(time.Unix(*g.terms.InitialExchangeDate, 0).UTC()),
		})
	}

	if cfg.InterestPaymentCycle != nil {
		anchor := time.Unix(*g.terms.InitialExchangeDate, 0).UTC()
		until := time.Unix(*g.terms.MaturityDate, 0).UTC()

		for _, d := range g.cycleDates(anchor, until, cfg.InterestPaymentCycle) {
			events = append(events, Event{Type: types.EventIP, Day: g.shiftDay(d)})
			// Amortizing types repay a principal tranche alongside each
			// interest payment: same date, IP first per the event codes.
			if g.terms.ContractType == types.ContractTypeLAM && g.terms.PrincipalRedemptionAmount != nil {
				events = append(events, Event{Type: types.EventPR, Day: g.shiftDay(d)})
			}
		}
	}

	if g.terms.MaturityDate != nil {
		events = append(events, Event{
			Type: types.EventMD,
			Day:  g.shiftDay(time.Unix(*g.terms.MaturityDate, 0).UTC()),
		})
	}

	return events
}

// cycleDates expands a cycle from anchor (exclusive) up to until
// (exclusive): maturity settles its own interest inside the MD event.
func (g *Generator) cycleDates(anchor, until time.Time, cycle *types.Cycle) []time.Time {
	pinEOM := g.terms.ScheduleConfig.EndOfMonthConvention == types.EndOfMonthPinned &&
		isLastDayOfMonth(anchor) && cycleUsesMonths(cycle.Unit)

	var dates []time.Time
	for k := 1; ; k++ {
		d := stepCycle(anchor, cycle, k, pinEOM)
		if !d.Before(until) {
			break
		}
		dates = append(dates, d)
	}
	return dates
}

// stepCycle advances anchor by k cycle periods. Month-based cycles use
// calendar month arithmetic clamped to the target month length so that a
// Jan 31 anchor yields Feb 28, not Mar 3.
func stepCycle(anchor time.Time, cycle *types.Cycle, k int, pinEOM bool) time.Time {
	switch cycle.Unit {
	case types.CycleDaily:
		return anchor.AddDate(0, 0, k*cycle.Multiplier)
	case types.CycleWeekly:
		return anchor.AddDate(0, 0, 7*k*cycle.Multiplier)
	}

	months := k * cycle.Multiplier
	switch cycle.Unit {
	case types.CycleQuarterly:
		months = 3 * k * cycle.Multiplier
	case types.CycleYearly:
		months = 12 * k * cycle.Multiplier
	}

	y, m, _ := anchor.Date()
	target := time.Date(y, m, 1, anchor.Hour(), anchor.Minute(), anchor.Second(), 0, time.UTC).
		AddDate(0, months, 0)
	last := daysInMonth(target.Year(), target.Month())

	day := anchor.Day()
	if pinEOM || day > last {
		day = last
	}
	return time.Date(target.Year(), target.Month(), day,
		anchor.Hour(), anchor.Minute(), anchor.Second(), 0, time.UTC)
}

func cycleUsesMonths(unit types.CycleUnit) bool {
	switch unit {
	case types.CycleMonthly, types.CycleQuarterly, types.CycleYearly:
		return true
	}
	return false
}

func isLastDayOfMonth(t time.Time) bool {
	return t.Day() == daysInMonth(t.Year(), t.Month())
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// shiftDay applies the configured business-day convention to one date.
func (g *Generator) shiftDay(d time.Time) ShiftedDay {
	return ShiftedDay{
		Unadjusted: d,
		Adjusted:   g.adjust(d),
	}
}

func (g *Generator) adjust(d time.Time) time.Time {
	cfg := &g.terms.ScheduleConfig
	if cfg.BusinessDayConvention == types.BusinessDayNoShift {
		return d
	}
	if isBusinessDay(d, cfg.Calendar) {
		return d
	}

	switch cfg.BusinessDayConvention {
	case types.BusinessDayFollowing:
		return nextBusinessDay(d, cfg.Calendar, 1)
	case types.BusinessDayPreceding:
		return nextBusinessDay(d, cfg.Calendar, -1)
	case types.BusinessDayModifiedFollowing:
		shifted := nextBusinessDay(d, cfg.Calendar, 1)
		if shifted.Month() != d.Month() {
			return nextBusinessDay(d, cfg.Calendar, -1)
		}
		return shifted
	case types.BusinessDayModifiedPreceding:
		shifted := nextBusinessDay(d, cfg.Calendar, -1)
		if shifted.Month() != d.Month() {
			return nextBusinessDay(d, cfg.Calendar, 1)
		}
		return shifted
	}
	return d
}

func nextBusinessDay(d time.Time, cal types.Calendar, dir int) time.Time {
	for {
		d = d.AddDate(0, 0, dir)
		if isBusinessDay(d, cal) {
			return d
		}
	}
}

func isBusinessDay(d time.Time, cal types.Calendar) bool {
	if cal != types.CalendarMondayToFriday {
		return true
	}
	switch d.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	return true
}
