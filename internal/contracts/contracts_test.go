package contracts

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ksred/actus-api/internal/errs"
	"github.com/ksred/actus-api/internal/money"
	"github.com/ksred/actus-api/internal/types"
)

func setupTestService(t *testing.T) *Service {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&Contract{}, &ContractEvent{}, &IdempotencyRecord{}))

	return NewService(db)
}

func testUnix(year int, month time.Month, day int) int64 {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC).Unix()
}

func pamInitRequest(t *testing.T, contractID string, ied, md int64, cfg types.ScheduleConfig) *InitContractRequest {
	t.Helper()

	notional := money.Units(500_000)
	rate := money.Rate(50_000)
	terms := &types.ContractTerms{
		ContractID:          contractID,
		InitialExchangeDate: &ied,
		MaturityDate:        &md,
		StatusDate:          ied,
		NotionalPrincipal:   &notional,
		NominalInterestRate: &rate,
		ScheduleConfig:      cfg,
	}
	raw, err := json.Marshal(terms)
	require.NoError(t, err)

	return &InitContractRequest{
		ContractType:       uint8(types.ContractTypePAM),
		ContractRole:       uint8(types.ContractRoleRPA),
		SettlementCurrency: "USD",
		Terms:              raw,
	}
}

func TestInitContract(t *testing.T) {
	service := setupTestService(t)

	ied := testUnix(2025, time.January, 15)
	md := testUnix(2026, time.January, 15)
	resp, err := service.InitContract(pamInitRequest(t, "pam-001", ied, md, types.ScheduleConfig{}))
	require.NoError(t, err)

	assert.Equal(t, "pam-001", resp.ContractID)
	assert.Equal(t, "PAM", resp.ContractType)
	assert.Equal(t, "RPA", resp.ContractRole)
	assert.Equal(t, StatusActive, resp.Status)
	assert.Equal(t, ied, resp.StatusDate)

	state, err := service.GetState("pam-001")
	require.NoError(t, err)
	assert.Equal(t, money.Units(0), state.NotionalPrincipal)
	assert.Equal(t, money.Units(0), state.AccruedInterest)
	assert.Equal(t, ied, state.StatusDate)
	assert.Equal(t, types.PerformancePerformant, state.Performance)
}

func TestInitContractValidation(t *testing.T) {
	service := setupTestService(t)
	ied := testUnix(2025, time.January, 15)
	md := testUnix(2026, time.January, 15)

	t.Run("unknown contract type code", func(t *testing.T) {
		req := pamInitRequest(t, "bad-type", ied, md, types.ScheduleConfig{})
		req.ContractType = 99
		_, err := service.InitContract(req)
		require.Error(t, err)
		assert.True(t, errs.IsValidation(err))
	})

	t.Run("annuity type has no rule set", func(t *testing.T) {
		req := pamInitRequest(t, "ann-001", ied, md, types.ScheduleConfig{})
		req.ContractType = uint8(types.ContractTypeANN)
		_, err := service.InitContract(req)
		require.Error(t, err)
		assert.True(t, errs.IsValidation(err))
	})

	t.Run("malformed terms blob", func(t *testing.T) {
		req := pamInitRequest(t, "bad-terms", ied, md, types.ScheduleConfig{})
		req.Terms = json.RawMessage(`{"contract_id": `)
		_, err := service.InitContract(req)
		require.Error(t, err)
		assert.True(t, errs.IsValidation(err))
	})

	t.Run("bad schedule config fails at init", func(t *testing.T) {
		req := pamInitRequest(t, "bad-sched", ied, md, types.ScheduleConfig{
			Calendar: "TARGET2",
		})
		_, err := service.InitContract(req)
		require.Error(t, err)
		assert.True(t, errs.IsValidation(err))
	})
}

func TestProcessEventLifecycle(t *testing.T) {
	service := setupTestService(t)

	ied := testUnix(2025, time.January, 15)
	md := ied + 365*24*3600
	_, err := service.InitContract(pamInitRequest(t, "pam-lifecycle", ied, md, types.ScheduleConfig{}))
	require.NoError(t, err)

	// Initial exchange: the creditor disburses the notional.
	resp, err := service.ProcessEvent("pam-lifecycle", uint8(types.EventIED), ied, uuid.New().String())
	require.NoError(t, err)
	require.NotNil(t, resp.Settlement)
	assert.Equal(t, money.Units(-500_000), *resp.Settlement)
	assert.NotEmpty(t, resp.StateHash)
	assert.Equal(t, money.Units(500_000), resp.State.NotionalPrincipal)

	// An interest payment mid-life settles accrued interest.
	mid := ied + 180*24*3600
	resp, err = service.ProcessEvent("pam-lifecycle", uint8(types.EventIP), mid, uuid.New().String())
	require.NoError(t, err)
	require.NotNil(t, resp.Settlement)
	assert.Greater(t, int64(*resp.Settlement), int64(0))
	assert.Equal(t, money.Units(0), resp.State.AccruedInterest)

	// Maturity zeroes the contract and marks it matured.
	resp, err = service.ProcessEvent("pam-lifecycle", uint8(types.EventMD), md, uuid.New().String())
	require.NoError(t, err)
	assert.Equal(t, money.Units(0), resp.State.NotionalPrincipal)
	assert.Equal(t, money.Units(0), resp.State.AccruedInterest)

	contract, err := service.GetDB().GetContract("pam-lifecycle")
	require.NoError(t, err)
	assert.Equal(t, StatusMatured, contract.Status)

	events, err := service.GetEvents("pam-lifecycle")
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, "IED", events[0].EventType)
	assert.Equal(t, "IP", events[1].EventType)
	assert.Equal(t, "MD", events[2].EventType)
	for i := 1; i < len(events); i++ {
		assert.LessOrEqual(t, events[i-1].Timestamp, events[i].Timestamp)
	}
}

func TestProcessEventIdempotentReplay(t *testing.T) {
	service := setupTestService(t)

	ied := testUnix(2025, time.January, 15)
	md := ied + 365*24*3600
	_, err := service.InitContract(pamInitRequest(t, "pam-idem", ied, md, types.ScheduleConfig{}))
	require.NoError(t, err)

	key := uuid.New().String()
	first, err := service.ProcessEvent("pam-idem", uint8(types.EventIED), ied, key)
	require.NoError(t, err)

	// A replay with the same key returns the recorded event and applies
	// nothing new.
	second, err := service.ProcessEvent("pam-idem", uint8(types.EventIED), ied, key)
	require.NoError(t, err)
	assert.Equal(t, first.EventID, second.EventID)
	assert.Equal(t, first.StateHash, second.StateHash)

	events, err := service.GetEvents("pam-idem")
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestProcessEventRejection(t *testing.T) {
	service := setupTestService(t)

	ied := testUnix(2025, time.January, 15)
	md := ied + 365*24*3600
	_, err := service.InitContract(pamInitRequest(t, "pam-reject", ied, md, types.ScheduleConfig{}))
	require.NoError(t, err)

	_, err = service.ProcessEvent("pam-reject", uint8(types.EventIED), ied, uuid.New().String())
	require.NoError(t, err)

	stateBefore, err := service.GetState("pam-reject")
	require.NoError(t, err)

	// An event with a timestamp before the status date is rejected and
	// leaves no trace: no state change and no event-log row.
	_, err = service.ProcessEvent("pam-reject", uint8(types.EventIP), ied-3600, uuid.New().String())
	require.Error(t, err)
	assert.True(t, errs.IsTransition(err))

	stateAfter, err := service.GetState("pam-reject")
	require.NoError(t, err)
	assert.Equal(t, stateBefore, stateAfter)

	events, err := service.GetEvents("pam-reject")
	require.NoError(t, err)
	assert.Len(t, events, 1)

	t.Run("unknown event code", func(t *testing.T) {
		_, err := service.ProcessEvent("pam-reject", 99, md, uuid.New().String())
		require.Error(t, err)
		assert.True(t, errs.IsValidation(err))
	})

	t.Run("unknown contract", func(t *testing.T) {
		_, err := service.ProcessEvent("no-such-contract", uint8(types.EventIED), ied, uuid.New().String())
		require.Error(t, err)
	})
}

func TestGetSchedule(t *testing.T) {
	service := setupTestService(t)

	ied := testUnix(2025, time.January, 15)
	md := testUnix(2025, time.July, 15)
	_, err := service.InitContract(pamInitRequest(t, "pam-sched", ied, md, types.ScheduleConfig{
		InterestPaymentCycle: &types.Cycle{Unit: types.CycleMonthly, Multiplier: 1},
	}))
	require.NoError(t, err)

	entries, err := service.GetSchedule("pam-sched")
	require.NoError(t, err)
	// IED, five monthly IPs, MD.
	require.Len(t, entries, 7)
	assert.Equal(t, "IED", entries[0].EventType)
	assert.Equal(t, "MD", entries[6].EventType)
	for i := 1; i < len(entries); i++ {
		assert.Less(t, entries[i-1].Unadjusted, entries[i].Unadjusted)
	}
}

func TestProcessorAppliesDueSchedule(t *testing.T) {
	service := setupTestService(t)

	// A contract fully in the past: one scan should walk it through its
	// entire schedule and mature it.
	ied := testUnix(2024, time.January, 15)
	md := testUnix(2025, time.January, 15)
	_, err := service.InitContract(pamInitRequest(t, "pam-proc", ied, md, types.ScheduleConfig{
		InterestPaymentCycle: &types.Cycle{Unit: types.CycleMonthly, Multiplier: 1},
	}))
	require.NoError(t, err)

	processor := NewProcessor(service, time.Minute)
	require.NoError(t, processor.processDueEvents(time.Now()))

	contract, err := service.GetDB().GetContract("pam-proc")
	require.NoError(t, err)
	assert.Equal(t, StatusMatured, contract.Status)

	state, err := service.GetState("pam-proc")
	require.NoError(t, err)
	assert.Equal(t, money.Units(0), state.NotionalPrincipal)
	assert.Equal(t, money.Units(0), state.AccruedInterest)
	assert.Equal(t, md, state.StatusDate)

	// IED, eleven monthly interest payments, MD.
	events, err := service.GetEvents("pam-proc")
	require.NoError(t, err)
	assert.Len(t, events, 13)

	// A second scan finds everything applied and changes nothing.
	require.NoError(t, processor.processDueEvents(time.Now()))
	events, err = service.GetEvents("pam-proc")
	require.NoError(t, err)
	assert.Len(t, events, 13)
}

func TestProcessorSkipsFutureEvents(t *testing.T) {
	service := setupTestService(t)

	ied := testUnix(2025, time.January, 15)
	md := testUnix(2026, time.January, 15)
	_, err := service.InitContract(pamInitRequest(t, "pam-future", ied, md, types.ScheduleConfig{
		InterestPaymentCycle: &types.Cycle{Unit: types.CycleMonthly, Multiplier: 1},
	}))
	require.NoError(t, err)

	processor := NewProcessor(service, time.Minute)
	// Scan as of three and a half months in: IED plus three IPs are due.
	now := time.Unix(ied, 0).UTC().AddDate(0, 3, 15)
	require.NoError(t, processor.processDueEvents(now))

	events, err := service.GetEvents("pam-future")
	require.NoError(t, err)
	assert.Len(t, events, 4)

	contract, err := service.GetDB().GetContract("pam-future")
	require.NoError(t, err)
	assert.Equal(t, StatusActive, contract.Status)
}
