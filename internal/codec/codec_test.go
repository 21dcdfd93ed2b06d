package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ksred/actus-api/internal/errs"
	"github.com/ksred/actus-api/internal/money"
	"github.com/ksred/actus-api/internal/types"
)

func sampleTerms() *types.ContractTerms {
	ied := int64(1_700_000_000)
	md := ied + 365*24*3600
	notional := money.Units(500_000)
	rate := money.Rate(50_000)
	return &types.ContractTerms{
		ContractID:          "codec-test",
		ContractType:        types.ContractTypePAM,
		ContractRole:        types.ContractRoleRPA,
		SettlementCurrency:  "USD",
		InitialExchangeDate: &ied,
		MaturityDate:        &md,
		StatusDate:          ied,
		NotionalPrincipal:   &notional,
		NominalInterestRate: &rate,
		ScheduleConfig: types.ScheduleConfig{
			Calendar:              types.CalendarMondayToFriday,
			BusinessDayConvention: types.BusinessDayModifiedFollowing,
			InterestPaymentCycle:  &types.Cycle{Unit: types.CycleQuarterly, Multiplier: 1},
		},
	}
}

func TestTermsRoundTrip(t *testing.T) {
	terms := sampleTerms()

	encoded, err := MarshalTerms(terms)
	require.NoError(t, err)

	decoded, err := UnmarshalTerms(encoded)
	require.NoError(t, err)
	assert.Equal(t, terms, decoded)
}

func TestStateRoundTrip(t *testing.T) {
	state := &types.ContractState{
		NotionalPrincipal: 500_000,
		AccruedInterest:   -6_164,
		StatusDate:        1_700_000_000,
		Performance:       types.PerformancePerformant,
	}

	encoded, err := MarshalState(state)
	require.NoError(t, err)

	decoded, err := UnmarshalState(encoded)
	require.NoError(t, err)
	assert.Equal(t, state, decoded)
}

func TestMarshalIsDeterministic(t *testing.T) {
	terms := sampleTerms()

	first, err := MarshalTerms(terms)
	require.NoError(t, err)
	second, err := MarshalTerms(terms)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	// A decoded copy re-encodes to the same canonical bytes.
	decoded, err := UnmarshalTerms(first)
	require.NoError(t, err)
	third, err := MarshalTerms(decoded)
	require.NoError(t, err)
	assert.Equal(t, first, third)
}

func TestHashTracksValueChanges(t *testing.T) {
	state := &types.ContractState{
		NotionalPrincipal: 500_000,
		StatusDate:        1_700_000_000,
		Performance:       types.PerformancePerformant,
	}

	h1, err := Hash(state)
	require.NoError(t, err)
	assert.Len(t, h1, 64)

	h2, err := Hash(state)
	require.NoError(t, err)
	assert.Equal(t, h1, h2)

	state.AccruedInterest = 1
	h3, err := Hash(state)
	require.NoError(t, err)
	assert.NotEqual(t, h1, h3)
}

func TestUnmarshalRejectsMalformedInput(t *testing.T) {
	_, err := UnmarshalTerms([]byte(`{"contract_id": `))
	require.Error(t, err)
	assert.True(t, errs.IsValidation(err))

	_, err = UnmarshalState([]byte(`not json`))
	require.Error(t, err)
	assert.True(t, errs.IsValidation(err))
}
