package money

import (
	"math"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ksred/actus-api/internal/errs"
)

const secondsPerYear365 = 365 * 24 * 3600

func TestUnitsAdd(t *testing.T) {
	sum, err := Units(100).Add(Units(-30))
	require.NoError(t, err)
	assert.Equal(t, Units(70), sum)

	_, err = Units(math.MaxInt64).Add(1)
	require.Error(t, err)
	assert.True(t, errs.IsMath(err))

	_, err = Units(math.MinInt64).Add(-1)
	require.Error(t, err)
	assert.True(t, errs.IsMath(err))
}

func TestUnitsSub(t *testing.T) {
	diff, err := Units(100).Sub(Units(130))
	require.NoError(t, err)
	assert.Equal(t, Units(-30), diff)

	_, err = Units(math.MinInt64).Sub(1)
	require.Error(t, err)
	assert.True(t, errs.IsMath(err))

	_, err = Units(math.MaxInt64).Sub(-1)
	require.Error(t, err)
	assert.True(t, errs.IsMath(err))
}

func TestUnitsNeg(t *testing.T) {
	neg, err := Units(42).Neg()
	require.NoError(t, err)
	assert.Equal(t, Units(-42), neg)

	_, err = Units(math.MinInt64).Neg()
	require.Error(t, err)
	assert.True(t, errs.IsMath(err))
}

func TestUnitsScaleBySign(t *testing.T) {
	u, err := Units(500).ScaleBySign(1)
	require.NoError(t, err)
	assert.Equal(t, Units(500), u)

	u, err = Units(500).ScaleBySign(-1)
	require.NoError(t, err)
	assert.Equal(t, Units(-500), u)
}

func TestAccrueExactYear(t *testing.T) {
	// 500000 units at 5% over exactly one 365-day year: 25000, no rounding.
	interest, err := Accrue(500_000, 50_000, secondsPerYear365, secondsPerYear365)
	require.NoError(t, err)
	assert.Equal(t, Units(25_000), interest)
}

func TestAccrueZeroInputs(t *testing.T) {
	interest, err := Accrue(0, 50_000, secondsPerYear365, secondsPerYear365)
	require.NoError(t, err)
	assert.Equal(t, Units(0), interest)

	interest, err = Accrue(500_000, 0, secondsPerYear365, secondsPerYear365)
	require.NoError(t, err)
	assert.Equal(t, Units(0), interest)

	interest, err = Accrue(500_000, 50_000, 0, secondsPerYear365)
	require.NoError(t, err)
	assert.Equal(t, Units(0), interest)
}

func TestAccrueRoundsHalfToEven(t *testing.T) {
	// One full year at 50% makes the exact quotient principal/2.
	cases := []struct {
		principal Units
		want      Units
	}{
		{1, 0},   // 0.5 rounds to the even neighbour 0
		{3, 2},   // 1.5 rounds to 2
		{5, 2},   // 2.5 rounds to 2
		{-1, 0},  // -0.5 rounds to 0
		{-3, -2}, // -1.5 rounds to -2
		{-5, -2}, // -2.5 rounds to -2
	}
	for _, tc := range cases {
		got, err := Accrue(tc.principal, 500_000, secondsPerYear365, secondsPerYear365)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "principal %d", tc.principal)
	}
}

func TestAccrueRoundsNearestAwayFromHalf(t *testing.T) {
	// 7/4 = 1.75 rounds up to 2; 5/4 = 1.25 rounds down to 1.
	got, err := Accrue(7, 250_000, secondsPerYear365, secondsPerYear365)
	require.NoError(t, err)
	assert.Equal(t, Units(2), got)

	got, err = Accrue(5, 250_000, secondsPerYear365, secondsPerYear365)
	require.NoError(t, err)
	assert.Equal(t, Units(1), got)
}

func TestAccrueRejectsBadArguments(t *testing.T) {
	_, err := Accrue(500_000, 50_000, -1, secondsPerYear365)
	require.Error(t, err)
	assert.True(t, errs.IsMath(err))

	_, err = Accrue(500_000, 50_000, secondsPerYear365, 0)
	require.Error(t, err)
	assert.True(t, errs.IsMath(err))
}

func TestAccrueOverflowingResult(t *testing.T) {
	// 200% over a full year doubles the principal, overflowing int64.
	_, err := Accrue(Units(math.MaxInt64), Rate(2*RateScale), secondsPerYear365, secondsPerYear365)
	require.Error(t, err)
	assert.True(t, errs.IsMath(err))
}

func TestProperty_AddSubRoundTrip(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("adding then subtracting the same amount is identity", prop.ForAll(
		func(a, b int64) bool {
			sum, err := Units(a).Add(Units(b))
			if err != nil {
				return true // overflow is allowed to fail, not to wrap
			}
			back, err := sum.Sub(Units(b))
			return err == nil && back == Units(a)
		},
		gen.Int64(),
		gen.Int64(),
	))

	properties.TestingRun(t)
}

func TestProperty_AccrualBoundedByUnroundedValue(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("rounded accrual differs from the exact float value by at most one unit", prop.ForAll(
		func(principal int64, rateBps int64, elapsedDays int64) bool {
			rate := Rate(rateBps * 100) // basis points into RateScale fixed-point
			elapsed := elapsedDays * 24 * 3600
			got, err := Accrue(Units(principal), rate, elapsed, secondsPerYear365)
			if err != nil {
				return false
			}
			exact := float64(principal) * float64(rate) * float64(elapsed) /
				(float64(RateScale) * float64(secondsPerYear365))
			return math.Abs(float64(got)-exact) <= 1
		},
		gen.Int64Range(0, 1_000_000_000),
		gen.Int64Range(0, 10_000),
		gen.Int64Range(0, 3650),
	))

	properties.TestingRun(t)
}
