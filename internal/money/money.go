// Package money provides the fixed-point monetary primitives used for all
// money and rate valued fields. Amounts are held as signed integers in the
// smallest denomination of the settlement currency; rates are fixed-point
// fractions scaled by RateScale. All arithmetic is overflow-checked and
// fails with a MathError instead of wrapping.
package money

import (
	"math"
	"math/big"

	"github.com/ksred/actus-api/internal/errs"
)

// Units is a signed monetary quantity in the smallest currency denomination.
type Units int64

// Rate is a fixed-point fraction scaled by RateScale. A Rate of 50_000
// represents 5% per year.
type Rate int64

// RateScale is the fixed-point denominator for Rate values.
const RateScale int64 = 1_000_000

// Add returns u + v, failing with a MathError on overflow.
func (u Units) Add(v Units) (Units, error) {
	sum := u + v
	if (v > 0 && sum < u) || (v < 0 && sum > u) {
		return 0, errs.Mathf("addition overflow: %d + %d", u, v)
	}
	return sum, nil
}

// Sub returns u - v, failing with a MathError on overflow.
func (u Units) Sub(v Units) (Units, error) {
	diff := u - v
	if (v < 0 && diff < u) || (v > 0 && diff > u) {
		return 0, errs.Mathf("subtraction overflow: %d - %d", u, v)
	}
	return diff, nil
}

// Neg returns -u, failing with a MathError for the one unrepresentable case.
func (u Units) Neg() (Units, error) {
	if u == math.MinInt64 {
		return 0, errs.Mathf("negation overflow: %d", u)
	}
	return -u, nil
}

// ScaleBySign multiplies u by a role sign of +1 or -1.
func (u Units) ScaleBySign(sign int64) (Units, error) {
	if sign >= 0 {
		return u, nil
	}
	return u.Neg()
}

// Accrue computes the interest accrued on principal at the given rate over
// elapsed seconds against a day-count denominator of secondsPerYear:
//
//	principal * rate * elapsed / (RateScale * secondsPerYear)
//
// The product is computed exactly in big integers and rounded half-to-even
// exactly once, so repeated accrual never compounds rounding drift.
func Accrue(principal Units, rate Rate, elapsedSeconds, secondsPerYear int64) (Units, error) {
	if secondsPerYear <= 0 {
		return 0, errs.Mathf("day-count denominator must be positive, got %d", secondsPerYear)
	}
	if elapsedSeconds < 0 {
		return 0, errs.Mathf("elapsed time must be non-negative, got %d", elapsedSeconds)
	}

	num := new(big.Int).Mul(big.NewInt(int64(principal)), big.NewInt(int64(rate)))
	num.Mul(num, big.NewInt(elapsedSeconds))
	den := new(big.Int).Mul(big.NewInt(RateScale), big.NewInt(secondsPerYear))

	q := divRoundHalfEven(num, den)
	if !q.IsInt64() {
		return 0, errs.Mathf("accrual result overflows: principal=%d rate=%d elapsed=%d", principal, rate, elapsedSeconds)
	}
	return Units(q.Int64()), nil
}

// divRoundHalfEven divides num by den rounding the exact quotient half to
// even (banker's rounding). den must be non-zero.
func divRoundHalfEven(num, den *big.Int) *big.Int {
	q, r := new(big.Int).QuoRem(num, den, new(big.Int))
	if r.Sign() == 0 {
		return q
	}

	twiceRem := new(big.Int).Abs(r)
	twiceRem.Lsh(twiceRem, 1)
	cmp := twiceRem.Cmp(new(big.Int).Abs(den))

	// Truncated division leaves the remainder pointing away from zero, so
	// rounding away from zero is an increment in the sign of the quotient.
	roundAway := cmp > 0 || (cmp == 0 && q.Bit(0) == 1)
	if roundAway {
		if (num.Sign() < 0) != (den.Sign() < 0) {
			q.Sub(q, big.NewInt(1))
		} else {
			q.Add(q, big.NewInt(1))
		}
	}
	return q
}
