/*
Scaled-18 fixed-point arithmetic with explicit rounding direction.

Every amount the engine touches is an integer scaled by 1e18. The four
primitives mirror Solidity's FixedPoint library bit-for-bit, including its
truncation behavior: downstream systems diff our results against on-chain
computations, so the formulas here are not negotiable. Intermediate products
are carried in math/big so a 512-bit product can never overflow; only the
final result must fit back into the 256-bit sdkmath.Int domain.
*/

package fixedpoint

import (
	"errors"
	"math/big"

	sdkmath "cosmossdk.io/math"
)

// Error definitions for zero-tolerance error handling
var (
	ErrDivisionByZero = errors.New("fixed-point division by zero")
	ErrOverflow       = errors.New("fixed-point result exceeds 256 bits")
	ErrNegativeValue  = errors.New("fixed-point operand is negative")
	ErrNilValue       = errors.New("fixed-point operand is nil")
)

// ONE is the scaled-18 representation of 1.0. The scale is a protocol-level
// invariant, never a runtime knob.
var ONE = sdkmath.NewIntWithDecimal(1, 18)

var (
	oneE18 = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)
	bigOne = big.NewInt(1)
)

// checkOperands rejects nil or negative inputs before any arithmetic.
func checkOperands(vals ...sdkmath.Int) error {
	for _, v := range vals {
		if v.IsNil() {
			return ErrNilValue
		}
		if v.IsNegative() {
			return ErrNegativeValue
		}
	}
	return nil
}

// toInt range-checks a big.Int result back into the sdkmath.Int domain.
func toInt(v *big.Int) (sdkmath.Int, error) {
	if v.BitLen() > sdkmath.MaxBitLen {
		return sdkmath.Int{}, ErrOverflow
	}
	return sdkmath.NewIntFromBigInt(v), nil
}

// MulDown returns floor(a * b / 1e18).
func MulDown(a, b sdkmath.Int) (sdkmath.Int, error) {
	if err := checkOperands(a, b); err != nil {
		return sdkmath.Int{}, err
	}
	product := new(big.Int).Mul(a.BigInt(), b.BigInt())
	return toInt(product.Quo(product, oneE18))
}

// MulUp returns ceil(a * b / 1e18), computed as floor((a*b - 1)/1e18) + 1
// for a non-zero product.
func MulUp(a, b sdkmath.Int) (sdkmath.Int, error) {
	if err := checkOperands(a, b); err != nil {
		return sdkmath.Int{}, err
	}
	product := new(big.Int).Mul(a.BigInt(), b.BigInt())
	if product.Sign() == 0 {
		return sdkmath.ZeroInt(), nil
	}
	product.Sub(product, bigOne)
	product.Quo(product, oneE18)
	return toInt(product.Add(product, bigOne))
}

// DivDown returns floor(a * 1e18 / b).
func DivDown(a, b sdkmath.Int) (sdkmath.Int, error) {
	if err := checkOperands(a, b); err != nil {
		return sdkmath.Int{}, err
	}
	if b.IsZero() {
		return sdkmath.Int{}, ErrDivisionByZero
	}
	numerator := new(big.Int).Mul(a.BigInt(), oneE18)
	return toInt(numerator.Quo(numerator, b.BigInt()))
}

// DivUp returns ceil(a * 1e18 / b), computed as floor((a*1e18 - 1)/b) + 1
// for a non-zero numerator.
func DivUp(a, b sdkmath.Int) (sdkmath.Int, error) {
	if err := checkOperands(a, b); err != nil {
		return sdkmath.Int{}, err
	}
	if b.IsZero() {
		return sdkmath.Int{}, ErrDivisionByZero
	}
	if a.IsZero() {
		return sdkmath.ZeroInt(), nil
	}
	numerator := new(big.Int).Mul(a.BigInt(), oneE18)
	numerator.Sub(numerator, bigOne)
	numerator.Quo(numerator, b.BigInt())
	return toInt(numerator.Add(numerator, bigOne))
}

// MulDivDown returns floor(a * b / c) over raw (non-scaled) integers.
func MulDivDown(a, b, c sdkmath.Int) (sdkmath.Int, error) {
	if err := checkOperands(a, b, c); err != nil {
		return sdkmath.Int{}, err
	}
	if c.IsZero() {
		return sdkmath.Int{}, ErrDivisionByZero
	}
	product := new(big.Int).Mul(a.BigInt(), b.BigInt())
	return toInt(product.Quo(product, c.BigInt()))
}

// MulDivUp returns ceil(a * b / c) over raw (non-scaled) integers.
func MulDivUp(a, b, c sdkmath.Int) (sdkmath.Int, error) {
	if err := checkOperands(a, b, c); err != nil {
		return sdkmath.Int{}, err
	}
	if c.IsZero() {
		return sdkmath.Int{}, ErrDivisionByZero
	}
	product := new(big.Int).Mul(a.BigInt(), b.BigInt())
	if product.Sign() == 0 {
		return sdkmath.ZeroInt(), nil
	}
	product.Sub(product, bigOne)
	product.Quo(product, c.BigInt())
	return toInt(product.Add(product, bigOne))
}

// Complement returns 1e18 - x, clamped at zero. x is expected in [0, 1e18].
func Complement(x sdkmath.Int) sdkmath.Int {
	if x.IsNil() || x.IsNegative() {
		return ONE
	}
	if x.GTE(ONE) {
		return sdkmath.ZeroInt()
	}
	return ONE.Sub(x)
}
