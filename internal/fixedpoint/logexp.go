/*
Port of Balancer's LogExpMath: natural exponentiation and logarithm over
signed fixed-point integers, combined into pow(x, y) = exp(y * ln(x)).

The algorithm and every constant below match the Solidity original exactly.
Internals run at 20-decimal (and 36-decimal for the high-precision ln)
scales on math/big integers; divisions use Quo/Rem, which truncate toward
zero exactly like the EVM's signed division.
*/

package fixedpoint

import (
	"errors"
	"math/big"

	sdkmath "cosmossdk.io/math"
)

var (
	ErrBaseOutOfBounds     = errors.New("pow base out of bounds")
	ErrExponentOutOfBounds = errors.New("pow exponent out of bounds")
	ErrProductOutOfBounds  = errors.New("pow product out of bounds")
	ErrInvalidExponent     = errors.New("invalid natural exponent")
)

func bigFromString(s string) *big.Int {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic("fixedpoint: bad constant " + s)
	}
	return v
}

var (
	one18 = bigFromString("1000000000000000000")
	one20 = bigFromString("100000000000000000000")
	one36 = bigFromString("1000000000000000000000000000000000000")

	maxNaturalExponent = bigFromString("130000000000000000000")
	minNaturalExponent = bigFromString("-41000000000000000000")

	ln36LowerBound = new(big.Int).Sub(one18, bigFromString("100000000000000000"))
	ln36UpperBound = new(big.Int).Add(one18, bigFromString("100000000000000000"))

	// 2^254 / ONE_20
	mildExponentBound = new(big.Int).Quo(
		new(big.Int).Lsh(big.NewInt(1), 254),
		one20,
	)

	// 18 decimal constants
	x0 = bigFromString("128000000000000000000") // 2^7
	a0 = bigFromString("38877084059945950922200000000000000000000000000000000000")
	x1 = bigFromString("64000000000000000000") // 2^6
	a1 = bigFromString("6235149080811616882910000000")

	// 20 decimal constants
	x2  = bigFromString("3200000000000000000000") // 2^5
	a2  = bigFromString("7896296018268069516100000000000000")
	x3  = bigFromString("1600000000000000000000") // 2^4
	a3  = bigFromString("888611052050787263676000000")
	x4  = bigFromString("800000000000000000000") // 2^3
	a4  = bigFromString("298095798704172827474000")
	x5  = bigFromString("400000000000000000000") // 2^2
	a5  = bigFromString("5459815003314423907810")
	x6  = bigFromString("200000000000000000000") // 2^1
	a6  = bigFromString("738905609893065022723")
	x7  = bigFromString("100000000000000000000") // 2^0
	a7  = bigFromString("271828182845904523536")
	x8  = bigFromString("50000000000000000000") // 2^-1
	a8  = bigFromString("164872127070012814685")
	x9  = bigFromString("25000000000000000000") // 2^-2
	a9  = bigFromString("128402541668774148407")
	x10 = bigFromString("12500000000000000000") // 2^-3
	a10 = bigFromString("113314845306682631683")
	x11 = bigFromString("6250000000000000000") // 2^-4
	a11 = bigFromString("106449445891785942956")

	two255 = new(big.Int).Lsh(big.NewInt(1), 255)

	// maxPowRelativeError is the 1e-14 bound on pow's relative error,
	// applied by PowUp/PowDown in the pool-favoring direction.
	maxPowRelativeError = sdkmath.NewInt(10000)
)

// Pow returns x^y with x and y as unsigned scaled-18 fixed-point numbers.
func Pow(x, y sdkmath.Int) (sdkmath.Int, error) {
	if err := checkOperands(x, y); err != nil {
		return sdkmath.Int{}, err
	}
	if y.IsZero() {
		return ONE, nil
	}
	if x.IsZero() {
		return sdkmath.ZeroInt(), nil
	}

	xb := x.BigInt()
	yb := y.BigInt()
	if xb.Cmp(two255) >= 0 {
		return sdkmath.Int{}, ErrBaseOutOfBounds
	}
	if yb.Cmp(mildExponentBound) >= 0 {
		return sdkmath.Int{}, ErrExponentOutOfBounds
	}

	logxTimesY := new(big.Int)
	if ln36LowerBound.Cmp(xb) < 0 && xb.Cmp(ln36UpperBound) < 0 {
		ln36X := ln36(xb)
		// Split ln into integer and fractional 18-decimal parts so the
		// 36-decimal precision survives the multiplication by y.
		quo := new(big.Int).Quo(ln36X, one18)
		rem := new(big.Int).Rem(ln36X, one18)
		quo.Mul(quo, yb)
		rem.Mul(rem, yb)
		rem.Quo(rem, one18)
		logxTimesY.Add(quo, rem)
	} else {
		logxTimesY.Mul(ln(xb), yb)
	}
	logxTimesY.Quo(logxTimesY, one18)

	if logxTimesY.Cmp(minNaturalExponent) < 0 || logxTimesY.Cmp(maxNaturalExponent) > 0 {
		return sdkmath.Int{}, ErrProductOutOfBounds
	}

	result, err := expBig(logxTimesY)
	if err != nil {
		return sdkmath.Int{}, err
	}
	return toInt(result)
}

// PowUp returns x^y rounded up by pow's maximum relative error.
func PowUp(x, y sdkmath.Int) (sdkmath.Int, error) {
	raw, err := Pow(x, y)
	if err != nil {
		return sdkmath.Int{}, err
	}
	maxError, err := MulUp(raw, maxPowRelativeError)
	if err != nil {
		return sdkmath.Int{}, err
	}
	return raw.Add(maxError).Add(sdkmath.OneInt()), nil
}

// PowDown returns x^y rounded down by pow's maximum relative error,
// floored at zero.
func PowDown(x, y sdkmath.Int) (sdkmath.Int, error) {
	raw, err := Pow(x, y)
	if err != nil {
		return sdkmath.Int{}, err
	}
	maxError, err := MulUp(raw, maxPowRelativeError)
	if err != nil {
		return sdkmath.Int{}, err
	}
	maxError = maxError.Add(sdkmath.OneInt())
	if raw.LT(maxError) {
		return sdkmath.ZeroInt(), nil
	}
	return raw.Sub(maxError), nil
}

// expBig computes e^x for a signed 18-decimal x within the natural exponent
// bounds.
func expBig(x *big.Int) (*big.Int, error) {
	if x.Cmp(minNaturalExponent) < 0 || x.Cmp(maxNaturalExponent) > 0 {
		return nil, ErrInvalidExponent
	}

	if x.Sign() < 0 {
		// e^-x = 1 / e^x, keeping 18 decimal places through the division.
		pos, err := expBig(new(big.Int).Neg(x))
		if err != nil {
			return nil, err
		}
		numerator := new(big.Int).Mul(one18, one18)
		return numerator.Quo(numerator, pos), nil
	}

	x = new(big.Int).Set(x)
	firstAN := big.NewInt(1)
	if x.Cmp(x0) >= 0 {
		x.Sub(x, x0)
		firstAN = a0
	} else if x.Cmp(x1) >= 0 {
		x.Sub(x, x1)
		firstAN = a1
	}

	// Continue at 20-decimal precision.
	x.Mul(x, big.NewInt(100))

	product := new(big.Int).Set(one20)
	pairs := []struct{ x, a *big.Int }{
		{x2, a2}, {x3, a3}, {x4, a4}, {x5, a5},
		{x6, a6}, {x7, a7}, {x8, a8}, {x9, a9},
	}
	for _, p := range pairs {
		if x.Cmp(p.x) >= 0 {
			x.Sub(x, p.x)
			product.Mul(product, p.a)
			product.Quo(product, one20)
		}
	}

	// Taylor series for the residual (x < 2^-2 here).
	seriesSum := new(big.Int).Set(one20)
	term := new(big.Int).Set(x)
	seriesSum.Add(seriesSum, term)
	for n := int64(2); n <= 12; n++ {
		term.Mul(term, x)
		term.Quo(term, one20)
		term.Quo(term, big.NewInt(n))
		seriesSum.Add(seriesSum, term)
	}

	result := new(big.Int).Mul(product, seriesSum)
	result.Quo(result, one20)
	result.Mul(result, firstAN)
	return result.Quo(result, big.NewInt(100)), nil
}

// ln computes the natural logarithm of a positive 18-decimal a.
func ln(a *big.Int) *big.Int {
	if a.Cmp(one18) < 0 {
		// ln(a) = -ln(1/a) for a < 1.
		inv := new(big.Int).Mul(one18, one18)
		inv.Quo(inv, a)
		return new(big.Int).Neg(ln(inv))
	}

	a = new(big.Int).Set(a)
	sum := new(big.Int)

	if t := new(big.Int).Mul(a0, one18); a.Cmp(t) >= 0 {
		a.Quo(a, a0)
		sum.Add(sum, x0)
	}
	if t := new(big.Int).Mul(a1, one18); a.Cmp(t) >= 0 {
		a.Quo(a, a1)
		sum.Add(sum, x1)
	}

	// Switch to 20 decimal places.
	sum.Mul(sum, big.NewInt(100))
	a.Mul(a, big.NewInt(100))

	pairs := []struct{ x, a *big.Int }{
		{x2, a2}, {x3, a3}, {x4, a4}, {x5, a5}, {x6, a6},
		{x7, a7}, {x8, a8}, {x9, a9}, {x10, a10}, {x11, a11},
	}
	for _, p := range pairs {
		if a.Cmp(p.a) >= 0 {
			a.Mul(a, one20)
			a.Quo(a, p.a)
			sum.Add(sum, p.x)
		}
	}

	// a is now in [1, 1.0625): atanh series, ln(a) = 2*atanh((a-1)/(a+1)).
	z := new(big.Int).Sub(a, one20)
	z.Mul(z, one20)
	z.Quo(z, new(big.Int).Add(a, one20))
	zSquared := new(big.Int).Mul(z, z)
	zSquared.Quo(zSquared, one20)

	num := new(big.Int).Set(z)
	seriesSum := new(big.Int).Set(num)
	for n := int64(3); n <= 11; n += 2 {
		num.Mul(num, zSquared)
		num.Quo(num, one20)
		seriesSum.Add(seriesSum, new(big.Int).Quo(num, big.NewInt(n)))
	}
	seriesSum.Mul(seriesSum, big.NewInt(2))

	sum.Add(sum, seriesSum)
	return sum.Quo(sum, big.NewInt(100))
}

// ln36 computes ln(x) with 36 decimals of precision for x close to 1.
func ln36(x *big.Int) *big.Int {
	x = new(big.Int).Mul(x, one18)

	z := new(big.Int).Sub(x, one36)
	z.Mul(z, one36)
	z.Quo(z, new(big.Int).Add(x, one36))
	zSquared := new(big.Int).Mul(z, z)
	zSquared.Quo(zSquared, one36)

	num := new(big.Int).Set(z)
	seriesSum := new(big.Int).Set(num)
	for n := int64(3); n <= 15; n += 2 {
		num.Mul(num, zSquared)
		num.Quo(num, one36)
		seriesSum.Add(seriesSum, new(big.Int).Quo(num, big.NewInt(n)))
	}
	return seriesSum.Mul(seriesSum, big.NewInt(2))
}
